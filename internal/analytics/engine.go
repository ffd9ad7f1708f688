package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// EntryGateway supplies journal entries to the engine. Persistence lives
// behind this interface; the engine performs the single fetch per call and
// no other I/O.
type EntryGateway interface {
	EntriesForRange(ctx context.Context, userID string, from, to time.Time) ([]*types.JournalEntry, error)
}

// Engine orchestrates the analyzers into one analytics result per call.
// All computation is pure; concurrent calls share no state.
type Engine struct {
	logger      *zap.Logger
	gateway     EntryGateway
	config      types.AnalyticsConfig
	consistency *ConsistencyAnalyzer
	emotion     *EmotionalCorrelationAnalyzer
	trend       *ProcessTrendAnalyzer
	insights    *InsightGenerator
}

// NewEngine creates a new analytics engine
func NewEngine(logger *zap.Logger, gateway EntryGateway, config types.AnalyticsConfig) *Engine {
	return &Engine{
		logger:      logger,
		gateway:     gateway,
		config:      config,
		consistency: NewConsistencyAnalyzer(logger),
		emotion:     NewEmotionalCorrelationAnalyzer(logger),
		trend:       NewProcessTrendAnalyzer(logger),
		insights:    NewInsightGenerator(logger),
	}
}

// GetAnalyticsData fetches the user's entries for the range and runs the full
// analysis, anchored to the current wall-clock day.
func (e *Engine) GetAnalyticsData(ctx context.Context, userID string, from, to time.Time) (*types.AnalyticsData, error) {
	return e.GetAnalyticsDataAt(ctx, userID, from, to, time.Now().UTC())
}

// GetAnalyticsDataAt is GetAnalyticsData with an explicit "today" anchor.
// Identical inputs always produce identical results.
func (e *Engine) GetAnalyticsDataAt(ctx context.Context, userID string, from, to, now time.Time) (*types.AnalyticsData, error) {
	entries, err := e.gateway.EntriesForRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetching entries for %s: %w", userID, err)
	}

	e.logger.Debug("Computing analytics",
		zap.String("userId", userID),
		zap.Int("entries", len(entries)),
	)

	consistency := e.consistency.Analyze(entries, now)
	patterns := e.emotion.Analyze(entries)
	trends := e.trend.Analyze(entries)
	insights := e.insights.Generate(consistency, patterns, trends, now)

	return &types.AnalyticsData{
		UserID:            userID,
		StartDate:         from,
		EndDate:           to,
		Consistency:       consistency,
		EmotionalPatterns: patterns,
		ProcessTrends:     trends,
		Insights:          insights,
		GeneratedAt:       now,
	}, nil
}
