package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// Rule confidences are fixed per rule
const (
	confidenceStreak        = 0.95
	confidenceLowCompletion = 0.85
	confidenceEmotional     = 0.8
	confidenceImproving     = 0.75
	confidenceDeclining     = 0.8
)

// InsightGenerator synthesizes analyzer outputs into a prioritized insight
// list via a fixed, order-insensitive rule set.
type InsightGenerator struct {
	logger *zap.Logger
}

// NewInsightGenerator creates a new insight generator
func NewInsightGenerator(logger *zap.Logger) *InsightGenerator {
	return &InsightGenerator{logger: logger}
}

// Generate evaluates every rule independently and returns the insights sorted
// by priority weight descending; ties keep rule-evaluation order.
func (ig *InsightGenerator) Generate(
	consistency *types.ConsistencyMetrics,
	patterns []types.EmotionalPattern,
	trends []types.ProcessTrend,
	now time.Time,
) []types.PersonalizedInsight {
	insights := []types.PersonalizedInsight{}

	if consistency != nil {
		if consistency.CurrentStreak >= 7 {
			insights = append(insights, types.PersonalizedInsight{
				ID:             uuid.New().String(),
				Type:           types.InsightConsistency,
				Priority:       types.PriorityHigh,
				Title:          "Strong journaling streak",
				Description:    fmt.Sprintf("You have journaled %d days in a row.", consistency.CurrentStreak),
				Recommendation: "Keep the streak alive. Consistent review is where the edge compounds.",
				DataPoints:     []float64{float64(consistency.CurrentStreak)},
				Confidence:     confidenceStreak,
				CreatedAt:      now,
			})
		}

		if consistency.CompletionRate < 50 {
			insights = append(insights, types.PersonalizedInsight{
				ID:             uuid.New().String(),
				Type:           types.InsightConsistency,
				Priority:       types.PriorityHigh,
				Title:          "Journaling consistency is low",
				Description:    fmt.Sprintf("You are completing entries on %.1f%% of trading days.", consistency.CompletionRate),
				Recommendation: "Block ten minutes after the close for your journal before anything else.",
				DataPoints:     []float64{consistency.CompletionRate},
				Confidence:     confidenceLowCompletion,
				CreatedAt:      now,
			})
		}
	}

	// Patterns arrive sorted by correlation strength descending
	if len(patterns) > 0 && patterns[0].CorrelationStrength > 0.4 {
		top := patterns[0]
		recommendation := ""
		if len(top.Recommendations) > 0 {
			recommendation = top.Recommendations[0]
		}
		insights = append(insights, types.PersonalizedInsight{
			ID:             uuid.New().String(),
			Type:           types.InsightEmotional,
			Priority:       types.PriorityMedium,
			Title:          fmt.Sprintf("Mood '%s' strongly affects your trading", top.Mood),
			Description:    fmt.Sprintf("Your %s days show a %.0f%% correlation with process quality.", top.Mood, top.CorrelationStrength*100),
			Recommendation: recommendation,
			DataPoints:     []float64{top.CorrelationStrength, top.AverageProcessScore},
			Confidence:     confidenceEmotional,
			CreatedAt:      now,
		})
	}

	improving, declining := splitTrends(trends)

	if len(improving) > 0 {
		insights = append(insights, types.PersonalizedInsight{
			ID:             uuid.New().String(),
			Type:           types.InsightProcess,
			Priority:       types.PriorityMedium,
			Title:          "Process metrics improving",
			Description:    fmt.Sprintf("Improving this week: %s.", strings.Join(metricNames(improving), ", ")),
			Recommendation: "Note what changed in your routine and make it permanent.",
			DataPoints:     changePercentages(improving),
			Confidence:     confidenceImproving,
			CreatedAt:      now,
		})
	}

	if len(declining) > 0 {
		insights = append(insights, types.PersonalizedInsight{
			ID:             uuid.New().String(),
			Type:           types.InsightProcess,
			Priority:       types.PriorityHigh,
			Title:          "Process metrics declining",
			Description:    fmt.Sprintf("Declining this week: %s.", strings.Join(metricNames(declining), ", ")),
			Recommendation: "Review the last few sessions for where discipline slipped.",
			DataPoints:     changePercentages(declining),
			Confidence:     confidenceDeclining,
			CreatedAt:      now,
		})
	}

	sortByPriority(insights)

	return insights
}

// splitTrends partitions trends into improving and declining sets
func splitTrends(trends []types.ProcessTrend) (improving, declining []types.ProcessTrend) {
	for _, t := range trends {
		switch t.Trend {
		case types.TrendImproving:
			improving = append(improving, t)
		case types.TrendDeclining:
			declining = append(declining, t)
		}
	}
	return improving, declining
}

func metricNames(trends []types.ProcessTrend) []string {
	names := make([]string, len(trends))
	for i, t := range trends {
		names[i] = t.Metric
	}
	return names
}

func changePercentages(trends []types.ProcessTrend) []float64 {
	changes := make([]float64, len(trends))
	for i, t := range trends {
		changes[i] = t.ChangePercentage
	}
	return changes
}

// sortByPriority stable-sorts insights by priority weight descending
func sortByPriority(insights []types.PersonalizedInsight) {
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Priority.Weight() > insights[j].Priority.Weight()
	})
}
