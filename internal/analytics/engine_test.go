package analytics_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tradevault/journal-backend/internal/analytics"
	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

type stubGateway struct {
	entries []*types.JournalEntry
	err     error
}

func (g *stubGateway) EntriesForRange(ctx context.Context, userID string, from, to time.Time) ([]*types.JournalEntry, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.entries, nil
}

func TestEngineFetchErrorPropagates(t *testing.T) {
	gateway := &stubGateway{err: errors.New("gateway unavailable")}
	engine := analytics.NewEngine(zap.NewNop(), gateway, types.DefaultAnalyticsConfig())

	_, err := engine.GetAnalyticsData(context.Background(), "user-1", testToday.AddDate(0, -1, 0), testToday)

	if err == nil {
		t.Fatal("Expected fetch error to propagate")
	}
	if !errors.Is(err, gateway.err) {
		t.Errorf("Expected wrapped gateway error, got %v", err)
	}
}

func TestEngineAssemblesAllSections(t *testing.T) {
	entries := dailyEntries(testToday, 10)
	for i, entry := range entries {
		entry.EmotionalState = &types.EmotionalState{PreMarketMood: types.MoodCalm}
		entry.ProcessMetrics = &types.ProcessMetrics{ProcessScore: float64(50 + i)}
	}

	engine := analytics.NewEngine(zap.NewNop(), &stubGateway{entries: entries}, types.DefaultAnalyticsConfig())

	data, err := engine.GetAnalyticsDataAt(context.Background(), "user-1",
		testToday.AddDate(0, -1, 0), testToday, testToday)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if data.Consistency == nil || data.Consistency.CurrentStreak != 10 {
		t.Errorf("Unexpected consistency result: %+v", data.Consistency)
	}
	if len(data.EmotionalPatterns) == 0 {
		t.Error("Expected emotional patterns")
	}
	if len(data.ProcessTrends) == 0 {
		t.Error("Expected process trends")
	}
	if len(data.Insights) == 0 {
		t.Error("Expected insights")
	}
	if data.UserID != "user-1" {
		t.Errorf("Expected userId propagated, got %q", data.UserID)
	}
}

func TestEngineDeterministic(t *testing.T) {
	entries := dailyEntries(testToday, 14)
	for i, entry := range entries {
		entry.EmotionalState = &types.EmotionalState{
			PreMarketMood:  types.MoodConfident,
			PostMarketMood: types.MoodSatisfied,
		}
		entry.ProcessMetrics = &types.ProcessMetrics{
			PlanAdherence: 1 + i%5,
			ProcessScore:  float64(40 + i*3),
		}
	}

	engine := analytics.NewEngine(zap.NewNop(), &stubGateway{entries: entries}, types.DefaultAnalyticsConfig())

	from := testToday.AddDate(0, -1, 0)
	first, err := engine.GetAnalyticsDataAt(context.Background(), "user-1", from, testToday, testToday)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := engine.GetAnalyticsDataAt(context.Background(), "user-1", from, testToday, testToday)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Insight IDs are freshly generated per call; everything else must match
	if !reflect.DeepEqual(first.Consistency, second.Consistency) {
		t.Error("Consistency metrics differ between identical runs")
	}
	if !reflect.DeepEqual(first.EmotionalPatterns, second.EmotionalPatterns) {
		t.Error("Emotional patterns differ between identical runs")
	}
	if !reflect.DeepEqual(first.ProcessTrends, second.ProcessTrends) {
		t.Error("Process trends differ between identical runs")
	}
	if len(first.Insights) != len(second.Insights) {
		t.Error("Insight counts differ between identical runs")
	}
}
