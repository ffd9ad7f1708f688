package analytics_test

import (
	"testing"
	"time"

	"github.com/tradevault/journal-backend/internal/analytics"
	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

func TestStreakInsight(t *testing.T) {
	generator := analytics.NewInsightGenerator(zap.NewNop())

	consistency := &types.ConsistencyMetrics{CurrentStreak: 8, CompletionRate: 80}

	insights := generator.Generate(consistency, nil, nil, testToday)

	if len(insights) != 1 {
		t.Fatalf("Expected 1 insight, got %d", len(insights))
	}
	insight := insights[0]
	if insight.Type != types.InsightConsistency || insight.Priority != types.PriorityHigh {
		t.Errorf("Unexpected insight: %+v", insight)
	}
	if insight.Confidence != 0.95 {
		t.Errorf("Expected confidence 0.95, got %f", insight.Confidence)
	}
}

func TestStreakAndLowCompletionBothFire(t *testing.T) {
	generator := analytics.NewInsightGenerator(zap.NewNop())

	consistency := &types.ConsistencyMetrics{CurrentStreak: 7, CompletionRate: 30}

	insights := generator.Generate(consistency, nil, nil, testToday)

	if len(insights) != 2 {
		t.Fatalf("Expected both consistency rules to fire, got %d insights", len(insights))
	}
}

func TestEmotionalInsightRequiresStrongCorrelation(t *testing.T) {
	generator := analytics.NewInsightGenerator(zap.NewNop())

	weak := []types.EmotionalPattern{{Mood: types.MoodCalm, CorrelationStrength: 0.4}}
	if insights := generator.Generate(nil, weak, nil, testToday); len(insights) != 0 {
		t.Errorf("Expected no insight at correlation 0.4, got %d", len(insights))
	}

	strong := []types.EmotionalPattern{{
		Mood:                types.MoodNervous,
		CorrelationStrength: 0.6,
		Recommendations:     []string{"Reduce size when nervous."},
	}}
	insights := generator.Generate(nil, strong, nil, testToday)
	if len(insights) != 1 {
		t.Fatalf("Expected 1 insight at correlation 0.6, got %d", len(insights))
	}
	if insights[0].Recommendation != "Reduce size when nervous." {
		t.Errorf("Expected the pattern's first recommendation, got %q", insights[0].Recommendation)
	}
}

func TestProcessTrendInsightsCombined(t *testing.T) {
	generator := analytics.NewInsightGenerator(zap.NewNop())

	trends := []types.ProcessTrend{
		{Metric: "planAdherence", Trend: types.TrendImproving, ChangePercentage: 12},
		{Metric: "entryTiming", Trend: types.TrendImproving, ChangePercentage: 8},
		{Metric: "riskManagement", Trend: types.TrendDeclining, ChangePercentage: -10},
		{Metric: "exitTiming", Trend: types.TrendStable, ChangePercentage: 1},
	}

	insights := generator.Generate(nil, nil, trends, testToday)

	if len(insights) != 2 {
		t.Fatalf("Expected one improving and one declining insight, got %d", len(insights))
	}

	// Declining is high priority and sorts first
	if insights[0].Priority != types.PriorityHigh {
		t.Errorf("Expected declining insight first, got %+v", insights[0])
	}
	if len(insights[1].DataPoints) != 2 {
		t.Errorf("Expected 2 data points for the combined improving insight, got %d",
			len(insights[1].DataPoints))
	}
}

func TestInsightPriorityOrdering(t *testing.T) {
	generator := analytics.NewInsightGenerator(zap.NewNop())

	consistency := &types.ConsistencyMetrics{CurrentStreak: 10, CompletionRate: 20}
	patterns := []types.EmotionalPattern{{
		Mood:                types.MoodFrustrated,
		CorrelationStrength: 0.7,
		Recommendations:     []string{"Step away after losses."},
	}}
	trends := []types.ProcessTrend{
		{Metric: "planAdherence", Trend: types.TrendImproving, ChangePercentage: 9},
		{Metric: "riskManagement", Trend: types.TrendDeclining, ChangePercentage: -12},
	}

	insights := generator.Generate(consistency, patterns, trends, testToday)

	if len(insights) != 5 {
		t.Fatalf("Expected 5 insights, got %d", len(insights))
	}

	lastWeight := 4
	for i, insight := range insights {
		weight := insight.Priority.Weight()
		if weight > lastWeight {
			t.Errorf("Insight %d breaks priority ordering: %s after weight %d",
				i, insight.Priority, lastWeight)
		}
		lastWeight = weight
	}

	// Equal-priority ties keep rule-evaluation order: streak rule fires
	// before completion, completion before the declining-trend rule.
	if insights[0].Type != types.InsightConsistency {
		t.Errorf("Expected the streak insight first, got %s", insights[0].Title)
	}
}

func TestNoInputsNoInsights(t *testing.T) {
	generator := analytics.NewInsightGenerator(zap.NewNop())

	insights := generator.Generate(nil, nil, nil, time.Now())

	if len(insights) != 0 {
		t.Errorf("Expected no insights for empty inputs, got %d", len(insights))
	}
}
