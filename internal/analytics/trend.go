package analytics

import (
	"sort"

	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// trackedMetrics are the process metrics analyzed for trends, in output order
var trackedMetrics = []string{
	"planAdherence",
	"riskManagement",
	"entryTiming",
	"exitTiming",
	"overallDiscipline",
	"processScore",
}

// ProcessTrendAnalyzer computes windowed current/previous values and trend
// direction per tracked process metric.
type ProcessTrendAnalyzer struct {
	logger *zap.Logger
}

// NewProcessTrendAnalyzer creates a new process trend analyzer
func NewProcessTrendAnalyzer(logger *zap.Logger) *ProcessTrendAnalyzer {
	return &ProcessTrendAnalyzer{logger: logger}
}

// Analyze derives one ProcessTrend per tracked metric from the entries that
// carry process metrics. Metrics with no data are skipped.
func (ta *ProcessTrendAnalyzer) Analyze(entries []*types.JournalEntry) []types.ProcessTrend {
	scored := make([]*types.JournalEntry, 0, len(entries))
	for _, entry := range entries {
		if entry != nil && entry.ProcessMetrics != nil {
			scored = append(scored, entry)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Date.Before(scored[j].Date)
	})

	trends := make([]types.ProcessTrend, 0, len(trackedMetrics))
	for _, metric := range trackedMetrics {
		values := metricSeries(scored, metric)
		if len(values) == 0 {
			continue
		}
		trends = append(trends, buildTrend(metric, values))
	}

	return trends
}

// buildTrend computes the windowed trend for one metric's value series
func buildTrend(metric string, values []float64) types.ProcessTrend {
	recent := tail(values, 7)
	previous := tail(values[:len(values)-len(recent)], 7)

	current := recent[len(recent)-1]
	prev := current
	if len(previous) > 0 {
		prev = previous[len(previous)-1]
	}

	var changePct float64
	if prev != 0 && len(previous) > 0 {
		changePct = (current - prev) / prev * 100
	}

	trend := types.TrendStable
	if changePct > 5 {
		trend = types.TrendImproving
	} else if changePct < -5 {
		trend = types.TrendDeclining
	}

	return types.ProcessTrend{
		Metric:           metric,
		CurrentValue:     current,
		PreviousValue:    prev,
		Trend:            trend,
		ChangePercentage: changePct,
		WeeklyAverage:    mean(recent),
		MonthlyAverage:   mean(tail(values, 30)),
	}
}

// metricSeries extracts one metric's chronological value series
func metricSeries(entries []*types.JournalEntry, metric string) []float64 {
	values := make([]float64, 0, len(entries))
	for _, entry := range entries {
		pm := entry.ProcessMetrics
		switch metric {
		case "planAdherence":
			values = append(values, float64(pm.PlanAdherence))
		case "riskManagement":
			values = append(values, float64(pm.RiskManagement))
		case "entryTiming":
			values = append(values, float64(pm.EntryTiming))
		case "exitTiming":
			values = append(values, float64(pm.ExitTiming))
		case "overallDiscipline":
			values = append(values, float64(pm.OverallDiscipline))
		case "processScore":
			values = append(values, pm.ProcessScore)
		}
	}
	return values
}

// tail returns the last n elements of values, or all of them if fewer
func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
