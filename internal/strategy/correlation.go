package strategy

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// CorrelationDetector computes correlation and significance between
// externally supplied market conditions and a strategy's daily performance.
// It never fetches market data itself; the series is always injected.
type CorrelationDetector struct {
	logger *zap.Logger
	config types.AnalyticsConfig
}

// NewCorrelationDetector creates a new market correlation detector
func NewCorrelationDetector(logger *zap.Logger, config types.AnalyticsConfig) *CorrelationDetector {
	return &CorrelationDetector{logger: logger, config: config}
}

// Detect correlates each market condition in the series against the
// strategy's daily P&L on days where both are observed. Only conditions
// whose absolute correlation clears the configured threshold are returned,
// strongest first.
func (cd *CorrelationDetector) Detect(strategyID string, trades []*types.Trade, series []types.MarketConditionPoint) []types.MarketCorrelation {
	dailyPnL := make(map[time.Time]float64)
	for _, trade := range trades {
		if trade.StrategyID != strategyID {
			continue
		}
		day := utcDate(trade.ExitTime)
		pnl, _ := trade.PnL.Float64()
		dailyPnL[day] += pnl
	}

	type sample struct {
		intensities []float64
		pnls        []float64
	}
	byCondition := make(map[string]*sample)
	var order []string

	for _, point := range series {
		pnl, traded := dailyPnL[utcDate(point.Date)]
		if !traded {
			continue
		}
		s, ok := byCondition[point.Condition]
		if !ok {
			s = &sample{}
			byCondition[point.Condition] = s
			order = append(order, point.Condition)
		}
		s.intensities = append(s.intensities, point.Intensity)
		s.pnls = append(s.pnls, pnl)
	}
	sort.Strings(order)

	correlations := []types.MarketCorrelation{}
	for _, condition := range order {
		s := byCondition[condition]
		r := correlate(s.intensities, s.pnls)
		if math.Abs(r) < cd.config.CorrelationThreshold {
			continue
		}
		correlations = append(correlations, types.MarketCorrelation{
			Condition:       condition,
			Correlation:     r,
			Significance:    significance(len(s.pnls)),
			Description:     describeCorrelation(condition, r),
			Recommendations: correlationRecommendations(condition, r),
		})
	}

	sort.SliceStable(correlations, func(i, j int) bool {
		return math.Abs(correlations[i].Correlation) > math.Abs(correlations[j].Correlation)
	})

	return correlations
}

// correlate is Pearson correlation with a 0 default on zero denominators
func correlate(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return 0
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
		sumY2 += ys[i] * ys[i]
	}

	fn := float64(n)
	denom := math.Sqrt((fn*sumX2 - sumX*sumX) * (fn*sumY2 - sumY*sumY))
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// significance grows with sample size, saturating at 30 observed days
func significance(n int) float64 {
	return math.Min(0.99, float64(n)/30)
}

func describeCorrelation(condition string, r float64) string {
	direction := "improves"
	if r < 0 {
		direction = "deteriorates"
	}
	return fmt.Sprintf("Performance %s as %s conditions strengthen (r=%.2f).", direction, condition, r)
}

func correlationRecommendations(condition string, r float64) []string {
	if r > 0 {
		return []string{
			fmt.Sprintf("Favor this strategy on %s days.", condition),
			fmt.Sprintf("Consider sizing up modestly when %s conditions are strong.", condition),
		}
	}
	return []string{
		fmt.Sprintf("Reduce exposure or stand aside on %s days.", condition),
		fmt.Sprintf("Review losing trades taken during %s conditions for avoidable entries.", condition),
	}
}

// utcDate truncates a timestamp to its UTC calendar date
func utcDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
