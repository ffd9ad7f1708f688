package strategy

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// InsightGenerator is the per-strategy rule engine producing performance,
// timing, market-condition, and risk-management insights.
type InsightGenerator struct {
	logger *zap.Logger
	config types.AnalyticsConfig
}

// NewInsightGenerator creates a new strategy insight generator
func NewInsightGenerator(logger *zap.Logger, config types.AnalyticsConfig) *InsightGenerator {
	return &InsightGenerator{logger: logger, config: config}
}

// Generate runs the full rule set for one strategy. With fewer trades than
// the configured minimum, exactly one informational insight is returned.
func (g *InsightGenerator) Generate(strat *types.ProfessionalStrategy, trades []*types.Trade, now time.Time) []types.PersonalizedInsight {
	if len(trades) < g.config.MinimumTradesForInsights {
		needed := g.config.MinimumTradesForInsights - len(trades)
		return []types.PersonalizedInsight{{
			ID:             uuid.New().String(),
			Type:           types.InsightPerformance,
			Priority:       types.PriorityMedium,
			Title:          "More trades needed for reliable insights",
			Description:    fmt.Sprintf("%s has %d recorded trades; %d more are needed before statistical insights become reliable.", strat.Name, len(trades), needed),
			Recommendation: "Keep logging trades for this strategy. Insights unlock automatically.",
			DataPoints:     []float64{float64(len(trades)), float64(needed)},
			Confidence:     0.95,
			CreatedAt:      now,
		}}
	}

	sorted := make([]*types.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExitTime.Before(sorted[j].ExitTime)
	})

	insights := []types.PersonalizedInsight{}
	insights = append(insights, g.performanceInsights(strat, now)...)
	insights = append(insights, g.timingInsights(sorted, now)...)
	insights = append(insights, g.marketConditionInsights(sorted, now)...)
	insights = append(insights, g.riskInsights(strat, now)...)

	insights = g.filterByConfidence(insights)

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Priority.Weight() > insights[j].Priority.Weight()
	})

	return insights
}

// performanceInsights evaluates the aggregate performance rules
func (g *InsightGenerator) performanceInsights(strat *types.ProfessionalStrategy, now time.Time) []types.PersonalizedInsight {
	perf := strat.Performance
	if perf == nil {
		return nil
	}

	var insights []types.PersonalizedInsight

	add := func(priority types.InsightPriority, title, description, recommendation string, confidence float64, dataPoints ...float64) {
		insights = append(insights, types.PersonalizedInsight{
			ID:             uuid.New().String(),
			Type:           types.InsightPerformance,
			Priority:       priority,
			Title:          title,
			Description:    description,
			Recommendation: recommendation,
			DataPoints:     dataPoints,
			Confidence:     confidence,
			CreatedAt:      now,
		})
	}

	if perf.WinRate > 60 {
		add(types.PriorityHigh,
			"Excellent win rate",
			fmt.Sprintf("%s wins %.1f%% of its trades.", strat.Name, perf.WinRate),
			"This edge supports a modest increase in position size.",
			0.85, perf.WinRate)
	} else if perf.WinRate < 40 {
		add(types.PriorityHigh,
			"Win rate below viable range",
			fmt.Sprintf("%s wins only %.1f%% of its trades.", strat.Name, perf.WinRate),
			"Tighten entry criteria before risking further capital.",
			0.85, perf.WinRate)
	}

	if perf.ProfitFactor >= 2.0 {
		add(types.PriorityHigh,
			"Outstanding profit factor",
			fmt.Sprintf("Profit factor of %.2f marks this as a core strategy.", perf.ProfitFactor),
			"Allocate this strategy a larger share of your trading capital.",
			0.9, perf.ProfitFactor)
	} else if perf.ProfitFactor < 1.2 {
		add(types.PriorityHigh,
			"Profit factor needs work",
			fmt.Sprintf("Profit factor of %.2f barely covers losses.", perf.ProfitFactor),
			"Optimize exits or consider discontinuing this strategy.",
			0.85, perf.ProfitFactor)
	}

	if perf.Expectancy.GreaterThan(decimal.Zero) {
		expectancy, _ := perf.Expectancy.Float64()
		projection := expectancy * 20
		add(types.PriorityMedium,
			"Positive expectancy",
			fmt.Sprintf("Average P&L per trade is %s; at 20 trades a month that projects to %.2f.", perf.Expectancy.StringFixed(2), projection),
			"The math works. Focus on execution consistency.",
			0.75, expectancy, projection)
	}

	switch perf.PerformanceTrend {
	case types.TrendDeclining:
		add(types.PriorityHigh,
			"Performance declining",
			fmt.Sprintf("Recent results for %s are worse than its historical baseline.", strat.Name),
			"Check whether market conditions have shifted away from this strategy's edge.",
			0.8)
	case types.TrendImproving:
		add(types.PriorityMedium,
			"Performance improving",
			fmt.Sprintf("Recent results for %s beat its historical baseline.", strat.Name),
			"Recent adjustments are working. Document what changed.",
			0.75)
	}

	return insights
}

// timingInsights reuses hour and weekday bucketing restricted to this
// strategy's trades. Buckets need at least 3 trades and the resulting
// confidence must clear 70 before an insight is emitted.
func (g *InsightGenerator) timingInsights(trades []*types.Trade, now time.Time) []types.PersonalizedInsight {
	var insights []types.PersonalizedInsight

	hourStats := make(map[int]*tally)
	dayStats := make(map[time.Weekday]*tally)

	for _, t := range trades {
		hour := t.EntryTime.UTC().Hour()
		if hourStats[hour] == nil {
			hourStats[hour] = &tally{}
		}
		hourStats[hour].add(t)

		day := t.EntryTime.UTC().Weekday()
		if dayStats[day] == nil {
			dayStats[day] = &tally{}
		}
		dayStats[day].add(t)
	}

	for hour := 0; hour < 24; hour++ {
		s := hourStats[hour]
		if s == nil || s.trades < 3 {
			continue
		}
		confidence := math.Min(95, 50+float64(s.trades)*2)
		if s.winRate() > 70 && confidence > 70 {
			insights = append(insights, types.PersonalizedInsight{
				ID:             uuid.New().String(),
				Type:           types.InsightPerformance,
				Priority:       types.PriorityMedium,
				Title:          fmt.Sprintf("Strong edge around %02d:00", hour),
				Description:    fmt.Sprintf("Trades entered between %02d:00 and %02d:00 win %.0f%% of the time (%d trades).", hour, hour+1, s.winRate(), s.trades),
				Recommendation: "Concentrate entries in this window when setups allow.",
				DataPoints:     []float64{float64(hour), s.winRate(), float64(s.trades)},
				Confidence:     confidence / 100,
				CreatedAt:      now,
			})
		}
	}

	for day := time.Sunday; day <= time.Saturday; day++ {
		s := dayStats[day]
		if s == nil || s.trades < 3 {
			continue
		}
		confidence := math.Min(90, 40+float64(s.trades)*3)
		if s.winRate() > 65 && confidence > 70 {
			insights = append(insights, types.PersonalizedInsight{
				ID:             uuid.New().String(),
				Type:           types.InsightPerformance,
				Priority:       types.PriorityMedium,
				Title:          fmt.Sprintf("%s is your strongest day", day),
				Description:    fmt.Sprintf("%s trades win %.0f%% of the time (%d trades).", day, s.winRate(), s.trades),
				Recommendation: "Consider sizing up slightly on this day and standing down on your weakest.",
				DataPoints:     []float64{float64(day), s.winRate(), float64(s.trades)},
				Confidence:     confidence / 100,
				CreatedAt:      now,
			})
		}
	}

	return insights
}

// marketConditionInsights compares the most recent 10 trades against the
// overall win rate as a proxy for shifting market fit.
func (g *InsightGenerator) marketConditionInsights(trades []*types.Trade, now time.Time) []types.PersonalizedInsight {
	if len(trades) < 10 {
		return nil
	}

	overall := winRatePct(trades)
	recent := winRatePct(trades[len(trades)-10:])

	if recent <= overall-15 {
		return []types.PersonalizedInsight{{
			ID:             uuid.New().String(),
			Type:           types.InsightPerformance,
			Priority:       types.PriorityHigh,
			Title:          "Recent results lag historical performance",
			Description:    fmt.Sprintf("The last 10 trades won %.0f%% versus %.0f%% overall.", recent, overall),
			Recommendation: "Current market conditions may not suit this strategy. Reduce size until results normalize.",
			DataPoints:     []float64{recent, overall},
			Confidence:     0.75,
			CreatedAt:      now,
		}}
	}

	return nil
}

// riskInsights evaluates drawdown and risk-reward rules
func (g *InsightGenerator) riskInsights(strat *types.ProfessionalStrategy, now time.Time) []types.PersonalizedInsight {
	perf := strat.Performance
	if perf == nil {
		return nil
	}

	var insights []types.PersonalizedInsight

	if perf.MaxDrawdown > 20 {
		insights = append(insights, types.PersonalizedInsight{
			ID:             uuid.New().String(),
			Type:           types.InsightPerformance,
			Priority:       types.PriorityHigh,
			Title:          "Drawdown exceeds comfortable limits",
			Description:    fmt.Sprintf("Maximum drawdown of %.1f%% puts meaningful capital at risk.", perf.MaxDrawdown),
			Recommendation: "Reduce position size or tighten stops to cap drawdowns near 15%.",
			DataPoints:     []float64{perf.MaxDrawdown},
			Confidence:     0.85,
			CreatedAt:      now,
		})
	}

	if perf.RiskRewardRatio < 1.5 && perf.WinRate < 60 {
		insights = append(insights, types.PersonalizedInsight{
			ID:             uuid.New().String(),
			Type:           types.InsightPerformance,
			Priority:       types.PriorityMedium,
			Title:          "Risk-reward profile too thin",
			Description:    fmt.Sprintf("A %.2f risk-reward ratio with a %.0f%% win rate leaves no margin for error.", perf.RiskRewardRatio, perf.WinRate),
			Recommendation: "Widen profit targets or tighten initial stops to push risk-reward above 1.5.",
			DataPoints:     []float64{perf.RiskRewardRatio, perf.WinRate},
			Confidence:     0.8,
			CreatedAt:      now,
		})
	}

	return insights
}

// filterByConfidence drops insights below the configured threshold (0-100)
func (g *InsightGenerator) filterByConfidence(insights []types.PersonalizedInsight) []types.PersonalizedInsight {
	minConfidence := g.config.ConfidenceThreshold / 100

	kept := make([]types.PersonalizedInsight, 0, len(insights))
	for _, insight := range insights {
		if insight.Confidence >= minConfidence {
			kept = append(kept, insight)
		}
	}
	return kept
}

// tally accumulates win/loss counts for one timing bucket
type tally struct {
	trades int
	wins   int
}

func (t *tally) add(trade *types.Trade) {
	t.trades++
	if trade.PnL.GreaterThan(decimal.Zero) {
		t.wins++
	}
}

func (t *tally) winRate() float64 {
	if t.trades == 0 {
		return 0
	}
	return float64(t.wins) / float64(t.trades) * 100
}
