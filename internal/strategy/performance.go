// Package strategy provides strategy-level analytics: aggregate performance
// calculation, per-strategy insight generation, optimization suggestions, and
// market-condition correlation detection.
package strategy

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// PerformanceCalculator derives aggregate strategy statistics from trades
type PerformanceCalculator struct {
	logger *zap.Logger
}

// NewPerformanceCalculator creates a new performance calculator
func NewPerformanceCalculator(logger *zap.Logger) *PerformanceCalculator {
	return &PerformanceCalculator{logger: logger}
}

// Calculate computes StrategyPerformance from the trade history. Drawdown is
// measured on the cumulative equity curve seeded with initialCapital.
func (pc *PerformanceCalculator) Calculate(trades []*types.Trade, initialCapital decimal.Decimal) *types.StrategyPerformance {
	if len(trades) == 0 {
		return &types.StrategyPerformance{PerformanceTrend: types.TrendStable}
	}

	sorted := make([]*types.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExitTime.Before(sorted[j].ExitTime)
	})

	perf := &types.StrategyPerformance{TotalTrades: len(sorted)}

	var totalWins, totalLosses, totalPnL decimal.Decimal
	var largestWin, largestLoss decimal.Decimal

	for _, trade := range sorted {
		totalPnL = totalPnL.Add(trade.PnL)
		if trade.PnL.GreaterThan(decimal.Zero) {
			perf.WinningTrades++
			totalWins = totalWins.Add(trade.PnL)
			if trade.PnL.GreaterThan(largestWin) {
				largestWin = trade.PnL
			}
		} else if trade.PnL.LessThan(decimal.Zero) {
			perf.LosingTrades++
			totalLosses = totalLosses.Add(trade.PnL.Abs())
			if trade.PnL.Abs().GreaterThan(largestLoss) {
				largestLoss = trade.PnL.Abs()
			}
		}
	}

	perf.LargestWin = largestWin
	perf.LargestLoss = largestLoss
	perf.WinRate = float64(perf.WinningTrades) / float64(perf.TotalTrades) * 100

	if perf.WinningTrades > 0 {
		perf.AvgWin = totalWins.Div(decimal.NewFromInt(int64(perf.WinningTrades))).Round(2)
	}
	if perf.LosingTrades > 0 {
		perf.AvgLoss = totalLosses.Div(decimal.NewFromInt(int64(perf.LosingTrades))).Round(2)
	}

	if !totalLosses.IsZero() {
		pf, _ := totalWins.Div(totalLosses).Float64()
		perf.ProfitFactor = pf
	}

	if !perf.AvgLoss.IsZero() {
		rr, _ := perf.AvgWin.Div(perf.AvgLoss).Float64()
		perf.RiskRewardRatio = rr
	}

	perf.Expectancy = totalPnL.Div(decimal.NewFromInt(int64(perf.TotalTrades))).Round(2)
	perf.MaxDrawdown = maxDrawdownPct(sorted, initialCapital)
	perf.MonthlyReturns = monthlyReturns(sorted)
	perf.PerformanceTrend = performanceTrend(sorted)

	return perf
}

// maxDrawdownPct computes the peak-to-trough percentage decline of the
// cumulative equity curve.
func maxDrawdownPct(trades []*types.Trade, initialCapital decimal.Decimal) float64 {
	equity := initialCapital
	peak := initialCapital
	var maxDD decimal.Decimal

	for _, trade := range trades {
		equity = equity.Add(trade.PnL)
		if equity.GreaterThan(peak) {
			peak = equity
		}
		if !peak.IsZero() {
			dd := peak.Sub(equity).Div(peak)
			if dd.GreaterThan(maxDD) {
				maxDD = dd
			}
		}
	}

	ddFloat, _ := maxDD.Float64()
	return ddFloat * 100
}

// monthlyReturns aggregates P&L per calendar month of exit, ascending
func monthlyReturns(trades []*types.Trade) []types.MonthlyReturn {
	byMonth := make(map[string]decimal.Decimal)
	var order []string

	for _, trade := range trades {
		month := trade.ExitTime.UTC().Format("2006-01")
		if _, ok := byMonth[month]; !ok {
			order = append(order, month)
		}
		byMonth[month] = byMonth[month].Add(trade.PnL)
	}
	sort.Strings(order)

	returns := make([]types.MonthlyReturn, 0, len(order))
	for _, month := range order {
		returns = append(returns, types.MonthlyReturn{Month: month, PnL: byMonth[month]})
	}
	return returns
}

// performanceTrend compares the win rate of the second half of the trade
// history against the first, with a 5-point margin.
func performanceTrend(trades []*types.Trade) types.TrendDirection {
	if len(trades) < 10 {
		return types.TrendStable
	}

	mid := len(trades) / 2
	first := winRatePct(trades[:mid])
	second := winRatePct(trades[mid:])

	switch {
	case second-first > 5:
		return types.TrendImproving
	case first-second > 5:
		return types.TrendDeclining
	default:
		return types.TrendStable
	}
}

// winRatePct is the percentage of trades with positive P&L
func winRatePct(trades []*types.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for _, trade := range trades {
		if trade.PnL.GreaterThan(decimal.Zero) {
			wins++
		}
	}
	return float64(wins) / float64(len(trades)) * 100
}
