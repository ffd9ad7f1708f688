// Package patterns mines trade history for recurring performance patterns
// across strategies: time of day, day of week, timeframe, and asset class.
package patterns

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// Bucket thresholds per pattern type
const (
	minTradesPerHour      = 5
	minTradesPerWeekday   = 3
	minTradesPerTimeframe = 10
	minTradesPerAsset     = 8
)

// Miner mines cross-strategy performance patterns from trade history
type Miner struct {
	logger *zap.Logger
	config types.AnalyticsConfig
}

// NewMiner creates a new pattern miner
func NewMiner(logger *zap.Logger, config types.AnalyticsConfig) *Miner {
	return &Miner{logger: logger, config: config}
}

// bucketStats aggregates the trades in one bucket
type bucketStats struct {
	label   string
	trades  int
	wins    int
	pnl     decimal.Decimal
}

func (b *bucketStats) add(t *types.Trade) {
	b.trades++
	if t.PnL.GreaterThan(decimal.Zero) {
		b.wins++
	}
	b.pnl = b.pnl.Add(t.PnL)
}

func (b *bucketStats) winRate() float64 {
	if b.trades == 0 {
		return 0
	}
	return float64(b.wins) / float64(b.trades) * 100
}

func (b *bucketStats) avgPnL() decimal.Decimal {
	if b.trades == 0 {
		return decimal.Zero
	}
	return b.pnl.Div(decimal.NewFromInt(int64(b.trades))).Round(2)
}

func (b *bucketStats) sample() types.PatternSample {
	return types.PatternSample{
		Bucket:     b.label,
		SampleSize: b.trades,
		WinRate:    b.winRate(),
		AvgPnL:     b.avgPnL(),
	}
}

// IdentifyPatterns mines the combined trade history of the given strategies.
// Returns nothing when the total trade count is below the configured minimum.
func (m *Miner) IdentifyPatterns(strategies []*types.ProfessionalStrategy, trades []*types.Trade) []types.PerformancePattern {
	if len(trades) < m.config.MinimumTradesForPatterns {
		m.logger.Debug("Not enough trades for pattern mining",
			zap.Int("trades", len(trades)),
			zap.Int("required", m.config.MinimumTradesForPatterns),
		)
		return []types.PerformancePattern{}
	}

	byID := make(map[string]*types.ProfessionalStrategy, len(strategies))
	for _, s := range strategies {
		byID[s.ID] = s
	}

	patterns := []types.PerformancePattern{}
	patterns = append(patterns, m.timeOfDayPatterns(trades)...)
	patterns = append(patterns, m.dayOfWeekPatterns(trades)...)
	patterns = append(patterns, m.timeframePatterns(trades, byID)...)
	patterns = append(patterns, m.assetClassPatterns(trades, byID)...)

	return m.filterSignificant(patterns)
}

// timeOfDayPatterns buckets trades by UTC entry hour
func (m *Miner) timeOfDayPatterns(trades []*types.Trade) []types.PerformancePattern {
	buckets := groupTrades(trades, func(t *types.Trade) (string, bool) {
		return fmt.Sprintf("%02d:00-%02d:00", t.EntryTime.UTC().Hour(), t.EntryTime.UTC().Hour()+1), true
	})

	patterns := []types.PerformancePattern{}
	for _, b := range buckets {
		if b.trades < minTradesPerHour {
			continue
		}
		winRate := b.winRate()
		if winRate > 70 || b.avgPnL().GreaterThan(decimal.NewFromInt(50)) {
			patterns = append(patterns, types.PerformancePattern{
				Type:           types.PatternTimeOfDay,
				Pattern:        fmt.Sprintf("Trades entered between %s win %.0f%% of the time", b.label, winRate),
				Confidence:     math.Min(95, 50+float64(b.trades)*2),
				Impact:         winRate - 50,
				SupportingData: b.sample(),
			})
		}
	}
	return patterns
}

// dayOfWeekPatterns buckets trades by UTC entry weekday
func (m *Miner) dayOfWeekPatterns(trades []*types.Trade) []types.PerformancePattern {
	buckets := groupTrades(trades, func(t *types.Trade) (string, bool) {
		return t.EntryTime.UTC().Weekday().String(), true
	})

	patterns := []types.PerformancePattern{}
	for _, b := range buckets {
		if b.trades < minTradesPerWeekday {
			continue
		}
		winRate := b.winRate()
		if winRate > 65 || b.avgPnL().GreaterThan(decimal.NewFromInt(40)) {
			patterns = append(patterns, types.PerformancePattern{
				Type:           types.PatternDayOfWeek,
				Pattern:        fmt.Sprintf("%s trades win %.0f%% of the time", b.label, winRate),
				Confidence:     math.Min(90, 40+float64(b.trades)*3),
				Impact:         winRate - 50,
				SupportingData: b.sample(),
			})
		}
	}
	return patterns
}

// timeframePatterns buckets trades by the owning strategy's primary timeframe
func (m *Miner) timeframePatterns(trades []*types.Trade, byID map[string]*types.ProfessionalStrategy) []types.PerformancePattern {
	buckets := groupTrades(trades, func(t *types.Trade) (string, bool) {
		s, ok := byID[t.StrategyID]
		if !ok || s.PrimaryTimeframe == "" {
			return "", false
		}
		return string(s.PrimaryTimeframe), true
	})

	patterns := []types.PerformancePattern{}
	for _, b := range buckets {
		if b.trades < minTradesPerTimeframe {
			continue
		}
		winRate := b.winRate()
		if winRate > 60 {
			patterns = append(patterns, types.PerformancePattern{
				Type:           types.PatternTimeframe,
				Pattern:        fmt.Sprintf("The %s timeframe wins %.0f%% of the time", b.label, winRate),
				Confidence:     math.Min(85, 30+float64(b.trades)),
				Impact:         winRate - 50,
				SupportingData: b.sample(),
			})
		}
	}
	return patterns
}

// assetClassPatterns buckets trades by the owning strategy's declared asset
// classes; a trade counts toward each class its strategy declares.
func (m *Miner) assetClassPatterns(trades []*types.Trade, byID map[string]*types.ProfessionalStrategy) []types.PerformancePattern {
	buckets := make(map[string]*bucketStats)
	var order []string

	for _, t := range trades {
		s, ok := byID[t.StrategyID]
		if !ok {
			continue
		}
		for _, class := range s.AssetClasses {
			b, ok := buckets[class]
			if !ok {
				b = &bucketStats{label: class}
				buckets[class] = b
				order = append(order, class)
			}
			b.add(t)
		}
	}

	patterns := []types.PerformancePattern{}
	for _, label := range order {
		b := buckets[label]
		if b.trades < minTradesPerAsset {
			continue
		}
		winRate := b.winRate()
		if winRate > 65 {
			patterns = append(patterns, types.PerformancePattern{
				Type:           types.PatternAssetClass,
				Pattern:        fmt.Sprintf("%s trades win %.0f%% of the time", b.label, winRate),
				Confidence:     math.Min(80, 25+float64(b.trades)),
				Impact:         winRate - 50,
				SupportingData: b.sample(),
			})
		}
	}
	return patterns
}

// filterSignificant keeps patterns whose absolute impact clears the
// configured significance threshold (0-1, scaled to percentage points).
func (m *Miner) filterSignificant(patterns []types.PerformancePattern) []types.PerformancePattern {
	minImpact := m.config.PatternSignificanceThreshold * 100

	kept := []types.PerformancePattern{}
	for _, p := range patterns {
		if math.Abs(p.Impact) >= minImpact {
			kept = append(kept, p)
		}
	}
	return kept
}

// groupTrades buckets trades by an arbitrary key, preserving first-seen order
func groupTrades(trades []*types.Trade, key func(*types.Trade) (string, bool)) []*bucketStats {
	buckets := make(map[string]*bucketStats)
	var order []string

	for _, t := range trades {
		label, ok := key(t)
		if !ok {
			continue
		}
		b, found := buckets[label]
		if !found {
			b = &bucketStats{label: label}
			buckets[label] = b
			order = append(order, label)
		}
		b.add(t)
	}

	result := make([]*bucketStats, 0, len(order))
	for _, label := range order {
		result = append(result, buckets[label])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].label < result[j].label
	})
	return result
}
