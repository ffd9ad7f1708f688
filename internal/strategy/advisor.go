package strategy

import (
	"fmt"
	"math"
	"sort"

	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// Advisor generates concrete, rule-based optimization suggestions for a
// strategy, ranked by expected improvement.
type Advisor struct {
	logger *zap.Logger
	config types.AnalyticsConfig
}

// NewAdvisor creates a new optimization advisor
func NewAdvisor(logger *zap.Logger, config types.AnalyticsConfig) *Advisor {
	return &Advisor{logger: logger, config: config}
}

// Suggest evaluates every optimization rule against the strategy's aggregate
// performance. Suggestions below the confidence threshold are dropped; the
// rest are sorted by expected improvement descending.
func (a *Advisor) Suggest(strat *types.ProfessionalStrategy) []types.OptimizationSuggestion {
	suggestions := []types.OptimizationSuggestion{}

	perf := strat.Performance
	if perf != nil {
		if perf.MaxDrawdown > 15 {
			reducedRisk := math.Max(1, strat.RiskPerTrade*0.7)
			suggestions = append(suggestions, types.OptimizationSuggestion{
				Category:                 "Risk Sizing",
				Suggestion:               fmt.Sprintf("Reduce per-trade risk from %.1f%% to %.1f%% to pull drawdowns back under 15%%.", strat.RiskPerTrade, reducedRisk),
				ExpectedImprovement:      25,
				Confidence:               85,
				ImplementationDifficulty: "Easy",
				RequiredData:             []string{"position sizes", "equity curve"},
			})
		}

		if perf.RiskRewardRatio < 1.5 {
			suggestions = append(suggestions, types.OptimizationSuggestion{
				Category:                 "Exit Rules",
				Suggestion:               "Add trailing stops or partial profit-taking to lift the average winner relative to the average loser.",
				ExpectedImprovement:      20,
				Confidence:               75,
				ImplementationDifficulty: "Medium",
				RequiredData:             []string{"exit prices", "max favorable excursion"},
			})
		}

		if perf.WinRate < 45 && perf.ProfitFactor > 1.5 {
			suggestions = append(suggestions, types.OptimizationSuggestion{
				Category:                 "Exit Rules",
				Suggestion:               "Low win rate with a healthy profit factor means winners carry this strategy. Use trailing stops to let them run further.",
				ExpectedImprovement:      15,
				Confidence:               75,
				ImplementationDifficulty: "Medium",
				RequiredData:             []string{"trade exits", "post-exit price paths"},
			})
		}

		if perf.WinRate > 65 && perf.MaxDrawdown < 10 {
			suggestions = append(suggestions, types.OptimizationSuggestion{
				Category:                 "Position Sizing",
				Suggestion:               "High win rate with shallow drawdowns supports Kelly-criterion-style sizing to compound faster.",
				ExpectedImprovement:      30,
				Confidence:               80,
				ImplementationDifficulty: "Hard",
				RequiredData:             []string{"full trade distribution", "capital base"},
			})
		}
	}

	// Baseline suggestion, always applicable
	suggestions = append(suggestions, types.OptimizationSuggestion{
		Category:                 "Entry Filters",
		Suggestion:               "Require volume confirmation on entry signals to filter low-conviction setups.",
		ExpectedImprovement:      10,
		Confidence:               70,
		ImplementationDifficulty: "Easy",
		RequiredData:             []string{"volume at entry"},
	})

	kept := suggestions[:0]
	for _, s := range suggestions {
		if s.Confidence >= a.config.ConfidenceThreshold {
			kept = append(kept, s)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].ExpectedImprovement > kept[j].ExpectedImprovement
	})

	return kept
}
