package strategy_test

import (
	"testing"

	"github.com/tradevault/journal-backend/internal/strategy"
	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

func newAdvisor() *strategy.Advisor {
	return strategy.NewAdvisor(zap.NewNop(), types.DefaultAnalyticsConfig())
}

func TestSuggestWithoutPerformance(t *testing.T) {
	strat := &types.ProfessionalStrategy{ID: "s1", Name: "London breakout"}

	suggestions := newAdvisor().Suggest(strat)

	if len(suggestions) != 1 {
		t.Fatalf("Expected only the baseline suggestion, got %d", len(suggestions))
	}
	if suggestions[0].Category != "Entry Filters" {
		t.Errorf("Expected baseline entry-filter suggestion, got %s", suggestions[0].Category)
	}
	if suggestions[0].Confidence != 70 {
		t.Errorf("Expected baseline confidence 70, got %.0f", suggestions[0].Confidence)
	}
}

func TestSuggestHighDrawdown(t *testing.T) {
	strat := &types.ProfessionalStrategy{
		ID:           "s1",
		Name:         "London breakout",
		RiskPerTrade: 2,
		Performance: &types.StrategyPerformance{
			WinRate:         50,
			ProfitFactor:    1.3,
			RiskRewardRatio: 1.0,
			MaxDrawdown:     20,
		},
	}

	suggestions := newAdvisor().Suggest(strat)

	if len(suggestions) != 3 {
		t.Fatalf("Expected 3 suggestions, got %d", len(suggestions))
	}

	// Sorted by expected improvement descending
	wantCategories := []string{"Risk Sizing", "Exit Rules", "Entry Filters"}
	wantImprovements := []float64{25, 20, 10}
	for i, s := range suggestions {
		if s.Category != wantCategories[i] {
			t.Errorf("Position %d: expected category %s, got %s", i, wantCategories[i], s.Category)
		}
		if s.ExpectedImprovement != wantImprovements[i] {
			t.Errorf("Position %d: expected improvement %.0f, got %.0f", i, wantImprovements[i], s.ExpectedImprovement)
		}
	}
}

func TestSuggestKellySizing(t *testing.T) {
	strat := &types.ProfessionalStrategy{
		ID:           "s1",
		Name:         "London breakout",
		RiskPerTrade: 1,
		Performance: &types.StrategyPerformance{
			WinRate:         70,
			ProfitFactor:    2.2,
			RiskRewardRatio: 2.0,
			MaxDrawdown:     5,
		},
	}

	suggestions := newAdvisor().Suggest(strat)

	if len(suggestions) != 2 {
		t.Fatalf("Expected 2 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].Category != "Position Sizing" || suggestions[0].ExpectedImprovement != 30 {
		t.Errorf("Expected Kelly sizing suggestion first, got %+v", suggestions[0])
	}
}

func TestSuggestConfidenceFilter(t *testing.T) {
	config := types.DefaultAnalyticsConfig()
	config.ConfidenceThreshold = 80

	strat := &types.ProfessionalStrategy{
		ID:           "s1",
		Name:         "London breakout",
		RiskPerTrade: 2,
		Performance: &types.StrategyPerformance{
			WinRate:         70,
			ProfitFactor:    2.0,
			RiskRewardRatio: 1.2,
			MaxDrawdown:     20,
		},
	}

	suggestions := strategy.NewAdvisor(zap.NewNop(), config).Suggest(strat)

	for _, s := range suggestions {
		if s.Confidence < 80 {
			t.Errorf("Expected only suggestions at confidence 80+, got %s at %.0f", s.Category, s.Confidence)
		}
	}
	if len(suggestions) != 1 {
		t.Fatalf("Expected only the drawdown suggestion to survive, got %d", len(suggestions))
	}
	if suggestions[0].Category != "Risk Sizing" {
		t.Errorf("Expected the risk-sizing suggestion, got %s", suggestions[0].Category)
	}
}
