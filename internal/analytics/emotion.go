package analytics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// moodIntensity is the fixed emotion intensity lookup used for the
// mood/performance correlation. Absent moods score 0.
var moodIntensity = map[types.MoodLabel]float64{
	types.MoodExcited:      5,
	types.MoodConfident:    4,
	types.MoodCalm:         3,
	types.MoodNeutral:      2,
	types.MoodNervous:      4,
	types.MoodFrustrated:   5,
	types.MoodSatisfied:    4,
	types.MoodDisappointed: 4,
}

// EmotionalCorrelationAnalyzer groups journal entries by reported mood and
// computes correlation strength and trend between mood and process
// performance.
type EmotionalCorrelationAnalyzer struct {
	logger *zap.Logger
}

// NewEmotionalCorrelationAnalyzer creates a new emotional correlation analyzer
func NewEmotionalCorrelationAnalyzer(logger *zap.Logger) *EmotionalCorrelationAnalyzer {
	return &EmotionalCorrelationAnalyzer{logger: logger}
}

// moodObservation is one entry's contribution to a mood group
type moodObservation struct {
	processScore float64
	hasScore     bool
	intensity    float64
	pnl          decimal.Decimal
}

// Analyze groups entries by mood label and derives one EmotionalPattern per
// observed label, sorted by correlation strength descending. Entries without
// an emotional state are skipped; an entry contributes to both its pre-market
// and post-market mood groups when they differ.
func (ea *EmotionalCorrelationAnalyzer) Analyze(entries []*types.JournalEntry) []types.EmotionalPattern {
	groups := make(map[types.MoodLabel][]moodObservation)
	order := make([]types.MoodLabel, 0)

	sorted := make([]*types.JournalEntry, 0, len(entries))
	for _, entry := range entries {
		if entry != nil && entry.EmotionalState != nil {
			sorted = append(sorted, entry)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for _, entry := range sorted {
		obs := moodObservation{
			intensity: entryIntensity(entry.EmotionalState),
			pnl:       entry.DailyPnL,
		}
		if entry.ProcessMetrics != nil {
			obs.processScore = entry.ProcessMetrics.ProcessScore
			obs.hasScore = true
		}

		for _, mood := range entryMoods(entry.EmotionalState) {
			if _, ok := groups[mood]; !ok {
				order = append(order, mood)
			}
			groups[mood] = append(groups[mood], obs)
		}
	}

	patterns := make([]types.EmotionalPattern, 0, len(order))
	for _, mood := range order {
		patterns = append(patterns, ea.buildPattern(mood, groups[mood]))
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].CorrelationStrength > patterns[j].CorrelationStrength
	})

	return patterns
}

// buildPattern derives the aggregate pattern for one mood group
func (ea *EmotionalCorrelationAnalyzer) buildPattern(mood types.MoodLabel, group []moodObservation) types.EmotionalPattern {
	pattern := types.EmotionalPattern{
		Mood:      mood,
		Frequency: len(group),
	}

	totalPnL := decimal.Zero
	scores := make([]float64, 0, len(group))
	intensities := make([]float64, 0, len(group))

	for _, obs := range group {
		totalPnL = totalPnL.Add(obs.pnl)
		if obs.hasScore {
			scores = append(scores, obs.processScore)
			intensities = append(intensities, obs.intensity)
		}
	}

	if len(group) > 0 {
		pattern.AveragePnL = totalPnL.Div(decimal.NewFromInt(int64(len(group)))).Round(2)
	}
	pattern.AverageProcessScore = mean(scores)

	r := pearson(scores, intensities)
	if r < 0 {
		r = -r
	}
	pattern.CorrelationStrength = r

	pattern.Trend = scoreTrend(scores)
	pattern.Recommendations = moodRecommendations(mood, pattern.CorrelationStrength, pattern.Trend)

	return pattern
}

// entryMoods returns the distinct mood labels an entry reports
func entryMoods(state *types.EmotionalState) []types.MoodLabel {
	moods := make([]types.MoodLabel, 0, 2)
	if state.PreMarketMood != "" {
		moods = append(moods, state.PreMarketMood)
	}
	if state.PostMarketMood != "" && state.PostMarketMood != state.PreMarketMood {
		moods = append(moods, state.PostMarketMood)
	}
	return moods
}

// entryIntensity is the mean intensity of an entry's reported moods
func entryIntensity(state *types.EmotionalState) float64 {
	var sum float64
	var count int
	if state.PreMarketMood != "" {
		sum += moodIntensity[state.PreMarketMood]
		count++
	}
	if state.PostMarketMood != "" {
		sum += moodIntensity[state.PostMarketMood]
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// scoreTrend splits the chronological score sequence in half and compares the
// half means. Groups smaller than 4 are always stable.
func scoreTrend(scores []float64) types.TrendDirection {
	if len(scores) < 4 {
		return types.TrendStable
	}

	mid := len(scores) / 2
	firstMean := mean(scores[:mid])
	secondMean := mean(scores[mid:])

	switch {
	case secondMean-firstMean > 0.2:
		return types.TrendImproving
	case firstMean-secondMean > 0.2:
		return types.TrendDeclining
	default:
		return types.TrendStable
	}
}

// moodRecommendations builds the rule-based recommendation strings for a mood
func moodRecommendations(mood types.MoodLabel, strength float64, trend types.TrendDirection) []string {
	recs := []string{}

	if strength > 0.3 {
		if mood == types.MoodCalm || mood == types.MoodConfident {
			recs = append(recs, fmt.Sprintf("Your %s state correlates strongly with disciplined execution. Build pre-market routines that get you there consistently.", mood))
		} else {
			recs = append(recs, fmt.Sprintf("Trading while %s strongly affects your process quality. Consider sitting out or reducing size when you notice this state.", mood))
		}
	}

	switch trend {
	case types.TrendDeclining:
		recs = append(recs, fmt.Sprintf("Your process scores while %s have been slipping. Review recent sessions in this state for recurring mistakes.", mood))
	case types.TrendImproving:
		recs = append(recs, fmt.Sprintf("Your handling of %s days is improving. Keep applying whatever changed recently.", mood))
	}

	return recs
}
