package analytics

import (
	"sort"
	"time"

	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// ConsistencyAnalyzer computes streak and completion-rate statistics over a
// user's completed journal entries.
type ConsistencyAnalyzer struct {
	logger *zap.Logger
}

// NewConsistencyAnalyzer creates a new consistency analyzer
func NewConsistencyAnalyzer(logger *zap.Logger) *ConsistencyAnalyzer {
	return &ConsistencyAnalyzer{logger: logger}
}

// Analyze computes consistency metrics for the given entries. Only completed
// entries count; dates are deduplicated and normalized to UTC calendar days.
// The now argument anchors "today" for the current streak and the rolling
// weekly/monthly windows.
func (ca *ConsistencyAnalyzer) Analyze(entries []*types.JournalEntry, now time.Time) *types.ConsistencyMetrics {
	dates := completedDates(entries)

	metrics := &types.ConsistencyMetrics{
		TotalEntries:  len(dates),
		StreakHistory: []types.StreakPeriod{},
	}

	if len(dates) == 0 {
		return metrics
	}

	today := dateOnly(now)

	metrics.StreakHistory = streakHistory(dates)
	metrics.CurrentStreak = currentStreak(dates, today)
	metrics.LongestStreak = longestStreak(metrics.StreakHistory, metrics.CurrentStreak)
	metrics.CompletionRate = completionRate(dates)
	metrics.WeeklyConsistency = rollingConsistency(dates, today, 7)
	metrics.MonthlyConsistency = rollingConsistency(dates, today, 30)

	return metrics
}

// completedDates filters to completed entries, normalizes to calendar dates,
// deduplicates, and sorts ascending.
func completedDates(entries []*types.JournalEntry) []time.Time {
	seen := make(map[time.Time]bool)
	dates := make([]time.Time, 0, len(entries))

	for _, entry := range entries {
		if entry == nil || !entry.IsComplete {
			continue
		}
		d := dateOnly(entry.Date)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}

	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	return dates
}

// streakHistory folds the sorted dates into recorded streak periods. Runs of
// length 1 are deliberately not recorded, matching the product's established
// behavior; CurrentStreak can still legitimately report 1.
func streakHistory(dates []time.Time) []types.StreakPeriod {
	history := []types.StreakPeriod{}
	if len(dates) == 0 {
		return history
	}

	start := dates[0]
	length := 1

	flush := func(end time.Time) {
		if length > 1 {
			history = append(history, types.StreakPeriod{
				StartDate: start,
				EndDate:   end,
				Length:    length,
			})
		}
	}

	for i := 1; i < len(dates); i++ {
		if daysBetween(dates[i-1], dates[i]) == 1 {
			length++
			continue
		}
		flush(dates[i-1])
		start = dates[i]
		length = 1
	}
	flush(dates[len(dates)-1])

	return history
}

// currentStreak counts the chain of consecutive days ending at the latest
// entry, valid only when that entry falls on today or yesterday.
func currentStreak(dates []time.Time, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	latest := dates[len(dates)-1]
	gap := daysBetween(latest, today)
	if gap != 0 && gap != 1 {
		return 0
	}

	streak := 1
	for i := len(dates) - 1; i > 0; i-- {
		if daysBetween(dates[i-1], dates[i]) != 1 {
			break
		}
		streak++
	}

	return streak
}

// longestStreak returns the longest recorded streak; the current streak
// counts too since single-day runs never reach the history.
func longestStreak(history []types.StreakPeriod, current int) int {
	longest := current
	for _, s := range history {
		if s.Length > longest {
			longest = s.Length
		}
	}
	return longest
}

// completionRate is entries per inclusive day span, as a percentage. Defined
// as 0 with fewer than two entries.
func completionRate(dates []time.Time) float64 {
	if len(dates) < 2 {
		return 0
	}

	span := daysBetween(dates[0], dates[len(dates)-1]) + 1
	if span <= 0 {
		return 0
	}

	return float64(len(dates)) / float64(span) * 100
}

// rollingConsistency counts entries within the trailing window ending today.
// The window spans windowDays calendar days inclusive of today.
func rollingConsistency(dates []time.Time, today time.Time, windowDays int) float64 {
	cutoff := today.AddDate(0, 0, -(windowDays - 1))

	count := 0
	for _, d := range dates {
		if !d.Before(cutoff) {
			count++
		}
	}

	return float64(count) / float64(windowDays) * 100
}
