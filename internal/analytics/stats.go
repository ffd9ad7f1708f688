// Package analytics provides the journal analytics engine: consistency,
// emotional correlation, and process trend analysis plus insight generation.
package analytics

import (
	"math"
	"time"
)

// mean calculates arithmetic mean
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// pearson calculates the Pearson correlation coefficient between two
// equal-length sequences. Returns 0 when the denominator is 0.
func pearson(xs, ys []float64) float64 {
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

// dateOnly truncates a timestamp to its UTC calendar date. All day arithmetic
// in this package runs on these normalized dates to avoid timezone drift
// around midnight.
func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole-day difference between two normalized dates
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
