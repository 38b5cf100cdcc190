package perfbook

import "github.com/seapoint/perfbook/date"

// Series is a date-indexed sequence of values: portfolio or benchmark
// levels, or daily returns. Dates are unique and sorted.
type Series = date.History

// NewSeries returns an empty series.
func NewSeries() *Series { return &Series{} }

// CumulativeIndex converts a series of daily returns into a price index:
// start * cumulative product of (1 + r). [0.01, 0.02] from 100 gives
// [101.0, 103.02].
func CumulativeIndex(returns *Series, start float64) *Series {
	index := NewSeries()
	level := start
	for on, r := range returns.Values() {
		level *= 1 + r
		index.Append(on, level)
	}
	return index
}

// DailyReturns converts a series of levels into daily percentage changes.
// The first observation has no predecessor and is dropped; a zero
// predecessor contributes a 0 return rather than blowing up.
func DailyReturns(levels *Series) *Series {
	returns := NewSeries()
	prev := 0.0
	first := true
	for on, v := range levels.Values() {
		if !first {
			if prev != 0 {
				returns.Append(on, v/prev-1)
			} else {
				returns.Append(on, 0)
			}
		}
		prev = v
		first = false
	}
	return returns
}
