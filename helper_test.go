package perfbook

import (
	"math"
	"time"

	"github.com/seapoint/perfbook/date"
	"github.com/shopspring/decimal"
)

// day is a helper for tests to build dates tersely.
func day(y int, m time.Month, d int) date.Date { return date.New(y, m, d) }

// series builds a Series from alternating date/value pairs.
func series(points ...any) *Series {
	s := NewSeries()
	for i := 0; i < len(points); i += 2 {
		s.Append(points[i].(date.Date), points[i+1].(float64))
	}
	return s
}

// dec is a helper for tests to create decimals from float constants.
func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// close enough for float comparisons in return arithmetic.
func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// loose comparison for regression statistics.
func roughly(a, b float64) bool { return math.Abs(a-b) < 1e-6 }
