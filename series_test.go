package perfbook

import (
	"testing"
	"time"
)

func TestCumulativeIndex(t *testing.T) {
	returns := series(
		day(2025, time.March, 3), 0.01,
		day(2025, time.March, 4), 0.02,
	)
	idx := CumulativeIndex(returns, 100)
	if v, _ := idx.Get(day(2025, time.March, 3)); !almost(v, 101) {
		t.Errorf("index[0] = %v, want 101", v)
	}
	if v, _ := idx.Get(day(2025, time.March, 4)); !almost(v, 103.02) {
		t.Errorf("index[1] = %v, want 103.02", v)
	}
	if CumulativeIndex(NewSeries(), 100).Len() != 0 {
		t.Errorf("empty returns should yield an empty index")
	}
}

func TestDailyReturns(t *testing.T) {
	levels := series(
		day(2025, time.March, 3), 100.0,
		day(2025, time.March, 4), 110.0,
		day(2025, time.March, 5), 99.0,
	)
	returns := DailyReturns(levels)
	if returns.Len() != 2 {
		t.Fatalf("Len = %d, want the first level dropped", returns.Len())
	}
	if r, _ := returns.Get(day(2025, time.March, 4)); !almost(r, 0.1) {
		t.Errorf("returns[0] = %v, want 0.1", r)
	}
	if r, _ := returns.Get(day(2025, time.March, 5)); !almost(r, -0.1) {
		t.Errorf("returns[1] = %v, want -0.1", r)
	}
}

func TestDailyReturns_ZeroPredecessor(t *testing.T) {
	levels := series(
		day(2025, time.March, 3), 0.0,
		day(2025, time.March, 4), 110.0,
	)
	returns := DailyReturns(levels)
	if r, ok := returns.Get(day(2025, time.March, 4)); !ok || r != 0 {
		t.Errorf("zero predecessor should yield 0, got %v, %v", r, ok)
	}
}
