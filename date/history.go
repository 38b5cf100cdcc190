package date

import (
	"iter"
	"slices"
)

// History stores a chronological series of float64 values, each associated
// with a specific date. Dates are unique and the series is always sorted,
// which makes it suitable both for price/index levels and for daily returns.
type History struct {
	days   []Date
	values []float64
}

// Len returns the number of observations in the history.
func (h *History) Len() int { return len(h.days) }

// Clear removes all observations.
func (h *History) Clear() {
	h.days = h.days[:0]
	h.values = h.values[:0]
}

// search locates day in the sorted days slice.
func (h *History) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, func(d, t Date) int {
		if d.After(t) {
			return 1
		}
		if d.Before(t) {
			return -1
		}
		return 0
	})
}

// Append adds an observation. An existing value at that date is overwritten:
// the last data appended wins.
func (h *History) Append(on Date, v float64) *History {
	i, found := h.search(on)
	if found {
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// AppendAdd adds an observation, summing with any existing value at that date.
func (h *History) AppendAdd(on Date, v float64) *History {
	i, found := h.search(on)
	if found {
		h.values[i] += v
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Get returns the value exactly at 'day', if any.
func (h *History) Get(day Date) (float64, bool) {
	if i, found := h.search(day); found {
		return h.values[i], true
	}
	return 0, false
}

// AsOf returns the value on a given day, or the most recent value before it.
// It returns false when no observation exists on or before the day.
func (h *History) AsOf(day Date) (float64, bool) {
	i, found := h.search(day)
	if found {
		return h.values[i], true
	}
	// i is the insertion index; the as-of value is the entry just before it.
	if i == 0 {
		return 0, false
	}
	return h.values[i-1], true
}

// First returns the earliest date and value. Zero values if empty.
func (h *History) First() (Date, float64) {
	if len(h.days) == 0 {
		return Date{}, 0
	}
	return h.days[0], h.values[0]
}

// Last returns the latest date and value. Zero values if empty.
func (h *History) Last() (Date, float64) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, 0
	}
	return h.days[last], h.values[last]
}

// Values returns an iterator over all date/value pairs in chronological order.
func (h *History) Values() iter.Seq2[Date, float64] {
	return func(yield func(Date, float64) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Dates returns the observation dates in chronological order.
func (h *History) Dates() []Date { return slices.Clone(h.days) }

// From returns a new history keeping only observations on or after 'day'.
func (h *History) From(day Date) *History {
	i, _ := h.search(day)
	out := &History{}
	out.days = slices.Clone(h.days[i:])
	out.values = slices.Clone(h.values[i:])
	return out
}

// Merge returns an iterator over all unique dates appearing in any of the
// given histories, in chronological order.
func Merge(histories ...*History) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		indexes := make([]int, len(histories))
		for {
			ok := false
			var m Date
			for i, h := range histories {
				if indexes[i] >= h.Len() {
					continue
				}
				on := h.days[indexes[i]]
				if !ok || on.Before(m) {
					m = on
					ok = true
				}
			}
			if !ok {
				return
			}
			for i, h := range histories {
				if indexes[i] < h.Len() && h.days[indexes[i]] == m {
					indexes[i]++
				}
			}
			if !yield(m) {
				return
			}
		}
	}
}
