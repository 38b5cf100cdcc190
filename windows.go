package perfbook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seapoint/perfbook/date"
)

// windowKind discriminates the window grammar.
type windowKind int

const (
	windowMonths windowKind = iota
	windowYears
	windowYTD
	windowInception
	windowSince
)

// Window is a named trailing or calendar-anchored return period.
type Window struct {
	kind  windowKind
	n     int
	since date.Date
	label string
}

// The standard report windows, in presentation order.
func StandardWindows() []Window {
	return []Window{
		Months(1), Months(3), Months(6), YTD(), Years(1), Inception(),
	}
}

// Months returns a trailing n-calendar-month window.
func Months(n int) Window {
	return Window{kind: windowMonths, n: n, label: fmt.Sprintf("%dM", n)}
}

// Years returns a trailing n-calendar-year window.
func Years(n int) Window {
	return Window{kind: windowYears, n: n, label: fmt.Sprintf("%dY", n)}
}

// YTD returns the calendar-anchored year-to-date window.
func YTD() Window { return Window{kind: windowYTD, label: "YTD"} }

// Inception returns the full-history window.
func Inception() Window { return Window{kind: windowInception, label: "INCEPTION"} }

// Since returns the window starting at a fixed date.
func Since(d date.Date) Window {
	return Window{kind: windowSince, since: d, label: "SINCE_" + d.String()}
}

// Label returns the window's canonical name ("3M", "YTD", "SINCE_2024-01-01").
func (w Window) Label() string { return w.label }

// ParseWindow parses a window specifier: "1M", "3M", "6M", "YTD", "1Y",
// "3Y", "INCEPTION" or "SINCE_<date>", case-insensitively. A SINCE window
// whose date cannot be read degrades to inception, matching the lookup's
// clamp-to-first policy; any other malformed specifier is an error.
func ParseWindow(spec string) (Window, error) {
	s := strings.ToUpper(strings.TrimSpace(spec))
	switch {
	case s == "INCEPTION":
		return Inception(), nil
	case s == "YTD":
		return YTD(), nil
	case strings.HasPrefix(s, "SINCE_"):
		d, err := date.Parse(strings.TrimPrefix(s, "SINCE_"))
		if err != nil {
			return Inception(), nil
		}
		return Since(d), nil
	case strings.HasSuffix(s, "Y"):
		if n, err := strconv.Atoi(s[:len(s)-1]); err == nil && n > 0 {
			return Years(n), nil
		}
	case strings.HasSuffix(s, "M"):
		if n, err := strconv.Atoi(s[:len(s)-1]); err == nil && n > 0 {
			return Months(n), nil
		}
	}
	return Window{}, fmt.Errorf("invalid window spec %q: valid units are M, Y, YTD, INCEPTION, SINCE_date", spec)
}

// start resolves the window's start date relative to the series' end date.
func (w Window) start(end date.Date) date.Date {
	switch w.kind {
	case windowMonths:
		return end.AddMonths(-w.n)
	case windowYears:
		return end.AddYears(-w.n)
	case windowYTD:
		return end.StartOfYear()
	case windowSince:
		return w.since
	default: // inception handled by the clamp below
		return date.Date{}
	}
}

// WindowReturn computes the cumulative return of a level series over a
// window: (end_value / start_value) - 1.
//
// The start value is the as-of observation at or before the resolved start
// date. A start predating the first observation clamps to the first
// observation, so a "1Y" request on 6 months of data returns the
// inception-to-date figure instead of failing. A missing or zero start
// value falls back to the series' first value. The same policy applies to
// portfolio and benchmark series alike, which keeps them comparable
// window for window.
//
// ok is false only for an empty series.
func WindowReturn(s *Series, w Window) (ret float64, ok bool) {
	if s.Len() == 0 {
		return 0, false
	}
	endDate, endValue := s.Last()
	firstDate, firstValue := s.First()

	startDate := w.start(endDate)
	if w.kind == windowInception || startDate.Before(firstDate) {
		startDate = firstDate
	}

	startValue, found := s.AsOf(startDate)
	if !found || startValue == 0 {
		startValue = firstValue
	}
	if startValue == 0 {
		return 0, false
	}
	return endValue/startValue - 1, true
}

// WindowSet computes a label -> return map over the given windows.
// Unavailable windows map to nil, so consumers can distinguish "no data"
// from a flat 0% period.
func WindowSet(s *Series, windows []Window) map[string]*float64 {
	out := make(map[string]*float64, len(windows))
	for _, w := range windows {
		if r, ok := WindowReturn(s, w); ok {
			out[w.Label()] = &r
		} else {
			out[w.Label()] = nil
		}
	}
	return out
}
