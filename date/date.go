// Package date provides day-granularity calendar types and a sorted
// date-indexed value series used throughout the reporting pipeline.
package date

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read format (allows single-digit month/day).

// Format is the canonical string representation of dates, ISO-8601.
const Format = "2006-01-02"

// Date represents a date with day-level granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
// Out-of-range components roll over the way time.Date rolls them over,
// so New(2025, time.January, 32) is February 1st.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the year.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.time().Month() }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// AddMonths returns the date i calendar months away. The day of month is
// preserved where it exists; a target month that is too short clamps to its
// last day (Mar 31 - 1 month is Feb 28, not Mar 3), so month-end report
// dates anchor trailing windows inside the intended month.
func (d Date) AddMonths(i int) Date {
	y, m, _ := time.Date(d.y, d.m+time.Month(i), 1, 0, 0, 0, 0, time.UTC).Date()
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if d.d > last {
		return New(y, m, last)
	}
	return New(y, m, d.d)
}

// AddYears returns the date i calendar years away.
func (d Date) AddYears(i int) Date { return New(d.y+i, d.m, d.d) }

// StartOfYear returns January 1st of the date's year.
func (d Date) StartOfYear() Date { return New(d.y, time.January, 1) }

// String formats the date in its canonical ISO form.
func (d Date) String() string { return d.time().Format(Format) }

// Format returns a textual representation of the date formatted according
// to the given layout, as in time.Format.
func (d Date) Format(layout string) string { return d.time().Format(layout) }

// Parse parses a Date from a string. It is lenient: it accepts "2025-7-1"
// as well as "2025-07-01", and a statement-style timestamp such as
// "2026-01-13, 10:55:58 EST", of which only the date part is kept.
func Parse(str string) (Date, error) {
	str = strings.TrimSpace(str)
	// Statement timestamps carry a time-of-day after a comma.
	if i := strings.IndexByte(str, ','); i >= 0 {
		str = strings.TrimSpace(str[:i])
	}
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, readDateFormat, err)
	}
	return New(on.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON unmarshals a date from a JSON string.
func (j *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	d, err := Parse(str)
	if err != nil {
		return err
	}
	*j = d
	return nil
}

// MarshalJSON marshals the date as a JSON string in canonical form.
func (j Date) MarshalJSON() ([]byte, error) {
	str := j.String()
	return json.Marshal(&str)
}

var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
