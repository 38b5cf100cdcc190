package date

// Range represents an inclusive range of dates.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains returns true if the date is included in the range (boundaries included).
func (r Range) Contains(d Date) bool { return !d.Before(r.From) && !d.After(r.To) }

// Label formats the range the way report headers print covered periods,
// e.g. "07/30/2025 - 01/12/2026".
func (r Range) Label() string {
	return r.From.Format("01/02/2006") + " - " + r.To.Format("01/02/2006")
}
