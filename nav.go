package perfbook

import (
	"strings"

	"github.com/seapoint/perfbook/date"
	"github.com/shopspring/decimal"
)

// navBreakdownFields are the Change in NAV lines the breakdown reports,
// in statement order.
var navBreakdownFields = []string{
	"Starting Value",
	"Mark-to-Market",
	"Deposits & Withdrawals",
	"Dividends",
	"Interest",
	"Change in Interest Accruals",
	"Commissions",
	"Ending Value",
}

// NAVPerformance is the official account-level performance derived from
// the statement's Change in NAV section.
type NAVPerformance struct {
	// NAV is the ending value; Return is the flow-adjusted official
	// return: (ending - (starting + flows)) / (starting + flows).
	NAV       decimal.Decimal
	Return    float64
	Breakdown map[string]decimal.Decimal
}

// NAVPerformanceFromStatement computes the official NAV return from the
// Change in NAV section. A statement without the section yields the zero
// performance, never an error.
func NAVPerformanceFromStatement(st *Statement) NAVPerformance {
	s := st.Section(SectionChangeNAV)
	field := func(name string) decimal.Decimal {
		for i := range s.Rows {
			if strings.TrimSpace(s.Value(i, "Field Name")) == name {
				v, _ := ParseAmount(s.Value(i, "Field Value"))
				return v
			}
		}
		return decimal.Zero
	}

	perf := NAVPerformance{Breakdown: make(map[string]decimal.Decimal, len(navBreakdownFields))}
	for _, name := range navBreakdownFields {
		perf.Breakdown[name] = field(name)
	}

	start := perf.Breakdown["Starting Value"]
	end := perf.Breakdown["Ending Value"]
	flows := perf.Breakdown["Deposits & Withdrawals"]

	perf.NAV = end
	basis := start.Add(flows)
	if !basis.IsZero() {
		perf.Return = end.Sub(basis).Div(basis).InexactFloat64()
	}
	return perf
}

// PeriodReturns computes the 1M/3M/6M/YTD returns of a daily net asset
// value series as of a report date, plus the whole-file "Period" return
// and its "MM/DD/YYYY - MM/DD/YYYY" label.
//
// Observations after the report date are ignored. Start values resolve
// as-of (latest observation at or before the anchor); a window whose start
// value is missing or zero maps to nil.
func PeriodReturns(nav *Series, asOf date.Date) (map[string]*float64, string) {
	results := map[string]*float64{
		"1M": nil, "3M": nil, "6M": nil, "YTD": nil, "Period": nil,
	}
	const fallbackLabel = "Period"

	// Cut strictly at the report date.
	trimmed := NewSeries()
	for on, v := range nav.Values() {
		if !on.After(asOf) {
			trimmed.Append(on, v)
		}
	}
	if trimmed.Len() == 0 {
		return results, fallbackLabel
	}

	firstDate, firstValue := trimmed.First()
	lastDate, endValue := trimmed.Last()
	label := date.NewRange(firstDate, lastDate).Label()

	calc := func(anchor date.Date) *float64 {
		start, ok := trimmed.AsOf(anchor)
		if !ok || start == 0 {
			return nil
		}
		r := endValue/start - 1
		return &r
	}

	results["1M"] = calc(asOf.AddMonths(-1))
	results["3M"] = calc(asOf.AddMonths(-3))
	results["6M"] = calc(asOf.AddMonths(-6))
	results["YTD"] = calc(asOf.StartOfYear())
	if firstValue != 0 {
		r := endValue/firstValue - 1
		results["Period"] = &r
	}
	return results, label
}
