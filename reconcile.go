package perfbook

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/seapoint/perfbook/date"
	"github.com/shopspring/decimal"
)

// PositionLot is one raw position row. A ticker may appear in several lots
// when the account is split across sub-accounts; the engine sums them.
type PositionLot struct {
	Ticker      string
	CostBasis   decimal.Decimal
	MarketValue decimal.Decimal
}

// CashEvent is a per-ticker cash amount: a dividend payment or a realized
// gain total.
type CashEvent struct {
	Ticker string
	Amount decimal.Decimal
}

// ReconcileInput gathers everything the engine balances: the three source
// tables plus the two authoritative scalars extracted from the statement.
type ReconcileInput struct {
	Positions []PositionLot
	Dividends []CashEvent
	Realized  []CashEvent

	// ReportedTotal is the account-level ending net asset value the books
	// must balance against. SettledCash is the uninvested cash balance.
	ReportedTotal decimal.Decimal
	SettledCash   decimal.Decimal

	ReportDate date.Date
}

// Instrument is one reconciled row: a distinct ticker, or a synthetic
// balancing entry (settled cash, accruals).
type Instrument struct {
	Ticker       string
	Name         string
	Bucket       string
	CostBasis    Money
	MarketValue  Money
	Dividends    Money
	RealizedGain Money

	// Weight is the fraction of total market value, recomputed after plug
	// synthesis so all weights sum to 1.
	Weight float64

	// CumulativeReturn is (value + dividends + realized) / cost - 1,
	// in percent points. Dividends and realized gains enter the numerator
	// only; cost basis is never adjusted for distributions.
	CumulativeReturn Percent

	Synthetic bool
}

// BucketAggregate rolls instruments up by asset-class label. Its return is
// computed from the summed quantities, which makes it the bucket's
// money-weighted return rather than an average of instrument returns.
type BucketAggregate struct {
	Bucket       string
	CostBasis    Money
	MarketValue  Money
	Dividends    Money
	RealizedGain Money
	Weight       float64
	Return       Percent
}

// Reconciliation is the balanced output: every instrument, the bucket
// rollup, and a total that matches the reported net asset value exactly
// once synthetic entries are included.
type Reconciliation struct {
	Date        date.Date
	Instruments []Instrument
	Buckets     []BucketAggregate
	Total       Money

	// Accrual is the synthesized balancing amount, zero when the books
	// already matched within the materiality threshold.
	Accrual Money
}

// Instrument returns the reconciled row for a ticker, if present.
func (r *Reconciliation) Instrument(ticker string) (Instrument, bool) {
	t := NormalizeTicker(ticker)
	for _, ins := range r.Instruments {
		if ins.Ticker == t {
			return ins, true
		}
	}
	return Instrument{}, false
}

// Reconciler merges position, dividend and realized-gain tables into one
// balanced holdings table. It is stateless across runs: every call operates
// on its input and returns a fresh Reconciliation.
type Reconciler struct {
	master *SecurityMaster
	cfg    Config
	log    zerolog.Logger
}

// NewReconciler creates a reconciliation engine. The security master may be
// nil, in which case every instrument is classified by keyword only.
func NewReconciler(master *SecurityMaster, cfg Config, log zerolog.Logger) *Reconciler {
	return &Reconciler{master: master, cfg: cfg.withDefaults(), log: log}
}

// merged accumulates per-ticker sums during the outer join.
type merged struct {
	cost, value, dividends, realized decimal.Decimal
	held                             bool
}

// Reconcile produces one instrument per ticker appearing in any source
// table, synthesizes balancing entries against the reported total, and
// aggregates per bucket.
//
// Missing source tables degrade to empty: an input with no positions yields
// the cash and accrual plugs alone.
func (r *Reconciler) Reconcile(in ReconcileInput) *Reconciliation {
	byTicker := make(map[string]*merged)
	at := func(ticker string) *merged {
		m, ok := byTicker[ticker]
		if !ok {
			m = &merged{}
			byTicker[ticker] = m
		}
		return m
	}

	// Outer join: the union of tickers across positions, dividends and
	// realized gains. An instrument with only dividend history still
	// appears, carrying the orphaned dividend.
	for _, lot := range in.Positions {
		t := NormalizeTicker(lot.Ticker)
		if !ValidTicker(t) {
			continue
		}
		m := at(t)
		m.cost = m.cost.Add(lot.CostBasis)
		m.value = m.value.Add(lot.MarketValue)
		m.held = true
	}
	for _, ev := range in.Dividends {
		t := NormalizeTicker(ev.Ticker)
		if !ValidTicker(t) {
			continue
		}
		m := at(t)
		m.dividends = m.dividends.Add(ev.Amount)
	}
	for _, ev := range in.Realized {
		t := NormalizeTicker(ev.Ticker)
		if !ValidTicker(t) {
			continue
		}
		m := at(t)
		m.realized = m.realized.Add(ev.Amount)
	}

	cur := r.cfg.Currency
	rec := &Reconciliation{Date: in.ReportDate}
	for ticker, m := range byTicker {
		cost, value := m.cost, m.value
		// Basis rescue: a held row with value but no recorded cost (cash
		// sweeps, transfers) reports a 0% return instead of dividing by
		// zero.
		if m.held && cost.IsZero() && !value.IsZero() {
			cost = value
		}
		rec.Instruments = append(rec.Instruments, r.newInstrument(ticker, cost, value, m.dividends, m.realized, false))
	}

	// Balancing entries against the authoritative total.
	invested := decimal.Zero
	for _, ins := range rec.Instruments {
		invested = invested.Add(ins.MarketValue.Decimal())
	}
	if !in.SettledCash.IsZero() {
		cash := r.newInstrument(r.cfg.CashTicker, in.SettledCash, in.SettledCash, decimal.Zero, decimal.Zero, true)
		cash.Name = "Settled Cash"
		cash.Bucket = r.cfg.CashBucket
		rec.Instruments = append(rec.Instruments, cash)
	}
	if !in.ReportedTotal.IsZero() {
		discrepancy := in.ReportedTotal.Sub(invested).Sub(in.SettledCash)
		if discrepancy.Abs().GreaterThan(r.cfg.Materiality) {
			accrual := r.newInstrument(r.cfg.AccrualTicker, discrepancy, discrepancy, decimal.Zero, decimal.Zero, true)
			accrual.Name = "Accruals"
			accrual.Bucket = r.cfg.AccrualBucket
			rec.Instruments = append(rec.Instruments, accrual)
			rec.Accrual = NewMoney(discrepancy, cur)
			r.log.Warn().
				Str("amount", rec.Accrual.String()).
				Msg("net asset value discrepancy above materiality, accrual entry synthesized")
		} else if !discrepancy.IsZero() {
			r.log.Debug().
				Str("amount", NewMoney(discrepancy, cur).String()).
				Msg("net asset value discrepancy below materiality, ignored")
		}
	}

	// Total and weights after synthesis.
	total := decimal.Zero
	for _, ins := range rec.Instruments {
		total = total.Add(ins.MarketValue.Decimal())
	}
	rec.Total = NewMoney(total, cur)
	if !total.IsZero() {
		for i := range rec.Instruments {
			rec.Instruments[i].Weight = rec.Instruments[i].MarketValue.Decimal().Div(total).InexactFloat64()
		}
	}

	r.sortInstruments(rec.Instruments)
	rec.Buckets = r.aggregate(rec.Instruments, total)
	return rec
}

// newInstrument builds a classified instrument row with its cumulative
// return already computed.
func (r *Reconciler) newInstrument(ticker string, cost, value, dividends, realized decimal.Decimal, synthetic bool) Instrument {
	cur := r.cfg.Currency
	ins := Instrument{
		Ticker:       ticker,
		CostBasis:    NewMoney(cost, cur),
		MarketValue:  NewMoney(value, cur),
		Dividends:    NewMoney(dividends, cur),
		RealizedGain: NewMoney(realized, cur),
		Synthetic:    synthetic,
	}
	if !synthetic {
		ins.Name = r.master.Name(ticker)
		ins.Bucket = r.classify(ticker, ins.Name)
	}
	if !cost.IsZero() {
		generated := value.Add(dividends).Add(realized)
		ins.CumulativeReturn = AsPercent(generated.Div(cost).InexactFloat64() - 1)
	}
	return ins
}

// classify resolves an instrument's bucket: security master first, keyword
// auto-classification as fallback.
func (r *Reconciler) classify(ticker, name string) string {
	if bucket := r.master.AssetClass(ticker); bucket != BucketUnclassified {
		return bucket
	}
	return AutoClassify(ticker, name)
}

// sortInstruments orders rows by configured bucket order, then by weight
// descending, then by ticker for stability.
func (r *Reconciler) sortInstruments(instruments []Instrument) {
	rank := make(map[string]int, len(r.cfg.BucketOrder))
	for i, b := range r.cfg.BucketOrder {
		rank[b] = i
	}
	pos := func(bucket string) int {
		if p, ok := rank[bucket]; ok {
			return p
		}
		return len(rank)
	}
	sort.SliceStable(instruments, func(i, j int) bool {
		a, b := instruments[i], instruments[j]
		if pos(a.Bucket) != pos(b.Bucket) {
			return pos(a.Bucket) < pos(b.Bucket)
		}
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		return a.Ticker < b.Ticker
	})
}

// aggregate rolls instruments up per bucket. Bucket returns use the same
// formula as instruments, applied to the summed quantities.
func (r *Reconciler) aggregate(instruments []Instrument, total decimal.Decimal) []BucketAggregate {
	cur := r.cfg.Currency
	sums := make(map[string]*merged)
	var order []string
	for _, ins := range instruments {
		m, ok := sums[ins.Bucket]
		if !ok {
			m = &merged{}
			sums[ins.Bucket] = m
			order = append(order, ins.Bucket)
		}
		m.cost = m.cost.Add(ins.CostBasis.Decimal())
		m.value = m.value.Add(ins.MarketValue.Decimal())
		m.dividends = m.dividends.Add(ins.Dividends.Decimal())
		m.realized = m.realized.Add(ins.RealizedGain.Decimal())
	}

	buckets := make([]BucketAggregate, 0, len(order))
	for _, bucket := range order {
		m := sums[bucket]
		agg := BucketAggregate{
			Bucket:       bucket,
			CostBasis:    NewMoney(m.cost, cur),
			MarketValue:  NewMoney(m.value, cur),
			Dividends:    NewMoney(m.dividends, cur),
			RealizedGain: NewMoney(m.realized, cur),
		}
		if !total.IsZero() {
			agg.Weight = m.value.Div(total).InexactFloat64()
		}
		if !m.cost.IsZero() {
			generated := m.value.Add(m.dividends).Add(m.realized)
			agg.Return = AsPercent(generated.Div(m.cost).InexactFloat64() - 1)
		}
		buckets = append(buckets, agg)
	}
	return buckets
}

// InputFromStatement normalizes a parsed statement into the engine's input
// tables. Unparseable cells are coerced to zero and reported as issues;
// they never interrupt the build.
func InputFromStatement(st *Statement) (ReconcileInput, []ParseIssue) {
	var issues []ParseIssue
	amount := func(section *Section, row int, column string) decimal.Decimal {
		v, issue := ParseAmount(section.Value(row, column))
		if issue != nil {
			issue.Section = section.Name
			issue.Column = column
			issues = append(issues, *issue)
		}
		return v
	}

	in := ReconcileInput{
		ReportedTotal: st.ReportedNAV(),
		SettledCash:   st.SettledCash(),
		ReportDate:    st.ReportDate(),
	}

	pos := st.Section(SectionPositions)
	for i := range pos.Rows {
		ticker := pos.Value(i, "Symbol")
		if !ValidTicker(ticker) {
			continue
		}
		in.Positions = append(in.Positions, PositionLot{
			Ticker:      ticker,
			CostBasis:   amount(pos, i, "Cost Basis"),
			MarketValue: amount(pos, i, "Value"),
		})
	}

	divs := st.Section(SectionDividends)
	for i := range divs.Rows {
		ticker := divs.Value(i, "Symbol")
		if ticker == "" {
			// Older exports only name the instrument inside the
			// description line.
			ticker, _ = SymbolFromDescription(divs.Value(i, "Description"))
		}
		if !ValidTicker(ticker) {
			continue
		}
		in.Dividends = append(in.Dividends, CashEvent{
			Ticker: ticker,
			Amount: amount(divs, i, "Amount"),
		})
	}

	perf := st.Section(SectionPerformance)
	for i := range perf.Rows {
		ticker := perf.Value(i, "Symbol")
		if !ValidTicker(ticker) {
			continue
		}
		in.Realized = append(in.Realized, CashEvent{
			Ticker: ticker,
			Amount: amount(perf, i, "Realized Total"),
		})
	}

	return in, issues
}
