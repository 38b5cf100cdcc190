package perfbook

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func newTestReconciler() *Reconciler {
	return NewReconciler(nil, DefaultConfig(), zerolog.Nop())
}

func TestReconcile_BalancesToReportedTotal(t *testing.T) {
	r := newTestReconciler()
	in := ReconcileInput{
		Positions: []PositionLot{
			{Ticker: "AAPL", CostBasis: dec(1000), MarketValue: dec(1200)},
		},
		Dividends: []CashEvent{{Ticker: "AAPL", Amount: dec(50)}},
		Realized:  []CashEvent{{Ticker: "AAPL", Amount: dec(25)}},

		ReportedTotal: dec(1290),
		SettledCash:   dec(50),
		ReportDate:    day(2026, time.January, 13),
	}
	rec := r.Reconcile(in)

	if rec.Total.Decimal().Cmp(dec(1290)) != 0 {
		t.Errorf("Total = %v, want 1290", rec.Total)
	}
	if rec.Accrual.Decimal().Cmp(dec(40)) != 0 {
		t.Errorf("Accrual = %v, want 40", rec.Accrual)
	}
	if len(rec.Instruments) != 3 {
		t.Fatalf("instruments = %d, want AAPL + cash + accrual", len(rec.Instruments))
	}

	aapl, ok := rec.Instrument("AAPL")
	if !ok {
		t.Fatal("AAPL missing")
	}
	// (1200 + 50 + 25) / 1000 - 1
	if !aapl.CumulativeReturn.Equal(AsPercent(0.275)) {
		t.Errorf("AAPL return = %v, want 27.50%%", aapl.CumulativeReturn)
	}
	if aapl.Synthetic {
		t.Errorf("AAPL should not be synthetic")
	}

	cash, ok := rec.Instrument("CASH_BAL")
	if !ok || !cash.Synthetic || cash.Bucket != BucketCash {
		t.Errorf("cash plug = %+v, %v", cash, ok)
	}
	acc, ok := rec.Instrument("ACCRUALS")
	if !ok || !acc.Synthetic || acc.MarketValue.Decimal().Cmp(dec(40)) != 0 {
		t.Errorf("accrual plug = %+v, %v", acc, ok)
	}

	sum := 0.0
	for _, ins := range rec.Instruments {
		sum += ins.Weight
	}
	if !roughly(sum, 1.0) {
		t.Errorf("weights sum = %v, want 1", sum)
	}
}

func TestReconcile_AccrualPlug(t *testing.T) {
	r := newTestReconciler()
	rec := r.Reconcile(ReconcileInput{
		Positions:     []PositionLot{{Ticker: "AAPL", CostBasis: dec(1000), MarketValue: dec(1200)}},
		Dividends:     []CashEvent{{Ticker: "AAPL", Amount: dec(10)}},
		ReportedTotal: dec(1250),
		SettledCash:   dec(40),
	})
	acc, ok := rec.Instrument("ACCRUALS")
	if !ok {
		t.Fatal("accrual row missing")
	}
	// 1250 - 1200 - 40
	if acc.MarketValue.Decimal().Cmp(dec(10)) != 0 {
		t.Errorf("accrual = %v, want 10", acc.MarketValue)
	}
	aapl, _ := rec.Instrument("AAPL")
	// (1200 + 10 + 0) / 1000 - 1
	if !aapl.CumulativeReturn.Equal(AsPercent(0.21)) {
		t.Errorf("AAPL return = %v, want 21.00%%", aapl.CumulativeReturn)
	}
	if rec.Total.Decimal().Cmp(dec(1250)) != 0 {
		t.Errorf("Total = %v, want the reported 1250", rec.Total)
	}
}

func TestReconcile_BelowMateriality(t *testing.T) {
	r := newTestReconciler()
	in := ReconcileInput{
		Positions: []PositionLot{
			{Ticker: "AAPL", CostBasis: dec(1000), MarketValue: dec(1200)},
		},
		ReportedTotal: decimal.NewFromFloat(1200.75),
	}
	rec := r.Reconcile(in)
	if _, ok := rec.Instrument("ACCRUALS"); ok {
		t.Errorf("sub-dollar discrepancy should not synthesize an accrual")
	}
	if !rec.Accrual.Decimal().IsZero() {
		t.Errorf("Accrual = %v, want zero", rec.Accrual)
	}
}

func TestReconcile_ZeroReportedTotal(t *testing.T) {
	r := newTestReconciler()
	in := ReconcileInput{
		Positions: []PositionLot{
			{Ticker: "AAPL", CostBasis: dec(1000), MarketValue: dec(1200)},
		},
	}
	rec := r.Reconcile(in)
	if _, ok := rec.Instrument("ACCRUALS"); ok {
		t.Errorf("no reported total means nothing to balance against")
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	r := newTestReconciler()
	first := r.Reconcile(ReconcileInput{
		Positions: []PositionLot{
			{Ticker: "AAPL", CostBasis: dec(1000), MarketValue: dec(1200)},
		},
		ReportedTotal: dec(1290),
		SettledCash:   dec(50),
	})

	// Feed the balanced output back in as positions. The books now match
	// exactly: no new plug may appear.
	var again ReconcileInput
	for _, ins := range first.Instruments {
		again.Positions = append(again.Positions, PositionLot{
			Ticker:      ins.Ticker,
			CostBasis:   ins.CostBasis.Decimal(),
			MarketValue: ins.MarketValue.Decimal(),
		})
	}
	again.ReportedTotal = first.Total.Decimal()

	second := r.Reconcile(again)
	if len(second.Instruments) != len(first.Instruments) {
		t.Errorf("instruments %d -> %d, want unchanged", len(first.Instruments), len(second.Instruments))
	}
	if !second.Accrual.Decimal().IsZero() {
		t.Errorf("re-reconciling balanced books grew an accrual %v", second.Accrual)
	}
}

func TestReconcile_BasisRescue(t *testing.T) {
	r := newTestReconciler()
	rec := r.Reconcile(ReconcileInput{
		Positions: []PositionLot{
			{Ticker: "XFER", CostBasis: decimal.Zero, MarketValue: dec(500)},
		},
	})
	ins, ok := rec.Instrument("XFER")
	if !ok {
		t.Fatal("XFER missing")
	}
	if ins.CostBasis.Decimal().Cmp(dec(500)) != 0 {
		t.Errorf("cost basis = %v, want rescued to 500", ins.CostBasis)
	}
	if !ins.CumulativeReturn.Equal(0) {
		t.Errorf("return = %v, want 0", ins.CumulativeReturn)
	}
}

func TestReconcile_OrphanDividend(t *testing.T) {
	r := newTestReconciler()
	rec := r.Reconcile(ReconcileInput{
		Dividends: []CashEvent{{Ticker: "SOLD", Amount: dec(12)}},
	})
	ins, ok := rec.Instrument("SOLD")
	if !ok {
		t.Fatal("dividend-only ticker should still appear")
	}
	if ins.Dividends.Decimal().Cmp(dec(12)) != 0 {
		t.Errorf("dividends = %v, want 12", ins.Dividends)
	}
	if !ins.MarketValue.Decimal().IsZero() || !ins.CumulativeReturn.Equal(0) {
		t.Errorf("orphan = %+v, want zero value and return", ins)
	}
}

func TestReconcile_DuplicateLotsSummed(t *testing.T) {
	r := newTestReconciler()
	rec := r.Reconcile(ReconcileInput{
		Positions: []PositionLot{
			{Ticker: "VTI", CostBasis: dec(100), MarketValue: dec(110)},
			{Ticker: "vti", CostBasis: dec(200), MarketValue: dec(230)},
		},
	})
	ins, ok := rec.Instrument("VTI")
	if !ok {
		t.Fatal("VTI missing")
	}
	if ins.CostBasis.Decimal().Cmp(dec(300)) != 0 || ins.MarketValue.Decimal().Cmp(dec(340)) != 0 {
		t.Errorf("sums = %v / %v, want 300 / 340", ins.CostBasis, ins.MarketValue)
	}
}

func TestReconcile_ArtifactRowsSkipped(t *testing.T) {
	r := newTestReconciler()
	rec := r.Reconcile(ReconcileInput{
		Positions: []PositionLot{
			{Ticker: "AAPL", CostBasis: dec(100), MarketValue: dec(110)},
			{Ticker: "Total", CostBasis: dec(100), MarketValue: dec(110)},
		},
	})
	if len(rec.Instruments) != 1 {
		t.Errorf("instruments = %d, want the total row dropped", len(rec.Instruments))
	}
}

func TestReconcile_EmptyPositions(t *testing.T) {
	r := newTestReconciler()
	rec := r.Reconcile(ReconcileInput{
		ReportedTotal: dec(150),
		SettledCash:   dec(100),
	})
	if len(rec.Instruments) != 2 {
		t.Fatalf("instruments = %d, want cash + accrual only", len(rec.Instruments))
	}
	if rec.Total.Decimal().Cmp(dec(150)) != 0 {
		t.Errorf("Total = %v, want 150", rec.Total)
	}
}

func TestReconcile_BucketMoneyWeightedReturn(t *testing.T) {
	r := newTestReconciler()
	// Both default to U.S. Equities: one up 20% on 1000, one down 10% on 500.
	rec := r.Reconcile(ReconcileInput{
		Positions: []PositionLot{
			{Ticker: "AAA", CostBasis: dec(1000), MarketValue: dec(1200)},
			{Ticker: "BBB", CostBasis: dec(500), MarketValue: dec(450)},
		},
	})
	if len(rec.Buckets) != 1 {
		t.Fatalf("buckets = %d, want 1", len(rec.Buckets))
	}
	b := rec.Buckets[0]
	if b.Bucket != BucketUSEquities {
		t.Errorf("bucket = %q", b.Bucket)
	}
	// (1650 / 1500) - 1, not the average of +20% and -10%
	if !b.Return.Equal(AsPercent(0.1)) {
		t.Errorf("bucket return = %v, want 10.00%%", b.Return)
	}
	if !roughly(b.Weight, 1.0) {
		t.Errorf("bucket weight = %v, want 1", b.Weight)
	}
}

func TestReconcile_SortOrder(t *testing.T) {
	r := newTestReconciler()
	rec := r.Reconcile(ReconcileInput{
		Positions: []PositionLot{
			{Ticker: "ICSH", CostBasis: dec(100), MarketValue: dec(100)},
			{Ticker: "BND", CostBasis: dec(100), MarketValue: dec(100)},
			{Ticker: "AAPL", CostBasis: dec(100), MarketValue: dec(100)},
		},
	})
	var got []string
	for _, ins := range rec.Instruments {
		got = append(got, ins.Ticker)
	}
	// Configured bucket order: equities before fixed income before cash.
	want := []string{"AAPL", "BND", "ICSH"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestInputFromStatement(t *testing.T) {
	st := parseSample(t)
	in, issues := InputFromStatement(st)
	if len(issues) != 0 {
		t.Errorf("issues = %v, want none", issues)
	}
	if len(in.Positions) != 2 {
		t.Fatalf("positions = %d, want total row dropped", len(in.Positions))
	}
	if in.Positions[0].Ticker != "AAPL" || in.Positions[0].CostBasis.Cmp(dec(1500)) != 0 {
		t.Errorf("positions[0] = %+v", in.Positions[0])
	}
	if len(in.Dividends) != 1 || in.Dividends[0].Ticker != "ICSH" {
		t.Fatalf("dividends = %+v, want ICSH from description", in.Dividends)
	}
	if in.Dividends[0].Amount.Cmp(decimal.NewFromFloat(3.60)) != 0 {
		t.Errorf("dividend amount = %v", in.Dividends[0].Amount)
	}
	if len(in.Realized) != 1 || in.Realized[0].Ticker != "AAPL" || in.Realized[0].Amount.Cmp(dec(25)) != 0 {
		t.Errorf("realized = %+v", in.Realized)
	}
	if in.ReportedTotal.Cmp(dec(2950)) != 0 || in.SettledCash.Cmp(dec(140)) != 0 {
		t.Errorf("totals = %v / %v", in.ReportedTotal, in.SettledCash)
	}
	if in.ReportDate != day(2026, time.January, 13) {
		t.Errorf("report date = %v", in.ReportDate)
	}
}

func TestInputFromStatement_ReportsIssues(t *testing.T) {
	input := "Positions,Header,Symbol,Quantity,Cost Basis,Value\n" +
		"Positions,Data,AAPL,10,N/A,1800\n"
	st, err := ParseStatement(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseStatement: %v", err)
	}
	in, issues := InputFromStatement(st)
	if len(issues) != 1 {
		t.Fatalf("issues = %v, want one", issues)
	}
	if issues[0].Section != SectionPositions || issues[0].Column != "Cost Basis" {
		t.Errorf("issue = %+v", issues[0])
	}
	if !in.Positions[0].CostBasis.IsZero() {
		t.Errorf("bad cell should coerce to zero, got %v", in.Positions[0].CostBasis)
	}
}
