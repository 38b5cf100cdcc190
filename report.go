package perfbook

import (
	"github.com/rs/zerolog"
	"github.com/seapoint/perfbook/date"
)

// indexStart is the base level synthetic price indices start from.
const indexStart = 100.0

// Row kinds in the performance table.
const (
	RowPortfolio = "Portfolio"
	RowBucket    = "Bucket"
	RowBenchmark = "Benchmark"
)

// PerformanceRow is one line of the windowed performance table: the whole
// portfolio, one asset-class bucket, or one benchmark, with a return per
// window label (nil when unavailable).
type PerformanceRow struct {
	Name    string
	Kind    string
	Returns map[string]*float64
}

// Report is the full structured output of a pipeline run. Presentation
// layers consume it as-is; nothing here renders.
type Report struct {
	Account     string
	Date        date.Date
	PeriodLabel string

	Holdings []Instrument
	Buckets  []BucketAggregate
	Total    Money

	NAV         NAVPerformance
	Performance []PerformanceRow
	Risk        RiskMetrics
}

// ReportBuilder wires the engines together: reconciliation, windowed
// performance against bucket benchmarks and the composite, and the risk
// regression. All collaborators are explicit; the builder holds no global
// state.
type ReportBuilder struct {
	master   *SecurityMaster
	cfg      Config
	provider ReturnProvider
	log      zerolog.Logger
}

// NewReportBuilder creates a report builder. The master may be nil and the
// provider may be empty; the report then simply carries fewer rows.
func NewReportBuilder(master *SecurityMaster, cfg Config, provider ReturnProvider, log zerolog.Logger) *ReportBuilder {
	return &ReportBuilder{master: master, cfg: cfg.withDefaults(), provider: provider, log: log}
}

// Build runs the whole pipeline over one parsed statement.
func (b *ReportBuilder) Build(st *Statement) *Report {
	in, issues := InputFromStatement(st)
	for _, issue := range issues {
		b.log.Debug().Str("section", issue.Section).Str("column", issue.Column).
			Str("raw", issue.Raw).Msg("cell coerced to zero")
	}
	if len(issues) > 0 {
		b.log.Info().Int("count", len(issues)).Msg("statement cells coerced during normalization")
	}

	rec := NewReconciler(b.master, b.cfg, b.log).Reconcile(in)

	report := &Report{
		Account:  st.AccountName(),
		Date:     rec.Date,
		Holdings: rec.Instruments,
		Buckets:  rec.Buckets,
		Total:    rec.Total,
		NAV:      NAVPerformanceFromStatement(st),
	}

	windows := StandardWindows()
	addRow := func(name, kind string, index *Series) {
		report.Performance = append(report.Performance, PerformanceRow{
			Name:    name,
			Kind:    kind,
			Returns: WindowSet(index, windows),
		})
	}

	// Whole-portfolio synthetic index from current weights.
	portReturns := SyntheticReturns(rec.Instruments, b.provider)
	addRow(RowPortfolio, RowPortfolio, CumulativeIndex(portReturns, indexStart))
	if first, _ := portReturns.First(); portReturns.Len() > 0 {
		last, _ := portReturns.Last()
		report.PeriodLabel = date.NewRange(first, last).Label()
	}

	// One row per bucket, each followed by its benchmarks.
	seenBench := make(map[string]bool)
	for _, bucket := range rec.Buckets {
		if bucket.Bucket == BucketUnclassified {
			continue
		}
		addRow(bucket.Bucket, RowBucket, b.bucketIndex(rec.Instruments, bucket.Bucket))
		for _, bench := range b.bucketBenchmarks(rec.Instruments, bucket.Bucket) {
			if seenBench[bench] {
				continue
			}
			seenBench[bench] = true
			if s, ok := b.provider.DailyReturns(bench); ok {
				addRow(bench, RowBenchmark, CumulativeIndex(s, indexStart))
			}
		}
	}

	// Risk against the composite account benchmark.
	composite := NewComposite(b.cfg.Composite, b.provider)
	report.Risk = NewRiskAnalyzer(b.cfg, b.log).
		Analyze(portReturns, composite.DailyReturns(), FactorSeries(b.cfg, b.provider))

	return report
}

// bucketIndex builds the synthetic price history of one bucket from its
// constituents, with weights renormalized within the bucket so the bucket
// is judged on its own.
func (b *ReportBuilder) bucketIndex(instruments []Instrument, bucket string) *Series {
	totalWeight := 0.0
	for _, ins := range instruments {
		if ins.Bucket == bucket && ins.Weight > 0 {
			totalWeight += ins.Weight
		}
	}
	returns := NewSeries()
	if totalWeight == 0 {
		return returns
	}
	for _, ins := range instruments {
		if ins.Bucket != bucket || ins.Weight <= 0 {
			continue
		}
		s, ok := b.provider.DailyReturns(ins.Ticker)
		if !ok {
			continue
		}
		norm := ins.Weight / totalWeight
		for on, r := range s.Values() {
			returns.AppendAdd(on, norm*r)
		}
	}
	return CumulativeIndex(returns, indexStart)
}

// bucketBenchmarks collects the benchmarks associated with a bucket's
// instruments, in master order, falling back to the configured per-bucket
// assignment when the master knows none of them.
func (b *ReportBuilder) bucketBenchmarks(instruments []Instrument, bucket string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ins := range instruments {
		if ins.Bucket != bucket {
			continue
		}
		for _, bench := range b.master.Benchmarks(ins.Ticker) {
			if !seen[bench] {
				seen[bench] = true
				out = append(out, bench)
			}
		}
	}
	if len(out) == 0 {
		out = append(out, b.cfg.Benchmarks[bucket]...)
	}
	return out
}
