package perfbook

import (
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/seapoint/perfbook/date"
	"gonum.org/v1/gonum/stat"
)

// tradingDays is the annualization base for daily statistics.
const tradingDays = 252

// RiskMetrics is the output of the risk regression: single-benchmark OLS
// statistics plus one independent beta per factor.
type RiskMetrics struct {
	// Beta and R2 come from the OLS of portfolio return on benchmark
	// return. IdiosyncraticRisk is the annualized standard deviation of
	// the regression residuals: return variance the benchmark does not
	// explain.
	Beta              float64
	R2                float64
	IdiosyncraticRisk float64

	// Volatility is the annualized standard deviation of portfolio
	// returns; SharpeRatio uses it with the configured risk-free rate.
	Volatility  float64
	SharpeRatio float64

	// FactorBetas holds one slope per factor label, each from its own
	// univariate regression. Factors are independent single-variable
	// exposures, not a joint attribution model.
	FactorBetas map[string]float64

	// Observations counts the aligned portfolio/benchmark dates used.
	Observations int

	// OK is false when the benchmark regression itself had too little
	// aligned data; the metrics are then all zero.
	OK bool
}

// Map flattens the metrics into the metric-name keyed form downstream
// tables consume.
func (m RiskMetrics) Map() map[string]float64 {
	out := map[string]float64{
		"Beta":               m.Beta,
		"R2":                 m.R2,
		"Idiosyncratic Risk": m.IdiosyncraticRisk,
		"Annual Volatility":  m.Volatility,
		"Sharpe Ratio":       m.SharpeRatio,
	}
	for label, beta := range m.FactorBetas {
		out["Beta: "+label] = beta
	}
	return out
}

// RiskAnalyzer regresses a portfolio return series against a benchmark and
// a set of factor series.
type RiskAnalyzer struct {
	cfg Config
	log zerolog.Logger
}

// NewRiskAnalyzer creates a risk analyzer with the given policy knobs
// (lookback horizon, risk-free rate).
func NewRiskAnalyzer(cfg Config, log zerolog.Logger) *RiskAnalyzer {
	return &RiskAnalyzer{cfg: cfg.withDefaults(), log: log}
}

// alignInner inner-joins two series on date, returning paired observation
// slices. Unmatched dates are dropped: a regression on mismatched dates is
// meaningless.
func alignInner(a, b *Series) (x, y []float64) {
	for on, va := range a.Values() {
		if vb, ok := b.Get(on); ok {
			x = append(x, va)
			y = append(y, vb)
		}
	}
	return x, y
}

// horizonStart resolves the lookback start date from the portfolio's last
// observation. Benchmark and factor series are bounded by the same start so
// every regression runs over one common horizon, even when a provider
// series extends past the statement date.
func (ra *RiskAnalyzer) horizonStart(portfolio *Series) (date.Date, bool) {
	if ra.cfg.LookbackYears <= 0 || portfolio.Len() == 0 {
		return date.Date{}, false
	}
	end, _ := portfolio.Last()
	return end.AddYears(-ra.cfg.LookbackYears), true
}

// Analyze runs the benchmark regression and one univariate regression per
// factor.
//
// Insufficient aligned data for the benchmark regression degrades the whole
// metric set to zero values with OK=false. An individual factor with fewer
// than 2 aligned observations keeps a 0.0 beta and never aborts the others.
func (ra *RiskAnalyzer) Analyze(portfolio, benchmark *Series, factors map[string]*Series) RiskMetrics {
	metrics := RiskMetrics{FactorBetas: make(map[string]float64, len(factors))}
	for label := range factors {
		metrics.FactorBetas[label] = 0
	}

	start, bounded := ra.horizonStart(portfolio)
	clip := func(s *Series) *Series {
		if !bounded {
			return s
		}
		return s.From(start)
	}

	port := clip(portfolio)
	bench, y := alignInner(clip(benchmark), port)
	metrics.Observations = len(y)
	if len(y) < 2 {
		ra.log.Warn().Int("observations", len(y)).
			Msg("insufficient aligned history for benchmark regression")
		return metrics
	}

	alpha, beta := stat.LinearRegression(bench, y, nil, false)
	corr := stat.Correlation(bench, y, nil)
	residuals := make([]float64, len(y))
	for i := range y {
		residuals[i] = y[i] - (alpha + beta*bench[i])
	}

	metrics.Beta = beta
	metrics.R2 = corr * corr
	metrics.IdiosyncraticRisk = stat.StdDev(residuals, nil) * math.Sqrt(tradingDays)
	metrics.Volatility = stat.StdDev(y, nil) * math.Sqrt(tradingDays)
	if metrics.Volatility > 0 {
		annualized := stat.Mean(y, nil) * tradingDays
		metrics.SharpeRatio = (annualized - ra.cfg.RiskFreeRate) / metrics.Volatility
	}
	metrics.OK = true

	// Factor exposures, each on its own aligned sample.
	labels := make([]string, 0, len(factors))
	for label := range factors {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fx, fy := alignInner(clip(factors[label]), port)
		if len(fy) < 2 {
			ra.log.Warn().Str("factor", label).Int("observations", len(fy)).
				Msg("factor skipped, insufficient aligned history")
			continue
		}
		_, factorBeta := stat.LinearRegression(fx, fy, nil, false)
		metrics.FactorBetas[label] = factorBeta
	}
	return metrics
}

// SyntheticReturns builds the weighted daily return series implied by the
// current holdings: sum of weight * daily return across instruments with a
// known series. Instruments the provider does not cover contribute nothing,
// matching their treatment as zero-volatility positions.
func SyntheticReturns(instruments []Instrument, provider ReturnProvider) *Series {
	out := NewSeries()
	for _, ins := range instruments {
		if ins.Synthetic || ins.Weight <= 0 {
			continue
		}
		s, ok := provider.DailyReturns(ins.Ticker)
		if !ok {
			continue
		}
		for on, r := range s.Values() {
			out.AppendAdd(on, ins.Weight*r)
		}
	}
	return out
}

// FactorSeries resolves the configured factor map against a provider,
// keeping only factors with available data.
func FactorSeries(cfg Config, provider ReturnProvider) map[string]*Series {
	out := make(map[string]*Series, len(cfg.Factors))
	for label, ticker := range cfg.Factors {
		if s, ok := provider.DailyReturns(ticker); ok {
			out[label] = s
		}
	}
	return out
}
