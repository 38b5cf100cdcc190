package perfbook

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// Config carries every policy knob of the pipeline explicitly. There is no
// module-level mutable state: engines receive a Config value and nothing
// else. The zero value is usable; withDefaults fills the gaps.
type Config struct {
	// Currency is the statement's reporting currency.
	Currency string `toml:"currency"`

	// Materiality is the absolute discrepancy between reported and
	// computed net asset value below which no accrual entry is
	// synthesized. Defaults to 1 major unit.
	Materiality decimal.Decimal `toml:"-"`

	// MaterialityAmount is the TOML-facing form of Materiality.
	MaterialityAmount float64 `toml:"materiality"`

	// Synthetic instrument identities.
	CashTicker    string `toml:"cash_ticker"`
	CashBucket    string `toml:"cash_bucket"`
	AccrualTicker string `toml:"accrual_ticker"`
	AccrualBucket string `toml:"accrual_bucket"`

	// BucketOrder is the presentation order of asset-class buckets.
	BucketOrder []string `toml:"bucket_order"`

	// Benchmarks maps each bucket to its benchmark tickers, primary first.
	Benchmarks map[string][]string `toml:"benchmarks"`

	// Composite is the weight map of the blended account benchmark.
	Composite map[string]float64 `toml:"composite"`

	// Factors maps factor labels to their proxy tickers for the risk
	// regression.
	Factors map[string]string `toml:"factors"`

	// LookbackYears bounds the regression horizon; 0 means full history.
	LookbackYears int `toml:"lookback_years"`

	// RiskFreeRate is the annualized risk-free rate used by the Sharpe
	// ratio when no live rate is supplied.
	RiskFreeRate float64 `toml:"risk_free_rate"`
}

// DefaultConfig returns the stock configuration: USD, $1 materiality, the
// standard bucket order and benchmark assignments.
func DefaultConfig() Config {
	return Config{
		Currency:      "USD",
		Materiality:   decimal.NewFromInt(1),
		CashTicker:    "CASH_BAL",
		CashBucket:    BucketCash,
		AccrualTicker: "ACCRUALS",
		AccrualBucket: BucketOther,
		BucketOrder: []string{
			BucketUSEquities,
			BucketIntlEquities,
			BucketFixedIncome,
			BucketAlternatives,
			BucketCash,
			BucketOther,
		},
		Benchmarks: map[string][]string{
			BucketUSEquities:   {"SPY", "IWV"},
			BucketIntlEquities: {"ACWI", "VXUS"},
			BucketFixedIncome:  {"AGG", "BND"},
			BucketAlternatives: {"VNQ", "GLD"},
			BucketCash:         {"BIL"},
			BucketUnclassified: {},
		},
		Composite: map[string]float64{"SPY": 0.6, "AGG": 0.4},
		Factors: map[string]string{
			"Size (IWM)":      "IWM",
			"Value (IWD)":     "IWD",
			"Quality (QUAL)":  "QUAL",
			"Momentum (MTUM)": "MTUM",
		},
		LookbackYears: 1,
		RiskFreeRate:  0.04,
	}
}

// LoadConfig reads a TOML configuration file. Fields absent from the file
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config %q: %w", path, err)
	}
	cfg := DefaultConfig()
	cfg.MaterialityAmount = 0
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config %q: %w", path, err)
	}
	if cfg.MaterialityAmount != 0 {
		cfg.Materiality = decimal.NewFromFloat(cfg.MaterialityAmount)
	}
	return cfg.withDefaults(), nil
}

// withDefaults fills zero fields so engines can trust the value.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Currency == "" {
		c.Currency = def.Currency
	}
	if c.Materiality.IsZero() {
		c.Materiality = def.Materiality
	}
	if c.CashTicker == "" {
		c.CashTicker = def.CashTicker
	}
	if c.CashBucket == "" {
		c.CashBucket = def.CashBucket
	}
	if c.AccrualTicker == "" {
		c.AccrualTicker = def.AccrualTicker
	}
	if c.AccrualBucket == "" {
		c.AccrualBucket = def.AccrualBucket
	}
	if len(c.BucketOrder) == 0 {
		c.BucketOrder = def.BucketOrder
	}
	if len(c.Benchmarks) == 0 {
		c.Benchmarks = def.Benchmarks
	}
	if len(c.Composite) == 0 {
		c.Composite = def.Composite
	}
	if len(c.Factors) == 0 {
		c.Factors = def.Factors
	}
	if c.RiskFreeRate == 0 {
		c.RiskFreeRate = def.RiskFreeRate
	}
	return c
}
