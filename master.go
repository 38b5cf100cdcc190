package perfbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Bucket labels used by classification.
const (
	BucketUSEquities   = "U.S. Equities"
	BucketIntlEquities = "International Equities"
	BucketFixedIncome  = "Fixed Income"
	BucketAlternatives = "Alternative Assets"
	BucketCash         = "Cash"
	BucketOther        = "Other"
	BucketUnclassified = "Unclassified"
)

// masterRecord is one security master row.
type masterRecord struct {
	name               string
	assetClass         string
	benchmarkPrimary   string
	benchmarkSecondary string
}

// SecurityMaster maps tickers to their official name, asset-class bucket
// and benchmark assignments. It is the classification brain of the report:
// the reconciliation engine asks it for buckets, the composite constructor
// for benchmark sets.
type SecurityMaster struct {
	records map[string]masterRecord
	order   []string // tickers in file order
}

// NewSecurityMaster returns an empty master. Lookups against it resolve to
// Unclassified, which pushes every instrument through keyword
// auto-classification.
func NewSecurityMaster() *SecurityMaster {
	return &SecurityMaster{records: make(map[string]masterRecord)}
}

// LoadSecurityMaster reads a master CSV file with columns
// ticker, name, asset_class, benchmark_primary, benchmark_secondary.
func LoadSecurityMaster(path string) (*SecurityMaster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open security master %q: %w", path, err)
	}
	defer f.Close()
	return ParseSecurityMaster(f)
}

// ParseSecurityMaster reads master records from a CSV stream. Header names
// are matched case-insensitively with surrounding spaces ignored.
func ParseSecurityMaster(r io.Reader) (*SecurityMaster, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read security master header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["ticker"]; !ok {
		return nil, fmt.Errorf("security master has no ticker column")
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	m := NewSecurityMaster()
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read security master record: %w", err)
		}
		ticker := NormalizeTicker(cell(row, "ticker"))
		if ticker == "" {
			continue
		}
		if _, dup := m.records[ticker]; !dup {
			m.order = append(m.order, ticker)
		}
		m.records[ticker] = masterRecord{
			name:               cell(row, "name"),
			assetClass:         cell(row, "asset_class"),
			benchmarkPrimary:   NormalizeTicker(cell(row, "benchmark_primary")),
			benchmarkSecondary: NormalizeTicker(cell(row, "benchmark_secondary")),
		}
	}
	return m, nil
}

// Name returns the official security name for a ticker, "" when unknown.
func (m *SecurityMaster) Name(ticker string) string {
	if m == nil {
		return ""
	}
	return m.records[NormalizeTicker(ticker)].name
}

// AssetClass returns the bucket for a ticker, or Unclassified.
func (m *SecurityMaster) AssetClass(ticker string) string {
	if m == nil {
		return BucketUnclassified
	}
	rec, ok := m.records[NormalizeTicker(ticker)]
	if !ok || rec.assetClass == "" {
		return BucketUnclassified
	}
	return rec.assetClass
}

// Benchmarks returns the ordered, deduplicated benchmark list for one
// ticker: primary first, then secondary.
func (m *SecurityMaster) Benchmarks(ticker string) []string {
	if m == nil {
		return nil
	}
	rec, ok := m.records[NormalizeTicker(ticker)]
	if !ok {
		return nil
	}
	var out []string
	if rec.benchmarkPrimary != "" {
		out = append(out, rec.benchmarkPrimary)
	}
	if rec.benchmarkSecondary != "" && rec.benchmarkSecondary != rec.benchmarkPrimary {
		out = append(out, rec.benchmarkSecondary)
	}
	return out
}

// UniqueBenchmarks returns every distinct benchmark used across the master,
// in file order.
func (m *SecurityMaster) UniqueBenchmarks() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, ticker := range m.order {
		for _, b := range m.Benchmarks(ticker) {
			if !seen[b] {
				seen[b] = true
				out = append(out, b)
			}
		}
	}
	return out
}

// TickersInBucket returns the tickers assigned to one bucket, in file order.
func (m *SecurityMaster) TickersInBucket(bucket string) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, ticker := range m.order {
		if m.records[ticker].assetClass == bucket {
			out = append(out, ticker)
		}
	}
	return out
}

// AllTickers returns assets and benchmarks combined, deduplicated, in file
// order. This is the full download list for a market-data provider.
func (m *SecurityMaster) AllTickers() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, ticker := range m.order {
		add(ticker)
	}
	for _, b := range m.UniqueBenchmarks() {
		add(b)
	}
	return out
}

// Hardcoded classification lists, checked before keywords.
var (
	cashTickers = map[string]bool{"ICSH": true}
	intlTickers = map[string]bool{"VEA": true, "VWO": true, "IMTM": true}
	fiTickers   = map[string]bool{"BND": true, "VGSH": true, "VGIT": true}
	altTickers  = map[string]bool{"VNQ": true, "BCI": true}
)

var (
	intlKeywords = []string{"INTL", "INTERNATIONAL", "EMERGING", "EUROPE", "PACIFIC", "ASIA", "CHINA", "JAPAN", "EX-US", "DEVELOPED MKT", "VXUS", "VEA", "VWO"}
	fiKeywords   = []string{"BOND", "TREASURY", "AGGREGATE", "FIXED INC", "MUNICIPAL", "AGNCY", "CORP BD", "AGG", "LQD"}
	altKeywords  = []string{"REIT", "REAL ESTATE", "GOLD", "SILVER", "COMMODITY", "CRYPTO", "BITCOIN", "OIL", "GLD", "IAU", "SLV", "VNQ"}
)

// AutoClassify determines an instrument's bucket from its ticker and
// official name: known-ticker lists first, then name keywords, defaulting
// to U.S. equities.
func AutoClassify(ticker, name string) string {
	t := NormalizeTicker(ticker)
	n := strings.ToUpper(strings.TrimSpace(name))

	switch {
	case cashTickers[t]:
		return BucketCash
	case intlTickers[t]:
		return BucketIntlEquities
	case fiTickers[t]:
		return BucketFixedIncome
	case altTickers[t]:
		return BucketAlternatives
	}

	contains := func(keywords []string) bool {
		for _, k := range keywords {
			if strings.Contains(n, k) {
				return true
			}
		}
		return false
	}
	switch {
	case contains(intlKeywords):
		return BucketIntlEquities
	case contains(fiKeywords):
		return BucketFixedIncome
	case contains(altKeywords):
		return BucketAlternatives
	}
	return BucketUSEquities
}
