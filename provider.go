package perfbook

// ReturnProvider supplies daily return series per ticker. The market-data
// collaborator behind it (and whatever transport it uses) lives outside
// this package; the pipeline only consumes already-materialized series.
type ReturnProvider interface {
	// DailyReturns returns the daily return series for a ticker, and
	// whether any data exists for it.
	DailyReturns(ticker string) (*Series, bool)
}

// MemoryProvider is an in-memory ReturnProvider, the working store for
// series fetched upstream and the natural test double.
type MemoryProvider struct {
	series map[string]*Series
}

// NewMemoryProvider returns an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{series: make(map[string]*Series)}
}

// Add registers a ticker's daily return series, replacing any previous one.
func (p *MemoryProvider) Add(ticker string, s *Series) *MemoryProvider {
	p.series[NormalizeTicker(ticker)] = s
	return p
}

// DailyReturns implements ReturnProvider.
func (p *MemoryProvider) DailyReturns(ticker string) (*Series, bool) {
	s, ok := p.series[NormalizeTicker(ticker)]
	return s, ok
}

// Tickers returns the tickers with registered series.
func (p *MemoryProvider) Tickers() []string {
	out := make([]string, 0, len(p.series))
	for t := range p.series {
		out = append(out, t)
	}
	return out
}
