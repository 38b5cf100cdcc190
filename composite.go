package perfbook

import "github.com/seapoint/perfbook/date"

// Composite blends several benchmark return series into one weighted
// series. Weights are fixed for the whole history and need not sum to 1,
// though in practice they do.
type Composite struct {
	weights  map[string]float64
	provider ReturnProvider
}

// NewComposite builds a composite benchmark over the given weight map.
func NewComposite(weights map[string]float64, provider ReturnProvider) *Composite {
	w := make(map[string]float64, len(weights))
	for ticker, weight := range weights {
		w[NormalizeTicker(ticker)] = weight
	}
	return &Composite{weights: w, provider: provider}
}

// DailyReturns computes the weighted sum of constituent returns per date,
// over the union of all constituent dates. A constituent with no
// observation on a date contributes 0% for that date only; the ticker is
// not excluded. Missing days are rare (holidays, late listings) relative
// to full history, which is why the gap is absorbed instead of the weights
// being renormalized.
func (c *Composite) DailyReturns() *Series {
	var constituents []*Series
	var weights []float64
	for ticker, weight := range c.weights {
		s, ok := c.provider.DailyReturns(ticker)
		if !ok {
			continue
		}
		constituents = append(constituents, s)
		weights = append(weights, weight)
	}

	blended := NewSeries()
	for on := range date.Merge(constituents...) {
		total := 0.0
		for i, s := range constituents {
			if r, ok := s.Get(on); ok {
				total += weights[i] * r
			}
		}
		blended.Append(on, total)
	}
	return blended
}

// Index converts the composite's daily returns into a cumulative index
// starting at the given level, for identical window treatment as the
// portfolio series.
func (c *Composite) Index(start float64) *Series {
	return CumulativeIndex(c.DailyReturns(), start)
}
