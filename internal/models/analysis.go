package models

import "time"

// ZoneBand is a single price range within the valuation ladder.
type ZoneBand struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Zones is the five-band valuation ladder. Bands are ordered ascending
// and contiguous: each band's Min equals the previous band's Max.
type Zones struct {
	StrongBuy  ZoneBand `json:"strongBuy"`
	Buy        ZoneBand `json:"buy"`
	Hold       ZoneBand `json:"hold"`
	Sell       ZoneBand `json:"sell"`
	StrongSell ZoneBand `json:"strongSell"`
}

// Bands returns the zones in ascending order.
func (z Zones) Bands() []ZoneBand {
	return []ZoneBand{z.StrongBuy, z.Buy, z.Hold, z.Sell, z.StrongSell}
}

// IsContiguous reports whether the five bands form an ascending,
// non-overlapping ladder.
func (z Zones) IsContiguous() bool {
	bands := z.Bands()
	for i, b := range bands {
		if b.Max < b.Min {
			return false
		}
		if i > 0 && bands[i-1].Max != b.Min {
			return false
		}
	}
	return true
}

// AnalysisResult is the composite payload served by the analysis
// endpoint: quote, fundamentals, risk metrics, and a valuation narrative
// with zone bands from the LLM or the deterministic formula fallback.
type AnalysisResult struct {
	Symbol       string                `json:"symbol"`
	Quote        *PriceQuote           `json:"quote"`
	Fundamentals *FundamentalsSnapshot `json:"fundamentals"`
	Metrics      *RiskMetrics          `json:"metrics"`
	Narrative    string                `json:"narrative"`
	Zones        *Zones                `json:"zones"`
	Source       string                `json:"source"` // "llm", "formula", or "cached"
	GeneratedAt  time.Time             `json:"generatedAt"`
}

// Transaction is one row extracted from a brokerage statement image.
type Transaction struct {
	Symbol   string  `json:"symbol"`
	Type     string  `json:"type"` // "buy" or "sell"
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Date     string  `json:"date,omitempty"`
}
