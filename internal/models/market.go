// Package models defines the domain types shared across Borsa services.
package models

// PriceQuote is the canonical quote shape produced by every price
// provider. Numeric fields are pointers: nil means the provider did not
// supply the value. Invariant: Error is set if and only if Price is nil.
type PriceQuote struct {
	Symbol        string   `json:"symbol"`
	Price         *float64 `json:"price"`
	Change        *float64 `json:"change"`
	ChangePercent *float64 `json:"changePercent"`
	PreviousClose *float64 `json:"previousClose"`
	Open          *float64 `json:"open"`
	High          *float64 `json:"high"`
	Low           *float64 `json:"low"`
	Volume        *int64   `json:"volume"`
	Source        string   `json:"source,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// HasPrice reports whether the quote carries a usable positive price.
func (q *PriceQuote) HasPrice() bool {
	return q != nil && q.Price != nil && *q.Price > 0
}

// UnavailableQuote builds the explicit record returned when every
// provider tier has been exhausted.
func UnavailableQuote(symbol string) *PriceQuote {
	return &PriceQuote{
		Symbol: symbol,
		Error:  "Price not available for this stock",
	}
}

// FundamentalsSnapshot aggregates fundamentals fields. Any subset may be
// nil; downstream consumers must treat every field as optional. Source
// lists the tiers that contributed at least one field.
type FundamentalsSnapshot struct {
	EPS            *float64 `json:"eps"`
	PERatio        *float64 `json:"peRatio"`
	BookValue      *float64 `json:"bookValue"`
	DividendYield  *float64 `json:"dividendYield"`
	Recommendation *string  `json:"recommendation"`
	Source         string   `json:"source,omitempty"`
}

// IsComplete reports whether every numeric field has been filled, which
// lets the fundamentals chain stop walking tiers early.
func (f *FundamentalsSnapshot) IsComplete() bool {
	return f.EPS != nil && f.PERatio != nil && f.BookValue != nil &&
		f.DividendYield != nil && f.Recommendation != nil
}

// HistoricalSeries is an ordered sequence of closing prices,
// chronological ascending.
type HistoricalSeries struct {
	Symbol string    `json:"symbol"`
	Closes []float64 `json:"closes"`
}

// RiskMetrics holds annualized risk ratios derived from a historical
// price series. Nil means the ratio could not be computed from the
// available data.
type RiskMetrics struct {
	SharpeRatio  *float64 `json:"sharpeRatio"`
	SortinoRatio *float64 `json:"sortinoRatio"`
}

// Float64Ptr returns a pointer to v. Convenience for building quotes.
func Float64Ptr(v float64) *float64 { return &v }

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 { return &v }

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
