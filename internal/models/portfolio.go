package models

import "time"

// Holding is one position in a client-supplied portfolio.
type Holding struct {
	Symbol   string  `json:"symbol" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
	AvgCost  float64 `json:"avgCost" validate:"gte=0"`
}

// HoldingAssessment is the per-position verdict inside a portfolio
// analysis.
type HoldingAssessment struct {
	Symbol       string   `json:"symbol"`
	CurrentPrice *float64 `json:"currentPrice"`
	MarketValue  *float64 `json:"marketValue"`
	WeightPct    *float64 `json:"weightPct"`
	GainLossPct  *float64 `json:"gainLossPct"`
	Verdict      string   `json:"verdict"` // "hold", "trim", "add", "exit"
	Comment      string   `json:"comment,omitempty"`
}

// PortfolioAnalysis is the response of the portfolio health endpoint.
type PortfolioAnalysis struct {
	TotalValue      *float64            `json:"totalValue"`
	HealthScore     int                 `json:"healthScore"` // 0-100
	Diversification string              `json:"diversification"`
	Holdings        []HoldingAssessment `json:"holdings"`
	Summary         string              `json:"summary"`
	Source          string              `json:"source"` // "llm" or "formula"
	GeneratedAt     time.Time           `json:"generatedAt"`
}

// Allocation is one suggested purchase inside a deploy-capital result.
type Allocation struct {
	Symbol    string  `json:"symbol"`
	Amount    float64 `json:"amount"`
	Rationale string  `json:"rationale,omitempty"`
}

// DeployCapitalResult is the response of the capital allocation endpoint.
type DeployCapitalResult struct {
	Amount      float64      `json:"amount"`
	Allocations []Allocation `json:"allocations"`
	Summary     string       `json:"summary"`
	Source      string       `json:"source"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// Recommendation is one persisted deploy-capital outcome. The history
// file holds these newest-first.
type Recommendation struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	Amount    float64             `json:"amount"`
	Result    DeployCapitalResult `json:"result"`
}

// StockComparison is the per-symbol card inside a comparison result.
type StockComparison struct {
	Symbol       string                `json:"symbol"`
	Quote        *PriceQuote           `json:"quote"`
	Fundamentals *FundamentalsSnapshot `json:"fundamentals"`
	Metrics      *RiskMetrics          `json:"metrics"`
}

// CompareStocksResult ranks 2-3 symbols against each other.
type CompareStocksResult struct {
	Stocks      []StockComparison `json:"stocks"`
	Winner      string            `json:"winner"`
	Summary     string            `json:"summary"`
	Source      string            `json:"source"`
	GeneratedAt time.Time         `json:"generatedAt"`
}
