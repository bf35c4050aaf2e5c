package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hazemk/borsa/internal/models"
)

// Zone edges as multiples of the fair-value anchor. Shared edges keep
// the ladder contiguous by construction.
var zoneEdges = [6]float64{0.70, 0.85, 0.95, 1.05, 1.15, 1.30}

// formulaZones derives the five-band ladder from a fair-value anchor:
// EPS times a reference P/E when both are known, the current price
// otherwise.
func (s *Service) formulaZones(symbol string, price float64, fundamentals *models.FundamentalsSnapshot) *models.Zones {
	anchor := price
	if fundamentals != nil && fundamentals.EPS != nil && *fundamentals.EPS > 0 {
		if pe := s.referencePE(symbol, fundamentals); pe > 0 {
			anchor = *fundamentals.EPS * pe
		}
	}

	edge := func(i int) float64 {
		return round2(anchor * zoneEdges[i])
	}
	return &models.Zones{
		StrongBuy:  models.ZoneBand{Min: edge(0), Max: edge(1)},
		Buy:        models.ZoneBand{Min: edge(1), Max: edge(2)},
		Hold:       models.ZoneBand{Min: edge(2), Max: edge(3)},
		Sell:       models.ZoneBand{Min: edge(3), Max: edge(4)},
		StrongSell: models.ZoneBand{Min: edge(4), Max: edge(5)},
	}
}

// referencePE prefers the snapshot's own P/E, then the static sector
// table. Returns 0 when neither is available.
func (s *Service) referencePE(symbol string, fundamentals *models.FundamentalsSnapshot) float64 {
	if fundamentals != nil && fundamentals.PERatio != nil && *fundamentals.PERatio > 0 {
		return *fundamentals.PERatio
	}
	if s.catalog != nil {
		if pe, ok := s.catalog.StaticPE(symbol); ok {
			return pe
		}
	}
	return 0
}

func (s *Service) formulaNarrative(symbol string, quote *models.PriceQuote, fundamentals *models.FundamentalsSnapshot) (string, *models.Zones) {
	price := *quote.Price
	zones := s.formulaZones(symbol, price, fundamentals)

	zone := "hold"
	switch {
	case price < zones.StrongBuy.Max:
		zone = "strong buy"
	case price < zones.Buy.Max:
		zone = "buy"
	case price < zones.Hold.Max:
		zone = "hold"
	case price < zones.Sell.Max:
		zone = "sell"
	default:
		zone = "strong sell"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s trades at %.2f EGP, inside the %s zone of its valuation ladder.", symbol, price, zone)
	if fundamentals != nil && fundamentals.PERatio != nil {
		fmt.Fprintf(&b, " The stock carries a P/E of %.1f.", *fundamentals.PERatio)
	}
	if fundamentals != nil && fundamentals.DividendYield != nil && *fundamentals.DividendYield > 0 {
		fmt.Fprintf(&b, " Dividend yield stands at %.1f%%.", *fundamentals.DividendYield)
	}
	b.WriteString(" Zones are derived from earnings-based fair value without qualitative judgment.")
	return b.String(), zones
}

// formulaPortfolio scores portfolio health from concentration. The
// Herfindahl index of position weights maps to a 0-100 score.
func formulaPortfolio(assessments []models.HoldingAssessment, totalValue float64) (int, string, string) {
	if totalValue <= 0 || len(assessments) == 0 {
		return 0, "poor", "Portfolio value could not be established from available prices."
	}

	hhi := 0.0
	for _, a := range assessments {
		if a.WeightPct == nil {
			continue
		}
		w := *a.WeightPct / 100
		hhi += w * w
	}

	// hhi is 1/n for equal weights and 1.0 for a single position.
	score := int(math.Round((1 - hhi) * 100))
	if score < 0 {
		score = 0
	}

	diversification := "poor"
	switch {
	case score >= 80:
		diversification = "excellent"
	case score >= 65:
		diversification = "good"
	case score >= 45:
		diversification = "fair"
	}

	summary := fmt.Sprintf(
		"Portfolio of %d positions worth %.2f EGP. Concentration-based health score is %d with %s diversification.",
		len(assessments), totalValue, score, diversification)
	return score, diversification, summary
}

// formulaAllocations splits fresh capital equally across the lowest
// weight priced holdings, at most four of them.
func formulaAllocations(holdings []models.Holding, quotes []*models.PriceQuote, amount float64) ([]models.Allocation, string) {
	type weighted struct {
		symbol string
		value  float64
	}
	var priced []weighted
	for i, h := range holdings {
		if i < len(quotes) && quotes[i].HasPrice() {
			priced = append(priced, weighted{h.Symbol, h.Quantity * *quotes[i].Price})
		}
	}
	if len(priced) == 0 {
		return nil, "No holding has an available price, so no allocation could be computed."
	}

	sort.Slice(priced, func(i, j int) bool { return priced[i].value < priced[j].value })
	n := len(priced)
	if n > 4 {
		n = 4
	}

	per := round2(amount / float64(n))
	allocations := make([]models.Allocation, 0, n)
	for i := 0; i < n; i++ {
		a := per
		if i == n-1 {
			// Absorb rounding drift into the last slice.
			a = round2(amount - per*float64(n-1))
		}
		allocations = append(allocations, models.Allocation{
			Symbol:    priced[i].symbol,
			Amount:    a,
			Rationale: "Underweight relative to other positions",
		})
	}
	summary := fmt.Sprintf("Split %.2f EGP equally across the %d smallest positions to reduce concentration.", amount, n)
	return allocations, summary
}

// formulaCompare ranks comparison candidates by a composite of risk
// ratios and earnings yield, higher is better.
func formulaCompare(stocks []models.StockComparison) (string, string) {
	best := ""
	bestScore := math.Inf(-1)
	for _, s := range stocks {
		score := 0.0
		if s.Metrics != nil && s.Metrics.SharpeRatio != nil {
			score += *s.Metrics.SharpeRatio
		}
		if s.Metrics != nil && s.Metrics.SortinoRatio != nil && *s.Metrics.SortinoRatio < 900 {
			score += *s.Metrics.SortinoRatio * 0.5
		}
		if s.Fundamentals != nil && s.Fundamentals.PERatio != nil && *s.Fundamentals.PERatio > 0 {
			// Earnings yield in percent.
			score += 100 / *s.Fundamentals.PERatio * 0.1
		}
		if s.Fundamentals != nil && s.Fundamentals.DividendYield != nil {
			score += *s.Fundamentals.DividendYield * 0.1
		}
		if score > bestScore {
			bestScore = score
			best = s.Symbol
		}
	}
	summary := fmt.Sprintf("%s ranks highest on combined risk-adjusted return and earnings yield.", best)
	return best, summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
