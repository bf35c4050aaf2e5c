package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/hazemk/borsa/internal/models"
)

func TestFormulaZonesAnchoredOnEarnings(t *testing.T) {
	svc := newTestService(t, egxMarket(), nil, 24*time.Hour)

	fundamentals := &models.FundamentalsSnapshot{
		EPS:     models.Float64Ptr(10),
		PERatio: models.Float64Ptr(5),
	}
	zones := svc.formulaZones("COMI", 80, fundamentals)

	// Anchor is EPS * P/E = 50.
	if !zones.IsContiguous() {
		t.Fatalf("zones must be contiguous: %+v", zones)
	}
	if zones.StrongBuy.Min != 35 || zones.StrongBuy.Max != 42.5 {
		t.Errorf("strong buy band: %+v", zones.StrongBuy)
	}
	if zones.Hold.Min != 47.5 || zones.Hold.Max != 52.5 {
		t.Errorf("hold band: %+v", zones.Hold)
	}
	if zones.StrongSell.Max != 65 {
		t.Errorf("strong sell band: %+v", zones.StrongSell)
	}
}

func TestFormulaZonesFallBackToPriceAnchor(t *testing.T) {
	svc := newTestService(t, egxMarket(), nil, 24*time.Hour)

	// No usable earnings for an unknown symbol: price anchors the ladder.
	zones := svc.formulaZones("ZZZZ", 100, &models.FundamentalsSnapshot{})
	if !zones.IsContiguous() {
		t.Fatalf("zones must be contiguous: %+v", zones)
	}
	if zones.Hold.Min != 95 || zones.Hold.Max != 105 {
		t.Errorf("hold band should straddle the price: %+v", zones.Hold)
	}
}

func TestFormulaZonesUseStaticPE(t *testing.T) {
	svc := newTestService(t, egxMarket(), nil, 24*time.Hour)

	// EPS known, provider P/E missing: the catalog's sector figure
	// anchors fair value.
	fundamentals := &models.FundamentalsSnapshot{EPS: models.Float64Ptr(10)}
	zones := svc.formulaZones("COMI", 80, fundamentals)

	pe, ok := svc.catalog.StaticPE("COMI")
	if !ok {
		t.Fatal("catalog must carry COMI")
	}
	wantHoldMin := math.Round(10*pe*0.95*100) / 100
	if zones.Hold.Min != wantHoldMin {
		t.Errorf("hold min: want %v, got %v", wantHoldMin, zones.Hold.Min)
	}
}

func TestFormulaPortfolioScoring(t *testing.T) {
	single := []models.HoldingAssessment{
		{Symbol: "COMI", WeightPct: models.Float64Ptr(100)},
	}
	score, diversification, _ := formulaPortfolio(single, 1000)
	if score != 0 || diversification != "poor" {
		t.Errorf("single position: score=%d diversification=%q", score, diversification)
	}

	spread := []models.HoldingAssessment{
		{Symbol: "A", WeightPct: models.Float64Ptr(20)},
		{Symbol: "B", WeightPct: models.Float64Ptr(20)},
		{Symbol: "C", WeightPct: models.Float64Ptr(20)},
		{Symbol: "D", WeightPct: models.Float64Ptr(20)},
		{Symbol: "E", WeightPct: models.Float64Ptr(20)},
	}
	score, diversification, _ = formulaPortfolio(spread, 1000)
	if score != 80 {
		t.Errorf("equal five-way split: want 80, got %d", score)
	}
	if diversification != "excellent" {
		t.Errorf("diversification: %q", diversification)
	}
}

func TestFormulaPortfolioNoValue(t *testing.T) {
	score, diversification, summary := formulaPortfolio(nil, 0)
	if score != 0 || diversification != "poor" || summary == "" {
		t.Errorf("degenerate portfolio: %d %q %q", score, diversification, summary)
	}
}

func TestFormulaAllocationsCapsAtFour(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "A", Quantity: 1},
		{Symbol: "B", Quantity: 2},
		{Symbol: "C", Quantity: 3},
		{Symbol: "D", Quantity: 4},
		{Symbol: "E", Quantity: 5},
	}
	quotes := make([]*models.PriceQuote, len(holdings))
	for i, h := range holdings {
		quotes[i] = &models.PriceQuote{Symbol: h.Symbol, Price: models.Float64Ptr(10)}
	}

	allocations, _ := formulaAllocations(holdings, quotes, 1000)
	if len(allocations) != 4 {
		t.Fatalf("expected at most 4 allocations, got %d", len(allocations))
	}
	total := 0.0
	for _, a := range allocations {
		total += a.Amount
	}
	if math.Abs(total-1000) > 0.01 {
		t.Errorf("allocations sum: %v", total)
	}
	// The largest position is the one left out.
	for _, a := range allocations {
		if a.Symbol == "E" {
			t.Error("largest position should not receive fresh capital")
		}
	}
}

func TestFormulaAllocationsNoPrices(t *testing.T) {
	holdings := []models.Holding{{Symbol: "A", Quantity: 1}}
	quotes := []*models.PriceQuote{models.UnavailableQuote("A")}

	allocations, summary := formulaAllocations(holdings, quotes, 1000)
	if allocations != nil {
		t.Errorf("expected no allocations, got %+v", allocations)
	}
	if summary == "" {
		t.Error("expected explanatory summary")
	}
}

func TestZoneLadderEdges(t *testing.T) {
	// Shared edge table keeps adjacent bands glued together for any
	// anchor.
	for i := 1; i < len(zoneEdges); i++ {
		if zoneEdges[i] <= zoneEdges[i-1] {
			t.Fatalf("edges must be strictly ascending: %v", zoneEdges)
		}
	}
}
