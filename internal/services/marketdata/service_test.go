package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/hazemk/borsa/internal/common"
	"github.com/hazemk/borsa/internal/models"
	"github.com/hazemk/borsa/internal/storage"
)

// mockPriceSource returns a canned quote per symbol, counting calls.
type mockPriceSource struct {
	name   string
	quotes map[string]*models.PriceQuote
	calls  int
}

func (m *mockPriceSource) Name() string { return m.name }

func (m *mockPriceSource) FetchQuote(_ context.Context, symbol string) (*models.PriceQuote, error) {
	m.calls++
	if q, ok := m.quotes[symbol]; ok {
		return q, nil
	}
	return nil, ErrUnavailable
}

type mockFundamentalsSource struct {
	name  string
	snaps map[string]*models.FundamentalsSnapshot
	calls int
}

func (m *mockFundamentalsSource) Name() string { return m.name }

func (m *mockFundamentalsSource) FetchFundamentals(_ context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	m.calls++
	if s, ok := m.snaps[symbol]; ok {
		return s, nil
	}
	return nil, ErrUnavailable
}

func quote(symbol, source string, price float64) *models.PriceQuote {
	return &models.PriceQuote{
		Symbol: symbol,
		Price:  models.Float64Ptr(price),
		Source: source,
	}
}

func newTestService(t *testing.T, prices []PriceSource, fundamentals []FundamentalsSource) *Service {
	t.Helper()
	cache := storage.NewDiskCache(common.NewSilentLogger(), t.TempDir(), 24*time.Hour)
	return NewServiceWithSources(prices, fundamentals, cache, common.NewSilentLogger())
}

func TestGetPriceFirstSourceWins(t *testing.T) {
	primary := &mockPriceSource{name: "eodhd", quotes: map[string]*models.PriceQuote{
		"COMI": quote("COMI", "eodhd", 82.5),
	}}
	secondary := &mockPriceSource{name: "tradingview", quotes: map[string]*models.PriceQuote{
		"COMI": quote("COMI", "tradingview", 81.0),
	}}
	svc := newTestService(t, []PriceSource{primary, secondary}, nil)

	got := svc.GetPrice(context.Background(), "COMI")
	if got.Source != "eodhd" || *got.Price != 82.5 {
		t.Errorf("expected primary quote, got %+v", got)
	}
	if secondary.calls != 0 {
		t.Errorf("expected short-circuit before secondary, got %d calls", secondary.calls)
	}
}

func TestGetPriceFallsBackInOrder(t *testing.T) {
	primary := &mockPriceSource{name: "eodhd"}
	secondary := &mockPriceSource{name: "tradingview", quotes: map[string]*models.PriceQuote{
		"HRHO": quote("HRHO", "tradingview", 14.2),
	}}
	tertiary := &mockPriceSource{name: "yahoo", quotes: map[string]*models.PriceQuote{
		"HRHO": quote("HRHO", "yahoo", 14.0),
	}}
	svc := newTestService(t, []PriceSource{primary, secondary, tertiary}, nil)

	got := svc.GetPrice(context.Background(), "HRHO")
	if got.Source != "tradingview" {
		t.Errorf("expected secondary to resolve, got %+v", got)
	}
	if primary.calls != 1 {
		t.Errorf("expected primary attempted once, got %d", primary.calls)
	}
	if tertiary.calls != 0 {
		t.Errorf("expected tertiary untouched, got %d calls", tertiary.calls)
	}
}

func TestGetPriceExhaustionReturnsUnavailableRecord(t *testing.T) {
	svc := newTestService(t, []PriceSource{
		&mockPriceSource{name: "eodhd"},
		&mockPriceSource{name: "tradingview"},
	}, nil)

	got := svc.GetPrice(context.Background(), "XXXX")
	if got == nil {
		t.Fatal("exhaustion must still produce a record")
	}
	if got.Price != nil {
		t.Errorf("expected nil price, got %v", *got.Price)
	}
	if got.Error == "" {
		t.Error("expected explicit error message on the record")
	}
	if got.Symbol != "XXXX" {
		t.Errorf("expected symbol echoed, got %q", got.Symbol)
	}
}

func TestGetPriceUppercasesSymbol(t *testing.T) {
	primary := &mockPriceSource{name: "eodhd", quotes: map[string]*models.PriceQuote{
		"COMI": quote("COMI", "eodhd", 82.5),
	}}
	svc := newTestService(t, []PriceSource{primary}, nil)

	got := svc.GetPrice(context.Background(), "  comi ")
	if !got.HasPrice() {
		t.Errorf("expected normalized symbol to resolve, got %+v", got)
	}
}

func TestGetPricesPreservesOrderAndIsolation(t *testing.T) {
	primary := &mockPriceSource{name: "eodhd", quotes: map[string]*models.PriceQuote{
		"COMI": quote("COMI", "eodhd", 82.5),
		"SWDY": quote("SWDY", "eodhd", 55.1),
	}}
	svc := newTestService(t, []PriceSource{primary}, nil)

	symbols := []string{"COMI", "MISSING", "SWDY"}
	results := svc.GetPrices(context.Background(), symbols)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].HasPrice() || results[0].Symbol != "COMI" {
		t.Errorf("slot 0: %+v", results[0])
	}
	if results[1].HasPrice() || results[1].Error == "" {
		t.Errorf("slot 1 should be the unavailable record: %+v", results[1])
	}
	if !results[2].HasPrice() || results[2].Symbol != "SWDY" {
		t.Errorf("slot 2: %+v", results[2])
	}
}

func TestGetFundamentalsMergesAcrossTiers(t *testing.T) {
	tier1 := &mockFundamentalsSource{name: "eodhd", snaps: map[string]*models.FundamentalsSnapshot{
		"COMI": {EPS: models.Float64Ptr(12.1), PERatio: models.Float64Ptr(6.8)},
	}}
	tier2 := &mockFundamentalsSource{name: "tradingview", snaps: map[string]*models.FundamentalsSnapshot{
		"COMI": {
			PERatio:       models.Float64Ptr(7.0), // must NOT overwrite tier 1
			DividendYield: models.Float64Ptr(3.2),
		},
	}}
	tier3 := &mockFundamentalsSource{name: "yahoo", snaps: map[string]*models.FundamentalsSnapshot{
		"COMI": {
			BookValue:      models.Float64Ptr(40.5),
			Recommendation: models.StringPtr("buy"),
		},
	}}
	svc := newTestService(t, nil, []FundamentalsSource{tier1, tier2, tier3})

	got := svc.GetFundamentals(context.Background(), "COMI")

	if got.EPS == nil || *got.EPS != 12.1 {
		t.Errorf("EPS: %+v", got.EPS)
	}
	if got.PERatio == nil || *got.PERatio != 6.8 {
		t.Errorf("expected tier 1 P/E preserved, got %+v", got.PERatio)
	}
	if got.DividendYield == nil || *got.DividendYield != 3.2 {
		t.Errorf("DividendYield: %+v", got.DividendYield)
	}
	if got.BookValue == nil || *got.BookValue != 40.5 {
		t.Errorf("BookValue: %+v", got.BookValue)
	}
	if got.Recommendation == nil || *got.Recommendation != "buy" {
		t.Errorf("Recommendation: %+v", got.Recommendation)
	}
	if got.Source != "eodhd,tradingview,yahoo" {
		t.Errorf("Source: %q", got.Source)
	}
}

func TestGetFundamentalsStopsOnceComplete(t *testing.T) {
	tier1 := &mockFundamentalsSource{name: "eodhd", snaps: map[string]*models.FundamentalsSnapshot{
		"COMI": {
			EPS:            models.Float64Ptr(12.1),
			PERatio:        models.Float64Ptr(6.8),
			BookValue:      models.Float64Ptr(40.5),
			DividendYield:  models.Float64Ptr(3.2),
			Recommendation: models.StringPtr("buy"),
		},
	}}
	tier2 := &mockFundamentalsSource{name: "tradingview"}
	svc := newTestService(t, nil, []FundamentalsSource{tier1, tier2})

	got := svc.GetFundamentals(context.Background(), "COMI")
	if !got.IsComplete() {
		t.Fatalf("expected complete snapshot, got %+v", got)
	}
	if tier2.calls != 0 {
		t.Errorf("expected tier 2 skipped after complete merge, got %d calls", tier2.calls)
	}
}

func TestGetFundamentalsAllTiersAbsent(t *testing.T) {
	tier := &mockFundamentalsSource{name: "eodhd"}
	svc := newTestService(t, nil, []FundamentalsSource{tier})

	got := svc.GetFundamentals(context.Background(), "XXXX")
	if got == nil {
		t.Fatal("expected empty snapshot, not nil")
	}
	if got.EPS != nil || got.PERatio != nil || got.Source != "" {
		t.Errorf("expected empty snapshot, got %+v", got)
	}

	// Empty results must not be cached: the next call hits the tier
	// again.
	svc.GetFundamentals(context.Background(), "XXXX")
	if tier.calls != 2 {
		t.Errorf("expected 2 tier calls across 2 requests, got %d", tier.calls)
	}
}

func TestGetFundamentalsCachesMergedResult(t *testing.T) {
	tier := &mockFundamentalsSource{name: "eodhd", snaps: map[string]*models.FundamentalsSnapshot{
		"COMI": {EPS: models.Float64Ptr(12.1)},
	}}
	svc := newTestService(t, nil, []FundamentalsSource{tier})

	first := svc.GetFundamentals(context.Background(), "COMI")
	second := svc.GetFundamentals(context.Background(), "COMI")

	if tier.calls != 1 {
		t.Errorf("expected second request served from cache, got %d tier calls", tier.calls)
	}
	if second.EPS == nil || *second.EPS != *first.EPS {
		t.Errorf("cached snapshot mismatch: %+v vs %+v", first, second)
	}
}
