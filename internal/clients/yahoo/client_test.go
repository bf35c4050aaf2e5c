package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(WithBaseURL(server.URL))
}

func TestGetQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v7/finance/quote" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbols") != "COMI.CA" {
			t.Errorf("symbols param: %s", r.URL.Query().Get("symbols"))
		}
		w.Write([]byte(`{
			"quoteResponse": {
				"result": [{
					"symbol": "COMI.CA",
					"regularMarketPrice": 82.5,
					"regularMarketChange": 1.2,
					"regularMarketChangePercent": 1.48,
					"regularMarketPreviousClose": 81.3,
					"regularMarketVolume": 1500000
				}]
			}
		}`))
	})

	quote, err := client.GetQuote(context.Background(), "COMI")
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if quote.Symbol != "COMI" || *quote.Price != 82.5 {
		t.Errorf("quote: %+v", quote)
	}
	if quote.Source != SourceName {
		t.Errorf("source: %q", quote.Source)
	}
	if quote.Open != nil {
		t.Errorf("absent field should stay nil, got %v", *quote.Open)
	}
}

func TestGetQuoteEmptyResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":[]}}`))
	})

	if _, err := client.GetQuote(context.Background(), "XXXX"); err == nil {
		t.Fatal("expected error for empty result")
	}
}

func TestGetQuoteNoUsablePrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"COMI.CA"}]}}`))
	})

	if _, err := client.GetQuote(context.Background(), "COMI"); err == nil {
		t.Fatal("expected error for missing price")
	}
}

func TestGetQuoteHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if _, err := client.GetQuote(context.Background(), "COMI"); err == nil {
		t.Fatal("expected error for 429")
	}
}

func TestGetOverview(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v10/finance/quoteSummary/COMI.CA" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"quoteSummary": {
				"result": [{
					"summaryDetail": {
						"trailingPE": {"raw": 6.8, "fmt": "6.80"},
						"dividendYield": {"raw": 0.032, "fmt": "3.20%"}
					},
					"defaultKeyStatistics": {
						"trailingEps": {"raw": 12.1, "fmt": "12.10"},
						"bookValue": {}
					},
					"financialData": {
						"recommendationKey": "strong_buy"
					}
				}]
			}
		}`))
	})

	snap, err := client.GetOverview(context.Background(), "COMI")
	if err != nil {
		t.Fatalf("GetOverview: %v", err)
	}
	if *snap.PERatio != 6.8 || *snap.EPS != 12.1 || *snap.DividendYield != 0.032 {
		t.Errorf("snapshot: %+v", snap)
	}
	if snap.BookValue != nil {
		t.Errorf("empty raw wrapper should stay nil, got %v", *snap.BookValue)
	}
	if snap.Recommendation == nil || *snap.Recommendation != "strong buy" {
		t.Errorf("recommendation: %+v", snap.Recommendation)
	}
}

func TestGetOverviewRecommendationNone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"quoteSummary": {
				"result": [{
					"summaryDetail": {},
					"defaultKeyStatistics": {},
					"financialData": {"recommendationKey": "none"}
				}]
			}
		}`))
	})

	snap, err := client.GetOverview(context.Background(), "COMI")
	if err != nil {
		t.Fatalf("GetOverview: %v", err)
	}
	if snap.Recommendation != nil {
		t.Errorf("'none' should not map to a recommendation, got %q", *snap.Recommendation)
	}
}

func TestCairoTicker(t *testing.T) {
	cases := map[string]string{
		"COMI":    "COMI.CA",
		"comi":    "COMI.CA",
		"COMI.CA": "COMI.CA",
	}
	for in, want := range cases {
		if got := cairoTicker(in); got != want {
			t.Errorf("cairoTicker(%q): want %q, got %q", in, want, got)
		}
	}
}
