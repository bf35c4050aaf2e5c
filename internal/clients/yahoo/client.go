// Package yahoo provides a client for the Yahoo Finance quote and
// company-overview endpoints, the tertiary best-effort data source.
// No API key is required.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hazemk/borsa/internal/common"
	"github.com/hazemk/borsa/internal/interfaces"
	"github.com/hazemk/borsa/internal/models"
)

const (
	DefaultBaseURL = "https://query1.finance.yahoo.com"
	DefaultTimeout = 30 * time.Second

	SourceName = "yahoo"
)

// Client implements the YahooClient interface.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// cairoTicker converts a bare EGX symbol to Yahoo's Cairo suffix.
// "COMI" -> "COMI.CA".
func cairoTicker(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".CA"
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Yahoo Finance request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Yahoo Finance error: status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// quoteResponse is the v7 quote payload subset we use.
type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string   `json:"symbol"`
			RegularMarketPrice         *float64 `json:"regularMarketPrice"`
			RegularMarketChange        *float64 `json:"regularMarketChange"`
			RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
			RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
			RegularMarketOpen          *float64 `json:"regularMarketOpen"`
			RegularMarketDayHigh       *float64 `json:"regularMarketDayHigh"`
			RegularMarketDayLow        *float64 `json:"regularMarketDayLow"`
			RegularMarketVolume        *int64   `json:"regularMarketVolume"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// GetQuote retrieves a best-effort quote.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	params := url.Values{}
	params.Set("symbols", cairoTicker(symbol))

	var resp quoteResponse
	if err := c.get(ctx, "/v7/finance/quote", params, &resp); err != nil {
		return nil, err
	}

	results := resp.QuoteResponse.Result
	if len(results) == 0 {
		return nil, fmt.Errorf("Yahoo Finance returned no data for %s", symbol)
	}
	r := results[0]
	if r.RegularMarketPrice == nil || *r.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("Yahoo Finance returned no usable price for %s", symbol)
	}

	return &models.PriceQuote{
		Symbol:        strings.ToUpper(symbol),
		Price:         r.RegularMarketPrice,
		Change:        r.RegularMarketChange,
		ChangePercent: r.RegularMarketChangePercent,
		PreviousClose: r.RegularMarketPreviousClose,
		Open:          r.RegularMarketOpen,
		High:          r.RegularMarketDayHigh,
		Low:           r.RegularMarketDayLow,
		Volume:        r.RegularMarketVolume,
		Source:        SourceName,
	}, nil
}

// rawValue is Yahoo's {raw, fmt} number wrapper.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

// overviewResponse is the quoteSummary payload subset we use.
type overviewResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE    rawValue `json:"trailingPE"`
				DividendYield rawValue `json:"dividendYield"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				TrailingEPS rawValue `json:"trailingEps"`
				BookValue   rawValue `json:"bookValue"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				RecommendationKey string `json:"recommendationKey"`
			} `json:"financialData"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// GetOverview retrieves the company-overview fundamentals subset.
func (c *Client) GetOverview(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	params := url.Values{}
	params.Set("modules", "summaryDetail,defaultKeyStatistics,financialData")

	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", cairoTicker(symbol))

	var resp overviewResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	results := resp.QuoteSummary.Result
	if len(results) == 0 {
		return nil, fmt.Errorf("Yahoo Finance returned no overview for %s", symbol)
	}
	r := results[0]

	snap := &models.FundamentalsSnapshot{
		EPS:           r.DefaultKeyStatistics.TrailingEPS.Raw,
		PERatio:       r.SummaryDetail.TrailingPE.Raw,
		BookValue:     r.DefaultKeyStatistics.BookValue.Raw,
		DividendYield: r.SummaryDetail.DividendYield.Raw,
		Source:        SourceName,
	}
	if key := r.FinancialData.RecommendationKey; key != "" && key != "none" {
		snap.Recommendation = models.StringPtr(strings.ReplaceAll(key, "_", " "))
	}
	return snap, nil
}

// Ensure Client implements YahooClient
var _ interfaces.YahooClient = (*Client)(nil)
