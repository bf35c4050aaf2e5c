// Package tvscan provides a client for the TradingView scanner endpoint,
// the secondary best-effort source for EGX quotes and fundamentals.
// No API key is required — this is a public endpoint.
package tvscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hazemk/borsa/internal/common"
	"github.com/hazemk/borsa/internal/interfaces"
	"github.com/hazemk/borsa/internal/models"
)

const (
	DefaultBaseURL = "https://scanner.tradingview.com"
	DefaultTimeout = 30 * time.Second

	SourceName = "tradingview"
)

// Columns requested from the scanner, in order. Quote columns first,
// fundamentals columns after.
var scanColumns = []string{
	"close", "change", "change_abs", "open", "high", "low", "volume",
	"earnings_per_share_basic_ttm", "price_earnings_ttm",
	"dividend_yield_recent", "book_value_per_share_fq",
	"Recommend.All",
}

// Client implements the TVScanClient interface.
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

// NewClient creates a new scanner client.
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

type scanRequest struct {
	Symbols struct {
		Tickers []string `json:"tickers"`
	} `json:"symbols"`
	Columns []string `json:"columns"`
}

type scanResponse struct {
	Data []struct {
		Symbol string        `json:"s"`
		Values []interface{} `json:"d"`
	} `json:"data"`
}

// scan posts a single-symbol scan and returns the column values.
func (c *Client) scan(ctx context.Context, symbol string) ([]interface{}, error) {
	var reqBody scanRequest
	reqBody.Symbols.Tickers = []string{"EGX:" + strings.ToUpper(symbol)}
	reqBody.Columns = scanColumns

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scan request: %w", err)
	}

	reqURL := c.baseURL + "/egypt/scan"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	c.logger.Debug().Str("symbol", symbol).Msg("TradingView scanner request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Dur("elapsed", elapsed).Msg("TradingView scanner request failed")
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Str("symbol", symbol).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("TradingView scanner non-OK response")
		return nil, fmt.Errorf("TradingView scanner error: status %d for symbol %s", resp.StatusCode, symbol)
	}

	var apiResp scanResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(apiResp.Data) == 0 || len(apiResp.Data[0].Values) < len(scanColumns) {
		return nil, fmt.Errorf("TradingView scanner returned no data for %s", symbol)
	}
	return apiResp.Data[0].Values, nil
}

// col extracts a numeric column by index; returns nil for null or
// non-numeric values.
func col(values []interface{}, idx int) *float64 {
	if idx >= len(values) {
		return nil
	}
	if v, ok := values[idx].(float64); ok {
		return &v
	}
	return nil
}

// GetQuote retrieves a best-effort quote from the scanner.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	values, err := c.scan(ctx, symbol)
	if err != nil {
		return nil, err
	}

	price := col(values, 0)
	if price == nil || *price <= 0 {
		return nil, fmt.Errorf("TradingView returned no usable price for %s", symbol)
	}

	quote := &models.PriceQuote{
		Symbol:        strings.ToUpper(symbol),
		Price:         price,
		ChangePercent: col(values, 1),
		Change:        col(values, 2),
		Open:          col(values, 3),
		High:          col(values, 4),
		Low:           col(values, 5),
		Source:        SourceName,
	}
	if v := col(values, 6); v != nil {
		quote.Volume = models.Int64Ptr(int64(*v))
	}
	if quote.Open != nil && quote.Change != nil {
		quote.PreviousClose = models.Float64Ptr(*price - *quote.Change)
	}
	return quote, nil
}

// GetFundamentals retrieves the fundamentals columns from the scanner.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	values, err := c.scan(ctx, symbol)
	if err != nil {
		return nil, err
	}

	snap := &models.FundamentalsSnapshot{
		EPS:           col(values, 7),
		PERatio:       col(values, 8),
		DividendYield: col(values, 9),
		BookValue:     col(values, 10),
		Source:        SourceName,
	}
	if rec := col(values, 11); rec != nil {
		snap.Recommendation = models.StringPtr(classifyRecommend(*rec))
	}
	return snap, nil
}

// classifyRecommend buckets TradingView's -1..1 composite rating.
func classifyRecommend(v float64) string {
	switch {
	case v >= 0.5:
		return "strong buy"
	case v >= 0.1:
		return "buy"
	case v > -0.1:
		return "hold"
	case v > -0.5:
		return "sell"
	default:
		return "strong sell"
	}
}

// Ensure Client implements TVScanClient
var _ interfaces.TVScanClient = (*Client)(nil)
