// Package eodhd provides a client for the EODHD API, the primary keyed
// data source for EGX quotes, fundamentals, and historical prices.
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hazemk/borsa/internal/common"
	"github.com/hazemk/borsa/internal/interfaces"
	"github.com/hazemk/borsa/internal/models"
)

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second

	SourceName = "eodhd"
)

// flexFloat64 handles JSON values that may be either a number or a
// string ("N/A", "", or a numeric string).
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the EODHDClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
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

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// egxTicker converts a bare EGX symbol to the EODHD ticker format.
// "COMI" -> "COMI.EGX"; already-suffixed symbols pass through.
func egxTicker(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".EGX"
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// realTimeResponse is the /real-time payload. Numeric fields arrive as
// "NA" strings for thinly traded EGX symbols, hence flexFloat64.
type realTimeResponse struct {
	Code          string      `json:"code"`
	Close         flexFloat64 `json:"close"`
	Change        flexFloat64 `json:"change"`
	ChangePercent flexFloat64 `json:"change_p"`
	PreviousClose flexFloat64 `json:"previousClose"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Volume        int64       `json:"volume"`
}

// GetQuote retrieves the latest quote for an EGX symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	path := fmt.Sprintf("/real-time/%s", egxTicker(symbol))

	var resp realTimeResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Close <= 0 {
		return nil, fmt.Errorf("EODHD returned non-positive price for %s", symbol)
	}

	quote := &models.PriceQuote{
		Symbol:        strings.ToUpper(symbol),
		Price:         models.Float64Ptr(float64(resp.Close)),
		Change:        models.Float64Ptr(float64(resp.Change)),
		ChangePercent: models.Float64Ptr(float64(resp.ChangePercent)),
		Source:        SourceName,
	}
	if resp.PreviousClose > 0 {
		quote.PreviousClose = models.Float64Ptr(float64(resp.PreviousClose))
	}
	if resp.Open > 0 {
		quote.Open = models.Float64Ptr(float64(resp.Open))
	}
	if resp.High > 0 {
		quote.High = models.Float64Ptr(float64(resp.High))
	}
	if resp.Low > 0 {
		quote.Low = models.Float64Ptr(float64(resp.Low))
	}
	if resp.Volume > 0 {
		quote.Volume = models.Int64Ptr(resp.Volume)
	}
	return quote, nil
}

// eodBarResponse represents one end-of-day bar.
type eodBarResponse struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// GetHistory retrieves up to days trading days of closing prices,
// normalized chronological ascending regardless of provider ordering.
func (c *Client) GetHistory(ctx context.Context, symbol string, days int) (*models.HistoricalSeries, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("from", time.Now().AddDate(0, 0, -int(float64(days)*1.5)).Format("2006-01-02"))

	path := fmt.Sprintf("/eod/%s", egxTicker(symbol))

	var bars []eodBarResponse
	if err := c.get(ctx, path, params, &bars); err != nil {
		return nil, err
	}

	// Upstream ordering is not guaranteed; sort by date ascending.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })

	closes := make([]float64, 0, len(bars))
	for _, bar := range bars {
		if bar.Close > 0 {
			closes = append(closes, bar.Close)
		}
	}
	if len(closes) > days {
		closes = closes[len(closes)-days:]
	}

	return &models.HistoricalSeries{
		Symbol: strings.ToUpper(symbol),
		Closes: closes,
	}, nil
}

// fundamentalsResponse is the subset of the /fundamentals payload we use.
type fundamentalsResponse struct {
	Highlights struct {
		PERatio       flexFloat64 `json:"PERatio"`
		EarningsShare flexFloat64 `json:"EarningsShare"`
		BookValue     flexFloat64 `json:"BookValue"`
		DividendYield flexFloat64 `json:"DividendYield"`
	} `json:"Highlights"`
	AnalystRatings struct {
		Rating flexFloat64 `json:"Rating"`
	} `json:"AnalystRatings"`
}

// GetFundamentals retrieves fundamental data for an EGX symbol. Fields
// the API omits stay nil in the snapshot.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	path := fmt.Sprintf("/fundamentals/%s", egxTicker(symbol))

	var resp fundamentalsResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	snap := &models.FundamentalsSnapshot{Source: SourceName}
	if resp.Highlights.EarningsShare != 0 {
		snap.EPS = models.Float64Ptr(float64(resp.Highlights.EarningsShare))
	}
	if resp.Highlights.PERatio > 0 {
		snap.PERatio = models.Float64Ptr(float64(resp.Highlights.PERatio))
	}
	if resp.Highlights.BookValue > 0 {
		snap.BookValue = models.Float64Ptr(float64(resp.Highlights.BookValue))
	}
	if resp.Highlights.DividendYield > 0 {
		snap.DividendYield = models.Float64Ptr(float64(resp.Highlights.DividendYield))
	}
	if r := float64(resp.AnalystRatings.Rating); r > 0 {
		snap.Recommendation = models.StringPtr(classifyRating(r))
	}
	return snap, nil
}

// classifyRating buckets the 1-5 analyst rating scale.
func classifyRating(rating float64) string {
	switch {
	case rating >= 4.5:
		return "strong buy"
	case rating >= 3.5:
		return "buy"
	case rating >= 2.5:
		return "hold"
	case rating >= 1.5:
		return "sell"
	default:
		return "strong sell"
	}
}

// Ensure Client implements EODHDClient
var _ interfaces.EODHDClient = (*Client)(nil)
