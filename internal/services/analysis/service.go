// Package analysis composes price, fundamentals, and risk metrics into
// full analyses, delegating the valuation narrative to the LLM with a
// deterministic formula fallback.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hazemk/borsa/internal/clients/gemini"
	"github.com/hazemk/borsa/internal/common"
	"github.com/hazemk/borsa/internal/interfaces"
	"github.com/hazemk/borsa/internal/models"
	"github.com/hazemk/borsa/internal/refdata"
	"github.com/hazemk/borsa/internal/services/metrics"
	"github.com/hazemk/borsa/internal/storage"
)

// ErrPriceUnavailable is returned when no provider tier could produce a
// price, making analysis impossible.
var ErrPriceUnavailable = errors.New("price not available")

// ErrAnalysisUnavailable is returned when the model answered with
// unparseable output and no stale analysis exists to replay. The HTTP
// layer maps it to a service-unavailable response.
var ErrAnalysisUnavailable = errors.New("analysis temporarily unavailable")

// Service implements AnalysisService.
type Service struct {
	market  interfaces.MarketDataService
	llm     interfaces.LLMClient
	calc    *metrics.Calculator
	catalog *refdata.Catalog
	cache   *storage.DiskCache
	history *storage.RecommendationStore
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates the analysis service. llm may be nil — every
// operation that would call it falls back to its deterministic path.
func NewService(
	market interfaces.MarketDataService,
	llm interfaces.LLMClient,
	calc *metrics.Calculator,
	catalog *refdata.Catalog,
	cache *storage.DiskCache,
	history *storage.RecommendationStore,
	logger *common.Logger,
) *Service {
	return &Service{
		market:  market,
		llm:     llm,
		calc:    calc,
		catalog: catalog,
		cache:   cache,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// Compose builds the full analysis for a symbol. The result is cached
// by symbol for the freshness window unless refresh forces a rebuild.
func (s *Service) Compose(ctx context.Context, symbol string, refresh bool) (*models.AnalysisResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	key := storage.Key("analysis", symbol)

	if !refresh && s.cache != nil {
		var cached models.AnalysisResult
		if s.cache.Get(key, &cached) {
			cached.Source = "cached"
			return &cached, nil
		}
	}

	quote := s.market.GetPrice(ctx, symbol)
	if !quote.HasPrice() {
		return nil, fmt.Errorf("%w for %s", ErrPriceUnavailable, symbol)
	}

	fundamentals := s.market.GetFundamentals(ctx, symbol)

	riskMetrics := &models.RiskMetrics{}
	if series, err := s.market.GetHistory(ctx, symbol, 0); err == nil {
		riskMetrics = s.calc.Compute(series)
	} else {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Historical series unavailable, metrics omitted")
	}

	result := &models.AnalysisResult{
		Symbol:       symbol,
		Quote:        quote,
		Fundamentals: fundamentals,
		Metrics:      riskMetrics,
		GeneratedAt:  s.now(),
	}

	narrative, zones, err := s.narrate(ctx, symbol, quote, fundamentals, riskMetrics)
	if err != nil {
		// LLM exhausted or malformed: replay the stale analysis cache
		// first.
		if s.cache != nil {
			var stale models.AnalysisResult
			if s.cache.GetStale(key, &stale) {
				s.logger.Info().Str("symbol", symbol).Msg("Serving stale analysis after LLM failure")
				stale.Source = "cached"
				return &stale, nil
			}
		}
		// Unparseable model output with nothing to replay surfaces as an
		// error; the formula covers the remaining failure modes.
		if errors.Is(err, gemini.ErrMalformedOutput) {
			return nil, fmt.Errorf("%w for %s", ErrAnalysisUnavailable, symbol)
		}
		narrative, zones = s.formulaNarrative(symbol, quote, fundamentals)
		result.Source = "formula"
	} else {
		result.Source = "llm"
	}

	result.Narrative = narrative
	result.Zones = zones

	if s.cache != nil {
		s.cache.Set(key, result)
	}
	return result, nil
}

// narrate asks the LLM for a narrative and zone ladder. Returns an error
// when no LLM is configured, when the call fails after retries, or when
// the returned zones are not a valid contiguous ladder.
func (s *Service) narrate(ctx context.Context, symbol string, quote *models.PriceQuote, fundamentals *models.FundamentalsSnapshot, riskMetrics *models.RiskMetrics) (string, *models.Zones, error) {
	if s.llm == nil {
		return "", nil, errors.New("LLM not configured")
	}

	prompt := buildAnalysisPrompt(symbol, s.companyName(symbol), quote, fundamentals, riskMetrics)

	var resp struct {
		Narrative string       `json:"narrative"`
		Zones     models.Zones `json:"zones"`
	}
	if err := s.llm.GenerateJSON(ctx, prompt, &resp); err != nil {
		return "", nil, err
	}
	if resp.Narrative == "" || !resp.Zones.IsContiguous() {
		return "", nil, errors.New("model returned invalid analysis shape")
	}
	return resp.Narrative, &resp.Zones, nil
}

func (s *Service) companyName(symbol string) string {
	if s.catalog != nil {
		if name, ok := s.catalog.CompanyName(symbol); ok {
			return name
		}
	}
	return symbol
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
