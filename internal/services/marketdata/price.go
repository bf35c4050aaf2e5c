package marketdata

import (
	"context"
	"strings"
	"sync"

	"github.com/hazemk/borsa/internal/common"
	"github.com/hazemk/borsa/internal/interfaces"
	"github.com/hazemk/borsa/internal/models"
	"github.com/hazemk/borsa/internal/storage"
)

// SourceCached marks quotes served from the disk cache.
const SourceCached = "cached"

// eodhdPriceSource is the primary tier. It is the only tier with cache
// behavior: the fresh cache is consulted before the network call, a
// success writes the cache, and a failure falls back to the stale cache.
// Staleness rescue is deliberately scoped here, not at the orchestrator.
type eodhdPriceSource struct {
	client interfaces.EODHDClient
	cache  *storage.DiskCache
	logger *common.Logger
}

func (s *eodhdPriceSource) Name() string { return "eodhd" }

func (s *eodhdPriceSource) FetchQuote(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	key := storage.Key("price", strings.ToUpper(symbol))

	var cached models.PriceQuote
	if s.cache.Get(key, &cached) && cached.HasPrice() {
		cached.Source = SourceCached
		return &cached, nil
	}

	quote, err := s.client.GetQuote(ctx, symbol)
	if err == nil && quote.HasPrice() {
		s.cache.Set(key, quote)
		return quote, nil
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Primary price provider failed")
	}

	// Last-known-stale replay, scoped to the primary failure path.
	if s.cache.GetStale(key, &cached) && cached.HasPrice() {
		cached.Source = SourceCached
		return &cached, nil
	}

	return nil, ErrUnavailable
}

// tvscanPriceSource is the secondary tier: unauthenticated scanner,
// best effort, no caching.
type tvscanPriceSource struct {
	client interfaces.TVScanClient
	logger *common.Logger
}

func (s *tvscanPriceSource) Name() string { return "tradingview" }

func (s *tvscanPriceSource) FetchQuote(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	quote, err := s.client.GetQuote(ctx, symbol)
	if err != nil || !quote.HasPrice() {
		if err != nil {
			s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Scanner price provider failed")
		}
		return nil, ErrUnavailable
	}
	return quote, nil
}

// yahooPriceSource is the tertiary tier: unauthenticated, best effort,
// no caching.
type yahooPriceSource struct {
	client interfaces.YahooClient
	logger *common.Logger
}

func (s *yahooPriceSource) Name() string { return "yahoo" }

func (s *yahooPriceSource) FetchQuote(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	quote, err := s.client.GetQuote(ctx, symbol)
	if err != nil || !quote.HasPrice() {
		if err != nil {
			s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Tertiary price provider failed")
		}
		return nil, ErrUnavailable
	}
	return quote, nil
}

// GetPrice walks the ordered price chain, short-circuiting on the first
// usable quote. Exhaustion produces an explicit unavailable record, not
// an error — the HTTP layer never sees a failed quote as an exception.
func (s *Service) GetPrice(ctx context.Context, symbol string) *models.PriceQuote {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	for _, source := range s.priceSources {
		quote, err := source.FetchQuote(ctx, symbol)
		if err != nil {
			continue
		}
		s.logger.Debug().Str("symbol", symbol).Str("source", quote.Source).Msg("Quote resolved")
		return quote
	}

	s.logger.Info().Str("symbol", symbol).Msg("All price providers exhausted")
	return models.UnavailableQuote(symbol)
}

// GetPrices resolves a batch of symbols concurrently: N independent
// fetches, wait-for-all, result order and length matching the request.
// One symbol's failure never affects the others.
func (s *Service) GetPrices(ctx context.Context, symbols []string) []*models.PriceQuote {
	results := make([]*models.PriceQuote, len(symbols))

	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			results[i] = s.GetPrice(ctx, symbol)
		}(i, symbol)
	}
	wg.Wait()

	return results
}
