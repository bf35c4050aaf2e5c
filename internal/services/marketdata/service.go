// Package marketdata resolves quotes, fundamentals, and historical
// series through ordered provider fallback chains with disk-backed
// caching.
package marketdata

import (
	"context"
	"errors"

	"github.com/hazemk/borsa/internal/common"
	"github.com/hazemk/borsa/internal/interfaces"
	"github.com/hazemk/borsa/internal/models"
	"github.com/hazemk/borsa/internal/refdata"
	"github.com/hazemk/borsa/internal/storage"
)

// ErrUnavailable is the uniform "absent" signal from a provider tier:
// non-success status, malformed payload, non-positive price, and network
// errors all collapse into it. The orchestrator advances to the next
// tier on absence.
var ErrUnavailable = errors.New("data unavailable from source")

// PriceSource is one tier in the price fallback chain.
type PriceSource interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (*models.PriceQuote, error)
}

// FundamentalsSource is one tier in the fundamentals fallback chain.
type FundamentalsSource interface {
	Name() string
	FetchFundamentals(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error)
}

// Service walks the provider chains.
type Service struct {
	priceSources      []PriceSource
	fundamentalsTiers []FundamentalsSource
	eodhd             interfaces.EODHDClient
	cache             *storage.DiskCache
	logger            *common.Logger
	defaultLookback   int
}

// NewService wires the default chains: EODHD (cache-backed) primary,
// TradingView scanner secondary, Yahoo tertiary; fundamentals merge
// across EODHD, scanner, Yahoo overview, and the static catalog.
// Any nil client drops its tier from the chain.
func NewService(
	eodhd interfaces.EODHDClient,
	tvscan interfaces.TVScanClient,
	yahoo interfaces.YahooClient,
	catalog *refdata.Catalog,
	cache *storage.DiskCache,
	cfg common.MarketConfig,
	logger *common.Logger,
) *Service {
	s := &Service{
		eodhd:           eodhd,
		cache:           cache,
		logger:          logger,
		defaultLookback: cfg.LookbackDays + cfg.BufferDays,
	}
	if s.defaultLookback <= 0 {
		s.defaultLookback = 252 + 30
	}

	if eodhd != nil {
		s.priceSources = append(s.priceSources, &eodhdPriceSource{client: eodhd, cache: cache, logger: logger})
		s.fundamentalsTiers = append(s.fundamentalsTiers, &eodhdFundamentalsSource{client: eodhd, logger: logger})
	}
	if tvscan != nil {
		s.priceSources = append(s.priceSources, &tvscanPriceSource{client: tvscan, logger: logger})
		s.fundamentalsTiers = append(s.fundamentalsTiers, &tvscanFundamentalsSource{client: tvscan, logger: logger})
	}
	if yahoo != nil {
		s.priceSources = append(s.priceSources, &yahooPriceSource{client: yahoo, logger: logger})
		s.fundamentalsTiers = append(s.fundamentalsTiers, &yahooFundamentalsSource{client: yahoo, logger: logger})
	}
	if catalog != nil {
		s.fundamentalsTiers = append(s.fundamentalsTiers, &staticFundamentalsSource{catalog: catalog})
	}

	return s
}

// NewServiceWithSources builds a service over explicit chains. Used by
// tests to swap in mock tiers.
func NewServiceWithSources(
	priceSources []PriceSource,
	fundamentalsTiers []FundamentalsSource,
	cache *storage.DiskCache,
	logger *common.Logger,
) *Service {
	return &Service{
		priceSources:      priceSources,
		fundamentalsTiers: fundamentalsTiers,
		cache:             cache,
		logger:            logger,
		defaultLookback:   252 + 30,
	}
}

// DefaultLookback returns the configured historical window in trading
// days, buffer included.
func (s *Service) DefaultLookback() int {
	return s.defaultLookback
}

// Ensure Service implements MarketDataService
var _ interfaces.MarketDataService = (*Service)(nil)
