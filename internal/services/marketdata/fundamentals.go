package marketdata

import (
	"context"
	"strings"

	"github.com/hazemk/borsa/internal/common"
	"github.com/hazemk/borsa/internal/interfaces"
	"github.com/hazemk/borsa/internal/models"
	"github.com/hazemk/borsa/internal/refdata"
	"github.com/hazemk/borsa/internal/storage"
)

// eodhdFundamentalsSource is tier 1: the paid-API path.
type eodhdFundamentalsSource struct {
	client interfaces.EODHDClient
	logger *common.Logger
}

func (s *eodhdFundamentalsSource) Name() string { return "eodhd" }

func (s *eodhdFundamentalsSource) FetchFundamentals(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	snap, err := s.client.GetFundamentals(ctx, symbol)
	if err != nil {
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Primary fundamentals provider failed")
		return nil, ErrUnavailable
	}
	return snap, nil
}

// tvscanFundamentalsSource is tier 2: scanner columns.
type tvscanFundamentalsSource struct {
	client interfaces.TVScanClient
	logger *common.Logger
}

func (s *tvscanFundamentalsSource) Name() string { return "tradingview" }

func (s *tvscanFundamentalsSource) FetchFundamentals(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	snap, err := s.client.GetFundamentals(ctx, symbol)
	if err != nil {
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Scanner fundamentals provider failed")
		return nil, ErrUnavailable
	}
	return snap, nil
}

// yahooFundamentalsSource is tier 3: the company-overview API.
type yahooFundamentalsSource struct {
	client interfaces.YahooClient
	logger *common.Logger
}

func (s *yahooFundamentalsSource) Name() string { return "yahoo" }

func (s *yahooFundamentalsSource) FetchFundamentals(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	snap, err := s.client.GetOverview(ctx, symbol)
	if err != nil {
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Overview fundamentals provider failed")
		return nil, ErrUnavailable
	}
	return snap, nil
}

// staticFundamentalsSource is tier 4: the static catalog table. It can
// only ever contribute a P/E figure.
type staticFundamentalsSource struct {
	catalog *refdata.Catalog
}

func (s *staticFundamentalsSource) Name() string { return "static" }

func (s *staticFundamentalsSource) FetchFundamentals(_ context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	pe, ok := s.catalog.StaticPE(symbol)
	if !ok {
		return nil, ErrUnavailable
	}
	return &models.FundamentalsSnapshot{
		PERatio: models.Float64Ptr(pe),
		Source:  "static",
	}, nil
}

// mergeFundamentals fills nil fields of dst from src. Unlike the price
// chain, later tiers fill gaps left by earlier ones instead of being
// skipped wholesale. Returns true if src contributed anything.
func mergeFundamentals(dst, src *models.FundamentalsSnapshot) bool {
	if src == nil {
		return false
	}
	contributed := false
	if dst.EPS == nil && src.EPS != nil {
		dst.EPS = src.EPS
		contributed = true
	}
	if dst.PERatio == nil && src.PERatio != nil {
		dst.PERatio = src.PERatio
		contributed = true
	}
	if dst.BookValue == nil && src.BookValue != nil {
		dst.BookValue = src.BookValue
		contributed = true
	}
	if dst.DividendYield == nil && src.DividendYield != nil {
		dst.DividendYield = src.DividendYield
		contributed = true
	}
	if dst.Recommendation == nil && src.Recommendation != nil {
		dst.Recommendation = src.Recommendation
		contributed = true
	}
	return contributed
}

// GetFundamentals walks the four-tier fundamentals chain with a
// fill-the-gaps merge: each tier only supplies fields still missing.
// The merged snapshot is cached for the freshness window; a fully empty
// result is returned (not cached) when every tier comes back absent.
func (s *Service) GetFundamentals(ctx context.Context, symbol string) *models.FundamentalsSnapshot {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	key := storage.Key("fundamentals", symbol)

	var cached models.FundamentalsSnapshot
	if s.cache != nil && s.cache.Get(key, &cached) {
		return &cached
	}

	merged := &models.FundamentalsSnapshot{}
	var contributors []string

	for _, tier := range s.fundamentalsTiers {
		snap, err := tier.FetchFundamentals(ctx, symbol)
		if err != nil {
			continue
		}
		if mergeFundamentals(merged, snap) {
			contributors = append(contributors, tier.Name())
		}
		if merged.IsComplete() {
			break
		}
	}

	merged.Source = strings.Join(contributors, ",")

	if len(contributors) > 0 && s.cache != nil {
		s.cache.Set(key, merged)
	}
	return merged
}
