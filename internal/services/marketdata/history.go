package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hazemk/borsa/internal/models"
	"github.com/hazemk/borsa/internal/storage"
)

// GetHistory returns up to days ascending closing prices for a symbol.
// The series is cached for the freshness window (it is the most
// expensive fetch); on provider failure the stale cache is replayed
// before giving up.
func (s *Service) GetHistory(ctx context.Context, symbol string, days int) (*models.HistoricalSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if days <= 0 {
		days = s.defaultLookback
	}
	key := storage.Key("historical", symbol, strconv.Itoa(days))

	var cached models.HistoricalSeries
	if s.cache != nil && s.cache.Get(key, &cached) {
		return &cached, nil
	}

	if s.eodhd == nil {
		if s.cache != nil && s.cache.GetStale(key, &cached) {
			return &cached, nil
		}
		return nil, fmt.Errorf("no historical data provider configured")
	}

	// The client sorts bars by date ascending before stripping to
	// closes; upstream ordering is not guaranteed in either direction.
	series, err := s.eodhd.GetHistory(ctx, symbol, days)
	if err != nil || series == nil || len(series.Closes) == 0 {
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Historical fetch failed")
		}
		if s.cache != nil && s.cache.GetStale(key, &cached) {
			return &cached, nil
		}
		return nil, fmt.Errorf("historical data not available for %s", symbol)
	}

	if s.cache != nil {
		s.cache.Set(key, series)
	}
	return series, nil
}
