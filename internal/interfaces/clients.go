// Package interfaces defines the service and client contracts used for
// dependency injection across Borsa.
package interfaces

import (
	"context"

	"github.com/hazemk/borsa/internal/models"
)

// EODHDClient is the primary, keyed end-of-day data provider.
type EODHDClient interface {
	GetQuote(ctx context.Context, symbol string) (*models.PriceQuote, error)
	GetHistory(ctx context.Context, symbol string, days int) (*models.HistoricalSeries, error)
	GetFundamentals(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error)
}

// TVScanClient is the secondary scanner-style provider (unauthenticated).
type TVScanClient interface {
	GetQuote(ctx context.Context, symbol string) (*models.PriceQuote, error)
	GetFundamentals(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error)
}

// YahooClient is the tertiary quote and company-overview provider
// (unauthenticated).
type YahooClient interface {
	GetQuote(ctx context.Context, symbol string) (*models.PriceQuote, error)
	GetOverview(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error)
}

// LLMClient generates narrative analysis and extracts structured data
// from images.
type LLMClient interface {
	GenerateJSON(ctx context.Context, prompt string, dest interface{}) error
	ExtractFromImage(ctx context.Context, imageBase64 string, prompt string, dest interface{}) error
}
