package interfaces

import (
	"context"

	"github.com/hazemk/borsa/internal/models"
)

// MarketDataService resolves quotes, fundamentals, and historical series
// through the provider fallback chains.
type MarketDataService interface {
	GetPrice(ctx context.Context, symbol string) *models.PriceQuote
	GetPrices(ctx context.Context, symbols []string) []*models.PriceQuote
	GetFundamentals(ctx context.Context, symbol string) *models.FundamentalsSnapshot
	GetHistory(ctx context.Context, symbol string, days int) (*models.HistoricalSeries, error)
}

// AnalysisService composes full stock analyses and portfolio-level
// assessments.
type AnalysisService interface {
	Compose(ctx context.Context, symbol string, refresh bool) (*models.AnalysisResult, error)
	AnalyzePortfolio(ctx context.Context, holdings []models.Holding) (*models.PortfolioAnalysis, error)
	DeployCapital(ctx context.Context, holdings []models.Holding, amount float64) (*models.DeployCapitalResult, error)
	CompareStocks(ctx context.Context, symbols []string, holdings []models.Holding) (*models.CompareStocksResult, error)
	ExtractTransactions(ctx context.Context, imageBase64 string) ([]models.Transaction, error)
}
