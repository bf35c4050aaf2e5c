// Package app wires configuration, clients, storage, and services into
// the shared application core used by cmd/borsa-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hazemk/borsa/internal/clients/eodhd"
	"github.com/hazemk/borsa/internal/clients/gemini"
	"github.com/hazemk/borsa/internal/clients/tvscan"
	"github.com/hazemk/borsa/internal/clients/yahoo"
	"github.com/hazemk/borsa/internal/common"
	"github.com/hazemk/borsa/internal/interfaces"
	"github.com/hazemk/borsa/internal/refdata"
	"github.com/hazemk/borsa/internal/services/analysis"
	"github.com/hazemk/borsa/internal/services/marketdata"
	"github.com/hazemk/borsa/internal/services/metrics"
	"github.com/hazemk/borsa/internal/storage"
)

// App holds all initialized clients, storage, and services.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Cache           *storage.DiskCache
	History         *storage.RecommendationStore
	Catalog         *refdata.Catalog
	EODHDClient     interfaces.EODHDClient
	TVScanClient    interfaces.TVScanClient
	YahooClient     interfaces.YahooClient
	GeminiClient    interfaces.LLMClient
	MarketService   interfaces.MarketDataService
	AnalysisService interfaces.AnalysisService
	StartupTime     time.Time

	warmCron *warmScheduler
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes all clients, storage, and services. configPath may
// be empty, in which case BORSA_CONFIG and the binary directory are
// checked.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("BORSA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "borsa.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/borsa.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative data paths to the binary directory
	if config.Cache.Path != "" && !filepath.IsAbs(config.Cache.Path) {
		config.Cache.Path = filepath.Join(binDir, config.Cache.Path)
	}
	if config.History.Path != "" && !filepath.IsAbs(config.History.Path) {
		config.History.Path = filepath.Join(binDir, config.History.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	cache := storage.NewDiskCache(logger, config.Cache.Path, config.Cache.GetTTL())
	history := storage.NewRecommendationStore(logger, config.History.Path)
	catalog := refdata.NewCatalog()

	// Resolve API keys
	eodhdKey, err := common.ResolveAPIKey("eodhd_api_key", config.Clients.EODHD.APIKey)
	if err != nil {
		logger.Warn().Msg("EODHD API key not configured - primary price source disabled")
	}

	geminiKey, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - analysis falls back to formula")
	}

	// Initialize API clients
	var eodhdClient interfaces.EODHDClient
	if eodhdKey != "" {
		eodhdClient = eodhd.NewClient(eodhdKey,
			eodhd.WithLogger(logger),
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		)
	}

	tvscanClient := tvscan.NewClient(
		tvscan.WithLogger(logger),
		tvscan.WithBaseURL(config.Clients.TVScan.BaseURL),
		tvscan.WithTimeout(config.Clients.TVScan.GetTimeout()),
	)

	yahooClient := yahoo.NewClient(
		yahoo.WithLogger(logger),
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	var geminiClient interfaces.LLMClient
	if geminiKey != "" {
		gc, err := gemini.NewClient(context.Background(), geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Gemini client initialization failed - analysis falls back to formula")
		} else {
			geminiClient = gc
		}
	}

	marketService := marketdata.NewService(
		eodhdClient, tvscanClient, yahooClient, catalog, cache, config.Market, logger)

	calculator := metrics.NewCalculator(config.Market.RiskFreeRate)
	analysisService := analysis.NewService(
		marketService, geminiClient, calculator, catalog, cache, history, logger)

	a := &App{
		Config:          config,
		Logger:          logger,
		Cache:           cache,
		History:         history,
		Catalog:         catalog,
		EODHDClient:     eodhdClient,
		TVScanClient:    tvscanClient,
		YahooClient:     yahooClient,
		GeminiClient:    geminiClient,
		MarketService:   marketService,
		AnalysisService: analysisService,
		StartupTime:     time.Now(),
	}

	logger.Info().
		Str("environment", config.Environment).
		Bool("eodhd", eodhdClient != nil).
		Bool("gemini", geminiClient != nil).
		Msg("Application initialized")

	return a, nil
}

// Close stops background jobs.
func (a *App) Close() {
	a.StopWarmScheduler()
}
