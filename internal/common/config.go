// Package common provides shared utilities for Borsa
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Borsa
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Cache       CacheConfig   `toml:"cache"`
	History     HistoryConfig `toml:"history"`
	Clients     ClientsConfig `toml:"clients"`
	Market      MarketConfig  `toml:"market"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	WarmSchedule string   `toml:"warm_schedule"` // cron expression, empty disables the warm job
	WarmSymbols  []string `toml:"warm_symbols"`
}

// CacheConfig holds disk cache configuration
type CacheConfig struct {
	Path string `toml:"path"`
	TTL  string `toml:"ttl"` // freshness window, default "24h"
}

// GetTTL parses and returns the cache freshness window
func (c *CacheConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// HistoryConfig holds recommendation history storage configuration
type HistoryConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD  EODHDConfig  `toml:"eodhd"`
	TVScan TVScanConfig `toml:"tvscan"`
	Yahoo  YahooConfig  `toml:"yahoo"`
	Gemini GeminiConfig `toml:"gemini"`
}

// EODHDConfig holds the primary EOD provider configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// TVScanConfig holds the scanner-style provider configuration
type TVScanConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *TVScanConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// YahooConfig holds the tertiary quote provider configuration
type YahooConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// MarketConfig holds market-environment parameters.
type MarketConfig struct {
	// RiskFreeRate is the annual risk-free rate used by the metrics
	// calculator. Defaults to 0.10, reflecting the Egyptian T-bill
	// environment rather than a universal constant.
	RiskFreeRate float64 `toml:"risk_free_rate"`
	// LookbackDays is the default historical window (trading days).
	LookbackDays int `toml:"lookback_days"`
	// BufferDays extends the fetch window to absorb holidays and
	// provider alignment gaps.
	BufferDays int `toml:"buffer_days"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Cache: CacheConfig{
			Path: "data/cache",
			TTL:  "24h",
		},
		History: HistoryConfig{
			Path: "data/recommendation-history.json",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			TVScan: TVScanConfig{
				BaseURL: "https://scanner.tradingview.com",
				Timeout: "30s",
			},
			Yahoo: YahooConfig{
				BaseURL: "https://query1.finance.yahoo.com",
				Timeout: "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Market: MarketConfig{
			RiskFreeRate: 0.10,
			LookbackDays: 252,
			BufferDays:   30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("BORSA_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("BORSA_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("BORSA_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("BORSA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("BORSA_CACHE_PATH"); path != "" {
		config.Cache.Path = path
	}

	if path := os.Getenv("BORSA_HISTORY_PATH"); path != "" {
		config.History.Path = path
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// apiKeyEnvVars maps a key name to the ordered list of environment
// variables that may carry it. The first non-empty value wins.
var apiKeyEnvVars = map[string][]string{
	"eodhd_api_key":  {"EODHD_API_KEY", "BORSA_EODHD_API_KEY"},
	"gemini_api_key": {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// ResolveAPIKey resolves an API key from environment variables or the
// config-file fallback value.
func ResolveAPIKey(name string, fallback string) (string, error) {
	if envVarNames, ok := apiKeyEnvVars[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}
