package server

import (
	"net/http"

	"github.com/hazemk/borsa/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)

	// Prices
	mux.HandleFunc("/api/prices/batch", s.handlePriceBatch)
	mux.HandleFunc("/api/prices/", s.handlePriceGet)

	// Analysis
	mux.HandleFunc("/api/analysis/", s.handleAnalysis)
	mux.HandleFunc("/api/compare-stocks", s.handleCompareStocks)

	// Portfolio
	mux.HandleFunc("/api/portfolio-analysis", s.handlePortfolioAnalysis)
	mux.HandleFunc("/api/deploy-capital", s.handleDeployCapital)
	mux.HandleFunc("/api/recommendation-history/", s.handleRecommendationByID)
	mux.HandleFunc("/api/recommendation-history", s.handleRecommendationList)

	// Extraction
	mux.HandleFunc("/api/extract-transactions", s.handleExtractTransactions)

	// Maintenance (dev mode only)
	mux.HandleFunc("/api/cache", s.handleCacheClear)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":       s.app.Config.Environment,
		"cache_path":        s.app.Config.Cache.Path,
		"cache_ttl":         s.app.Config.Cache.GetTTL().String(),
		"history_path":      s.app.Config.History.Path,
		"risk_free_rate":    s.app.Config.Market.RiskFreeRate,
		"lookback_days":     s.app.Config.Market.LookbackDays,
		"logging_level":     s.app.Config.Logging.Level,
		"eodhd_configured":  s.app.EODHDClient != nil,
		"gemini_configured": s.app.GeminiClient != nil,
	})
}

// handleCacheClear handles DELETE /api/cache (dev mode only).
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Cache clear disabled in production")
		return
	}

	removed := s.app.Cache.Clear()
	s.logger.Info().Int("removed", removed).Msg("Cache cleared via HTTP endpoint")
	WriteJSON(w, http.StatusOK, map[string]interface{}{"removed": removed})
}
