package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hazemk/borsa/internal/models"
	"github.com/hazemk/borsa/internal/services/analysis"
)

// handleAnalysis handles GET /api/analysis/{symbol}?refresh=true.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(PathParam(r, "/api/analysis/", "")))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"

	result, err := s.app.AnalysisService.Compose(r.Context(), symbol, refresh)
	if err != nil {
		if errors.Is(err, analysis.ErrPriceUnavailable) {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Price not available for %s", symbol))
			return
		}
		if errors.Is(err, analysis.ErrAnalysisUnavailable) {
			WriteError(w, http.StatusServiceUnavailable, fmt.Sprintf("Analysis temporarily unavailable for %s", symbol))
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Analysis error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleCompareStocks handles POST /api/compare-stocks.
func (s *Server) handleCompareStocks(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Symbols  []string         `json:"symbols" validate:"required,min=2,max=3,dive,required"`
		Holdings []models.Holding `json:"holdings" validate:"omitempty,dive"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "comparison requires 2 or 3 symbols")
		return
	}

	result, err := s.app.AnalysisService.CompareStocks(r.Context(), req.Symbols, req.Holdings)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Comparison error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleExtractTransactions handles POST /api/extract-transactions.
func (s *Server) handleExtractTransactions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.GeminiClient == nil {
		WriteError(w, http.StatusServiceUnavailable, "Transaction extraction requires a configured Gemini API key")
		return
	}

	var req struct {
		Image string `json:"image" validate:"required"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "image is required")
		return
	}

	transactions, err := s.app.AnalysisService.ExtractTransactions(r.Context(), req.Image)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Extraction error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
	})
}
