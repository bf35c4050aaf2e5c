package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hazemk/borsa/internal/models"
)

var validate = validator.New()

// handlePortfolioAnalysis handles POST /api/portfolio-analysis.
func (s *Server) handlePortfolioAnalysis(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Holdings []models.Holding `json:"holdings" validate:"required,min=1,dive"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "holdings must contain at least one valid position")
		return
	}

	result, err := s.app.AnalysisService.AnalyzePortfolio(r.Context(), req.Holdings)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Portfolio analysis error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleDeployCapital handles POST /api/deploy-capital.
func (s *Server) handleDeployCapital(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Holdings []models.Holding `json:"holdings" validate:"required,min=1,dive"`
		Amount   float64          `json:"amount" validate:"gt=0"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "amount must be positive and holdings must contain at least one valid position")
		return
	}

	result, err := s.app.AnalysisService.DeployCapital(r.Context(), req.Holdings, req.Amount)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Capital deployment error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleRecommendationList handles GET /api/recommendation-history.
func (s *Server) handleRecommendationList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	records, err := s.app.History.List()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error reading history: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": records,
	})
}

// handleRecommendationByID handles DELETE /api/recommendation-history/{id}.
func (s *Server) handleRecommendationByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := strings.TrimSpace(PathParam(r, "/api/recommendation-history/", ""))
	if id == "" {
		WriteError(w, http.StatusBadRequest, "recommendation id is required in path")
		return
	}

	found, err := s.app.History.Delete(id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting recommendation: %v", err))
		return
	}
	if !found {
		WriteError(w, http.StatusNotFound, "Recommendation not found")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
