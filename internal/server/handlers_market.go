package server

import (
	"fmt"
	"net/http"
	"strings"
)

// maxBatchSymbols caps the batch price endpoint fan-out.
const maxBatchSymbols = 20

// handlePriceGet handles GET /api/prices/{symbol}.
func (s *Server) handlePriceGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(PathParam(r, "/api/prices/", "")))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	quote := s.app.MarketService.GetPrice(r.Context(), symbol)
	WriteJSON(w, http.StatusOK, quote)
}

// handlePriceBatch handles POST /api/prices/batch. Results preserve the
// request order; a failed symbol yields its unavailable record without
// affecting the others.
func (s *Server) handlePriceBatch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Symbols []string `json:"symbols"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if len(req.Symbols) == 0 {
		WriteError(w, http.StatusBadRequest, "symbols is required")
		return
	}
	if len(req.Symbols) > maxBatchSymbols {
		WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("too many symbols: %d (maximum %d)", len(req.Symbols), maxBatchSymbols))
		return
	}

	for i := range req.Symbols {
		req.Symbols[i] = strings.ToUpper(strings.TrimSpace(req.Symbols[i]))
		if req.Symbols[i] == "" {
			WriteError(w, http.StatusBadRequest, "symbols must not contain empty entries")
			return
		}
	}

	quotes := s.app.MarketService.GetPrices(r.Context(), req.Symbols)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"prices": quotes,
	})
}
