package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/arb-detection-service/internal/models"
	"github.com/cypherlabdev/arb-detection-service/internal/service"
)

// AnalysisHandler handles HTTP requests for fixture arbitrage analysis
type AnalysisHandler struct {
	service *service.AnalyzerService
	logger  zerolog.Logger
}

// NewAnalysisHandler creates a new analysis HTTP handler
func NewAnalysisHandler(service *service.AnalyzerService, logger zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger.With().Str("component", "analysis_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided mux
func (h *AnalysisHandler) RegisterRoutes(mux *http.ServeMux) {
	// GET /api/v1/fixtures/:fixture_id/analysis - Get arbitrage analysis for a fixture
	mux.HandleFunc("/api/v1/fixtures/", h.handleGetAnalysis)

	// GET /api/v1/analyses - List fixtures with a cached analysis
	mux.HandleFunc("/api/v1/analyses", h.handleListAnalyses)
}

// handleGetAnalysis handles GET /api/v1/fixtures/:fixture_id/analysis
//
// Query parameters: refresh=1 forces a fresh fetch+analysis; top_k and
// max_results override the configured search parameters for this call
// (overridden results are not cached).
func (h *AnalysisHandler) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Parse path: /api/v1/fixtures/:fixture_id/analysis
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/fixtures/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "analysis" {
		h.errorResponse(w, http.StatusBadRequest, "invalid path: expected /api/v1/fixtures/:fixture_id/analysis")
		return
	}

	fixtureID := parts[0]
	if fixtureID == "" {
		h.errorResponse(w, http.StatusBadRequest, "fixture_id is required")
		return
	}

	params, override, err := parseParamOverrides(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	refresh := r.URL.Query().Get("refresh") == "1"

	var result *models.AnalysisResult
	if refresh || override {
		result, err = h.service.RefreshAnalysis(r.Context(), fixtureID, params)
	} else {
		result, err = h.service.GetAnalysis(r.Context(), fixtureID)
	}
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("fixture_id", fixtureID).
			Msg("failed to analyze fixture")
		h.errorResponse(w, http.StatusBadGateway, "failed to analyze fixture")
		return
	}

	h.jsonResponse(w, http.StatusOK, result)
}

// handleListAnalyses handles GET /api/v1/analyses
func (h *AnalysisHandler) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	fixtureIDs, err := h.service.ListAnalyzedFixtures(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list analyzed fixtures")
		h.errorResponse(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count":       len(fixtureIDs),
		"fixture_ids": fixtureIDs,
	})
}

// parseParamOverrides reads optional top_k / max_results query parameters.
// Values are clamped downstream by AnalysisParams.Normalize.
func parseParamOverrides(r *http.Request) (*models.AnalysisParams, bool, error) {
	q := r.URL.Query()
	topKRaw := q.Get("top_k")
	maxResultsRaw := q.Get("max_results")
	if topKRaw == "" && maxResultsRaw == "" {
		return nil, false, nil
	}

	params := models.AnalysisParams{}
	if topKRaw != "" {
		topK, err := strconv.Atoi(topKRaw)
		if err != nil {
			return nil, false, &paramError{"top_k must be an integer"}
		}
		params.TopK = topK
	}
	if maxResultsRaw != "" {
		maxResults, err := strconv.Atoi(maxResultsRaw)
		if err != nil {
			return nil, false, &paramError{"max_results must be an integer"}
		}
		params.MaxResults = maxResults
	}
	return &params, true, nil
}

type paramError struct{ msg string }

func (e *paramError) Error() string { return e.msg }

// jsonResponse writes a JSON response
func (h *AnalysisHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *AnalysisHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}
