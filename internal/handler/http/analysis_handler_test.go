package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cypherlabdev/arb-detection-service/internal/mocks"
	"github.com/cypherlabdev/arb-detection-service/internal/models"
	"github.com/cypherlabdev/arb-detection-service/internal/service"
)

// testHandlerSetup is a helper struct to hold test dependencies
type testHandlerSetup struct {
	ctrl     *gomock.Controller
	analyzer *mocks.MockAnalyzer
	cache    *mocks.MockCache
	source   *mocks.MockSource
	mux      *http.ServeMux
}

// setupTestHandler creates a handler backed by a service with gomock deps
func setupTestHandler(t *testing.T) *testHandlerSetup {
	ctrl := gomock.NewController(t)

	analyzer := mocks.NewMockAnalyzer(ctrl)
	cache := mocks.NewMockCache(ctrl)
	source := mocks.NewMockSource(ctrl)

	svc := service.NewAnalyzerService(analyzer, cache, source, zerolog.Nop())
	handler := NewAnalysisHandler(svc, zerolog.Nop())

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	return &testHandlerSetup{
		ctrl:     ctrl,
		analyzer: analyzer,
		cache:    cache,
		source:   source,
		mux:      mux,
	}
}

func handlerTestResult(fixtureID string) *models.AnalysisResult {
	return &models.AnalysisResult{
		ID:               uuid.New(),
		FixtureID:        fixtureID,
		HomeName:         "Team A",
		AwayName:         "Team B",
		Mode:             models.ModeBestOdds,
		OpportunityCount: 1,
		Opportunities:    []models.ArbitrageOpportunity{},
		AnalyzedAt:       time.Now().UTC(),
	}
}

// TestHandleGetAnalysis_CacheHit tests serving a cached analysis
func TestHandleGetAnalysis_CacheHit(t *testing.T) {
	setup := setupTestHandler(t)
	defer setup.ctrl.Finish()

	result := handlerTestResult("fixture-123")
	setup.cache.EXPECT().Get(gomock.Any(), "fixture-123").Return(result, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fixtures/fixture-123/analysis", nil)
	rec := httptest.NewRecorder()
	setup.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "fixture-123", body.FixtureID)
}

// TestHandleGetAnalysis_Refresh tests the refresh query parameter bypassing
// the cache read
func TestHandleGetAnalysis_Refresh(t *testing.T) {
	setup := setupTestHandler(t)
	defer setup.ctrl.Finish()

	fixture := &models.FixtureOdds{FixtureID: "fixture-123", HomeName: "Team A", AwayName: "Team B"}
	result := handlerTestResult("fixture-123")

	setup.source.EXPECT().Fetch(gomock.Any(), "fixture-123").Return(fixture, nil)
	setup.analyzer.EXPECT().Analyze(fixture).Return(result, nil)
	setup.cache.EXPECT().Set(gomock.Any(), result).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fixtures/fixture-123/analysis?refresh=1", nil)
	rec := httptest.NewRecorder()
	setup.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestHandleGetAnalysis_ParamOverrides tests per-call top_k / max_results
// overrides
func TestHandleGetAnalysis_ParamOverrides(t *testing.T) {
	setup := setupTestHandler(t)
	defer setup.ctrl.Finish()

	fixture := &models.FixtureOdds{FixtureID: "fixture-123", HomeName: "Team A", AwayName: "Team B"}
	result := handlerTestResult("fixture-123")

	setup.source.EXPECT().Fetch(gomock.Any(), "fixture-123").Return(fixture, nil)
	setup.analyzer.EXPECT().
		AnalyzeWithParams(fixture, models.AnalysisParams{TopK: 3, MaxResults: 5}).
		Return(result, nil)
	// No cache.Set expectation: overridden results are not cached

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fixtures/fixture-123/analysis?top_k=3&max_results=5", nil)
	rec := httptest.NewRecorder()
	setup.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestHandleGetAnalysis_InvalidParam tests rejection of non-integer overrides
func TestHandleGetAnalysis_InvalidParam(t *testing.T) {
	setup := setupTestHandler(t)
	defer setup.ctrl.Finish()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fixtures/fixture-123/analysis?top_k=abc", nil)
	rec := httptest.NewRecorder()
	setup.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "top_k must be an integer")
}

// TestHandleGetAnalysis_InvalidPath tests malformed analysis paths
func TestHandleGetAnalysis_InvalidPath(t *testing.T) {
	setup := setupTestHandler(t)
	defer setup.ctrl.Finish()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fixtures/fixture-123/odds", nil)
	rec := httptest.NewRecorder()
	setup.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestHandleGetAnalysis_MethodNotAllowed tests non-GET rejection
func TestHandleGetAnalysis_MethodNotAllowed(t *testing.T) {
	setup := setupTestHandler(t)
	defer setup.ctrl.Finish()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fixtures/fixture-123/analysis", nil)
	rec := httptest.NewRecorder()
	setup.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// TestHandleGetAnalysis_ServiceError tests the upstream failure mapping
func TestHandleGetAnalysis_ServiceError(t *testing.T) {
	setup := setupTestHandler(t)
	defer setup.ctrl.Finish()

	setup.cache.EXPECT().Get(gomock.Any(), "fixture-123").Return(nil, errors.New("not found"))
	setup.source.EXPECT().Fetch(gomock.Any(), "fixture-123").Return(nil, errors.New("source unavailable"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fixtures/fixture-123/analysis", nil)
	rec := httptest.NewRecorder()
	setup.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

// TestHandleListAnalyses tests listing cached analyses
func TestHandleListAnalyses(t *testing.T) {
	setup := setupTestHandler(t)
	defer setup.ctrl.Finish()

	setup.cache.EXPECT().ListAnalyzedFixtures(gomock.Any()).Return([]string{"fixture-1", "fixture-2"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	rec := httptest.NewRecorder()
	setup.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count      int      `json:"count"`
		FixtureIDs []string `json:"fixture_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, []string{"fixture-1", "fixture-2"}, body.FixtureIDs)
}

// TestHandleListAnalyses_CacheError tests the cache failure mapping
func TestHandleListAnalyses_CacheError(t *testing.T) {
	setup := setupTestHandler(t)
	defer setup.ctrl.Finish()

	setup.cache.EXPECT().ListAnalyzedFixtures(gomock.Any()).Return(nil, errors.New("redis down"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	rec := httptest.NewRecorder()
	setup.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
