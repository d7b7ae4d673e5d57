package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/arb-detection-service/internal/metrics"
	"github.com/cypherlabdev/arb-detection-service/internal/models"
)

// AnalyzerService orchestrates arbitrage analysis with caching
type AnalyzerService struct {
	analyzer Analyzer
	cache    Cache
	source   Source
	logger   zerolog.Logger
}

// NewAnalyzerService creates a new analyzer service
func NewAnalyzerService(
	analyzer Analyzer,
	cache Cache,
	source Source,
	logger zerolog.Logger,
) *AnalyzerService {
	return &AnalyzerService{
		analyzer: analyzer,
		cache:    cache,
		source:   source,
		logger:   logger.With().Str("component", "analyzer_service").Logger(),
	}
}

// GetAnalysis retrieves a fixture analysis with cache-first strategy. On a
// miss the fixture is fetched from the odds source and analyzed fresh.
func (s *AnalyzerService) GetAnalysis(ctx context.Context, fixtureID string) (*models.AnalysisResult, error) {
	// Try cache first
	cached, err := s.cache.Get(ctx, fixtureID)
	if err == nil && cached != nil {
		s.logger.Debug().
			Str("fixture_id", fixtureID).
			Msg("cache hit for fixture analysis")
		return cached, nil
	}

	// Log cache miss (but don't fail on cache errors)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("fixture_id", fixtureID).
			Msg("cache miss, fetching fixture from odds source")
	}

	return s.AnalyzeFromSource(ctx, fixtureID)
}

// AnalyzeFromSource fetches the fixture snapshot (with the source's own
// fallback policy) and analyzes it
func (s *AnalyzerService) AnalyzeFromSource(ctx context.Context, fixtureID string) (*models.AnalysisResult, error) {
	fixture, err := s.source.Fetch(ctx, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixture odds: %w", err)
	}

	return s.AnalyzeFixture(ctx, fixture)
}

// RefreshAnalysis bypasses the cache: it fetches a fresh snapshot and
// analyzes it, optionally with per-call parameter overrides.
func (s *AnalyzerService) RefreshAnalysis(ctx context.Context, fixtureID string, params *models.AnalysisParams) (*models.AnalysisResult, error) {
	fixture, err := s.source.Fetch(ctx, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixture odds: %w", err)
	}

	if params == nil {
		return s.AnalyzeFixture(ctx, fixture)
	}
	return s.AnalyzeFixtureWithParams(ctx, fixture, *params)
}

// AnalyzeFixture analyzes a snapshot and caches the result
func (s *AnalyzerService) AnalyzeFixture(ctx context.Context, fixture *models.FixtureOdds) (*models.AnalysisResult, error) {
	result, err := s.analyzer.Analyze(fixture)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	metrics.FixturesAnalyzed.Inc()
	metrics.OpportunitiesFound.Add(float64(result.OpportunityCount))

	// Cache the analysis result
	if err := s.cache.Set(ctx, result); err != nil {
		s.logger.Warn().
			Err(err).
			Str("fixture_id", result.FixtureID).
			Msg("failed to cache analysis result")
		// Don't fail the request on cache errors
	}

	s.logger.Info().
		Str("fixture_id", result.FixtureID).
		Str("mode", string(result.Mode)).
		Int("markets_analyzed", result.MarketsAnalyzed).
		Int("active_bookmakers", result.ActiveBookmakerCount).
		Int("opportunities", result.OpportunityCount).
		Msg("analyzed and cached fixture")

	return result, nil
}

// AnalyzeFixtureWithParams analyzes a snapshot with per-call parameter
// overrides. Results with non-default parameters are not cached so the
// cache only ever holds the configured view.
func (s *AnalyzerService) AnalyzeFixtureWithParams(ctx context.Context, fixture *models.FixtureOdds, params models.AnalysisParams) (*models.AnalysisResult, error) {
	result, err := s.analyzer.AnalyzeWithParams(fixture, params)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	metrics.FixturesAnalyzed.Inc()
	metrics.OpportunitiesFound.Add(float64(result.OpportunityCount))

	return result, nil
}

// AnalyzeBatch analyzes a batch of snapshots and caches all results.
// Invalid snapshots are skipped with a warning rather than failing the batch.
func (s *AnalyzerService) AnalyzeBatch(ctx context.Context, fixtures []*models.FixtureOdds) ([]*models.AnalysisResult, error) {
	if len(fixtures) == 0 {
		return nil, nil
	}

	results := make([]*models.AnalysisResult, 0, len(fixtures))
	for _, fixture := range fixtures {
		result, err := s.analyzer.Analyze(fixture)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("fixture_id", fixture.FixtureID).
				Msg("skipping fixture with invalid snapshot")
			continue
		}
		metrics.FixturesAnalyzed.Inc()
		metrics.OpportunitiesFound.Add(float64(result.OpportunityCount))
		results = append(results, result)
	}

	// Cache all results in batch
	if err := s.cache.SetBatch(ctx, results); err != nil {
		s.logger.Warn().
			Err(err).
			Int("count", len(results)).
			Msg("failed to cache batch of analysis results")
		// Don't fail the request on cache errors
	}

	s.logger.Info().
		Int("input_count", len(fixtures)).
		Int("output_count", len(results)).
		Msg("analyzed and cached batch")

	return results, nil
}

// ListAnalyzedFixtures returns the fixture ids currently held in the cache
func (s *AnalyzerService) ListAnalyzedFixtures(ctx context.Context) ([]string, error) {
	fixtureIDs, err := s.cache.ListAnalyzedFixtures(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyzed fixtures: %w", err)
	}
	return fixtureIDs, nil
}
