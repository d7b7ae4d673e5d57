package arbitrage

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/arb-detection-service/internal/metrics"
	"github.com/cypherlabdev/arb-detection-service/internal/models"
)

// Analyzer runs arbitrage detection over fixture odds snapshots
type Analyzer struct {
	params models.AnalysisParams
	logger zerolog.Logger
}

// NewAnalyzer creates a new analyzer. Parameters are clamped on the way in.
func NewAnalyzer(params models.AnalysisParams, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		params: params.Normalize(),
		logger: logger.With().Str("component", "analyzer").Logger(),
	}
}

// Params returns the normalized parameters this analyzer runs with.
func (a *Analyzer) Params() models.AnalysisParams {
	return a.params
}

// Analyze runs one full analysis pass with the analyzer's own parameters.
func (a *Analyzer) Analyze(fixture *models.FixtureOdds) (*models.AnalysisResult, error) {
	return a.AnalyzeWithParams(fixture, a.params)
}

// AnalyzeWithParams runs one full analysis pass with per-call parameters.
// The only error it returns is a structurally invalid snapshot; every
// degenerate market condition is absorbed as zero opportunities.
func (a *Analyzer) AnalyzeWithParams(fixture *models.FixtureOdds, params models.AnalysisParams) (*models.AnalysisResult, error) {
	if err := fixture.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture odds: %w", err)
	}
	params = params.Normalize()

	catalog := NewCatalog(fixture)
	bookmakers := catalog.ActiveBookmakers()
	markets := catalog.AllMarkets(bookmakers)

	result := &models.AnalysisResult{
		ID:                   uuid.New(),
		FixtureID:            fixture.FixtureID,
		HomeName:             fixture.HomeName,
		AwayName:             fixture.AwayName,
		Sport:                fixture.Sport,
		Tournament:           fixture.Tournament,
		Mode:                 params.Mode,
		ActiveBookmakerCount: len(bookmakers),
		Opportunities:        []models.ArbitrageOpportunity{},
		AnalyzedAt:           time.Now().UTC(),
	}

	for _, marketID := range markets {
		outcomes := catalog.OutcomesOf(marketID, bookmakers)
		if len(outcomes) < 2 {
			// a single outcome cannot be arbitraged
			metrics.MarketsSkipped.WithLabelValues(metrics.ReasonInsufficientOutcomes).Inc()
			continue
		}
		result.MarketsAnalyzed++

		var found []models.ArbitrageOpportunity
		if params.Mode == models.ModeTopK {
			found = a.analyzeTopK(catalog, marketID, outcomes, bookmakers, params)
		} else {
			found = a.analyzeBestOdds(catalog, marketID, outcomes, bookmakers)
		}
		result.Opportunities = append(result.Opportunities, found...)
	}

	result.OpportunityCount = len(result.Opportunities)

	a.logger.Debug().
		Str("fixture_id", fixture.FixtureID).
		Str("mode", string(params.Mode)).
		Int("markets_analyzed", result.MarketsAnalyzed).
		Int("active_bookmakers", result.ActiveBookmakerCount).
		Int("opportunities", result.OpportunityCount).
		Msg("fixture analysis complete")

	return result, nil
}

// analyzeBestOdds evaluates the single best price per outcome. The market is
// skipped entirely unless every outcome has a selection: an arbitrage must
// cover all outcomes.
func (a *Analyzer) analyzeBestOdds(catalog *Catalog, marketID string, outcomes, bookmakers []string) []models.ArbitrageOpportunity {
	best := catalog.BestPrices(marketID, outcomes, bookmakers)
	if len(best) != len(outcomes) {
		metrics.MarketsSkipped.WithLabelValues(metrics.ReasonMissingCoverage).Inc()
		return nil
	}

	assignment := make(Assignment, len(outcomes))
	for i, outcomeID := range outcomes {
		assignment[i] = Leg{OutcomeID: outcomeID, Candidate: best[outcomeID]}
	}

	opp := Evaluate(marketID, assignment)
	if opp == nil {
		return nil
	}
	return []models.ArbitrageOpportunity{*opp}
}

// analyzeTopK explores multi-bookmaker combinations among the top-K prices
// per outcome, keeping the best maxResults opportunities by profit.
func (a *Analyzer) analyzeTopK(catalog *Catalog, marketID string, outcomes, bookmakers []string, params models.AnalysisParams) []models.ArbitrageOpportunity {
	ranked := catalog.RankTopK(marketID, outcomes, bookmakers, params.TopK)

	combos, aborted := GenerateCombinations(outcomes, ranked, params.CombinationCap)
	if aborted {
		metrics.CombinationOverflows.Inc()
		a.logger.Warn().
			Str("market_id", marketID).
			Int("outcomes", len(outcomes)).
			Int("combination_cap", params.CombinationCap).
			Msg("combination search aborted at cap")
		return nil
	}

	var found []models.ArbitrageOpportunity
	for _, assignment := range combos {
		if opp := Evaluate(marketID, assignment); opp != nil {
			found = append(found, *opp)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].ArbitragePercentage.GreaterThan(found[j].ArbitragePercentage)
	})
	if len(found) > params.MaxResults {
		found = found[:params.MaxResults]
	}
	return found
}
