package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PrimaryQuoteSlot is the fixed selector for the primary player slot of an outcome.
const PrimaryQuoteSlot = "main"

// FixtureOdds is a raw per-fixture odds snapshot across bookmakers (from odds-feed)
type FixtureOdds struct {
	FixtureID  string                    `json:"fixture_id"`
	HomeName   string                    `json:"home_name"`
	AwayName   string                    `json:"away_name"`
	Sport      string                    `json:"sport"`
	Tournament string                    `json:"tournament"`
	Bookmakers map[string]BookmakerEntry `json:"bookmakers"`
}

// BookmakerEntry holds one bookmaker's markets for a fixture.
// Inactive entries stay in the snapshot for traceability but never
// contribute to analysis.
type BookmakerEntry struct {
	Active  bool                   `json:"active"`
	Markets map[string]MarketEntry `json:"markets"`
}

// MarketEntry maps outcome ids to their quoted entries
type MarketEntry struct {
	Outcomes map[string]OutcomeEntry `json:"outcomes"`
}

// OutcomeEntry maps the quote slot (normally just PrimaryQuoteSlot) to a price quote
type OutcomeEntry struct {
	Quotes map[string]PriceQuote `json:"quotes"`
}

// PrimaryQuote returns the quote in the primary slot, if present.
func (e OutcomeEntry) PrimaryQuote() (PriceQuote, bool) {
	q, ok := e.Quotes[PrimaryQuoteSlot]
	return q, ok
}

// PriceQuote is a single bookmaker price for an outcome
type PriceQuote struct {
	Active        bool            `json:"active"`
	Price         decimal.Decimal `json:"price"`
	LastChangedAt time.Time       `json:"last_changed_at"`
	Label         string          `json:"label,omitempty"`
}

// Usable reports whether a quote may participate in selection.
// A decimal price of 1.0 or less carries no payout and is excluded.
func (q PriceQuote) Usable() bool {
	return q.Active && q.Price.GreaterThan(decimal.NewFromInt(1))
}

// Validate checks that the snapshot is structurally interpretable.
// This is the only hard failure the analysis core surfaces; everything
// downstream degrades to "zero opportunities" instead of erroring.
func (f *FixtureOdds) Validate() error {
	if f == nil {
		return fmt.Errorf("fixture odds snapshot is nil")
	}
	if f.FixtureID == "" {
		return fmt.Errorf("fixture_id is required")
	}
	if f.HomeName == "" || f.AwayName == "" {
		return fmt.Errorf("both participant names are required for fixture %s", f.FixtureID)
	}
	return nil
}

// AnalysisMode selects the search strategy for one analysis run
type AnalysisMode string

const (
	// ModeBestOdds evaluates the single best price per outcome.
	ModeBestOdds AnalysisMode = "best_odds"
	// ModeTopK explores combinations among the top-K prices per outcome.
	ModeTopK AnalysisMode = "top_k"
)

// Clamp bounds for analysis parameters.
const (
	MinTopK               = 1
	MaxTopK               = 3
	MinMaxResults         = 1
	MaxMaxResults         = 5
	DefaultCombinationCap = 10000
)

// AnalysisParams holds parameters for one analysis invocation
type AnalysisParams struct {
	Mode           AnalysisMode `json:"mode"`
	TopK           int          `json:"top_k"`
	MaxResults     int          `json:"max_results"`
	CombinationCap int          `json:"combination_cap"`
}

// Normalize clamps parameters into their supported ranges and derives the
// mode: a top-K greater than 1 selects combinatorial search, anything else
// falls back to single-best-odds.
func (p AnalysisParams) Normalize() AnalysisParams {
	if p.TopK < MinTopK {
		p.TopK = MinTopK
	}
	if p.TopK > MaxTopK {
		p.TopK = MaxTopK
	}
	if p.MaxResults < MinMaxResults {
		p.MaxResults = MinMaxResults
	}
	if p.MaxResults > MaxMaxResults {
		p.MaxResults = MaxMaxResults
	}
	if p.CombinationCap <= 0 {
		p.CombinationCap = DefaultCombinationCap
	}
	if p.TopK > 1 {
		p.Mode = ModeTopK
	} else {
		p.Mode = ModeBestOdds
	}
	return p
}

// OpportunityLeg is one chosen (outcome, bookmaker, price) of an opportunity
type OpportunityLeg struct {
	OutcomeID          string          `json:"outcome_id"`
	Bookmaker          string          `json:"bookmaker"`
	Odds               decimal.Decimal `json:"odds"`
	ImpliedProbability decimal.Decimal `json:"implied_probability"`
}

// StakeAllocation is the stake share to place on one leg, out of a 100-unit stake
type StakeAllocation struct {
	OutcomeID    string          `json:"outcome_id"`
	Bookmaker    string          `json:"bookmaker"`
	StakePercent decimal.Decimal `json:"stake_percent"`
}

// ArbitrageOpportunity is a market whose chosen prices sum to an implied
// probability below 1, i.e. a guaranteed-profit stake split exists
type ArbitrageOpportunity struct {
	MarketID                string            `json:"market_id"`
	Legs                    []OpportunityLeg  `json:"legs"`
	TotalImpliedProbability decimal.Decimal   `json:"total_implied_probability"`
	ArbitragePercentage     decimal.Decimal   `json:"arbitrage_percentage"`
	Stakes                  []StakeAllocation `json:"stakes"`
}

// AnalysisResult is the aggregate outcome of one analysis pass over a fixture
type AnalysisResult struct {
	ID                   uuid.UUID              `json:"id"`
	FixtureID            string                 `json:"fixture_id"`
	HomeName             string                 `json:"home_name"`
	AwayName             string                 `json:"away_name"`
	Sport                string                 `json:"sport"`
	Tournament           string                 `json:"tournament"`
	Mode                 AnalysisMode           `json:"mode"`
	MarketsAnalyzed      int                    `json:"markets_analyzed"`
	ActiveBookmakerCount int                    `json:"active_bookmaker_count"`
	OpportunityCount     int                    `json:"opportunity_count"`
	Opportunities        []ArbitrageOpportunity `json:"opportunities"`
	AnalyzedAt           time.Time              `json:"analyzed_at"`
}

// KafkaFixtureOddsMessage represents the Kafka message from the odds feed
type KafkaFixtureOddsMessage struct {
	Fixture   FixtureOdds `json:"fixture"`
	Timestamp time.Time   `json:"timestamp"`
	BatchID   string      `json:"batch_id"`
}

// KafkaOpportunityMessage is published for each fixture whose analysis
// produced at least one opportunity
type KafkaOpportunityMessage struct {
	FixtureID     string                 `json:"fixture_id"`
	AnalysisID    uuid.UUID              `json:"analysis_id"`
	Opportunities []ArbitrageOpportunity `json:"opportunities"`
	Timestamp     time.Time              `json:"timestamp"`
}
