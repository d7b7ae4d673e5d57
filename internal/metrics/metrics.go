package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters exposed on /metrics. Registered once at package init via promauto.
var (
	FixturesAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_fixtures_analyzed_total",
		Help: "Number of fixture snapshots analyzed.",
	})

	OpportunitiesFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_opportunities_found_total",
		Help: "Number of arbitrage opportunities detected.",
	})

	CombinationOverflows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_combination_overflows_total",
		Help: "Number of markets whose combinatorial search was aborted at the cap.",
	})

	MarketsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_markets_skipped_total",
		Help: "Number of markets skipped before evaluation, by reason.",
	}, []string{"reason"})
)

// Skip reasons for MarketsSkipped.
const (
	ReasonInsufficientOutcomes = "insufficient_outcomes"
	ReasonMissingCoverage      = "missing_coverage"
)
