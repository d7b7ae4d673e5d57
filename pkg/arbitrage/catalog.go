package arbitrage

import (
	"sort"

	"github.com/cypherlabdev/arb-detection-service/internal/models"
)

// Catalog is a read-only view over one fixture's odds snapshot. All methods
// are pure projections: they never fail and return empty slices when nothing
// qualifies. Results are sorted so iteration order is deterministic.
type Catalog struct {
	fixture *models.FixtureOdds
}

// NewCatalog wraps a fixture snapshot for querying.
func NewCatalog(fixture *models.FixtureOdds) *Catalog {
	return &Catalog{fixture: fixture}
}

// ActiveBookmakers returns the names of bookmakers flagged active, sorted.
func (c *Catalog) ActiveBookmakers() []string {
	names := make([]string, 0, len(c.fixture.Bookmakers))
	for name, entry := range c.fixture.Bookmakers {
		if entry.Active {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// AllMarkets returns the union of market ids across the given bookmakers, sorted.
func (c *Catalog) AllMarkets(bookmakers []string) []string {
	seen := make(map[string]struct{})
	for _, name := range bookmakers {
		entry, ok := c.fixture.Bookmakers[name]
		if !ok {
			continue
		}
		for marketID := range entry.Markets {
			seen[marketID] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// OutcomesOf returns the union of outcome ids for a market across the given
// bookmakers, sorted. Bookmakers that do not carry the market contribute nothing.
func (c *Catalog) OutcomesOf(marketID string, bookmakers []string) []string {
	seen := make(map[string]struct{})
	for _, name := range bookmakers {
		entry, ok := c.fixture.Bookmakers[name]
		if !ok {
			continue
		}
		market, ok := entry.Markets[marketID]
		if !ok {
			continue
		}
		for outcomeID := range market.Outcomes {
			seen[outcomeID] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// quote returns the usable primary-slot quote of a bookmaker for an outcome.
func (c *Catalog) quote(bookmaker, marketID, outcomeID string) (models.PriceQuote, bool) {
	entry, ok := c.fixture.Bookmakers[bookmaker]
	if !ok {
		return models.PriceQuote{}, false
	}
	market, ok := entry.Markets[marketID]
	if !ok {
		return models.PriceQuote{}, false
	}
	outcome, ok := market.Outcomes[outcomeID]
	if !ok {
		return models.PriceQuote{}, false
	}
	q, ok := outcome.PrimaryQuote()
	if !ok || !q.Usable() {
		return models.PriceQuote{}, false
	}
	return q, true
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
