package arbitrage

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Candidate is one qualifying (bookmaker, price) pair for an outcome.
type Candidate struct {
	Bookmaker string
	Price     decimal.Decimal
}

// BestPrices picks the single highest usable price per outcome across the
// given bookmakers. Equal prices resolve to the lexicographically smallest
// bookmaker name, which keeps the selection independent of map iteration
// order. Outcomes with no usable quote are absent from the result.
func (c *Catalog) BestPrices(marketID string, outcomes, bookmakers []string) map[string]Candidate {
	best := make(map[string]Candidate, len(outcomes))
	for _, outcomeID := range outcomes {
		for _, name := range bookmakers {
			q, ok := c.quote(name, marketID, outcomeID)
			if !ok {
				continue
			}
			// bookmakers arrive sorted, so strictly-greater keeps the
			// smallest name on ties
			current, exists := best[outcomeID]
			if !exists || q.Price.GreaterThan(current.Price) {
				best[outcomeID] = Candidate{Bookmaker: name, Price: q.Price}
			}
		}
	}
	return best
}

// RankTopK collects every usable quote per outcome, sorts descending by
// price (ties by bookmaker name ascending) and truncates to the first k.
// Outcomes with no usable quote map to an empty list.
func (c *Catalog) RankTopK(marketID string, outcomes, bookmakers []string, k int) map[string][]Candidate {
	ranked := make(map[string][]Candidate, len(outcomes))
	for _, outcomeID := range outcomes {
		var candidates []Candidate
		for _, name := range bookmakers {
			q, ok := c.quote(name, marketID, outcomeID)
			if !ok {
				continue
			}
			candidates = append(candidates, Candidate{Bookmaker: name, Price: q.Price})
		}
		sort.Slice(candidates, func(i, j int) bool {
			cmp := candidates[i].Price.Cmp(candidates[j].Price)
			if cmp != 0 {
				return cmp > 0
			}
			return candidates[i].Bookmaker < candidates[j].Bookmaker
		})
		if len(candidates) > k {
			candidates = candidates[:k]
		}
		ranked[outcomeID] = candidates
	}
	return ranked
}
