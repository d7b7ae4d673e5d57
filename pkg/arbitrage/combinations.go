package arbitrage

// Leg binds one outcome of a market to a chosen candidate price.
type Leg struct {
	OutcomeID string
	Candidate Candidate
}

// Assignment is one full covering of a market: exactly one leg per outcome.
type Assignment []Leg

// GenerateCombinations enumerates the cross product of the per-outcome
// candidate lists in lexicographic order over the (price-descending) lists.
// If any outcome has no candidates the product is empty. If the combination
// count reaches the cap the search is aborted outright and aborted=true is
// returned; a capped search never yields a partial result.
func GenerateCombinations(outcomes []string, candidates map[string][]Candidate, cap int) (combos []Assignment, aborted bool) {
	if len(outcomes) == 0 {
		return nil, false
	}

	total := 1
	for _, outcomeID := range outcomes {
		n := len(candidates[outcomeID])
		if n == 0 {
			return nil, false
		}
		total *= n
		if total >= cap {
			return nil, true
		}
	}

	// mixed-radix counter over the candidate lists
	indices := make([]int, len(outcomes))
	combos = make([]Assignment, 0, total)
	for {
		assignment := make(Assignment, len(outcomes))
		for i, outcomeID := range outcomes {
			assignment[i] = Leg{
				OutcomeID: outcomeID,
				Candidate: candidates[outcomeID][indices[i]],
			}
		}
		combos = append(combos, assignment)

		pos := len(indices) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(candidates[outcomes[pos]]) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return combos, false
		}
	}
}
