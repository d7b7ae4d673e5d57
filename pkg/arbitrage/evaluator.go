package arbitrage

import (
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arb-detection-service/internal/models"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Rounding is applied exactly once, here, when an opportunity is built:
// probabilities to 4 decimal places, percentages and stakes to 2. The
// arbitrage threshold itself is compared at full decimal precision.
const (
	probabilityScale = 4
	percentScale     = 2
)

// Evaluate computes implied probabilities and the stake split for one
// concrete assignment. It returns nil when the total implied probability is
// 1.0 or more, i.e. when no risk-free split exists.
func Evaluate(marketID string, assignment Assignment) *models.ArbitrageOpportunity {
	probs := make([]decimal.Decimal, len(assignment))
	total := decimal.Zero
	for i, leg := range assignment {
		probs[i] = one.Div(leg.Candidate.Price)
		total = total.Add(probs[i])
	}

	if total.GreaterThanOrEqual(one) {
		return nil
	}

	legs := make([]models.OpportunityLeg, len(assignment))
	stakes := make([]models.StakeAllocation, len(assignment))
	for i, leg := range assignment {
		legs[i] = models.OpportunityLeg{
			OutcomeID:          leg.OutcomeID,
			Bookmaker:          leg.Candidate.Bookmaker,
			Odds:               leg.Candidate.Price,
			ImpliedProbability: probs[i].Round(probabilityScale),
		}
		// equal payout regardless of outcome: stake_i = prob_i / total
		stakes[i] = models.StakeAllocation{
			OutcomeID:    leg.OutcomeID,
			Bookmaker:    leg.Candidate.Bookmaker,
			StakePercent: probs[i].Div(total).Mul(hundred).Round(percentScale),
		}
	}

	return &models.ArbitrageOpportunity{
		MarketID:                marketID,
		Legs:                    legs,
		TotalImpliedProbability: total.Round(probabilityScale),
		ArbitragePercentage:     one.Sub(total).Div(total).Mul(hundred).Round(percentScale),
		Stakes:                  stakes,
	}
}
