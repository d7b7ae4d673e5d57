package service

import (
	"context"

	"github.com/cypherlabdev/arb-detection-service/internal/models"
)

// Source is an interface that abstracts the odds data source.
// The concrete implementation handles the primary/fallback retry policy;
// the service only consumes the final snapshot.
type Source interface {
	Fetch(ctx context.Context, fixtureID string) (*models.FixtureOdds, error)
}
