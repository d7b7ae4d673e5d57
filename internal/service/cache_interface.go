package service

import (
	"context"

	"github.com/cypherlabdev/arb-detection-service/internal/models"
)

// Cache is an interface that abstracts cache operations
// This allows for easier testing and mocking
type Cache interface {
	Set(ctx context.Context, result *models.AnalysisResult) error
	Get(ctx context.Context, fixtureID string) (*models.AnalysisResult, error)
	SetBatch(ctx context.Context, results []*models.AnalysisResult) error
	ListAnalyzedFixtures(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}
