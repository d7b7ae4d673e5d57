package service

import (
	"github.com/cypherlabdev/arb-detection-service/internal/models"
)

// Analyzer is an interface that abstracts arbitrage analysis operations
// This allows for easier testing and mocking
type Analyzer interface {
	Analyze(fixture *models.FixtureOdds) (*models.AnalysisResult, error)
	AnalyzeWithParams(fixture *models.FixtureOdds, params models.AnalysisParams) (*models.AnalysisResult, error)
}
