package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/arb-detection-service/internal/models"
)

// HTTPSource fetches fixture odds snapshots from the pricing API, falling
// back to a local snapshot file when the API is unreachable. The analysis
// core never sees this boundary; it only consumes the final snapshot.
type HTTPSource struct {
	baseURL      string
	snapshotPath string
	client       *http.Client
	logger       zerolog.Logger
}

// HTTPSourceConfig holds odds source configuration
type HTTPSourceConfig struct {
	BaseURL      string        // e.g., "http://pricing-api:8080"
	Timeout      time.Duration // per-request timeout
	SnapshotPath string        // fallback snapshot file
}

// NewHTTPSource creates a new odds source
func NewHTTPSource(config HTTPSourceConfig, logger zerolog.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL:      config.BaseURL,
		snapshotPath: config.SnapshotPath,
		client:       &http.Client{Timeout: config.Timeout},
		logger:       logger.With().Str("component", "odds_source").Logger(),
	}
}

// Fetch retrieves the odds snapshot for a fixture. On any API failure it
// retries against the local snapshot file before giving up.
func (s *HTTPSource) Fetch(ctx context.Context, fixtureID string) (*models.FixtureOdds, error) {
	fixture, err := s.fetchRemote(ctx, fixtureID)
	if err == nil {
		return fixture, nil
	}

	s.logger.Warn().
		Err(err).
		Str("fixture_id", fixtureID).
		Str("snapshot_path", s.snapshotPath).
		Msg("pricing API unavailable, falling back to local snapshot")

	fixture, fallbackErr := s.loadSnapshot()
	if fallbackErr != nil {
		return nil, fmt.Errorf("pricing API failed (%v) and snapshot fallback failed: %w", err, fallbackErr)
	}
	return fixture, nil
}

// fetchRemote calls GET {base}/api/v1/fixtures/{id}/odds
func (s *HTTPSource) fetchRemote(ctx context.Context, fixtureID string) (*models.FixtureOdds, error) {
	url := fmt.Sprintf("%s/api/v1/fixtures/%s/odds", s.baseURL, fixtureID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pricing API returned status %d", resp.StatusCode)
	}

	var fixture models.FixtureOdds
	if err := json.NewDecoder(resp.Body).Decode(&fixture); err != nil {
		return nil, fmt.Errorf("failed to decode odds snapshot: %w", err)
	}

	return &fixture, nil
}

// loadSnapshot reads the local fallback snapshot file
func (s *HTTPSource) loadSnapshot() (*models.FixtureOdds, error) {
	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var fixture models.FixtureOdds
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot file: %w", err)
	}

	return &fixture, nil
}
