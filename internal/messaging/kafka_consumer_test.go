package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cypherlabdev/arb-detection-service/internal/mocks"
	"github.com/cypherlabdev/arb-detection-service/internal/models"
)

// testConsumerSetup is a helper struct to hold test dependencies
type testConsumerSetup struct {
	ctrl      *gomock.Controller
	analyzer  *mocks.MockAnalyzer
	cache     *mocks.MockCache
	publisher *mocks.MockPublisher
	consumer  *KafkaConsumer
	ctx       context.Context
}

// setupTestConsumer creates a consumer with gomock dependencies
func setupTestConsumer(t *testing.T) *testConsumerSetup {
	ctrl := gomock.NewController(t)

	analyzer := mocks.NewMockAnalyzer(ctrl)
	cache := mocks.NewMockCache(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)

	config := KafkaConsumerConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "fixture_odds",
		GroupID: "test-group",
	}
	consumer := NewKafkaConsumer(config, analyzer, cache, publisher, zerolog.Nop())

	return &testConsumerSetup{
		ctrl:      ctrl,
		analyzer:  analyzer,
		cache:     cache,
		publisher: publisher,
		consumer:  consumer,
		ctx:       context.Background(),
	}
}

func consumerTestMessage(t *testing.T, fixtureID string) kafka.Message {
	kafkaMsg := models.KafkaFixtureOddsMessage{
		Fixture: models.FixtureOdds{
			FixtureID: fixtureID,
			HomeName:  "Team A",
			AwayName:  "Team B",
		},
		Timestamp: time.Now().UTC(),
		BatchID:   "batch-1",
	}
	value, err := json.Marshal(kafkaMsg)
	require.NoError(t, err)

	return kafka.Message{Key: []byte(fixtureID), Value: value}
}

func consumerTestResult(fixtureID string, opportunityCount int) *models.AnalysisResult {
	return &models.AnalysisResult{
		ID:               uuid.New(),
		FixtureID:        fixtureID,
		Mode:             models.ModeBestOdds,
		OpportunityCount: opportunityCount,
		Opportunities:    []models.ArbitrageOpportunity{},
		AnalyzedAt:       time.Now().UTC(),
	}
}

// TestNewKafkaConsumer tests consumer creation
func TestNewKafkaConsumer(t *testing.T) {
	setup := setupTestConsumer(t)
	defer setup.ctrl.Finish()
	defer setup.consumer.Close()

	assert.NotNil(t, setup.consumer)
	assert.NotNil(t, setup.consumer.reader)
	assert.Equal(t, "fixture_odds", setup.consumer.reader.Config().Topic)
	assert.Equal(t, "test-group", setup.consumer.reader.Config().GroupID)
}

// TestProcessMessage_Success tests the analyze-and-cache path for a snapshot
// without opportunities
func TestProcessMessage_Success(t *testing.T) {
	setup := setupTestConsumer(t)
	defer setup.ctrl.Finish()
	defer setup.consumer.Close()

	result := consumerTestResult("fixture-123", 0)
	setup.analyzer.EXPECT().Analyze(gomock.Any()).Return(result, nil)
	setup.cache.EXPECT().Set(setup.ctx, result).Return(nil)
	// No publish expectation: nothing to publish without opportunities

	err := setup.consumer.processMessage(setup.ctx, consumerTestMessage(t, "fixture-123"))

	assert.NoError(t, err)
}

// TestProcessMessage_PublishesOpportunities tests that detected opportunities
// are published downstream
func TestProcessMessage_PublishesOpportunities(t *testing.T) {
	setup := setupTestConsumer(t)
	defer setup.ctrl.Finish()
	defer setup.consumer.Close()

	result := consumerTestResult("fixture-123", 1)
	result.Opportunities = []models.ArbitrageOpportunity{
		{MarketID: "moneyline", ArbitragePercentage: decimal.NewFromFloat(10.0)},
	}

	setup.analyzer.EXPECT().Analyze(gomock.Any()).Return(result, nil)
	setup.cache.EXPECT().Set(setup.ctx, result).Return(nil)
	setup.publisher.EXPECT().PublishOpportunities(setup.ctx, result).Return(nil)

	err := setup.consumer.processMessage(setup.ctx, consumerTestMessage(t, "fixture-123"))

	assert.NoError(t, err)
}

// TestProcessMessage_PublishErrorIgnored tests that a publish failure does not
// fail the message
func TestProcessMessage_PublishErrorIgnored(t *testing.T) {
	setup := setupTestConsumer(t)
	defer setup.ctrl.Finish()
	defer setup.consumer.Close()

	result := consumerTestResult("fixture-123", 1)
	setup.analyzer.EXPECT().Analyze(gomock.Any()).Return(result, nil)
	setup.cache.EXPECT().Set(setup.ctx, result).Return(nil)
	setup.publisher.EXPECT().PublishOpportunities(setup.ctx, result).Return(errors.New("broker down"))

	err := setup.consumer.processMessage(setup.ctx, consumerTestMessage(t, "fixture-123"))

	assert.NoError(t, err)
}

// TestProcessMessage_InvalidJSON tests rejection of malformed payloads
func TestProcessMessage_InvalidJSON(t *testing.T) {
	setup := setupTestConsumer(t)
	defer setup.ctrl.Finish()
	defer setup.consumer.Close()

	msg := kafka.Message{Key: []byte("fixture-123"), Value: []byte("not json")}

	err := setup.consumer.processMessage(setup.ctx, msg)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal message")
}

// TestProcessMessage_AnalyzerError tests error propagation from the analyzer
func TestProcessMessage_AnalyzerError(t *testing.T) {
	setup := setupTestConsumer(t)
	defer setup.ctrl.Finish()
	defer setup.consumer.Close()

	setup.analyzer.EXPECT().Analyze(gomock.Any()).Return(nil, errors.New("invalid fixture odds"))

	err := setup.consumer.processMessage(setup.ctx, consumerTestMessage(t, "fixture-123"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to analyze fixture")
}

// TestProcessMessage_CacheError tests that cache failures block the commit
func TestProcessMessage_CacheError(t *testing.T) {
	setup := setupTestConsumer(t)
	defer setup.ctrl.Finish()
	defer setup.consumer.Close()

	result := consumerTestResult("fixture-123", 0)
	setup.analyzer.EXPECT().Analyze(gomock.Any()).Return(result, nil)
	setup.cache.EXPECT().Set(setup.ctx, result).Return(errors.New("redis down"))

	err := setup.consumer.processMessage(setup.ctx, consumerTestMessage(t, "fixture-123"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to cache analysis result")
}

// TestKafkaFixtureOddsMessage_Roundtrip tests the wire format of the inbound
// snapshot message
func TestKafkaFixtureOddsMessage_Roundtrip(t *testing.T) {
	original := models.KafkaFixtureOddsMessage{
		Fixture: models.FixtureOdds{
			FixtureID: "fixture-123",
			HomeName:  "Team A",
			AwayName:  "Team B",
			Sport:     "football",
			Bookmakers: map[string]models.BookmakerEntry{
				"betfair": {
					Active: true,
					Markets: map[string]models.MarketEntry{
						"moneyline": {
							Outcomes: map[string]models.OutcomeEntry{
								"home": {Quotes: map[string]models.PriceQuote{
									models.PrimaryQuoteSlot: {Active: true, Price: decimal.NewFromFloat(2.2)},
								}},
							},
						},
					},
				},
			},
		},
		Timestamp: time.Now().UTC().Truncate(time.Second),
		BatchID:   "batch-42",
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded models.KafkaFixtureOddsMessage
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.BatchID, decoded.BatchID)
	assert.Equal(t, original.Fixture.FixtureID, decoded.Fixture.FixtureID)
	quote := decoded.Fixture.Bookmakers["betfair"].Markets["moneyline"].Outcomes["home"].Quotes[models.PrimaryQuoteSlot]
	assert.True(t, decimal.NewFromFloat(2.2).Equal(quote.Price))
}
