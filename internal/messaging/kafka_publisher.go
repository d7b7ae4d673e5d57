package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/arb-detection-service/internal/models"
)

// Publisher abstracts the downstream opportunity feed for mocking
type Publisher interface {
	PublishOpportunities(ctx context.Context, result *models.AnalysisResult) error
	Close() error
}

// KafkaPublisher publishes detected opportunities to Kafka
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// KafkaPublisherConfig holds Kafka publisher configuration
type KafkaPublisherConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "arb_opportunities"
}

// NewKafkaPublisher creates a new Kafka publisher
func NewKafkaPublisher(config KafkaPublisherConfig, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "kafka_publisher").Logger(),
	}
}

// PublishOpportunities publishes the opportunities of one analysis result,
// keyed by fixture id so per-fixture ordering is preserved
func (p *KafkaPublisher) PublishOpportunities(ctx context.Context, result *models.AnalysisResult) error {
	msg := models.KafkaOpportunityMessage{
		FixtureID:     result.FixtureID,
		AnalysisID:    result.ID,
		Opportunities: result.Opportunities,
		Timestamp:     time.Now().UTC(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal opportunity message: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(result.FixtureID),
		Value: data,
	}); err != nil {
		return fmt.Errorf("failed to write opportunity message: %w", err)
	}

	p.logger.Info().
		Str("fixture_id", result.FixtureID).
		Int("opportunities", len(result.Opportunities)).
		Msg("published opportunities")

	return nil
}

// Close closes the Kafka writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
