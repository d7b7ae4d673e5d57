package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/arb-detection-service/internal/models"
	"github.com/cypherlabdev/arb-detection-service/internal/service"
)

// KafkaConsumer consumes fixture odds snapshots from Kafka, analyzes them
// for arbitrage and caches the results
type KafkaConsumer struct {
	reader    *kafka.Reader
	analyzer  service.Analyzer
	cache     service.Cache
	publisher Publisher
	logger    zerolog.Logger
}

// KafkaConsumerConfig holds Kafka consumer configuration
type KafkaConsumerConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "fixture_odds"
	GroupID string   // e.g., "arb-detector"
}

// NewKafkaConsumer creates a new Kafka consumer
func NewKafkaConsumer(
	config KafkaConsumerConfig,
	analyzer service.Analyzer,
	cache service.Cache,
	publisher Publisher,
	logger zerolog.Logger,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.GroupID,
		MinBytes:       1e3,  // 1KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1000, // Commit every 1 second
	})

	return &KafkaConsumer{
		reader:    reader,
		analyzer:  analyzer,
		cache:     cache,
		publisher: publisher,
		logger:    logger.With().Str("component", "kafka_consumer").Logger(),
	}
}

// Start begins consuming messages from Kafka
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("topic", c.reader.Config().Topic).
		Str("group_id", c.reader.Config().GroupID).
		Msg("started consuming from Kafka")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("stopping Kafka consumer")
			return c.reader.Close()

		default:
			// Read message
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if err == context.Canceled {
					return nil
				}
				c.logger.Error().Err(err).Msg("failed to fetch message")
				continue
			}

			// Process message
			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error().
					Err(err).
					Int64("offset", msg.Offset).
					Str("key", string(msg.Key)).
					Msg("failed to process message")
				// Don't commit if processing failed
				continue
			}

			// Commit message
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("failed to commit message")
			}
		}
	}
}

// processMessage processes a single Kafka message
func (c *KafkaConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	// Parse message
	var kafkaMsg models.KafkaFixtureOddsMessage
	if err := json.Unmarshal(msg.Value, &kafkaMsg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	c.logger.Debug().
		Str("fixture_id", kafkaMsg.Fixture.FixtureID).
		Str("batch_id", kafkaMsg.BatchID).
		Msg("processing fixture odds snapshot")

	// Analyze fixture
	result, err := c.analyzer.Analyze(&kafkaMsg.Fixture)
	if err != nil {
		return fmt.Errorf("failed to analyze fixture: %w", err)
	}

	// Cache analysis result
	if err := c.cache.Set(ctx, result); err != nil {
		return fmt.Errorf("failed to cache analysis result: %w", err)
	}

	// Publish detected opportunities downstream
	if result.OpportunityCount > 0 && c.publisher != nil {
		if err := c.publisher.PublishOpportunities(ctx, result); err != nil {
			c.logger.Error().
				Err(err).
				Str("fixture_id", result.FixtureID).
				Msg("failed to publish opportunities")
			// Analysis is cached; publishing failures don't block the offset
		}
	}

	c.logger.Info().
		Str("fixture_id", result.FixtureID).
		Str("batch_id", kafkaMsg.BatchID).
		Int("markets_analyzed", result.MarketsAnalyzed).
		Int("opportunities", result.OpportunityCount).
		Msg("processed and cached fixture analysis")

	return nil
}

// Close closes the Kafka reader
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
