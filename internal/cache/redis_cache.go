package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/arb-detection-service/internal/models"
)

const keyPrefix = "analysis:"

// RedisCache caches fixture analysis results in Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisCacheConfig holds Redis cache configuration
type RedisCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // e.g., 5 * time.Minute
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(config RedisCacheConfig, logger zerolog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisCache{
		client: client,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "redis_cache").Logger(),
	}
}

// Set caches an analysis result under its fixture id
func (c *RedisCache) Set(ctx context.Context, result *models.AnalysisResult) error {
	key := keyPrefix + result.FixtureID

	// Serialize to JSON
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	// Set in Redis with TTL
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	c.logger.Debug().
		Str("key", key).
		Dur("ttl", c.ttl).
		Int("opportunities", result.OpportunityCount).
		Msg("cached analysis result")

	return nil
}

// Get retrieves a cached analysis result for a fixture
func (c *RedisCache) Get(ctx context.Context, fixtureID string) (*models.AnalysisResult, error) {
	key := keyPrefix + fixtureID

	// Get from Redis
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("analysis not found in cache")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	// Deserialize
	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis result: %w", err)
	}

	return &result, nil
}

// SetBatch caches multiple analysis results
func (c *RedisCache) SetBatch(ctx context.Context, results []*models.AnalysisResult) error {
	if len(results) == 0 {
		return nil
	}

	// Use pipeline for batch operations
	pipe := c.client.Pipeline()

	for _, result := range results {
		data, err := json.Marshal(result)
		if err != nil {
			c.logger.Error().Err(err).Msg("failed to marshal analysis result")
			continue
		}
		pipe.Set(ctx, keyPrefix+result.FixtureID, data, c.ttl)
	}

	// Execute pipeline
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute pipeline: %w", err)
	}

	c.logger.Info().
		Int("count", len(results)).
		Msg("cached batch of analysis results")

	return nil
}

// ListAnalyzedFixtures returns the fixture ids with a cached analysis
func (c *RedisCache) ListAnalyzedFixtures(ctx context.Context) ([]string, error) {
	pattern := keyPrefix + "*"

	// Scan for keys matching pattern
	var cursor uint64
	var keys []string

	for {
		var scanKeys []string
		var err error
		scanKeys, cursor, err = c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}

		keys = append(keys, scanKeys...)

		if cursor == 0 {
			break
		}
	}

	fixtureIDs := make([]string, 0, len(keys))
	for _, key := range keys {
		fixtureIDs = append(fixtureIDs, strings.TrimPrefix(key, keyPrefix))
	}

	return fixtureIDs, nil
}

// Ping checks Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
