package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cypherlabdev/arb-detection-service/internal/models"
)

// Config holds all configuration for arb-detection-service
type Config struct {
	Server   ServerConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Source   SourceConfig
	Analysis AnalysisConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers      []string
	Topic        string // Topic to consume fixture snapshots from (fixture_odds)
	GroupID      string
	PublishTopic string // Topic detected opportunities are published to
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// SourceConfig holds the odds data source configuration
type SourceConfig struct {
	BaseURL      string        // Primary pricing API base URL
	Timeout      time.Duration // Per-request timeout
	SnapshotPath string        // Local snapshot file used when the API fails
}

// AnalysisConfig holds arbitrage search parameters
type AnalysisConfig struct {
	TopK           int // Prices kept per outcome; > 1 enables combinatorial mode
	MaxResults     int // Opportunities kept per market in combinatorial mode
	CombinationCap int // Hard ceiling on enumerated combinations per market
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8082)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "fixture_odds")
	v.SetDefault("kafka.group_id", "arb-detector")
	v.SetDefault("kafka.publish_topic", "arb_opportunities")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("source.base_url", "http://localhost:8080")
	v.SetDefault("source.timeout", 10*time.Second)
	v.SetDefault("source.snapshot_path", "data/fixture_odds.json")

	v.SetDefault("analysis.top_k", 1)
	v.SetDefault("analysis.max_results", 3)
	v.SetDefault("analysis.combination_cap", models.DefaultCombinationCap)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("ARB_DETECTOR")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// ToAnalysisParams converts config to normalized analysis parameters
func (c *AnalysisConfig) ToAnalysisParams() models.AnalysisParams {
	return models.AnalysisParams{
		TopK:           c.TopK,
		MaxResults:     c.MaxResults,
		CombinationCap: c.CombinationCap,
	}.Normalize()
}
