// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Host string `envconfig:"RAGLENS_HOST" yaml:"host"`
	Port int    `envconfig:"RAGLENS_PORT" yaml:"port"`

	// Source configuration
	Source SourceConfig `yaml:"source"`

	// Analysis configuration
	Analysis AnalysisConfig `yaml:"analysis"`

	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Security configuration
	Security SecurityConfig `yaml:"security"`
}

// SourceConfig holds telemetry source settings.
type SourceConfig struct {
	// Type selects the batch source: file, redis, or kafka.
	Type string `envconfig:"RAGLENS_SOURCE_TYPE" yaml:"type"`

	// Path is the query log path for the file source.
	Path string `envconfig:"RAGLENS_LOG_PATH" yaml:"path"`

	// RedisURL and RedisKey locate the record list for the redis source.
	RedisURL string `envconfig:"RAGLENS_REDIS_URL" yaml:"redis_url"`
	RedisKey string `envconfig:"RAGLENS_REDIS_KEY" yaml:"redis_key"`

	// KafkaBrokers and KafkaTopic locate the record topic for the kafka source.
	KafkaBrokers string `envconfig:"RAGLENS_KAFKA_BROKERS" yaml:"kafka_brokers"`
	KafkaTopic   string `envconfig:"RAGLENS_KAFKA_TOPIC" yaml:"kafka_topic"`
}

// AnalysisConfig holds analysis engine settings.
type AnalysisConfig struct {
	// TrendWindow is the number of most recent hourly buckets to report.
	TrendWindow int `envconfig:"RAGLENS_TREND_WINDOW" yaml:"trend_window"`

	// SlowQuantile is the response-time quantile above which queries are
	// reported as slow.
	SlowQuantile float64 `envconfig:"RAGLENS_SLOW_QUANTILE" yaml:"slow_quantile"`

	// GenerationQuantile is the generation-time quantile above which
	// queries are reported as generation bottlenecks.
	GenerationQuantile float64 `envconfig:"RAGLENS_GENERATION_QUANTILE" yaml:"generation_quantile"`

	// TopDocumentValues is the size of the documents_retrieved frequency
	// table in the content section.
	TopDocumentValues int `envconfig:"RAGLENS_TOP_DOCUMENT_VALUES" yaml:"top_document_values"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"RAGLENS_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"RAGLENS_LOG_FORMAT" yaml:"format"`
}

// SecurityConfig holds security settings.
type SecurityConfig struct {
	RateLimit   int    `envconfig:"RAGLENS_RATE_LIMIT" yaml:"rate_limit"` // 0 = disabled
	CORSOrigins string `envconfig:"RAGLENS_CORS_ORIGINS" yaml:"cors_origins"`
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Host = "0.0.0.0"
	cfg.Port = 8080

	cfg.Source = SourceConfig{
		Type:     "file",
		Path:     "./data/query_log.jsonl",
		RedisURL: "redis://localhost:6379",
		RedisKey: "raglens:records",
	}

	cfg.Analysis = AnalysisConfig{
		TrendWindow:        10,
		SlowQuantile:       0.90,
		GenerationQuantile: 0.90,
		TopDocumentValues:  5,
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}

	cfg.Security = SecurityConfig{
		RateLimit:   0,
		CORSOrigins: "*",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}

	// Source validation
	validSourceTypes := map[string]bool{"file": true, "redis": true, "kafka": true}
	if !validSourceTypes[c.Source.Type] {
		errs = append(errs, fmt.Sprintf("invalid source type: %s (must be file, redis, or kafka)", c.Source.Type))
	}

	switch c.Source.Type {
	case "file":
		if c.Source.Path == "" {
			errs = append(errs, "source path must be set for the file source")
		}
	case "redis":
		if c.Source.RedisURL == "" {
			errs = append(errs, "redis_url must be set for the redis source")
		}
		if c.Source.RedisKey == "" {
			errs = append(errs, "redis_key must be set for the redis source")
		}
	case "kafka":
		if c.Source.KafkaBrokers == "" {
			errs = append(errs, "kafka_brokers must be set for the kafka source")
		}
		if c.Source.KafkaTopic == "" {
			errs = append(errs, "kafka_topic must be set for the kafka source")
		}
	}

	// Analysis validation
	if c.Analysis.TrendWindow < 1 {
		errs = append(errs, "trend_window must be positive")
	}

	if c.Analysis.SlowQuantile <= 0 || c.Analysis.SlowQuantile >= 1 {
		errs = append(errs, "slow_quantile must be between 0 and 1 exclusive")
	}

	if c.Analysis.GenerationQuantile <= 0 || c.Analysis.GenerationQuantile >= 1 {
		errs = append(errs, "generation_quantile must be between 0 and 1 exclusive")
	}

	if c.Analysis.TopDocumentValues < 1 {
		errs = append(errs, "top_document_values must be positive")
	}

	// Log validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Address returns the server address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Log.Level == "debug"
}
