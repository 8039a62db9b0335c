// Package config loads service settings by layering defaults, an optional
// YAML file, and environment variables (prefix PCM_), highest last.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all service settings.
type Config struct {
	HTTPAddr        string        `koanf:"http_addr"`
	LogLevel        string        `koanf:"log_level"`
	LogFormat       string        `koanf:"log_format"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Source endpoints.
	ArchiveURL   string        `koanf:"archive_url"`
	FeedURL      string        `koanf:"feed_url"`
	FetchTimeout time.Duration `koanf:"fetch_timeout"`

	// Reconciliation parameters.
	DefaultLookbackDays int           `koanf:"default_lookback_days"`
	CacheTTL            time.Duration `koanf:"cache_ttl"`

	// Optional snapshot export to Kafka after each refresh.
	KafkaEnabled bool     `koanf:"kafka_enabled"`
	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`
}

func defaults() *Config {
	return &Config{
		HTTPAddr:        ":8080",
		LogLevel:        "info",
		LogFormat:       "json",
		ShutdownTimeout: 10 * time.Second,

		ArchiveURL:   "https://raw.githubusercontent.com/aaroncolesmith/portland_crime_map/main/data.csv",
		FeedURL:      "https://www.portlandonline.com/scripts/911incidents.cfm",
		FetchTimeout: 30 * time.Second,

		DefaultLookbackDays: 7,
		CacheTTL:            30 * time.Minute,

		KafkaEnabled: false,
		KafkaBrokers: []string{"localhost:9092"},
		KafkaTopic:   "reconciled-incidents",
	}
}

// Load builds a Config. Precedence (low to high): defaults, YAML file named
// by PCM_CONFIG, environment variables with the PCM_ prefix.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("PCM_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// PCM_HTTP_ADDR → http_addr, PCM_CACHE_TTL → cache_ttl, ...
	envProvider := env.Provider("PCM_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PCM_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := defaults()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Env values arrive as a single comma-joined string; YAML arrives as a
	// real list. Normalize both.
	cfg.KafkaBrokers = splitBrokers(cfg.KafkaBrokers)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitBrokers(brokers []string) []string {
	var out []string
	for _, b := range brokers {
		for _, part := range strings.Split(b, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) validate() error {
	if c.ArchiveURL == "" {
		return errors.New("archive_url is required")
	}
	if c.FeedURL == "" {
		return errors.New("feed_url is required")
	}
	if c.DefaultLookbackDays < 1 || c.DefaultLookbackDays > 365 {
		return fmt.Errorf("default_lookback_days must be in [1, 365], got %d", c.DefaultLookbackDays)
	}
	if c.CacheTTL <= 0 {
		return errors.New("cache_ttl must be positive")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch_timeout must be positive")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("kafka_enabled is true but kafka_brokers is empty")
	}
	if c.KafkaEnabled && c.KafkaTopic == "" {
		return errors.New("kafka_enabled is true but kafka_topic is empty")
	}
	return nil
}
