package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"marketplace/matcher/internal/keywords"
	"marketplace/matcher/internal/score"
)

// Config holds all configuration for the application
type Config struct {
	Server       Server                 `mapstructure:"server"`
	Database     Database               `mapstructure:"database"`
	Redis        Redis                  `mapstructure:"redis"`
	Marketplaces map[string]Marketplace `mapstructure:"marketplaces"`
}

// Server holds HTTP API configuration
type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Database holds the optional snapshot-store configuration
type Database struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// Redis holds the optional refresh-journal configuration
type Redis struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// Marketplace configures one marketplace's transport, cadence and matching
// behavior. Everything marketplace-specific is data here; the engine code is
// shared across marketplaces.
type Marketplace struct {
	BaseURL              string        `mapstructure:"base_url"`
	Transport            string        `mapstructure:"transport"` // rest or html
	Locale               string        `mapstructure:"locale"`
	Timeout              int           `mapstructure:"timeout"` // seconds
	MaxRetries           int           `mapstructure:"max_retries"`
	MaxWorkers           int           `mapstructure:"max_workers"`
	MaxRequestsPerSecond int           `mapstructure:"max_requests_per_second"`
	TaxonomyTTL          time.Duration `mapstructure:"taxonomy_ttl"`
	AttributeTTL         time.Duration `mapstructure:"attribute_ttl"`
	ResultTTL            time.Duration `mapstructure:"result_ttl"`
	MinScore             int           `mapstructure:"min_score"`
	DefaultTopN          int           `mapstructure:"default_top_n"`

	Weights    score.Weights             `mapstructure:"weights"`
	Vocabulary keywords.VocabularyConfig `mapstructure:"vocabulary"`
}

const (
	TransportREST = "rest"
	TransportHTML = "html"
)

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config.yaml file not found in current directory")
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if len(config.Marketplaces) == 0 {
		return nil, fmt.Errorf("no marketplaces configured")
	}
	for id, mp := range config.Marketplaces {
		if mp.BaseURL == "" {
			return nil, fmt.Errorf("marketplace %s has no base_url", id)
		}
		config.Marketplaces[id] = mp.withDefaults()
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "matcher")
	viper.SetDefault("database.user", "matcher_user")
	viper.SetDefault("database.password", "matcher_pass")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)
}

// withDefaults fills unset per-marketplace fields with the standard cadence.
func (m Marketplace) withDefaults() Marketplace {
	if m.Transport == "" {
		m.Transport = TransportREST
	}
	if m.Locale == "" {
		m.Locale = "tr"
	}
	if m.Timeout == 0 {
		m.Timeout = 30
	}
	if m.MaxRetries == 0 {
		m.MaxRetries = 3
	}
	if m.MaxWorkers == 0 {
		m.MaxWorkers = 5
	}
	if m.MaxRequestsPerSecond == 0 {
		m.MaxRequestsPerSecond = 10
	}
	if m.TaxonomyTTL == 0 {
		m.TaxonomyTTL = time.Hour
	}
	if m.AttributeTTL == 0 {
		m.AttributeTTL = 30 * time.Minute
	}
	if m.ResultTTL == 0 {
		m.ResultTTL = 30 * time.Minute
	}
	if m.MinScore == 0 {
		m.MinScore = 3
	}
	if m.DefaultTopN == 0 {
		m.DefaultTopN = 10
	}
	return m
}
