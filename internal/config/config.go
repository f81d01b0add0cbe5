// Package config loads service configuration from an optional YAML file
// plus environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	Sinks     SinksConfig     `mapstructure:"sinks"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// IngestConfig controls the alert ingestion endpoint. Token has no
// default: an unset token is a server misconfiguration and the endpoint
// fails closed.
type IngestConfig struct {
	Token string `mapstructure:"token"`
}

// FeedConfig controls the synthetic feed generator cadence.
type FeedConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	ScenarioEvery int           `mapstructure:"scenario_every"`
	ResetEvery    int           `mapstructure:"reset_every"`
}

// ScoringConfig holds the default composite score weight vector.
type ScoringConfig struct {
	RuleBasedWeight            float64 `mapstructure:"rule_based_weight"`
	AnomalyDetectionWeight     float64 `mapstructure:"anomaly_detection_weight"`
	SupervisedClassifierWeight float64 `mapstructure:"supervised_classifier_weight"`
}

// NarrativeConfig points at the optional narration service.
type NarrativeConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SinksConfig enables optional alert mirrors.
type SinksConfig struct {
	File  FileSinkConfig  `mapstructure:"file"`
	HTTP  HTTPSinkConfig  `mapstructure:"http"`
	Redis RedisSinkConfig `mapstructure:"redis"`
}

// FileSinkConfig mirrors alerts to a JSONL file.
type FileSinkConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// HTTPSinkConfig mirrors alerts to a remote HTTP endpoint.
type HTTPSinkConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RedisSinkConfig mirrors alerts onto a Redis pub/sub channel.
type RedisSinkConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration from the given YAML file (optional if every
// required value arrives via environment) and the EXFILSENSE_* environment.
// The ingestion token is also read from ALERT_INGESTION_TOKEN for parity
// with existing deployments.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("exfilsense")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("EXFILSENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("ingest.token", "ALERT_INGESTION_TOKEN", "EXFILSENSE_INGEST_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind ingest token env: %w", err)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8090")
	v.SetDefault("server.read_timeout", 10*time.Second)
	// Streaming responses stay open indefinitely; the write timeout must
	// not cut long-lived SSE connections.
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("feed.interval", 1500*time.Millisecond)
	v.SetDefault("feed.scenario_every", 15)
	v.SetDefault("feed.reset_every", 25)

	v.SetDefault("scoring.rule_based_weight", 0.4)
	v.SetDefault("scoring.anomaly_detection_weight", 0.3)
	v.SetDefault("scoring.supervised_classifier_weight", 0.3)

	v.SetDefault("narrative.timeout", 5*time.Second)

	v.SetDefault("sinks.file.path", "output/alerts.jsonl")
	v.SetDefault("sinks.http.timeout", 5*time.Second)
	v.SetDefault("sinks.redis.addr", "127.0.0.1:6379")
	v.SetDefault("sinks.redis.channel", "exfilsense:alerts")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func validate(cfg *Config) error {
	if cfg.Feed.Interval <= 0 {
		return fmt.Errorf("feed.interval must be positive")
	}
	if cfg.Feed.ScenarioEvery <= 0 || cfg.Feed.ResetEvery <= 0 {
		return fmt.Errorf("feed cadence values must be positive")
	}
	if cfg.Sinks.HTTP.Enabled && cfg.Sinks.HTTP.URL == "" {
		return fmt.Errorf("sinks.http.url is required when the http sink is enabled")
	}
	if cfg.Sinks.File.Enabled && cfg.Sinks.File.Path == "" {
		return fmt.Errorf("sinks.file.path is required when the file sink is enabled")
	}
	return nil
}
