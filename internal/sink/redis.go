package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sri5hat/aptdetection/internal/domain"
)

// RedisSinkConfig configures the Redis pub/sub mirror.
type RedisSinkConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// RedisSink publishes each alert as JSON on a Redis channel so external
// consumers (SIEM forwarders, other dashboards) can tap the stream without
// holding an SSE connection.
type RedisSink struct {
	client  *redis.Client
	channel string
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(ctx context.Context, cfg RedisSinkConfig) (*RedisSink, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis sink addr is empty")
	}
	channel := cfg.Channel
	if channel == "" {
		channel = "exfilsense:alerts"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisSink{client: client, channel: channel}, nil
}

// WriteAlert publishes one alert on the configured channel.
func (s *RedisSink) WriteAlert(ctx context.Context, a *domain.Alert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish alert to %s: %w", s.channel, err)
	}
	return nil
}

// Name identifies the sink in logs.
func (s *RedisSink) Name() string { return "redis" }

// Close closes the Redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
