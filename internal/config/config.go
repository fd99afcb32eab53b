// Package config loads server configuration from environment variables
package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/gm-api/internal/errors"
)

// Config holds the server configuration
type Config struct {
	// HTTPAddr is the websocket listen address
	HTTPAddr string `env:"GM_API_HTTP_ADDR" envDefault:":8080"`
	// GRPCPort serves the health endpoint
	GRPCPort int `env:"GM_API_GRPC_PORT" envDefault:"50051"`

	RedisAddr string `env:"GM_API_REDIS_ADDR" envDefault:"localhost:6379"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIModel     string `env:"GM_API_OPENAI_MODEL" envDefault:"gpt-4o"`
	OpenAIMaxTokens int64  `env:"GM_API_OPENAI_MAX_TOKENS" envDefault:"4000"`

	// TaskTimeout bounds each background room task
	TaskTimeout time.Duration `env:"GM_API_TASK_TIMEOUT" envDefault:"60s"`
	// GCInterval is how often finished stream buffers are swept
	GCInterval time.Duration `env:"GM_API_STREAM_GC_INTERVAL" envDefault:"1m"`
	// TokenPace is the delay between narration tokens sent to clients
	TokenPace time.Duration `env:"GM_API_TOKEN_PACE" envDefault:"50ms"`
}

// Load parses the configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.InvalidArgument("OPENAI_API_KEY is required")
	}
	return &cfg, nil
}
