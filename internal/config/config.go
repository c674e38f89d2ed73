package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the speech gateway service.
// Provider credentials are not configured here: callers relay their own
// token on every request.
type Config struct {
	// Server configuration
	Port            string `envconfig:"PORT" default:"5933"`
	GRPCHealthPort  string `envconfig:"GRPC_HEALTH_PORT" default:""`         // Empty disables the gRPC health server
	ReadTimeout     int    `envconfig:"READ_TIMEOUT" default:"15"`           // seconds
	WriteTimeout    int    `envconfig:"WRITE_TIMEOUT" default:"75"`          // seconds, must exceed UPSTREAM_TIMEOUT
	IdleTimeout     int    `envconfig:"IDLE_TIMEOUT" default:"60"`           // seconds
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"`       // seconds
	MaxRequestBytes int64  `envconfig:"MAX_REQUEST_BYTES" default:"1048576"` // Inbound JSON body limit

	// Upstream configuration
	UpstreamTimeout int `envconfig:"UPSTREAM_TIMEOUT" default:"60"` // seconds, per outbound call

	// Provider endpoints (override for proxies or compatible self-hosted APIs)
	OpenAIBaseURL     string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	ElevenLabsBaseURL string `envconfig:"ELEVENLABS_BASE_URL" default:"https://api.elevenlabs.io/v1"`
	CartesiaBaseURL   string `envconfig:"CARTESIA_BASE_URL" default:"https://api.cartesia.ai"`
	CartesiaVersion   string `envconfig:"CARTESIA_VERSION" default:"2024-06-10"`
	DeepgramBaseURL   string `envconfig:"DEEPGRAM_BASE_URL" default:"https://api.deepgram.com/v1"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values envconfig cannot express as tags.
func (c *Config) Validate() error {
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %d", c.UpstreamTimeout)
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	// A shorter write timeout would cut off audio the upstream is still allowed to produce
	if c.WriteTimeout <= c.UpstreamTimeout {
		return fmt.Errorf("WRITE_TIMEOUT (%d) must exceed UPSTREAM_TIMEOUT (%d)", c.WriteTimeout, c.UpstreamTimeout)
	}
	if c.MaxRequestBytes <= 0 {
		return fmt.Errorf("MAX_REQUEST_BYTES must be positive, got %d", c.MaxRequestBytes)
	}
	return nil
}

// UpstreamTimeoutDuration returns the per-call upstream timeout.
func (c *Config) UpstreamTimeoutDuration() time.Duration {
	return time.Duration(c.UpstreamTimeout) * time.Second
}

// Seconds converts one of the integer second settings to a time.Duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
