package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
)

type Config struct {
	// Server
	Port           string
	Environment    string
	BaseURL        string
	AllowedOrigins []string

	// Generation
	AssetBaseURL     string
	RenderAPIURL     string
	RenderAPIKey     string
	RenderMaxRetries int
	GenerationDelay  time.Duration
	Workers          int
	QueueSize        int

	// Store
	StoreBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	OrderTTL      time.Duration

	// Rate limiting
	CreateRatePerSec float64
	CreateBurst      int

	// Observability
	SentryDSN string
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("allowed_origins", "")
	v.SetDefault("asset_base_url", "https://assets.gokart.example.com")
	v.SetDefault("render_api_url", "")
	v.SetDefault("render_api_key", "")
	v.SetDefault("render_max_retries", 3)
	v.SetDefault("generation_delay", "3s")
	v.SetDefault("workers", 4)
	v.SetDefault("queue_size", 64)
	v.SetDefault("store_backend", StoreBackendMemory)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("order_ttl", "0")
	v.SetDefault("create_rate_per_sec", 5.0)
	v.SetDefault("create_burst", 10)
	v.SetDefault("sentry_dsn", "")

	cfg := &Config{
		Port:            v.GetString("port"),
		Environment:     v.GetString("environment"),
		BaseURL:         v.GetString("base_url"),
		AllowedOrigins:  splitOrigins(v.GetString("allowed_origins")),
		AssetBaseURL:     strings.TrimSuffix(v.GetString("asset_base_url"), "/"),
		RenderAPIURL:     v.GetString("render_api_url"),
		RenderAPIKey:     v.GetString("render_api_key"),
		RenderMaxRetries: v.GetInt("render_max_retries"),
		GenerationDelay:  v.GetDuration("generation_delay"),
		Workers:          v.GetInt("workers"),
		QueueSize:        v.GetInt("queue_size"),
		StoreBackend:     v.GetString("store_backend"),
		RedisAddr:        v.GetString("redis_addr"),
		RedisPassword:    v.GetString("redis_password"),
		RedisDB:          v.GetInt("redis_db"),
		OrderTTL:         v.GetDuration("order_ttl"),

		CreateRatePerSec: v.GetFloat64("create_rate_per_sec"),
		CreateBurst:      v.GetInt("create_burst"),

		SentryDSN: v.GetString("sentry_dsn"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be at least 1, got %d", c.QueueSize)
	}
	if c.GenerationDelay < 0 {
		return fmt.Errorf("GENERATION_DELAY must not be negative")
	}
	if c.RenderMaxRetries < 1 {
		return fmt.Errorf("RENDER_MAX_RETRIES must be at least 1, got %d", c.RenderMaxRetries)
	}
	switch c.StoreBackend {
	case StoreBackendMemory, StoreBackendRedis:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreBackendMemory, StoreBackendRedis, c.StoreBackend)
	}
	if c.StoreBackend == StoreBackendRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when STORE_BACKEND is redis")
	}
	if c.AssetBaseURL == "" {
		return fmt.Errorf("ASSET_BASE_URL is required")
	}
	return nil
}

// IsProduction reports whether the service runs in release mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
