package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo MongoConfig
	Redis RedisConfig
	JWT   JWTConfig
	Demo  DemoConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=pv_auth"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type JWTConfig struct {
	Secret              string        `env:"JWT_SECRET"`
	AccessTTL           time.Duration `env:"JWT_ACCESS_TTL,  default=15m"`
	RefreshTTL          time.Duration `env:"JWT_REFRESH_TTL, default=168h"`
	RefreshCookieSecure bool          `env:"REFRESH_COOKIE_SECURE, default=true"`
}

type DemoConfig struct {
	Secret         string        `env:"DEMO_SECRET"`
	Scope          string        `env:"DEMO_SCOPE,           default=demo"`
	MaxActivations int           `env:"DEMO_MAX_ACTIVATIONS, default=3"`
	KeyValidDays   int           `env:"DEMO_KEY_VALID_DAYS,  default=10"`
	RateLimit      int           `env:"DEMO_RATE_LIMIT,      default=5"`
	RateWindow     time.Duration `env:"DEMO_RATE_WINDOW,     default=1m"`
	// RateBackend selects the limiter implementation: "memory" for a
	// single instance, "redis" when limits must hold across replicas.
	RateBackend string `env:"DEMO_RATE_BACKEND, default=memory"`
}

// KeyValidity returns the demo-key validity window as a duration.
func (d DemoConfig) KeyValidity() time.Duration {
	return time.Duration(d.KeyValidDays) * 24 * time.Hour
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
