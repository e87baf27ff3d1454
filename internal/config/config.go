// Package config loads client and dev-server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	// API client settings.
	APIBaseURL    string        `env:"TRAILSTORY_API_URL" envDefault:"http://localhost:7000"`
	HTTPTimeout   time.Duration `env:"TRAILSTORY_HTTP_TIMEOUT" envDefault:"30s"`
	SessionPath   string        `env:"TRAILSTORY_SESSION_FILE"`
	RedisAddr     string        `env:"TRAILSTORY_REDIS_ADDR"`
	RedisPassword string        `env:"TRAILSTORY_REDIS_PASSWORD"`
	RedisDB       int           `env:"TRAILSTORY_REDIS_DB" envDefault:"0"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`

	// Local stand-in API server settings.
	DevAPIAddr       string        `env:"DEVAPI_ADDR" envDefault:":7000"`
	DevAPIJWTSecret  string        `env:"DEVAPI_JWT_SECRET" envDefault:"trailstory-dev-secret"`
	DevAPITokenTTL   time.Duration `env:"DEVAPI_TOKEN_TTL" envDefault:"15m"`
	DevAPIRefreshTTL time.Duration `env:"DEVAPI_REFRESH_TTL" envDefault:"24h"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
