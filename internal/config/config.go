package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config is the whole runtime configuration, loaded from the environment.
// Defaults match a checkout-relative layout: raw exports under data/raw, the
// analytical store under db/.
type Config struct {
	RawDataDir     string   `env:"RAW_DATA_DIR" envDefault:"data/raw"`
	DBPath         string   `env:"DB_PATH" envDefault:"db/ads_analytics.db"`
	Platforms      []string `env:"PLATFORMS" envDefault:"google_ads,facebook_ads"`
	Port           string   `env:"PORT" envDefault:"8080"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	QueryCacheSize int      `env:"QUERY_CACHE_SIZE" envDefault:"128"`
}

func FromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
