// Package config loads the site configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabaseURL  string `env:"DATABASE_URL" envDefault:"host=localhost user=postgres password=postgres dbname=flashinfos port=5432 sslmode=disable TimeZone=UTC"`
	SiteURL      string `env:"SITE_URL" envDefault:"https://flashinfos237.com"`
	SiteName     string `env:"SITE_NAME" envDefault:"Flash Infos 237"`
	SiteTagline  string `env:"SITE_TAGLINE" envDefault:"Les dernières actualités du Cameroun et d'Afrique"`
	ShortName    string `env:"SITE_SHORT_NAME" envDefault:"flashinfos237"`
	ThemeColor   string `env:"THEME_COLOR" envDefault:"#000000"`
	Background   string `env:"BACKGROUND_COLOR" envDefault:"#ffffff"`
	SessionKey   string `env:"SESSION_SECRET" envDefault:"secret_key_change_me"`
	RedisURL     string `env:"REDIS_URL"`
	CachePrefix  string `env:"CACHE_PREFIX" envDefault:"flashinfos:"`
	CacheSize    int    `env:"CACHE_SIZE" envDefault:"500"`
	GinMode      string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:"./web/templates"`
	StaticDir    string `env:"STATIC_DIR" envDefault:"./web/static"`

	// ReconcileSpec is the cron spec of the denormalized counter job; empty disables it.
	ReconcileSpec string `env:"RECONCILE_SPEC" envDefault:"@hourly"`
	ViewQueueSize int    `env:"VIEW_QUEUE_SIZE" envDefault:"1000"`

	// Submission rate limit per client IP.
	SubmitPerMinute int `env:"SUBMIT_PER_MINUTE" envDefault:"5"`
	SubmitBurst     int `env:"SUBMIT_BURST" envDefault:"5"`
}

// Load reads .env when present, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	if cfg.SessionKey == "secret_key_change_me" {
		slog.Warn("SESSION_SECRET is not set, using the development default")
	}
	return cfg, nil
}

// UseRedisCache returns true if a shared Redis cache is configured.
func (c *Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Level maps LogLevel onto a slog level.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
