// Package config loads client settings from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	// ServiceURL is the websocket endpoint of the remote draft service.
	ServiceURL string `env:"SERVICE_URL" envDefault:"wss://bs8e4l0vld.execute-api.us-east-1.amazonaws.com/staging"`

	// CatalogSource is an http(s) URL or a file path, JSON or YAML.
	CatalogSource string `env:"CATALOG_SOURCE" envDefault:"catalog.json"`

	// StoreDSN selects the local store: "memory:", a postgres:// URL, or a
	// sqlite file path.
	StoreDSN string `env:"STORE_DSN" envDefault:"draft-client.db"`

	HTTPAddr       string `env:"HTTP_ADDR" envDefault:"127.0.0.1:8090"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`

	TickInterval      time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	LowTimeThreshold  time.Duration `env:"LOW_TIME_THRESHOLD" envDefault:"10s"`
	ActionTimeout     time.Duration `env:"ACTION_TIMEOUT" envDefault:"5s"`
	KeepaliveInterval time.Duration `env:"KEEPALIVE_INTERVAL" envDefault:"5m"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
	DialTimeout       time.Duration `env:"DIAL_TIMEOUT" envDefault:"10s"`
	CatalogTimeout    time.Duration `env:"CATALOG_TIMEOUT" envDefault:"8s"`

	BanSlots int `env:"BAN_SLOTS" envDefault:"4"`
}

// Load reads the given .env files (missing ones are skipped; default ".env"),
// then parses DRAFT_* variables. Variables already set in the environment win
// over .env values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "DRAFT_"})
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.ServiceURL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return fmt.Errorf("%w: service url %q must be ws:// or wss://", ErrInvalidConfig, c.ServiceURL)
	}
	if strings.TrimSpace(c.CatalogSource) == "" {
		return fmt.Errorf("%w: catalog source must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.StoreDSN) == "" {
		return fmt.Errorf("%w: store dsn must not be empty", ErrInvalidConfig)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("%w: http addr must not be empty", ErrInvalidConfig)
	}
	if c.TickInterval <= 0 || c.ActionTimeout <= 0 || c.WriteTimeout <= 0 || c.DialTimeout <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrInvalidConfig)
	}
	if c.BanSlots < 0 {
		return fmt.Errorf("%w: ban slots must not be negative", ErrInvalidConfig)
	}
	return nil
}
