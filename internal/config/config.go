// internal/config/config.go
//
// Environment-driven configuration for the bowling server.
// main loads a .env file (godotenv) before calling Load, so values from the
// file and the real environment are parsed the same way.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/robalobadob/bowling/internal/frame"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port           string        `env:"PORT" envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"` // json | console
	DBPath         string        `env:"DB_PATH" envDefault:"./data/bowling.db"`
	Store          string        `env:"STORE" envDefault:"sqlite"` // sqlite | memory
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int           `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string        `env:"COOKIE_NAME" envDefault:"bowling_token"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	SpareRule      string        `env:"SPARE_RULE" envDefault:"standard"`
	MaxBowlers     int           `env:"MAX_BOWLERS" envDefault:"8"`
	Production     bool          `env:"PRODUCTION" envDefault:"false"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if _, err := frame.ParseSpareRule(c.SpareRule); err != nil {
		errs = append(errs, fmt.Errorf("SPARE_RULE %q: %w", c.SpareRule, err))
	}
	if c.Store != "sqlite" && c.Store != "memory" {
		errs = append(errs, fmt.Errorf("STORE must be sqlite or memory, got %q", c.Store))
	}
	if c.MaxBowlers < 1 {
		errs = append(errs, fmt.Errorf("MAX_BOWLERS must be positive, got %d", c.MaxBowlers))
	}
	if c.JWTExpiresDays < 1 {
		errs = append(errs, fmt.Errorf("JWT_EXPIRES_DAYS must be positive, got %d", c.JWTExpiresDays))
	}
	if c.Production && c.JWTSecret == "dev_secret_change_me" {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	return errors.Join(errs...)
}

// Rule returns the configured spare rule. Validate has already checked it.
func (c Config) Rule() frame.SpareRule {
	r, _ := frame.ParseSpareRule(c.SpareRule)
	return r
}

// Level maps LogLevel to a zerolog level, defaulting to info.
func (c Config) Level() zerolog.Level {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}

// TokenTTL is the lifetime of session tokens.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}
