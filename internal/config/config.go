package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	BotToken     string `env:"BOT_TOKEN"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./casino.db"`
	HTTPAddr     string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"text"`
	StartBalance int    `env:"START_BALANCE" envDefault:"1000"`
	DefaultBet   int    `env:"DEFAULT_BET" envDefault:"100"`
	MinBet       int    `env:"MIN_BET" envDefault:"10"`
	MaxBet       int    `env:"MAX_BET" envDefault:"10000"`
	ShuffleSeed  int64  `env:"SHUFFLE_SEED" envDefault:"0"`

	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
}

// Load reads .env files (if present) and then the process environment.
func Load(files ...string) (*Config, error) {
	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load(files...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MinBet <= 0 {
		return fmt.Errorf("MIN_BET must be positive, got %d", c.MinBet)
	}
	if c.MaxBet != 0 && c.MaxBet < c.MinBet {
		return fmt.Errorf("MAX_BET %d is below MIN_BET %d", c.MaxBet, c.MinBet)
	}
	if c.StartBalance < 0 {
		return fmt.Errorf("START_BALANCE must not be negative, got %d", c.StartBalance)
	}
	if c.DefaultBet < c.MinBet {
		return fmt.Errorf("DEFAULT_BET %d is below MIN_BET %d", c.DefaultBet, c.MinBet)
	}
	if c.MaxBet != 0 && c.DefaultBet > c.MaxBet {
		return fmt.Errorf("DEFAULT_BET %d is above MAX_BET %d", c.DefaultBet, c.MaxBet)
	}
	if c.SessionIdleTimeout < 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must not be negative, got %s", c.SessionIdleTimeout)
	}
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("LOG_FORMAT must be text, json or logfmt, got %q", c.LogFormat)
	}
	return nil
}

// RequireBotToken fails when the Telegram token is missing.
func (c *Config) RequireBotToken() error {
	if c.BotToken == "" {
		return errors.New("BOT_TOKEN is not set")
	}
	return nil
}
