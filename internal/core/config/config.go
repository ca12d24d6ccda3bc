package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port               string `env:"PORT" envDefault:"3000"`
	DatabaseURL        string `env:"DATABASE_URL,required"`
	AccountsServiceURL string `env:"ACCOUNTS_SERVICE_URL,required"`
	WebhookURL         string `env:"WEBHOOK_URL"`
	WebhookSecret      string `env:"WEBHOOK_SECRET"`
	Env                string `env:"ENV" envDefault:"development"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on system env variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
