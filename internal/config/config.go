package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	// DisplayCurrency is only a formatting default; computations are
	// currency-agnostic and requests may override it.
	DisplayCurrency string `env:"DISPLAY_CURRENCY" envDefault:"USD"`

	FetchConcurrency int `env:"FETCH_CONCURRENCY" envDefault:"5"`
	FetchTimeoutMS   int `env:"FETCH_TIMEOUT_MS" envDefault:"3000"`

	RecalcMaxAttempts int `env:"RECALC_MAX_ATTEMPTS" envDefault:"3"`
	RecalcBackoffMS   int `env:"RECALC_BACKOFF_MS" envDefault:"200"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

func (c *Config) RecalcBackoff() time.Duration {
	return time.Duration(c.RecalcBackoffMS) * time.Millisecond
}
