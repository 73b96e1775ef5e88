package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full process configuration, populated from the environment
// with an optional .env overlay for local development.
type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	DBDSN    string `envconfig:"DB_DSN"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"futures-assist"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	WSOrigin string `envconfig:"WS_ORIGIN" default:"*"`

	ExchangeBaseURL string        `envconfig:"EXCHANGE_BASE_URL" default:"https://api.gateio.ws/api/v4"`
	ExchangeKey     string        `envconfig:"EXCHANGE_KEY"`
	ExchangeSecret  string        `envconfig:"EXCHANGE_SECRET"`
	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	Symbols         []string      `envconfig:"SYMBOLS" default:"BTC_USDT"`
}

// Load reads .env when present, then the process environment. Serving
// requires a database and a signing secret; the one-off CLI commands do not,
// so those checks live in Validate rather than here.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot run without.
func (c Config) Validate() error {
	if c.DBDSN == "" {
		return errors.New("DB_DSN is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.Symbols) == 0 {
		return errors.New("SYMBOLS must list at least one contract")
	}
	return nil
}
