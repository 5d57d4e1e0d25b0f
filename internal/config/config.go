package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"LedgerCert"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"ledgercert"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Risk struct {
		// Months are bucketed in this zone everywhere: aggregation, month
		// lists, filters and statement dates.
		TimeZone string `envconfig:"RISK_TIME_ZONE" default:"UTC"`
	}

	Signer struct {
		KeyPath string `envconfig:"SIGNER_KEY_PATH" default:"./data/device_key.pem"`
	}

	Device struct {
		Model string `envconfig:"DEVICE_MODEL" default:"ledgercert-server"`
	}

	Auth struct {
		// An empty secret leaves the API unauthenticated.
		Secret   string        `envconfig:"AUTH_JWT_SECRET" default:""`
		TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"720h"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Location resolves Risk.TimeZone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Risk.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", c.Risk.TimeZone, err)
	}

	return loc, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
