package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server  ServerConfig
	App     AppConfig
	OTLP    OTLPConfig
	Catalog CatalogConfig
	Log     LogConfig
	Metrics MetricsConfig
}

type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            string        `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"5s"`
}

// AppConfig carries the public URLs of the storefront and its API
type AppConfig struct {
	URL        string `envconfig:"APP_URL" default:"http://localhost:3000"`
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:8080"`
}

type OTLPConfig struct {
	Enabled     bool   `envconfig:"OTEL_ENABLED" default:"true"`
	Endpoint    string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	ServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"storefront-api"`
	Environment string `envconfig:"OTEL_ENVIRONMENT" default:"development"`
}

type CatalogConfig struct {
	// Latency simulates a slow catalog backend on lookups
	Latency time.Duration `envconfig:"CATALOG_LATENCY" default:"0s"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"debug"`
}

type MetricsConfig struct {
	DurationMilliseconds bool `envconfig:"METRICS_DURATION_MS" default:"false"`
}

// LoadConfig loads configuration from environment variables, reading an
// optional .env file first
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express
func (c *Config) Validate() error {
	if err := validateURL("APP_URL", c.App.URL); err != nil {
		return err
	}
	if err := validateURL("API_BASE_URL", c.App.APIBaseURL); err != nil {
		return err
	}
	if c.Catalog.Latency < 0 {
		return errors.New("CATALOG_LATENCY must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// SlogLevel parses the configured level name
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", l.Level, err)
	}
	return level, nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s: %q is not an absolute URL", name, raw)
	}
	return nil
}
