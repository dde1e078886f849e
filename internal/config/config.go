// Package config loads client configuration.
//
// Sources, in decreasing priority:
//  1. explicit --config path;
//  2. GOBANK_CONFIG env var;
//  3. ./gobank.yaml;
//  4. environment variables only.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full client configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Auth     AuthConfig     `yaml:"auth"`
	Rates    RatesConfig    `yaml:"rates"`
	Debounce DebounceConfig `yaml:"debounce"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig points the client at the remote banking API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"GOBANK_API_URL" env-default:"http://localhost:8091"`
	Timeout time.Duration `yaml:"timeout" env:"GOBANK_API_TIMEOUT" env-default:"15s"`
}

// AuthConfig controls the token refresh behavior.
//
// RefreshStrategy "revalidate" re-validates the current access token (the
// historical behavior of this client); "exchange" posts the stored refresh
// token to a dedicated refresh endpoint.
type AuthConfig struct {
	RefreshStrategy string `yaml:"refresh_strategy" env:"GOBANK_REFRESH_STRATEGY" env-default:"revalidate"`
}

// RatesConfig controls the currency rate cache.
type RatesConfig struct {
	TTL               time.Duration `yaml:"ttl" env:"GOBANK_RATES_TTL" env-default:"5m"`
	ReportingCurrency string        `yaml:"reporting_currency" env:"GOBANK_REPORTING_CURRENCY" env-default:"EUR"`
}

// DebounceConfig sets the trailing delays for preview and recipient search.
type DebounceConfig struct {
	Preview time.Duration `yaml:"preview" env:"GOBANK_DEBOUNCE_PREVIEW" env-default:"300ms"`
	Search  time.Duration `yaml:"search" env:"GOBANK_DEBOUNCE_SEARCH" env-default:"300ms"`
}

// StoreConfig locates the durable credential store.
// Path ":memory:" keeps the session in memory only (useful in tests).
type StoreConfig struct {
	Path string `yaml:"path" env:"GOBANK_STORE_PATH" env-default:""`
}

// LogConfig controls the slog output.
type LogConfig struct {
	Level  string `yaml:"level" env:"GOBANK_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"GOBANK_LOG_FORMAT" env-default:"text"`
}

// MustLoad panics on load failure. For command entry points.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration per the package source order.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("read config %q: %w", p, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("overlay env: %w", err)
		}
		return &cfg, nil
	}

	if path != "" {
		return tryRead(path)
	}
	if envPath := os.Getenv("GOBANK_CONFIG"); envPath != "" {
		return tryRead(envPath)
	}
	if _, err := os.Stat("gobank.yaml"); err == nil {
		return tryRead("gobank.yaml")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env config: %w", err)
	}
	return &cfg, nil
}
