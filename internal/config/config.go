// Package config loads CLI settings. Priority: env vars > YAML file >
// defaults. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORMFLOW_"

// Config holds formflow CLI configuration.
type Config struct {
	APIBaseURL   string   `yaml:"api_base_url"`
	Stub         bool     `yaml:"stub"`
	MetricsAddr  string   `yaml:"metrics_addr"`
	LogLevel     string   `yaml:"log_level"`
	LogFormat    string   `yaml:"log_format"`
	RateLimit    float64  `yaml:"rate_limit"`
	RateBurst    int      `yaml:"rate_burst"`
	Locations    []string `yaml:"locations"`
	ServiceTypes []string `yaml:"service_types"`
	// CatalogFile replaces the built-in form with a YAML catalog.
	CatalogFile string `yaml:"catalog_file"`
}

// Default returns the built-in settings: offline stub backend, info logs.
func Default() Config {
	return Config{
		APIBaseURL: "http://localhost:8080",
		Stub:       true,
		LogLevel:   "info",
		LogFormat:  "text",
		RateLimit:  5,
		RateBurst:  5,
	}
}

// Load layers the YAML file at path (skipped when path is empty) and the
// environment over the defaults. getenv is usually os.Getenv.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	env := func(key string) string {
		return strings.TrimSpace(getenv(EnvPrefix + key))
	}
	if v := env("API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := env("STUB"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %sSTUB: %w", EnvPrefix, err)
		}
		cfg.Stub = b
	}
	if v := env("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := env("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %sRATE_LIMIT: %w", EnvPrefix, err)
		}
		cfg.RateLimit = f
	}
	if v := env("LOCATIONS"); v != "" {
		cfg.Locations = splitList(v)
	}
	if v := env("SERVICE_TYPES"); v != "" {
		cfg.ServiceTypes = splitList(v)
	}
	if v := env("CATALOG_FILE"); v != "" {
		cfg.CatalogFile = v
	}
	return nil
}

// Validate rejects settings the CLI cannot run with.
func (c Config) Validate() error {
	if !c.Stub && strings.TrimSpace(c.APIBaseURL) == "" {
		return errors.New("config: api_base_url is required when stub is off")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return errors.New("config: rate limits cannot be negative")
	}
	return nil
}

// splitList parses "a;b;c". Semicolons separate items because locations
// contain commas ("Denver, CO").
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
