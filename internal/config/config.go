// Package config provides configuration loading for the CLI and server:
// an optional JSON file overlaid with environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings. Precedence: environment over file
// over defaults.
type Config struct {
	DatabaseURL  string `json:"database_url,omitempty" env:"DATABASE_URL"`
	Backend      string `json:"backend,omitempty" env:"KPI_BACKEND"`
	BackendPath  string `json:"backend_path,omitempty" env:"KPI_BACKEND_PATH"`
	Provider     string `json:"provider,omitempty" env:"KPI_PROVIDER"`
	GeminiAPIKey string `json:"gemini_api_key,omitempty" env:"GEMINI_API_KEY"`
	OpenAIAPIKey string `json:"openai_api_key,omitempty" env:"OPENAI_API_KEY"`
	PreviewRows  int    `json:"preview_rows,omitempty" env:"KPI_PREVIEW_ROWS"`
	SampleRows   int    `json:"sample_rows,omitempty" env:"KPI_SAMPLE_ROWS"`
	Port         int    `json:"port,omitempty" env:"KPI_PORT"`
	LogLevel     string `json:"log_level,omitempty" env:"KPI_LOG_LEVEL"`
	Verbose      bool   `json:"verbose,omitempty" env:"KPI_VERBOSE"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Backend:     "duckdb",
		Provider:    "gemini",
		PreviewRows: 5,
		SampleRows:  20,
		Port:        8080,
		LogLevel:    "info",
	}
}

// Load reads the optional JSON config at path (skipped when empty), then
// overlays environment variables on top.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// APIKey returns the generation-service key for the configured provider.
func (c *Config) APIKey() string {
	if strings.EqualFold(c.Provider, "openai") {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.PreviewRows < 0 {
		return fmt.Errorf("config error: 'preview_rows' must be non-negative")
	}
	if c.SampleRows < 0 {
		return fmt.Errorf("config error: 'sample_rows' must be non-negative")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be in (0, 65535]")
	}
	return nil
}
