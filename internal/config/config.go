// Package config loads the client configuration: a TOML file under the
// user config dir, overridable per-invocation through the environment
// (a local .env file is honored too).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const configFile = "config.toml"

// Config is the resolved client configuration.
type Config struct {
	APIBaseURL string `toml:"api_url"`
	BridgeURL  string `toml:"bridge_url"`
	Theme      string `toml:"theme"` // "dark" or "light"
}

// DefaultPath is the config file under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "funkanban", configFile), nil
}

// Load resolves configuration in precedence order: defaults, then the TOML
// file at path (missing file is fine), then environment variables.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		APIBaseURL: "http://localhost:8000/api",
		Theme:      "dark",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	cfg.APIBaseURL = getEnv("FUNKANBAN_API_URL", cfg.APIBaseURL)
	cfg.BridgeURL = getEnv("FUNKANBAN_BRIDGE_URL", cfg.BridgeURL)
	cfg.Theme = getEnv("FUNKANBAN_THEME", cfg.Theme)

	if cfg.Theme != "dark" && cfg.Theme != "light" {
		return nil, fmt.Errorf("invalid theme %q (want dark or light)", cfg.Theme)
	}
	return cfg, nil
}

// Save writes the configuration back to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
