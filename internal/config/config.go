// Package config provides configuration for the agent gateway.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the gateway configuration. It is constructed once at startup
// and passed by reference into component constructors; orchestration logic
// never reads ambient state.
type Config struct {
	// Server settings
	ListenAddr string `toml:"listen_addr"`

	// Persistence
	StoreDriver string `toml:"store_driver"` // sqlite | memory
	DatabaseURL string `toml:"database_url"`

	// Completion provider
	Provider     string `toml:"provider"` // openai | gemini | ollama | mock
	APIKey       string `toml:"api_key"`
	Model        string `toml:"model"`
	BaseURL      string `toml:"base_url"`
	Instructions string `toml:"instructions"`

	// Tool invocation
	PolicyPath    string `toml:"policy_path"`
	HTTPTimeoutMs int    `toml:"http_timeout_ms"`
}

// HTTPTimeout is the timeout applied to spec fetches and tool invocations.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMs) * time.Millisecond
}

// Load builds the configuration from defaults, an optional TOML file named by
// AGENTGATE_CONFIG, and environment variable overrides, in that order.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:    ":8080",
		StoreDriver:   "sqlite",
		DatabaseURL:   "file:agentgate.db?cache=shared&mode=rwc",
		Provider:      "openai",
		Model:         "gpt-4o-mini",
		Instructions:  "You are a helpful AI assistant.",
		HTTPTimeoutMs: 30000,
	}

	if path := os.Getenv("AGENTGATE_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.ListenAddr = getEnv("AGENTGATE_LISTEN_ADDR", cfg.ListenAddr)
	cfg.StoreDriver = getEnv("AGENTGATE_STORE_DRIVER", cfg.StoreDriver)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Provider = getEnv("AGENTGATE_PROVIDER", cfg.Provider)
	cfg.APIKey = getEnv("AGENTGATE_API_KEY", cfg.APIKey)
	cfg.Model = getEnv("AGENTGATE_MODEL", cfg.Model)
	cfg.BaseURL = getEnv("AGENTGATE_BASE_URL", cfg.BaseURL)
	cfg.Instructions = getEnv("AGENTGATE_INSTRUCTIONS", cfg.Instructions)
	cfg.PolicyPath = getEnv("AGENTGATE_POLICY_PATH", cfg.PolicyPath)
	cfg.HTTPTimeoutMs = getEnvInt("AGENTGATE_HTTP_TIMEOUT_MS", cfg.HTTPTimeoutMs)

	// OPENAI_API_KEY is honored as a fallback for the default provider.
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
