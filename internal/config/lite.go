// Package config loads service configuration from files and the environment.
// This file contains the lightweight configuration of the standalone MCP server.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/oncodrug-server/internal/domain"
)

// LiteConfig configures standalone operation on a local SQLite store.
// It requires no external services and uses sensible defaults.
type LiteConfig struct {
	DataDir string // Base directory for the annotation store

	CacheMaxItems int
	CacheTTL      time.Duration

	VariantPageSize int
	MaxPageSize     int

	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".oncodrug")

	return &LiteConfig{
		DataDir:         dataDir,
		CacheMaxItems:   1000,
		CacheTTL:        time.Hour,
		VariantPageSize: 5,
		MaxPageSize:     100,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set or unparsable.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("ONCODRUG_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("ONCODRUG_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxItems = n
		}
	}
	if v := os.Getenv("ONCODRUG_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CacheTTL = d
		}
	}

	if v := os.Getenv("ONCODRUG_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.VariantPageSize = n
		}
	}
	if v := os.Getenv("ONCODRUG_MAX_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxPageSize = n
		}
	}

	if v := os.Getenv("ONCODRUG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ONCODRUG_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// DBPath returns the path to the annotation SQLite database.
func (c *LiteConfig) DBPath() string {
	return filepath.Join(c.DataDir, "oncodrug.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}

// CacheConfig returns the in-process cache settings of the lite mode.
func (c *LiteConfig) CacheConfig() domain.CacheConfig {
	return domain.CacheConfig{
		Enabled:    true,
		DefaultTTL: c.CacheTTL,
		MaxItems:   c.CacheMaxItems,
	}
}

// LoggingConfig returns the logging settings of the lite mode. Output goes to
// stderr since stdout carries the MCP protocol.
func (c *LiteConfig) LoggingConfig() domain.LoggingConfig {
	return domain.LoggingConfig{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		Output: "stderr",
	}
}
