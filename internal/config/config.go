// Package config provides configuration loading and structs for aidex.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Search   SearchConfig   `yaml:"search"`
	Paging   PagingConfig   `yaml:"paging"`
	API      APIConfig      `yaml:"api"`
	Supabase SupabaseConfig `yaml:"supabase"`
	Prefs    PrefsConfig    `yaml:"prefs"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig holds paths for the database and the full-text index.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	// BleveIndexPath empty keeps the search index in memory.
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// CatalogConfig selects the tool catalog. An empty path uses the embedded seed.
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch *bool  `yaml:"watch"`
}

// WatchOrDefault returns whether to hot-reload the catalog file; defaults to true
// when a path is set.
func (c *CatalogConfig) WatchOrDefault() bool {
	if c.Watch != nil {
		return *c.Watch
	}
	return c.Path != ""
}

// SearchConfig holds fuzzy and full-text search settings.
type SearchConfig struct {
	DebounceMS   int      `yaml:"debounce_ms"`
	Threshold    float64  `yaml:"threshold"`
	Keys         []string `yaml:"keys"`
	Fuzziness    int      `yaml:"fuzziness"`
	TitleBoost   float64  `yaml:"title_boost"`
	DefaultLimit int      `yaml:"default_limit"`
	MaxLimit     int      `yaml:"max_limit"`
}

// Debounce returns the query debounce window.
func (s SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// PagingConfig holds infinite-scroll settings.
type PagingConfig struct {
	PageSize int `yaml:"page_size"`
}

// APIConfig configures the remote API client.
type APIConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// BreakerFailures is the number of consecutive failed calls that opens the
	// circuit breaker. Zero (the default) leaves the breaker off.
	BreakerFailures int           `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// SupabaseConfig holds the hosted backend credentials. Empty URL disables it.
type SupabaseConfig struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

// Enabled reports whether both URL and key are configured.
func (s SupabaseConfig) Enabled() bool {
	return s.URL != "" && s.Key != ""
}

// PrefsConfig holds the local preferences file location.
type PrefsConfig struct {
	Path string `yaml:"path"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	cfg.expandPaths(filepath.Dir(path))
	return &cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if wd, err := os.Getwd(); err == nil {
		cfg.expandPaths(wd)
	}
	return cfg
}

func (cfg *Config) expandPaths(configDir string) {
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Storage.BleveIndexPath != "" {
		cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	}
	if cfg.Catalog.Path != "" {
		cfg.Catalog.Path = expandPath(cfg.Catalog.Path, configDir)
	}
	cfg.Prefs.Path = expandPath(cfg.Prefs.Path, configDir)
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. ":memory:" is kept as is.
func expandPath(path string, configDir string) string {
	if path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
