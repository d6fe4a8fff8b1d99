package config

import (
	"time"

	"github.com/hyperjump/aidex/internal/cache"
	"github.com/hyperjump/aidex/internal/debounce"
	"github.com/hyperjump/aidex/internal/keyword"
	"github.com/hyperjump/aidex/internal/paging"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/aidex/data/db/aidex.db"
	}
	if cfg.Search.DebounceMS == 0 {
		cfg.Search.DebounceMS = int(debounce.DefaultDelay / time.Millisecond)
	}
	if cfg.Search.Threshold == 0 {
		cfg.Search.Threshold = keyword.DefaultThreshold
	}
	if len(cfg.Search.Keys) == 0 {
		cfg.Search.Keys = append([]string(nil), keyword.DefaultKeys...)
	}
	if cfg.Search.Fuzziness == 0 {
		cfg.Search.Fuzziness = 2
	}
	if cfg.Search.TitleBoost == 0 {
		cfg.Search.TitleBoost = 3.0
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = paging.DefaultLimit
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = paging.MaxLimit
	}
	if cfg.Paging.PageSize == 0 {
		cfg.Paging.PageSize = paging.DefaultPageSize
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080/api"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 10 * time.Second
	}
	if cfg.API.CacheTTL == 0 {
		cfg.API.CacheTTL = cache.DefaultTTL
	}
	if cfg.API.BreakerCooldown == 0 {
		cfg.API.BreakerCooldown = 30 * time.Second
	}
	if cfg.Prefs.Path == "" {
		cfg.Prefs.Path = ".aidex/prefs.db"
	}
}
