// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"rankd.yaml",
	"rankd.yml",
	"/etc/rankd/rankd.yaml",
	"/etc/rankd/rankd.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "RANKD_CONFIG"

// envPrefix namespaces Rankd environment variables. Sections are separated
// by a double underscore so multi-word keys survive the mapping:
// RANKD_EMBEDDING__URL -> embedding.url
// RANKD_EMBEDDING__UPSERT_TIMEOUT -> embedding.upsert_timeout
const envPrefix = "RANKD_"

// Default returns a Config with all built-in defaults applied.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8090,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Store: StoreConfig{
			Path: "/data/rankd",
		},
		Embedding: EmbeddingConfig{
			URL:           "http://localhost:8088",
			Timeout:       10 * time.Second,
			UpsertTimeout: 30 * time.Second,
			HealthTimeout: 3 * time.Second,
			BoostVibes:    1.3,
			TopK:          20,
		},
		Places: PlacesConfig{
			URL:       "https://api.map4d.vn/sdk",
			Timeout:   10 * time.Second,
			CacheTTL:  30 * time.Minute,
			RateLimit: 10,
		},
		Aggregator: AggregatorConfig{
			EventWeights: map[string]float64{
				"tour_booking_complete": 5.0,
				"tour_bookmark":         2.5,
				"tour_click":            0.8,
				"tour_view":             0.5,
			},
			DefaultWeight:     0.5,
			DecayDays:         30,
			ConfidenceDivisor: 20,
			WindowDays:        90,
		},
		Matcher: MatcherConfig{
			MaxResults: 10,
		},
		POI: POIConfig{
			DefaultLimit:        20,
			CategoryConcurrency: 3,
		},
		Sync: SyncConfig{
			Interval:         6 * time.Hour,
			EventsTimeout:    30 * time.Second,
			FailureThreshold: 10,
		},
	}
}

// Load builds the configuration from layered sources:
//  1. built-in defaults
//  2. optional YAML config file
//  3. RANKD_* environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
