// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

// Package config defines the Rankd configuration model and its koanf-based
// loader. Precedence is ENV > config file > built-in defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for Rankd.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Server     ServerConfig     `koanf:"server"`
	Store      StoreConfig      `koanf:"store"`
	Embedding  EmbeddingConfig  `koanf:"embedding"`
	Places     PlacesConfig     `koanf:"places"`
	Aggregator AggregatorConfig `koanf:"aggregator"`
	Matcher    MatcherConfig    `koanf:"matcher"`
	POI        POIConfig        `koanf:"poi"`
	Sync       SyncConfig       `koanf:"sync"`
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// StoreConfig controls the BadgerDB document store holding zones and
// user behavior profiles.
type StoreConfig struct {
	Path string `koanf:"path"`

	// InMemory runs Badger without disk persistence. Used in tests.
	InMemory bool `koanf:"in_memory"`
}

// EmbeddingConfig controls the external embedding/semantic-search service
// client.
type EmbeddingConfig struct {
	URL string `koanf:"url"`

	// Timeout applies to embed and search calls.
	Timeout time.Duration `koanf:"timeout"`

	// UpsertTimeout applies to bulk index upserts.
	UpsertTimeout time.Duration `koanf:"upsert_timeout"`

	// HealthTimeout applies to /healthz probes.
	HealthTimeout time.Duration `koanf:"health_timeout"`

	// BoostVibes is the vibe boost factor passed to hybrid search.
	BoostVibes float64 `koanf:"boost_vibes"`

	// TopK is the candidate count requested from hybrid search.
	TopK int `koanf:"top_k"`
}

// PlacesConfig controls the external place-search provider client.
type PlacesConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`

	// CacheTTL is how long place-search responses are cached.
	// Zero disables the cache.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// RateLimit is the max requests per second to the provider.
	RateLimit float64 `koanf:"rate_limit"`
}

// AggregatorConfig controls behavioral-event aggregation.
type AggregatorConfig struct {
	// EventWeights maps event types to base weights. Unknown types use
	// DefaultWeight.
	EventWeights  map[string]float64 `koanf:"event_weights"`
	DefaultWeight float64            `koanf:"default_weight"`

	// DecayDays is the time constant of the exponential decay applied to
	// event age: exp(-days/DecayDays). Historically labeled a "30-day
	// half-life", but the formula is a plain exponential with time
	// constant DecayDays; the true half-life would be DecayDays/ln2.
	// Kept as-built because downstream tuning assumes this curve.
	DecayDays float64 `koanf:"decay_days"`

	// ConfidenceDivisor is the accumulated weight at which profile
	// confidence saturates at 1.0.
	ConfidenceDivisor float64 `koanf:"confidence_divisor"`

	// WindowDays is the trailing event window used by the sync job.
	WindowDays int `koanf:"window_days"`
}

// MatcherConfig controls the zone matcher.
type MatcherConfig struct {
	// MaxResults is how many scored zones a match returns.
	MaxResults int `koanf:"max_results"`
}

// POIConfig controls POI discovery.
type POIConfig struct {
	// DefaultLimit is the POI result limit when the caller passes none.
	DefaultLimit int `koanf:"default_limit"`

	// CategoryConcurrency bounds simultaneous category loads per zone.
	CategoryConcurrency int `koanf:"category_concurrency"`
}

// SyncConfig controls the batch profile synchronization job.
type SyncConfig struct {
	Interval time.Duration `koanf:"interval"`

	// EventsURL is the analytics export endpoint the sync job pulls
	// behavioral events from. Empty disables event fetching.
	EventsURL string `koanf:"events_url"`

	// EventsTimeout bounds one export fetch.
	EventsTimeout time.Duration `koanf:"events_timeout"`

	// FailureThreshold is the per-user failure count after which a batch
	// aborts early.
	FailureThreshold int `koanf:"failure_threshold"`
}

// Validate checks invariants that would otherwise surface as confusing
// runtime behavior.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Aggregator.DecayDays <= 0 {
		return fmt.Errorf("aggregator.decay_days must be positive, got %v", c.Aggregator.DecayDays)
	}
	if c.Aggregator.ConfidenceDivisor <= 0 {
		return fmt.Errorf("aggregator.confidence_divisor must be positive, got %v", c.Aggregator.ConfidenceDivisor)
	}
	if c.Embedding.BoostVibes < 1.0 {
		return fmt.Errorf("embedding.boost_vibes must be >= 1.0, got %v", c.Embedding.BoostVibes)
	}
	if c.POI.CategoryConcurrency < 1 {
		return fmt.Errorf("poi.category_concurrency must be >= 1, got %d", c.POI.CategoryConcurrency)
	}
	if c.Sync.FailureThreshold < 0 {
		return fmt.Errorf("sync.failure_threshold must be >= 0, got %d", c.Sync.FailureThreshold)
	}
	return nil
}
