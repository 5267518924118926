// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.Aggregator.EventWeights["tour_booking_complete"] != 5.0 {
		t.Errorf("booking weight = %v, want 5.0", cfg.Aggregator.EventWeights["tour_booking_complete"])
	}
	if cfg.Aggregator.DecayDays != 30 {
		t.Errorf("decay days = %v, want 30", cfg.Aggregator.DecayDays)
	}
	if cfg.Embedding.BoostVibes != 1.3 {
		t.Errorf("boost vibes = %v, want 1.3", cfg.Embedding.BoostVibes)
	}
	if cfg.Embedding.HealthTimeout != 3*time.Second {
		t.Errorf("health timeout = %v, want 3s", cfg.Embedding.HealthTimeout)
	}
	if cfg.POI.CategoryConcurrency != 3 {
		t.Errorf("category concurrency = %v, want 3", cfg.POI.CategoryConcurrency)
	}
	if cfg.Sync.FailureThreshold != 10 {
		t.Errorf("failure threshold = %v, want 10", cfg.Sync.FailureThreshold)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid defaults", mutate: func(c *Config) {}, wantErr: false},
		{name: "port too low", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "zero decay", mutate: func(c *Config) { c.Aggregator.DecayDays = 0 }, wantErr: true},
		{name: "negative divisor", mutate: func(c *Config) { c.Aggregator.ConfidenceDivisor = -1 }, wantErr: true},
		{name: "boost below one", mutate: func(c *Config) { c.Embedding.BoostVibes = 0.9 }, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.POI.CategoryConcurrency = 0 }, wantErr: true},
		{name: "negative threshold", mutate: func(c *Config) { c.Sync.FailureThreshold = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	// Not parallel: mutates the process environment.

	dir := t.TempDir()
	path := filepath.Join(dir, "rankd.yaml")
	yaml := []byte("server:\n  port: 9001\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("RANKD_LOGGING__LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// File overrides the default port.
	if cfg.Server.Port != 9001 {
		t.Errorf("port = %d, want 9001 from file", cfg.Server.Port)
	}
	// Environment overrides the file.
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q, want warn from env", cfg.Logging.Level)
	}
	// Untouched values keep their defaults.
	if cfg.Matcher.MaxResults != 10 {
		t.Errorf("max results = %d, want default 10", cfg.Matcher.MaxResults)
	}
}

func TestLoad_EnvSectionDelimiter(t *testing.T) {
	// Not parallel: mutates the process environment.

	t.Setenv(ConfigPathEnvVar, "/nonexistent")
	t.Setenv("RANKD_EMBEDDING__UPSERT_TIMEOUT", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Embedding.UpsertTimeout != 45*time.Second {
		t.Errorf("upsert timeout = %v, want 45s", cfg.Embedding.UpsertTimeout)
	}
}
