// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

// Package profilesync runs the batch jobs that keep the profile store
// and the external embedding index in step with user behavior: the
// profile sync (events in, profiles and profile texts out) and the zone
// index sync (zone catalog in, zone documents out).
package profilesync

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/touring-app/rankd/internal/config"
	"github.com/touring-app/rankd/internal/embedding"
	"github.com/touring-app/rankd/internal/metrics"
	"github.com/touring-app/rankd/internal/profile"
	"github.com/touring-app/rankd/internal/zone"
)

// EventSource supplies the behavioral events of the trailing window.
// Implemented against the analytics export upstream.
type EventSource interface {
	FetchEvents(ctx context.Context, since time.Time) ([]profile.Event, error)
}

// Result summarizes one profile sync run.
type Result struct {
	Users   int `json:"users"`
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`

	// Aborted is set when the failure threshold cut the run short.
	Aborted bool `json:"aborted"`

	Elapsed time.Duration `json:"elapsed"`
}

// Syncer executes profile and zone synchronization runs.
type Syncer struct {
	source     EventSource
	aggregator *profile.Aggregator
	profiles   profile.Store
	zones      zone.Store
	indexer    embedding.Indexer
	cfg        config.SyncConfig
	windowDays int
	logger     zerolog.Logger
}

// NewSyncer wires a syncer. windowDays is the trailing event window
// handed to the event source.
func NewSyncer(
	source EventSource,
	aggregator *profile.Aggregator,
	profiles profile.Store,
	zones zone.Store,
	indexer embedding.Indexer,
	cfg config.SyncConfig,
	windowDays int,
	logger zerolog.Logger,
) *Syncer {
	return &Syncer{
		source:     source,
		aggregator: aggregator,
		profiles:   profiles,
		zones:      zones,
		indexer:    indexer,
		cfg:        cfg,
		windowDays: windowDays,
		logger:     logger.With().Str("component", "profilesync").Logger(),
	}
}

// SyncProfiles aggregates the trailing event window into profiles,
// persists them, and pushes each profile's weighted text to the
// embedding index.
//
// Users are processed sequentially; a per-user failure is recorded and
// skipped, and the run aborts early only once more than the configured
// failure threshold has accumulated. Profiles whose weighted text is
// empty are stored but not indexed.
func (s *Syncer) SyncProfiles(ctx context.Context) (*Result, error) {
	start := time.Now()
	since := start.AddDate(0, 0, -s.windowDays)

	events, err := s.source.FetchEvents(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	profiles := s.aggregator.Aggregate(events, start)

	// Deterministic processing order for reproducible abort behavior.
	userIDs := make([]string, 0, len(profiles))
	for id := range profiles {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	result := &Result{Users: len(userIDs)}
	for _, userID := range userIDs {
		if result.Failed > s.cfg.FailureThreshold {
			result.Aborted = true
			s.logger.Error().
				Int("failed", result.Failed).
				Int("remaining", len(userIDs)-result.Synced-result.Skipped-result.Failed).
				Msg("aborting profile sync, failure threshold exceeded")
			break
		}

		if err := s.syncUser(ctx, profiles[userID]); err != nil {
			result.Failed++
			metrics.ProfileSyncUsers.WithLabelValues("failed").Inc()
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("profile sync failed for user")
			continue
		}

		if BuildProfileText(profiles[userID]) == "" {
			result.Skipped++
			metrics.ProfileSyncUsers.WithLabelValues("skipped").Inc()
			continue
		}
		result.Synced++
		metrics.ProfileSyncUsers.WithLabelValues("synced").Inc()
	}

	result.Elapsed = time.Since(start)
	s.logger.Info().
		Int("users", result.Users).
		Int("synced", result.Synced).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Bool("aborted", result.Aborted).
		Dur("elapsed", result.Elapsed).
		Msg("profile sync complete")

	return result, nil
}

// syncUser persists one profile and indexes its weighted text.
func (s *Syncer) syncUser(ctx context.Context, p *profile.BehaviorProfile) error {
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}

	text := BuildProfileText(p)
	if text == "" {
		return nil
	}

	_, err := s.indexer.Upsert(ctx, []embedding.Item{{
		ID:   "user:" + p.UserID,
		Type: "user_profile",
		Text: text,
		Payload: map[string]string{
			"user_id":      p.UserID,
			"travel_style": string(p.TravelStyle),
		},
	}})
	if err != nil {
		return fmt.Errorf("index profile text: %w", err)
	}
	return nil
}

// BuildProfileText is the document text indexed per user.
func BuildProfileText(p *profile.BehaviorProfile) string {
	return profile.BuildWeightedText(p)
}

// SyncZones pushes every active zone as a searchable document to the
// embedding index in one bulk upsert.
func (s *Syncer) SyncZones(ctx context.Context) (*embedding.UpsertStats, error) {
	zones, err := s.zones.ListActive(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}

	items := make([]embedding.Item, 0, len(zones))
	for i := range zones {
		items = append(items, embedding.Item{
			ID:   zones[i].ID,
			Type: "zone",
			Text: zoneDocumentText(&zones[i]),
			Payload: map[string]string{
				"province": zones[i].Province,
				"name":     zones[i].Name,
			},
		})
	}
	if len(items) == 0 {
		return &embedding.UpsertStats{}, nil
	}

	stats, err := s.indexer.Upsert(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("index zones: %w", err)
	}

	s.logger.Info().
		Int("zones", len(items)).
		Int("added", stats.Added).
		Msg("zone index sync complete")
	return stats, nil
}

// zoneDocumentText flattens a zone into the free text the embedding
// service vectorizes: name, description, then tags and keywords.
func zoneDocumentText(z *zone.Zone) string {
	parts := []string{z.Name, z.Desc}
	parts = append(parts, z.Tags...)
	parts = append(parts, z.VibeKeywords...)

	var nonEmpty []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
