// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

// Package zone holds the destination-zone model, the rule-based zone
// scorer, and the matcher that fuses rule, semantic, and proximity
// signals into a final ranking.
package zone

import (
	"github.com/touring-app/rankd/internal/geo"
)

// Zone is a geographic destination unit (town quarter, district) from the
// external catalog. Read-only to this core.
type Zone struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Province string     `json:"province"`
	Center   geo.LatLng `json:"center"`

	// RadiusM bounds the zone when no polygon is defined.
	RadiusM float64 `json:"radius_m,omitempty"`

	// Polygon is an optional boundary ring. POI filtering tests against
	// its bounding box, not the true polygon.
	Polygon []geo.LatLng `json:"polygon,omitempty"`

	Tags         []string `json:"tags,omitempty"`
	VibeKeywords []string `json:"vibe_keywords,omitempty"`
	AvoidTags    []string `json:"avoid_tags,omitempty"`

	Desc   string  `json:"desc,omitempty"`
	Rating float64 `json:"rating,omitempty"`

	// ScorePriority orders catalog listings; higher lists first.
	ScorePriority int `json:"score_priority,omitempty"`

	Active bool `json:"active"`
}

// Preferences is the structured preference object produced by the
// upstream extraction step, plus the user's raw free text.
type Preferences struct {
	Vibes    []string `json:"vibes,omitempty"`
	Avoid    []string `json:"avoid,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	RawText  string   `json:"raw_text,omitempty"`
}

// RuleScore is the output of the rule-based zone scorer.
type RuleScore struct {
	// Score is the bounded rule affinity in [0,1].
	Score float64 `json:"score"`

	// Reasons explains the contributing terms in human-readable form.
	Reasons []string `json:"reasons"`

	Details RuleScoreDetails `json:"details"`
}

// RuleScoreDetails breaks out which preference terms matched.
type RuleScoreDetails struct {
	MatchedVibes    []string `json:"matched_vibes"`
	MatchedAvoids   []string `json:"matched_avoids"`
	MatchedKeywords []string `json:"matched_keywords"`
}

// ScoredZone is a match candidate with its score breakdown. Ephemeral,
// produced per query.
type ScoredZone struct {
	Zone Zone `json:"zone"`

	// HardVibeScore is the rule-based affinity from the zone scorer.
	HardVibeScore float64 `json:"hard_vibe_score"`

	// EmbedScore is the semantic similarity from hybrid search, clamped
	// to [0,1]. Zero for keyword-strategy candidates.
	EmbedScore float64 `json:"embed_score"`

	// VibeMatches is the embedding service's own vibe annotation.
	VibeMatches []string `json:"vibe_matches,omitempty"`

	// ProximityScore and DistanceKm are set when a user location was
	// supplied.
	ProximityScore float64  `json:"proximity_score,omitempty"`
	DistanceKm     *float64 `json:"distance_km,omitempty"`

	FinalScore float64  `json:"final_score"`
	Reasons    []string `json:"reasons"`
}

// Strategy identifies which retrieval path served a match request.
type Strategy string

const (
	// StrategyEmbedding means hybrid semantic search produced the
	// candidates.
	StrategyEmbedding Strategy = "embedding"

	// StrategyKeyword means the rule-based catalog scan produced the
	// candidates.
	StrategyKeyword Strategy = "keyword"

	// StrategyNone means no zones exist at all.
	StrategyNone Strategy = "none"
)

// MatchResult is the matcher's response.
type MatchResult struct {
	Strategy Strategy     `json:"strategy"`
	Zones    []ScoredZone `json:"zones"`
	Reason   string       `json:"reason"`
}
