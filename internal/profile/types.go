// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

// Package profile turns raw behavioral events into weighted user-interest
// profiles: per-vibe and per-province signal accumulation with time decay,
// a confidence scalar, a coarse travel-style label, and the weighted text
// summary handed to the embedding service.
package profile

import "time"

// Event is a single behavioral event produced upstream (analytics export,
// webhook, or replay). Events are immutable and consumed once per
// aggregation run.
type Event struct {
	// EventType drives the base weight lookup (e.g. tour_view,
	// tour_bookmark, tour_booking_complete).
	EventType string `json:"event_type"`

	// UserID identifies the acting user. Anonymous ids are skipped.
	UserID string `json:"user_id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Vibes are the interest tags carried by the event.
	Vibes []string `json:"vibes,omitempty"`

	// Provinces are the geographic tags carried by the event.
	Provinces []string `json:"provinces,omitempty"`

	// DurationMS is the engagement duration in milliseconds, if measured.
	DurationMS int64 `json:"duration_ms,omitempty"`

	// TotalPrice is the transaction amount for booking events, in VND.
	TotalPrice float64 `json:"total_price,omitempty"`

	// Properties carries free-form event metadata (tour name, blog title).
	Properties map[string]string `json:"properties,omitempty"`
}

// WeightedSignal is the accumulator stored per vibe or province key.
// Weight is the raw running sum of per-event contributions; it is only
// min-max normalized when the weighted text is produced.
type WeightedSignal struct {
	Weight       float64   `json:"weight"`
	Interactions int       `json:"interactions"`
	LastUpdated  time.Time `json:"last_updated"`
}

// TravelStyle is the coarse label derived from a profile's dominant vibes.
type TravelStyle string

// Travel styles in tie-break priority order. Explorer is the fallback when
// no style keyword matches at all.
const (
	StyleAdventurer TravelStyle = "adventurer"
	StyleRelaxer    TravelStyle = "relaxer"
	StyleCulture    TravelStyle = "culture"
	StyleFoodie     TravelStyle = "foodie"
	StyleExplorer   TravelStyle = "explorer"
)

// BehaviorProfile is the aggregated interest profile for one user. Each
// aggregation run produces a full replacement snapshot; profiles are never
// merged incrementally.
type BehaviorProfile struct {
	UserID string `json:"user_id"`

	// VibeWeights and ProvinceWeights are keyed by sanitized signal keys.
	VibeWeights     map[string]WeightedSignal `json:"vibe_weights"`
	ProvinceWeights map[string]WeightedSignal `json:"province_weights"`

	// EventCounts tallies events per event type.
	EventCounts map[string]int `json:"event_counts"`

	TotalEvents int     `json:"total_events"`
	TotalWeight float64 `json:"total_weight"`

	// Confidence summarizes how much accumulated signal exists, in [0,1].
	// It is nondecreasing in TotalWeight.
	Confidence float64 `json:"confidence"`

	TravelStyle TravelStyle `json:"travel_style"`

	// InteractionTexts are short human-readable phrases describing notable
	// interactions, truncated at read time by BuildWeightedText.
	InteractionTexts []string `json:"interaction_texts,omitempty"`

	FirstEventAt time.Time `json:"first_event_at"`
	LastEventAt  time.Time `json:"last_event_at"`
}
