// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

// Package poi discovers and ranks points of interest inside a zone.
// Candidates come fresh from the place-search provider on every query
// and are never persisted.
package poi

import (
	"github.com/touring-app/rankd/internal/geo"
)

// POI is one candidate place from the place-search provider.
type POI struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Location geo.LatLng `json:"location"`
	Types    []string   `json:"types,omitempty"`
	Rating   float64    `json:"rating,omitempty"`
}

// ScoredPOI is a POI with its rule score and distance breakdown.
type ScoredPOI struct {
	POI POI `json:"poi"`

	// MatchScore is the rule-based affinity in [0,1].
	MatchScore float64 `json:"match_score"`

	// DistanceKm is the distance from the zone center. 999 when the POI
	// carries no coordinates.
	DistanceKm float64 `json:"distance_km"`

	// UserDistanceKm is set when a user location was supplied.
	UserDistanceKm *float64 `json:"user_distance_km,omitempty"`

	Reasons  []string `json:"reasons"`
	Category string   `json:"category"`
}
