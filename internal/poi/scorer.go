// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package poi

import (
	"fmt"
	"math"
	"strings"

	"github.com/touring-app/rankd/internal/geo"
	"github.com/touring-app/rankd/internal/zone"
)

const (
	poiBaseScore = 0.5

	// Distance from the zone center contributes linearly down to zero at
	// 5 km.
	distanceWeight  = 0.3
	distanceCutoffKm = 5.0

	vibeMatchWeight = 0.4

	popularTypeBonus = 0.05

	// missingLocationDistanceKm marks a POI without coordinates.
	missingLocationDistanceKm = 999
)

// Per-vibe match rungs: type token hit, name hit, zone-keyword hit.
const (
	vibeTypeMatch    = 1.0
	vibeNameMatch    = 0.5
	vibeKeywordMatch = 0.3
)

// popularTypes earn the small popular-type nudge when any POI type token
// contains one of them.
var popularTypes = []string{
	"tourist_attraction", "restaurant", "cafe", "beach", "park", "museum",
}

// ScorePOI computes the rule score of one POI relative to a zone, a vibe
// list, and an optional user location. Pure function.
//
// A POI or zone without coordinates scores zero with the sentinel 999 km
// distance rather than erroring; the finder sorts it to the bottom.
func ScorePOI(p *POI, z *zone.Zone, vibes []string, userLoc *geo.LatLng) ScoredPOI {
	scored := ScoredPOI{POI: *p}

	if p.Location.IsZero() || z.Center.IsZero() {
		scored.DistanceKm = missingLocationDistanceKm
		scored.Reasons = []string{"missing coordinates"}
		return scored
	}

	score := poiBaseScore
	var reasons []string

	// Distance from the zone center.
	scored.DistanceKm = geo.DistanceKm(z.Center, p.Location)
	distTerm := distanceWeight * math.Max(0, 1-scored.DistanceKm/distanceCutoffKm)
	score += distTerm
	if distTerm > 0 {
		reasons = append(reasons, fmt.Sprintf("%.1f km from zone center", scored.DistanceKm))
	}

	// Proximity to the user.
	if userLoc != nil && !userLoc.IsZero() {
		d := geo.DistanceKm(*userLoc, p.Location)
		scored.UserDistanceKm = &d
		if bonus := geo.UserProximityBonus(d); bonus > 0 {
			score += bonus
			reasons = append(reasons, fmt.Sprintf("%.1f km from you", d))
		}
	}

	// Vibe affinity.
	if len(vibes) > 0 {
		total := 0.0
		var matched []string
		for _, vibe := range vibes {
			lower := strings.ToLower(strings.TrimSpace(vibe))
			if lower == "" {
				continue
			}
			if c := vibeContribution(p, z, lower); c > 0 {
				total += c
				matched = append(matched, vibe)
			}
		}
		if total > 0 {
			score += vibeMatchWeight * math.Min(total/float64(len(vibes)), 1)
			reasons = append(reasons, "matches "+strings.Join(matched, ", "))
		}
	}

	// Rating tiers.
	if bonus := ratingBonus(p.Rating); bonus > 0 {
		score += bonus
		reasons = append(reasons, fmt.Sprintf("rated %.1f", p.Rating))
	}

	// Popular-type nudge.
	if hasPopularType(p.Types) {
		score += popularTypeBonus
	}

	scored.MatchScore = math.Max(0, math.Min(1, score))
	scored.Reasons = reasons
	return scored
}

// vibeContribution sums every rung the vibe clears: a POI type token
// (1.0, either direction of containment), the POI name (0.5), and a zone
// keyword appearing in the POI's name or types (0.3). Rungs stack, so a
// single vibe can contribute up to 1.8.
func vibeContribution(p *POI, z *zone.Zone, vibe string) float64 {
	total := 0.0

	for _, t := range p.Types {
		lower := strings.ToLower(t)
		if lower == "" {
			continue
		}
		if strings.Contains(lower, vibe) || strings.Contains(vibe, lower) {
			total += vibeTypeMatch
			break
		}
	}

	name := strings.ToLower(p.Name)
	if strings.Contains(name, vibe) {
		total += vibeNameMatch
	}

	poiText := name + " " + strings.ToLower(strings.Join(p.Types, " "))
	for _, kw := range z.VibeKeywords {
		if k := strings.ToLower(kw); k != "" && strings.Contains(poiText, k) {
			total += vibeKeywordMatch
			break
		}
	}
	return total
}

func ratingBonus(rating float64) float64 {
	switch {
	case rating >= 4.5:
		return 0.15
	case rating >= 4.0:
		return 0.10
	case rating >= 3.5:
		return 0.05
	default:
		return 0
	}
}

func hasPopularType(types []string) bool {
	for _, t := range types {
		lower := strings.ToLower(t)
		for _, popular := range popularTypes {
			if strings.Contains(lower, popular) {
				return true
			}
		}
	}
	return false
}
