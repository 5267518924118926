// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package zone

import (
	"fmt"
	"math"
	"strings"
)

// Rule scorer term weights and caps. The terms are additive and the sum
// is clamped to [0,1].
const (
	vibeBonusPerMatch = 0.15
	vibeBonusCap      = 0.6

	avoidPenaltyPerMatch = 0.2
	avoidPenaltyCap      = 0.8

	keywordBonusPerMatch = 0.05
	keywordBonusCap      = 0.4

	semanticBonusWeight = 0.2

	ratingBonusThreshold = 4.0
	ratingBonusCap       = 0.1

	popularTagBonus = 0.03
)

// popularTags are the tags that earn the small popularity nudge.
var popularTags = map[string]struct{}{
	"beach": {}, "photo": {}, "nature": {}, "culture": {},
}

// Score computes the rule-based affinity between a zone and a preference
// object. Pure function: no storage, no network, no clock.
//
// The semantic bonus compares the free text against the zone's own
// keyword set, which overlaps with the keyword-match term computed just
// before it. The stacking is preserved as two independent additive
// contributions; retuning either term changes existing rankings.
func Score(z *Zone, prefs Preferences) RuleScore {
	var (
		score   float64
		reasons []string
		details RuleScoreDetails
	)

	haystack := buildHaystack(z)

	// 1. Vibe match.
	for _, vibe := range prefs.Vibes {
		if haystack.contains(vibe) {
			details.MatchedVibes = append(details.MatchedVibes, vibe)
		}
	}
	if n := len(details.MatchedVibes); n > 0 {
		bonus := math.Min(vibeBonusCap, float64(n)*vibeBonusPerMatch)
		score += bonus
		reasons = append(reasons, fmt.Sprintf("matched vibes %s (+%.0f%%)",
			strings.Join(details.MatchedVibes, ", "), bonus*100))
	}

	// 2. Avoid penalty.
	for _, avoid := range prefs.Avoid {
		if haystack.contains(avoid) {
			details.MatchedAvoids = append(details.MatchedAvoids, avoid)
		}
	}
	if n := len(details.MatchedAvoids); n > 0 {
		penalty := math.Min(avoidPenaltyCap, float64(n)*avoidPenaltyPerMatch)
		score -= penalty
		reasons = append(reasons, fmt.Sprintf("avoid terms %s (-%.0f%%)",
			strings.Join(details.MatchedAvoids, ", "), penalty*100))
	}

	// 3. Keyword match over supplied keywords plus free-text extraction.
	for _, kw := range unionKeywords(prefs.Keywords, ExtractKeywords(prefs.RawText)) {
		if haystack.contains(kw) {
			details.MatchedKeywords = append(details.MatchedKeywords, kw)
		}
	}
	if n := len(details.MatchedKeywords); n > 0 {
		bonus := math.Min(keywordBonusCap, float64(n)*keywordBonusPerMatch)
		score += bonus
		reasons = append(reasons, fmt.Sprintf("%d keyword matches (+%.0f%%)", n, bonus*100))
	}

	// 4. Semantic group similarity against the zone's keyword set.
	if prefs.RawText != "" {
		if sem := SemanticMatch(prefs.RawText, z.VibeKeywords); sem > 0 {
			bonus := sem * semanticBonusWeight
			score += bonus
			reasons = append(reasons, fmt.Sprintf("semantic similarity %.2f (+%.0f%%)", sem, bonus*100))
		}
	}

	// 5. Rating bonus.
	if z.Rating >= ratingBonusThreshold {
		bonus := math.Min(ratingBonusCap, (z.Rating-3.0)*0.05)
		score += bonus
		reasons = append(reasons, fmt.Sprintf("rating %.1f (+%.0f%%)", z.Rating, bonus*100))
	}

	// 6. Popularity nudge.
	for _, tag := range z.Tags {
		if _, ok := popularTags[strings.ToLower(tag)]; ok {
			score += popularTagBonus
		}
	}

	score = math.Max(0, math.Min(1, score))

	if len(reasons) == 0 {
		reasons = append(reasons, "no preference signals matched")
	}

	return RuleScore{Score: score, Reasons: reasons, Details: details}
}

// zoneHaystack caches the lowercased searchable text of a zone.
type zoneHaystack struct {
	tags     []string
	keywords []string
	freeText string
}

func buildHaystack(z *Zone) zoneHaystack {
	h := zoneHaystack{
		tags:     lowerAll(z.Tags),
		keywords: lowerAll(z.VibeKeywords),
		freeText: strings.ToLower(z.Name + " " + z.Desc),
	}
	return h
}

// contains reports whether term occurs in the zone's tags or vibe
// keywords (exact, case-insensitive) or anywhere in its name or
// description.
func (h zoneHaystack) contains(term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return false
	}
	if containsString(h.tags, t) || containsString(h.keywords, t) {
		return true
	}
	return strings.Contains(h.freeText, t)
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// unionKeywords merges two keyword lists preserving first-seen order.
func unionKeywords(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, kw := range list {
			k := strings.ToLower(strings.TrimSpace(kw))
			if k == "" {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}
