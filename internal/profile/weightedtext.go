// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package profile

import (
	"math"
	"sort"
	"strings"
)

// Weighted-text shape: the strongest vibes are repeated proportionally to
// their weight so the embedding leans toward them, followed by a small
// sample of interaction phrases and the top provinces.
const (
	maxTextVibes            = 10
	maxTextInteractions     = 5
	maxTextProvinces        = 3
	maxFallbackInteractions = 20

	// Repetition counts after min-max rescaling the top vibe weights.
	minRepeats = 1
	maxRepeats = 5
)

// BuildWeightedText renders the profile as the text document submitted to
// the embedding service. It is the profile's only representation there.
//
// The top vibes are repeated 1-5 times each after a min-max rescale of
// their raw weights (minimum weight maps to 1 repetition, maximum to 5,
// rounded up). Profiles without vibe signal fall back to their interaction
// phrases; profiles without either produce an empty string, which callers
// should skip rather than index.
func BuildWeightedText(p *BehaviorProfile) string {
	vibes := topKeys(p.VibeWeights, maxTextVibes)

	if len(vibes) == 0 {
		if len(p.InteractionTexts) > 0 {
			return strings.Join(capSlice(p.InteractionTexts, maxFallbackInteractions), " ")
		}
		return ""
	}

	minW, maxW := p.VibeWeights[vibes[0]].Weight, p.VibeWeights[vibes[0]].Weight
	for _, v := range vibes[1:] {
		w := p.VibeWeights[v].Weight
		minW = math.Min(minW, w)
		maxW = math.Max(maxW, w)
	}
	weightRange := maxW - minW
	if weightRange == 0 {
		weightRange = 1
	}

	var sb strings.Builder
	for _, v := range vibes {
		w := p.VibeWeights[v].Weight
		scaled := (w-minW)/weightRange*float64(maxRepeats-minRepeats) + minRepeats
		repeats := int(math.Ceil(scaled))
		for i := 0; i < repeats; i++ {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(v)
		}
	}

	for _, phrase := range capSlice(p.InteractionTexts, maxTextInteractions) {
		sb.WriteByte(' ')
		sb.WriteString(phrase)
	}

	for _, province := range topKeys(p.ProvinceWeights, maxTextProvinces) {
		sb.WriteByte(' ')
		sb.WriteString(province)
	}

	return strings.TrimSpace(sb.String())
}

// topKeys returns up to limit keys sorted by descending weight. Ties sort
// by key so output is deterministic across runs.
func topKeys(m map[string]WeightedSignal, limit int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		wi, wj := m[keys[i]].Weight, m[keys[j]].Weight
		if wi != wj {
			return wi > wj
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func capSlice(s []string, limit int) []string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
