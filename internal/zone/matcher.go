// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package zone

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/touring-app/rankd/internal/config"
	"github.com/touring-app/rankd/internal/embedding"
	"github.com/touring-app/rankd/internal/geo"
	"github.com/touring-app/rankd/internal/metrics"
)

// Final-score blend weights. Which row applies depends on whether the
// request carried a user location and whether the text contains a
// proximity cue.
const (
	// Location supplied and the text asks for "near me": proximity
	// dominates.
	cueRuleWeight      = 0.3
	cueEmbedWeight     = 0.3
	cueProximityWeight = 0.4

	// Location supplied, no explicit cue.
	locRuleWeight      = 0.4
	locEmbedWeight     = 0.4
	locProximityWeight = 0.2

	// No location at all.
	plainRuleWeight  = 0.5
	plainEmbedWeight = 0.5
)

// proximityCues are the phrases that signal the user wants nearby
// results. Checked as substrings of the lowercased free text.
var proximityCues = []string{
	"gần", "gần đây", "quanh đây", "xung quanh",
	"near", "nearby", "near me", "close by", "around here",
}

// MatchRequest is one zone-match query.
type MatchRequest struct {
	Prefs    Preferences
	Province string

	// Location is the user's position, when shared.
	Location *geo.LatLng

	// DisableEmbedding forces the keyword path. The zero value keeps
	// semantic retrieval on.
	DisableEmbedding bool
}

// Matcher ranks destination zones for a preference object. It prefers
// hybrid semantic retrieval and falls back to a rule-scored catalog scan
// whenever the embedding service is down, errors, or returns nothing.
type Matcher struct {
	store    Store
	searcher embedding.Searcher
	cfg      config.MatcherConfig
	embedCfg config.EmbeddingConfig
	logger   zerolog.Logger
}

// NewMatcher wires a matcher over the zone catalog and the embedding
// search client.
func NewMatcher(store Store, searcher embedding.Searcher, cfg config.MatcherConfig, embedCfg config.EmbeddingConfig, logger zerolog.Logger) *Matcher {
	return &Matcher{
		store:    store,
		searcher: searcher,
		cfg:      cfg,
		embedCfg: embedCfg,
		logger:   logger.With().Str("component", "zone_matcher").Logger(),
	}
}

// Match ranks zones against the request and reports which strategy
// served it. Errors from the embedding path never surface: they demote
// the request to the keyword path. The only error return left is a
// storage failure during the fallback scan.
func (m *Matcher) Match(ctx context.Context, req MatchRequest) (*MatchResult, error) {
	start := time.Now()
	defer func() {
		metrics.MatchDuration.Observe(time.Since(start).Seconds())
	}()

	candidates, strategy, reason := m.retrieve(ctx, req)

	if strategy == StrategyKeyword || len(candidates) == 0 {
		fallback, err := m.keywordCandidates(ctx, req)
		if err != nil {
			return nil, err
		}
		if len(fallback) == 0 && len(candidates) == 0 {
			metrics.MatchRequests.WithLabelValues(string(StrategyNone)).Inc()
			return &MatchResult{
				Strategy: StrategyNone,
				Zones:    []ScoredZone{},
				Reason:   "no zones available",
			}, nil
		}
		if len(candidates) == 0 {
			candidates = fallback
			strategy = StrategyKeyword
			if reason == "" {
				reason = "embedding search returned no candidates"
			}
		}
	}

	m.rerank(candidates, req)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})
	if len(candidates) > m.cfg.MaxResults {
		candidates = candidates[:m.cfg.MaxResults]
	}

	metrics.MatchRequests.WithLabelValues(string(strategy)).Inc()
	m.logger.Debug().
		Str("strategy", string(strategy)).
		Int("zones", len(candidates)).
		Dur("elapsed", time.Since(start)).
		Msg("zone match complete")

	return &MatchResult{Strategy: strategy, Zones: candidates, Reason: reason}, nil
}

// retrieve attempts the embedding path. A keyword strategy result means
// the caller must run the fallback scan.
func (m *Matcher) retrieve(ctx context.Context, req MatchRequest) ([]ScoredZone, Strategy, string) {
	if req.DisableEmbedding {
		return nil, StrategyKeyword, "embedding disabled by caller"
	}
	if !m.searcher.IsAvailable(ctx) {
		return nil, StrategyKeyword, "embedding service unavailable"
	}

	// The vibe list stands in as query text when no free text was given,
	// so vibe-only requests still produce a meaningful vector.
	freeText := req.Prefs.RawText
	if freeText == "" {
		freeText = strings.Join(req.Prefs.Vibes, " ")
	}

	result, err := m.searcher.HybridSearch(ctx, embedding.HybridQuery{
		FreeText:       freeText,
		Vibes:          req.Prefs.Vibes,
		Avoid:          req.Prefs.Avoid,
		TopK:           m.embedCfg.TopK,
		FilterType:     "zone",
		FilterProvince: req.Province,
		BoostVibes:     m.embedCfg.BoostVibes,
	})
	if err != nil {
		m.logger.Warn().Err(err).Msg("hybrid search failed, falling back to keyword matching")
		return nil, StrategyKeyword, "embedding search failed"
	}

	var candidates []ScoredZone
	for _, hit := range result.Hits {
		z, err := m.store.Get(ctx, hit.ID)
		if errors.Is(err, ErrZoneNotFound) {
			m.logger.Warn().Str("zone_id", hit.ID).Msg("hybrid search returned unknown zone, dropping")
			continue
		}
		if err != nil {
			m.logger.Warn().Err(err).Str("zone_id", hit.ID).Msg("zone lookup failed, dropping hit")
			continue
		}
		candidates = append(candidates, ScoredZone{
			Zone:        *z,
			EmbedScore:  math.Min(1, hit.Score),
			VibeMatches: hit.VibeMatches,
		})
	}

	return candidates, StrategyEmbedding, ""
}

// keywordCandidates builds the fallback candidate set: every active
// zone in scope, minus zones whose text contains an avoid term.
func (m *Matcher) keywordCandidates(ctx context.Context, req MatchRequest) ([]ScoredZone, error) {
	zones, err := m.store.ListActive(ctx, req.Province)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}

	var candidates []ScoredZone
	for i := range zones {
		if zoneMatchesAvoid(&zones[i], req.Prefs.Avoid) {
			continue
		}
		candidates = append(candidates, ScoredZone{Zone: zones[i]})
	}
	return candidates, nil
}

// zoneMatchesAvoid reports whether any avoid term appears in the zone's
// name, description, or tags.
func zoneMatchesAvoid(z *Zone, avoid []string) bool {
	if len(avoid) == 0 {
		return false
	}
	text := strings.ToLower(z.Name + " " + z.Desc + " " + strings.Join(z.Tags, " "))
	for _, term := range avoid {
		t := strings.ToLower(strings.TrimSpace(term))
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// rerank computes the rule score, proximity signal, and final blended
// score for every candidate in place.
func (m *Matcher) rerank(candidates []ScoredZone, req MatchRequest) {
	hasLocation := req.Location != nil && !req.Location.IsZero()
	wantsNearby := hasLocation && hasProximityCue(req.Prefs.RawText)

	for i := range candidates {
		c := &candidates[i]

		rule := Score(&c.Zone, req.Prefs)
		c.HardVibeScore = rule.Score
		c.Reasons = rule.Reasons

		if hasLocation {
			d := geo.DistanceKm(*req.Location, c.Zone.Center)
			c.DistanceKm = &d
			c.ProximityScore = geo.UserProximityBonus(d)
			if c.ProximityScore > 0 {
				c.Reasons = append(c.Reasons, fmt.Sprintf("%.1f km away (+%.0f%%)", d, c.ProximityScore*100))
			}
		}

		switch {
		case wantsNearby:
			c.FinalScore = cueRuleWeight*c.HardVibeScore +
				cueEmbedWeight*c.EmbedScore +
				cueProximityWeight*c.ProximityScore
		case hasLocation:
			c.FinalScore = locRuleWeight*c.HardVibeScore +
				locEmbedWeight*c.EmbedScore +
				locProximityWeight*c.ProximityScore
		default:
			c.FinalScore = plainRuleWeight*c.HardVibeScore +
				plainEmbedWeight*c.EmbedScore
		}
	}
}

// hasProximityCue reports whether the free text asks for nearby results.
func hasProximityCue(text string) bool {
	lower := strings.ToLower(text)
	for _, cue := range proximityCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}
