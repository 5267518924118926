// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package profile

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/touring-app/rankd/internal/config"
)

// Engagement and magnitude boost constants. An event watched for more
// than 30s earns up to +30% weight; a high-value booking up to +40%.
const (
	durationBoostThresholdMS = 30000
	durationBoostUnitMS      = 60000
	durationBoostMaxUnits    = 3
	durationBoostFactor      = 0.1

	priceBoostUnitVND = 1_000_000
	priceBoostMaxUnits = 2
	priceBoostFactor   = 0.2
)

// styleKeywords maps each travel style to the vibe substrings that count
// toward it. Order matters: it is the tie-break priority.
var styleKeywords = []struct {
	style    TravelStyle
	keywords []string
}{
	{StyleAdventurer, []string{"adventure", "hiking", "outdoor", "mountain", "trekking"}},
	{StyleRelaxer, []string{"beach", "relaxation", "spa", "resort", "chill"}},
	{StyleCulture, []string{"history", "museum", "culture", "temple", "architecture"}},
	{StyleFoodie, []string{"food", "local", "cuisine", "street food", "restaurant"}},
}

// Aggregator computes per-user behavior profiles from event batches.
// It holds only configuration and a logger; aggregation itself is a pure
// computation over the inputs.
type Aggregator struct {
	cfg    config.AggregatorConfig
	logger zerolog.Logger
}

// NewAggregator creates an Aggregator with the given configuration.
func NewAggregator(cfg config.AggregatorConfig, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		cfg:    cfg,
		logger: logger.With().Str("component", "aggregator").Logger(),
	}
}

// Aggregate groups events by user and computes a weighted profile per
// user. The reference time now anchors the decay computation, so two runs
// over the same events with the same now produce identical profiles.
func (a *Aggregator) Aggregate(events []Event, now time.Time) map[string]*BehaviorProfile {
	profiles := make(map[string]*BehaviorProfile)

	for _, ev := range events {
		if !validUserID(ev.UserID) {
			continue
		}

		p, ok := profiles[ev.UserID]
		if !ok {
			p = &BehaviorProfile{
				UserID:          ev.UserID,
				VibeWeights:     make(map[string]WeightedSignal),
				ProvinceWeights: make(map[string]WeightedSignal),
				EventCounts:     make(map[string]int),
				FirstEventAt:    ev.Timestamp,
				LastEventAt:     ev.Timestamp,
			}
			profiles[ev.UserID] = p
		}

		weight := a.eventWeight(ev, now)

		for _, rawVibe := range ev.Vibes {
			// Analytics system properties leak in as $-prefixed tags.
			if strings.HasPrefix(rawVibe, "$") {
				continue
			}
			key, ok := SanitizeKey(mapVibe(rawVibe))
			if !ok {
				continue
			}
			accumulate(p.VibeWeights, key, weight, ev.Timestamp)
		}

		for _, rawProvince := range ev.Provinces {
			key, ok := SanitizeKey(rawProvince)
			if !ok {
				continue
			}
			accumulate(p.ProvinceWeights, key, weight, ev.Timestamp)
		}

		if phrase := interactionPhrase(ev); phrase != "" {
			p.InteractionTexts = append(p.InteractionTexts, phrase)
		}

		p.TotalEvents++
		p.TotalWeight += weight
		p.EventCounts[ev.EventType]++

		if ev.Timestamp.After(p.LastEventAt) {
			p.LastEventAt = ev.Timestamp
		}
		if ev.Timestamp.Before(p.FirstEventAt) {
			p.FirstEventAt = ev.Timestamp
		}
	}

	for _, p := range profiles {
		p.Confidence = a.confidence(p.TotalWeight)
		p.TravelStyle = detectTravelStyle(p.VibeWeights)
	}

	a.logger.Debug().
		Int("events", len(events)).
		Int("users", len(profiles)).
		Msg("aggregated event batch")

	return profiles
}

// eventWeight computes the decayed, boosted weight contribution of one
// event.
func (a *Aggregator) eventWeight(ev Event, now time.Time) float64 {
	base, ok := a.cfg.EventWeights[ev.EventType]
	if !ok {
		base = a.cfg.DefaultWeight
	}

	// Continuous exponential decay with time constant DecayDays. Not a
	// true half-life despite the historical naming; see config.
	daysSince := now.Sub(ev.Timestamp).Hours() / 24
	weight := base * math.Exp(-daysSince/a.cfg.DecayDays)

	if ev.DurationMS > durationBoostThresholdMS {
		units := math.Min(float64(ev.DurationMS)/durationBoostUnitMS, durationBoostMaxUnits)
		weight *= 1 + units*durationBoostFactor
	}

	if ev.TotalPrice > 0 {
		units := math.Min(ev.TotalPrice/priceBoostUnitVND, priceBoostMaxUnits)
		weight *= 1 + units*priceBoostFactor
	}

	return weight
}

// confidence maps accumulated weight to [0,1], saturating at the
// configured divisor.
func (a *Aggregator) confidence(totalWeight float64) float64 {
	return math.Min(totalWeight/a.cfg.ConfidenceDivisor, 1.0)
}

// detectTravelStyle counts, per style, how many vibe keys contain one of
// the style's keywords. The strictly highest count wins; ties fall to the
// earlier style in priority order; zero matches means explorer.
func detectTravelStyle(vibeWeights map[string]WeightedSignal) TravelStyle {
	if len(vibeWeights) == 0 {
		return StyleExplorer
	}

	best := StyleExplorer
	bestCount := 0
	for _, sk := range styleKeywords {
		count := 0
		for vibe := range vibeWeights {
			lower := strings.ToLower(vibe)
			for _, kw := range sk.keywords {
				if strings.Contains(lower, kw) {
					count++
					break
				}
			}
		}
		if count > bestCount {
			best = sk.style
			bestCount = count
		}
	}
	return best
}

func accumulate(m map[string]WeightedSignal, key string, weight float64, at time.Time) {
	sig := m[key]
	sig.Weight += weight
	sig.Interactions++
	if at.After(sig.LastUpdated) {
		sig.LastUpdated = at
	}
	m[key] = sig
}

// validUserID rejects anonymous and placeholder identifiers produced by
// the analytics export.
func validUserID(id string) bool {
	return id != "" && id != "anonymous" && id != "null"
}

// interactionPhrase renders a short human-readable description of the
// event for the profile's free-text summary. Phrases stay in Vietnamese
// to match the embedding corpus.
func interactionPhrase(ev Event) string {
	switch ev.EventType {
	case "tour_view":
		if name := ev.Properties["tourName"]; name != "" {
			return fmt.Sprintf("xem tour %s", name)
		}
	case "tour_bookmark":
		if name := ev.Properties["tourName"]; name != "" {
			return fmt.Sprintf("lưu tour %s", name)
		}
	case "tour_booking_complete":
		if name := ev.Properties["tourName"]; name != "" {
			return fmt.Sprintf("đặt tour %s", name)
		}
	case "blog_view":
		if title := ev.Properties["title"]; title != "" {
			return fmt.Sprintf("đọc blog %s", title)
		}
	}
	return ""
}
