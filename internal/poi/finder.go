// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package poi

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/touring-app/rankd/internal/config"
	"github.com/touring-app/rankd/internal/geo"
	"github.com/touring-app/rankd/internal/metrics"
	"github.com/touring-app/rankd/internal/zone"
)

// defaultZoneRadiusM bounds the provider search when a zone defines
// neither polygon nor radius.
const defaultZoneRadiusM = 3000

// ErrUnknownCategory is returned for category keys outside the catalog.
var ErrUnknownCategory = fmt.Errorf("unknown poi category")

// Searcher is the place-search surface the finder needs. Implemented by
// the places client.
type Searcher interface {
	Search(ctx context.Context, center geo.LatLng, radiusM float64, query string, limit int) ([]POI, error)
}

// Finder discovers and ranks POIs inside a zone, one category at a time.
type Finder struct {
	zones    zone.Store
	searcher Searcher
	cfg      config.POIConfig
	logger   zerolog.Logger
}

// NewFinder wires a finder over the zone catalog and a place searcher.
func NewFinder(zones zone.Store, searcher Searcher, cfg config.POIConfig, logger zerolog.Logger) *Finder {
	return &Finder{
		zones:    zones,
		searcher: searcher,
		cfg:      cfg,
		logger:   logger.With().Str("component", "poi_finder").Logger(),
	}
}

// Find returns the top POIs of one category within a zone, ranked by
// match score. A provider failure on one query degrades to the results
// of the remaining queries.
func (f *Finder) Find(ctx context.Context, zoneID, categoryKey string, limit int, userLoc *geo.LatLng) ([]ScoredPOI, error) {
	cat, ok := CategoryByKey(categoryKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, categoryKey)
	}

	z, err := f.zones.Get(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = f.cfg.DefaultLimit
	}

	candidates := f.collect(ctx, z, cat, limit)
	candidates = filterToZone(z, candidates)

	scored := make([]ScoredPOI, 0, len(candidates))
	for i := range candidates {
		s := ScorePOI(&candidates[i], z, cat.Vibes, userLoc)
		s.Category = cat.Key
		scored = append(scored, s)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	outcome := "ok"
	if len(scored) == 0 {
		outcome = "empty"
	}
	metrics.POISearches.WithLabelValues(cat.Key, outcome).Inc()

	return scored, nil
}

// collect fans the category's queries out to the provider and merges the
// results, deduplicating by place id with first occurrence winning.
func (f *Finder) collect(ctx context.Context, z *zone.Zone, cat Category, limit int) []POI {
	radius := z.RadiusM
	if radius <= 0 {
		radius = defaultZoneRadiusM
	}
	perQuery := int(math.Ceil(float64(2*limit) / float64(len(cat.Queries))))

	seen := make(map[string]struct{})
	var merged []POI
	for _, query := range cat.Queries {
		results, err := f.searcher.Search(ctx, z.Center, radius, query, perQuery)
		if err != nil {
			f.logger.Warn().Err(err).
				Str("zone_id", z.ID).
				Str("category", cat.Key).
				Str("query", query).
				Msg("place search failed, continuing with remaining queries")
			metrics.POISearches.WithLabelValues(cat.Key, "query_error").Inc()
			continue
		}
		for _, p := range results {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return merged
}

// filterToZone keeps POIs inside the zone boundary: the polygon's
// bounding box when a polygon exists, else a center+radius circle, else
// everything.
func filterToZone(z *zone.Zone, pois []POI) []POI {
	if box, ok := geo.PolygonBounds(z.Polygon); ok {
		var kept []POI
		for _, p := range pois {
			if box.Contains(p.Location) {
				kept = append(kept, p)
			}
		}
		return kept
	}

	if z.RadiusM > 0 {
		var kept []POI
		for _, p := range pois {
			if geo.WithinRadius(z.Center, p.Location, z.RadiusM) {
				kept = append(kept, p)
			}
		}
		return kept
	}

	return pois
}

// LoadPriority fetches every priority (non-lazy) category of a zone
// concurrently, bounded by the configured concurrency limit. A failing
// category yields an empty list instead of failing the whole load.
func (f *Finder) LoadPriority(ctx context.Context, zoneID string, limit int, userLoc *geo.LatLng) (map[string][]ScoredPOI, error) {
	if _, err := f.zones.Get(ctx, zoneID); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	out := make(map[string][]ScoredPOI)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.CategoryConcurrency)

	for _, cat := range PriorityCategories() {
		g.Go(func() error {
			scored, err := f.Find(gctx, zoneID, cat.Key, limit, userLoc)
			if err != nil {
				f.logger.Warn().Err(err).
					Str("zone_id", zoneID).
					Str("category", cat.Key).
					Msg("priority category load failed, returning empty")
				scored = []ScoredPOI{}
			}
			mu.Lock()
			out[cat.Key] = scored
			mu.Unlock()
			return nil
		})
	}

	// Goroutines never return errors; Wait only propagates ctx problems.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
