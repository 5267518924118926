// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package poi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/touring-app/rankd/internal/config"
	"github.com/touring-app/rankd/internal/geo"
	"github.com/touring-app/rankd/internal/logging"
	"github.com/touring-app/rankd/internal/zone"
)

type fakeZoneStore struct {
	zones map[string]*zone.Zone
}

func (s *fakeZoneStore) Get(_ context.Context, id string) (*zone.Zone, error) {
	z, ok := s.zones[id]
	if !ok {
		return nil, zone.ErrZoneNotFound
	}
	return z, nil
}

func (s *fakeZoneStore) ListActive(context.Context, string) ([]zone.Zone, error) {
	return nil, nil
}

func (s *fakeZoneStore) Exists(_ context.Context, id string) (bool, error) {
	_, ok := s.zones[id]
	return ok, nil
}

func (s *fakeZoneStore) Upsert(_ context.Context, z *zone.Zone) error {
	s.zones[z.ID] = z
	return nil
}

// fakePlaceSearcher returns canned results per query and records call
// concurrency.
type fakePlaceSearcher struct {
	mu      sync.Mutex
	results map[string][]POI
	err     error

	calls       atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakePlaceSearcher) Search(_ context.Context, _ geo.LatLng, _ float64, query string, _ int) ([]POI, error) {
	f.calls.Add(1)
	cur := f.inFlight.Add(1)
	for {
		old := f.maxInFlight.Load()
		if cur <= old || f.maxInFlight.CompareAndSwap(old, cur) {
			break
		}
	}
	defer f.inFlight.Add(-1)

	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[query], nil
}

func finderZone() *zone.Zone {
	return &zone.Zone{
		ID:      "old-town",
		Name:    "Hoi An Old Town",
		Center:  geo.LatLng{Lat: 15.8801, Lng: 108.3380},
		RadiusM: 3000,
		Active:  true,
	}
}

func newTestFinder(z *zone.Zone, searcher Searcher) *Finder {
	store := &fakeZoneStore{zones: map[string]*zone.Zone{}}
	if z != nil {
		store.zones[z.ID] = z
	}
	return NewFinder(store, searcher, config.POIConfig{
		DefaultLimit:        20,
		CategoryConcurrency: 3,
	}, logging.NewTestLogger(io.Discard))
}

func poiAt(id string, lat, lng float64) POI {
	return POI{ID: id, Name: id, Location: geo.LatLng{Lat: lat, Lng: lng}}
}

func TestFind_UnknownZone(t *testing.T) {
	t.Parallel()

	f := newTestFinder(nil, &fakePlaceSearcher{})
	_, err := f.Find(context.Background(), "nope", "food", 5, nil)
	if !errors.Is(err, zone.ErrZoneNotFound) {
		t.Errorf("Find() error = %v, want ErrZoneNotFound", err)
	}
}

func TestFind_UnknownCategory(t *testing.T) {
	t.Parallel()

	f := newTestFinder(finderZone(), &fakePlaceSearcher{})
	_, err := f.Find(context.Background(), "old-town", "spelunking", 5, nil)
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Find() error = %v, want ErrUnknownCategory", err)
	}
}

func TestFind_DeduplicatesAcrossQueries(t *testing.T) {
	t.Parallel()

	// The food category runs two queries; "shared" appears in both.
	shared := poiAt("shared", 15.881, 108.338)
	searcher := &fakePlaceSearcher{results: map[string][]POI{
		"restaurant quán ăn ngon":            {shared, poiAt("resto", 15.882, 108.339)},
		"street food ẩm thực đường phố": {shared, poiAt("street", 15.879, 108.337)},
	}}

	f := newTestFinder(finderZone(), searcher)
	got, err := f.Find(context.Background(), "old-town", "food", 10, nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Find() = %d POIs, want 3 after dedup", len(got))
	}

	seen := make(map[string]int)
	for _, p := range got {
		seen[p.POI.ID]++
	}
	if seen["shared"] != 1 {
		t.Errorf("shared POI appears %d times, want 1", seen["shared"])
	}
}

func TestFind_FiltersByRadius(t *testing.T) {
	t.Parallel()

	searcher := &fakePlaceSearcher{results: map[string][]POI{
		"beach bãi biển": {
			poiAt("inside", 15.881, 108.338),
			poiAt("outside", 16.2, 108.338), // ~35km away
		},
	}}

	f := newTestFinder(finderZone(), searcher)
	got, err := f.Find(context.Background(), "old-town", "beach", 10, nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(got) != 1 || got[0].POI.ID != "inside" {
		t.Errorf("Find() = %v, want only the inside POI", got)
	}
}

func TestFind_FiltersByPolygonBoundingBox(t *testing.T) {
	t.Parallel()

	z := finderZone()
	z.RadiusM = 0
	z.Polygon = []geo.LatLng{
		{Lat: 15.87, Lng: 108.32},
		{Lat: 15.89, Lng: 108.33},
		{Lat: 15.88, Lng: 108.35},
	}

	searcher := &fakePlaceSearcher{results: map[string][]POI{
		"beach bãi biển": {
			poiAt("in-box", 15.88, 108.34),
			poiAt("out-of-box", 15.95, 108.34),
		},
	}}

	f := newTestFinder(z, searcher)
	got, err := f.Find(context.Background(), "old-town", "beach", 10, nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(got) != 1 || got[0].POI.ID != "in-box" {
		t.Errorf("Find() = %v, want only the in-box POI", got)
	}
}

func TestFind_SortsAndTruncates(t *testing.T) {
	t.Parallel()

	searcher := &fakePlaceSearcher{results: map[string][]POI{
		"beach bãi biển": {
			{ID: "far", Name: "far", Location: geo.LatLng{Lat: 15.90, Lng: 108.338}},
			{ID: "rated", Name: "rated", Location: geo.LatLng{Lat: 15.881, Lng: 108.338}, Rating: 4.8},
			{ID: "near", Name: "near", Location: geo.LatLng{Lat: 15.881, Lng: 108.338}},
		},
	}}

	f := newTestFinder(finderZone(), searcher)
	got, err := f.Find(context.Background(), "old-town", "beach", 2, nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Find() = %d POIs, want limit 2", len(got))
	}
	if got[0].POI.ID != "rated" {
		t.Errorf("top POI = %s, want rated", got[0].POI.ID)
	}
	for i := 1; i < len(got); i++ {
		if got[i].MatchScore > got[i-1].MatchScore {
			t.Errorf("results not sorted at index %d", i)
		}
	}
}

func TestFind_QueryFailureDegrades(t *testing.T) {
	t.Parallel()

	searcher := &fakePlaceSearcher{err: errors.New("provider down")}
	f := newTestFinder(finderZone(), searcher)

	got, err := f.Find(context.Background(), "old-town", "food", 5, nil)
	if err != nil {
		t.Fatalf("Find() error = %v, provider failure must degrade to empty", err)
	}
	if len(got) != 0 {
		t.Errorf("Find() = %d POIs, want 0", len(got))
	}
}

func TestFind_SetsCategory(t *testing.T) {
	t.Parallel()

	searcher := &fakePlaceSearcher{results: map[string][]POI{
		"beach bãi biển": {poiAt("p", 15.881, 108.338)},
	}}
	f := newTestFinder(finderZone(), searcher)

	got, err := f.Find(context.Background(), "old-town", "beach", 5, nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got[0].Category != "beach" {
		t.Errorf("Category = %q, want beach", got[0].Category)
	}
}

func TestLoadPriority_AllCategories(t *testing.T) {
	t.Parallel()

	searcher := &fakePlaceSearcher{results: map[string][]POI{}}
	f := newTestFinder(finderZone(), searcher)

	got, err := f.LoadPriority(context.Background(), "old-town", 5, nil)
	if err != nil {
		t.Fatalf("LoadPriority() error = %v", err)
	}

	want := PriorityCategories()
	if len(got) != len(want) {
		t.Fatalf("LoadPriority() = %d categories, want %d", len(got), len(want))
	}
	for _, cat := range want {
		if cat.Lazy {
			t.Fatalf("priority list contains lazy category %s", cat.Key)
		}
		if _, ok := got[cat.Key]; !ok {
			t.Errorf("category %s missing from result", cat.Key)
		}
	}

	// Lazy categories are not loaded eagerly.
	for _, lazyKey := range []string{"shopping", "nightlife"} {
		if _, ok := got[lazyKey]; ok {
			t.Errorf("lazy category %s was loaded", lazyKey)
		}
	}
}

func TestLoadPriority_BoundedConcurrency(t *testing.T) {
	t.Parallel()

	searcher := &fakePlaceSearcher{results: map[string][]POI{}}
	f := newTestFinder(finderZone(), searcher)

	if _, err := f.LoadPriority(context.Background(), "old-town", 5, nil); err != nil {
		t.Fatalf("LoadPriority() error = %v", err)
	}

	// Category loads are capped at 3 concurrent; each category may issue
	// its queries sequentially, so in-flight searches never exceed the cap.
	if max := searcher.maxInFlight.Load(); max > 3 {
		t.Errorf("max concurrent searches = %d, want <= 3", max)
	}
}

func TestLoadPriority_UnknownZone(t *testing.T) {
	t.Parallel()

	f := newTestFinder(nil, &fakePlaceSearcher{})
	_, err := f.LoadPriority(context.Background(), "nope", 5, nil)
	if !errors.Is(err, zone.ErrZoneNotFound) {
		t.Errorf("LoadPriority() error = %v, want ErrZoneNotFound", err)
	}
}

func TestCategoriesForVibes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		vibes []string
		want  []string
	}{
		{vibes: []string{"beach"}, want: []string{"beach"}},
		{vibes: []string{"culture", "food"}, want: []string{"culture", "food"}},
		{vibes: []string{"nightlife"}, want: []string{"nightlife"}},
		{vibes: nil, want: nil},
		{vibes: []string{"unknown-vibe"}, want: nil},
	}

	for _, tt := range tests {
		got := CategoriesForVibes(tt.vibes)
		if len(got) != len(tt.want) {
			t.Errorf("CategoriesForVibes(%v) = %v categories, want %v", tt.vibes, len(got), len(tt.want))
			continue
		}
		for i, cat := range got {
			if cat.Key != tt.want[i] {
				t.Errorf("CategoriesForVibes(%v)[%d] = %s, want %s", tt.vibes, i, cat.Key, tt.want[i])
			}
		}
	}
}

func TestPerQueryLimit(t *testing.T) {
	t.Parallel()

	// ceil(2*limit/queryCount): the food category has two queries, so a
	// limit of 5 requests 5 per query.
	searcher := &fakePlaceSearcher{results: map[string][]POI{}}
	f := newTestFinder(finderZone(), searcher)

	if _, err := f.Find(context.Background(), "old-town", "food", 5, nil); err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if calls := searcher.calls.Load(); calls != 2 {
		t.Errorf("search calls = %d, want one per category query", calls)
	}
}

func ExampleCategoryByKey() {
	cat, ok := CategoryByKey("beach")
	fmt.Println(ok, cat.Label)
	// Output: true Bãi biển
}
