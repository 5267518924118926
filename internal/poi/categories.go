// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package poi

import "sort"

// Category describes one POI discovery category: the search queries sent
// to the place-search provider and the vibe list fed to the scorer.
type Category struct {
	Key     string
	Label   string
	Queries []string

	// Vibes is the vibe-affinity list the scorer matches POIs against.
	Vibes []string

	// Lazy categories are skipped by the priority loader and fetched only
	// on explicit request.
	Lazy bool
}

// categories is the fixed category catalog. Queries mix Vietnamese and
// English because the provider indexes both.
var categories = map[string]Category{
	"views": {
		Key:     "views",
		Label:   "Điểm ngắm cảnh",
		Queries: []string{"viewpoint điểm ngắm cảnh", "scenic view đồi núi"},
		Vibes:   []string{"view", "photo", "sunset", "mountain"},
	},
	"beach": {
		Key:     "beach",
		Label:   "Bãi biển",
		Queries: []string{"beach bãi biển"},
		Vibes:   []string{"beach", "swim", "sunset"},
	},
	"nature": {
		Key:     "nature",
		Label:   "Thiên nhiên",
		Queries: []string{"nature park công viên", "waterfall thác nước"},
		Vibes:   []string{"nature", "mountain", "peaceful"},
	},
	"food": {
		Key:     "food",
		Label:   "Ẩm thực",
		Queries: []string{"restaurant quán ăn ngon", "street food ẩm thực đường phố"},
		Vibes:   []string{"food", "seafood", "cheap"},
	},
	"culture": {
		Key:     "culture",
		Label:   "Văn hóa",
		Queries: []string{"temple chùa đền miếu", "museum bảo tàng di tích"},
		Vibes:   []string{"culture", "ancient", "temple"},
	},
	"shopping": {
		Key:     "shopping",
		Label:   "Mua sắm",
		Queries: []string{"market chợ", "shopping mall trung tâm thương mại"},
		Vibes:   []string{"shopping"},
		Lazy:    true,
	},
	"nightlife": {
		Key:     "nightlife",
		Label:   "Về đêm",
		Queries: []string{"bar pub", "night market chợ đêm"},
		Vibes:   []string{"nightlife"},
		Lazy:    true,
	},
}

// CategoryByKey returns the category for key and whether it exists.
func CategoryByKey(key string) (Category, bool) {
	c, ok := categories[key]
	return c, ok
}

// AllCategories returns every category, sorted by key.
func AllCategories() []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// PriorityCategories returns the non-lazy categories, sorted by key.
// These are the ones the priority loader fetches eagerly.
func PriorityCategories() []Category {
	var out []Category
	for _, c := range AllCategories() {
		if !c.Lazy {
			out = append(out, c)
		}
	}
	return out
}

// CategoriesForVibes returns the categories whose vibe list intersects
// the given vibes, sorted by key. Empty vibes selects nothing.
func CategoriesForVibes(vibes []string) []Category {
	want := make(map[string]struct{}, len(vibes))
	for _, v := range vibes {
		want[v] = struct{}{}
	}

	var out []Category
	for _, c := range AllCategories() {
		for _, v := range c.Vibes {
			if _, ok := want[v]; ok {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
