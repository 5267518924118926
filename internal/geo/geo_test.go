// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package geo

import (
	"math"
	"testing"
)

// Hoi An ancient town and An Bang beach, roughly 4 km apart.
var (
	hoiAn  = LatLng{Lat: 15.8801, Lng: 108.3380}
	anBang = LatLng{Lat: 15.9154, Lng: 108.3374}
	hanoi  = LatLng{Lat: 21.0285, Lng: 105.8542}
)

func TestDistanceKm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		a, b    LatLng
		wantKm  float64
		epsilon float64
	}{
		{name: "same point", a: hoiAn, b: hoiAn, wantKm: 0, epsilon: 0.001},
		{name: "hoi an to an bang", a: hoiAn, b: anBang, wantKm: 3.93, epsilon: 0.1},
		{name: "hoi an to hanoi", a: hoiAn, b: hanoi, wantKm: 626, epsilon: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DistanceKm(tt.a, tt.b)
			if math.Abs(got-tt.wantKm) > tt.epsilon {
				t.Errorf("DistanceKm() = %v, want %v ± %v", got, tt.wantKm, tt.epsilon)
			}
		})
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	t.Parallel()
	if d1, d2 := DistanceKm(hoiAn, hanoi), DistanceKm(hanoi, hoiAn); d1 != d2 {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestUserProximityBonus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		distanceKm float64
		want       float64
	}{
		{0, 0.15},
		{0.49, 0.15},
		{0.5, 0.10},
		{0.99, 0.10},
		{1.0, 0.05},
		{1.99, 0.05},
		{2.0, 0},
		{50, 0},
	}

	for _, tt := range tests {
		if got := UserProximityBonus(tt.distanceKm); got != tt.want {
			t.Errorf("UserProximityBonus(%v) = %v, want %v", tt.distanceKm, got, tt.want)
		}
	}
}

func TestPolygonBounds(t *testing.T) {
	t.Parallel()

	polygon := []LatLng{
		{Lat: 15.87, Lng: 108.32},
		{Lat: 15.89, Lng: 108.33},
		{Lat: 15.88, Lng: 108.35},
	}

	box, ok := PolygonBounds(polygon)
	if !ok {
		t.Fatal("PolygonBounds() ok = false for non-empty polygon")
	}
	if box.MinLat != 15.87 || box.MaxLat != 15.89 || box.MinLng != 108.32 || box.MaxLng != 108.35 {
		t.Errorf("PolygonBounds() = %+v", box)
	}

	// Point outside the triangle but inside its bounding box is accepted:
	// the loose containment is intentional.
	inside := LatLng{Lat: 15.871, Lng: 108.349}
	if !box.Contains(inside) {
		t.Error("bounding box should contain corner point")
	}

	if _, ok := PolygonBounds(nil); ok {
		t.Error("PolygonBounds(nil) ok = true, want false")
	}
}

func TestWithinRadius(t *testing.T) {
	t.Parallel()

	if !WithinRadius(hoiAn, hoiAn, 1) {
		t.Error("center should be within any radius")
	}
	if WithinRadius(hoiAn, anBang, 1000) {
		t.Error("an bang should be outside 1km of hoi an")
	}
	if !WithinRadius(hoiAn, anBang, 5000) {
		t.Error("an bang should be within 5km of hoi an")
	}
}

func TestViewbox(t *testing.T) {
	t.Parallel()

	box := Viewbox(hoiAn, 3000)
	if !box.Contains(hoiAn) {
		t.Fatal("viewbox must contain its own center")
	}
	if box.MinLat >= box.MaxLat || box.MinLng >= box.MaxLng {
		t.Errorf("degenerate viewbox: %+v", box)
	}

	// ~3km in degrees of latitude is ~0.027.
	latSpan := box.MaxLat - box.MinLat
	if math.Abs(latSpan-2*3000.0/111000) > 1e-9 {
		t.Errorf("lat span = %v", latSpan)
	}

	// Longitude span must be wider than latitude span away from the
	// equator.
	if lngSpan := box.MaxLng - box.MinLng; lngSpan <= latSpan {
		t.Errorf("lng span %v should exceed lat span %v at lat %v", lngSpan, latSpan, hoiAn.Lat)
	}
}

func TestIsZero(t *testing.T) {
	t.Parallel()

	if !(LatLng{}).IsZero() {
		t.Error("zero value should be zero")
	}
	if (LatLng{Lat: 1}).IsZero() {
		t.Error("non-zero lat should not be zero")
	}
}
