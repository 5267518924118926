// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

// Package geo holds the coordinate types and distance math shared by the
// zone and POI scoring code.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the Haversine formula.
const earthRadiusKm = 6371

// metersPerDegree approximates one degree of latitude.
const metersPerDegree = 111000

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the coordinate is unset. The zero value doubles
// as "missing"; Null Island is not a tour destination.
func (p LatLng) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}

// DistanceKm returns the Haversine great-circle distance between a and b
// in kilometers.
func DistanceKm(a, b LatLng) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// UserProximityBonus returns the tiered score awarded to a candidate for
// being close to the user: 0.15 under 0.5km, 0.10 under 1km, 0.05 under
// 2km, otherwise 0. The POI scorer applies it to POIs and the zone
// matcher reuses it at zone-center granularity.
func UserProximityBonus(distanceKm float64) float64 {
	switch {
	case distanceKm < 0.5:
		return 0.15
	case distanceKm < 1:
		return 0.10
	case distanceKm < 2:
		return 0.05
	default:
		return 0
	}
}

// BoundingBox is an axis-aligned lat/lng rectangle.
type BoundingBox struct {
	MinLat, MinLng, MaxLat, MaxLng float64
}

// Contains reports whether p falls inside the box (inclusive).
func (b BoundingBox) Contains(p LatLng) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// PolygonBounds returns the bounding box of a polygon, and false when the
// polygon is empty.
//
// Zone boundary filtering deliberately tests against this box rather than
// doing true point-in-polygon: the wider acceptance near polygon corners
// is relied upon by existing zone definitions.
func PolygonBounds(polygon []LatLng) (BoundingBox, bool) {
	if len(polygon) == 0 {
		return BoundingBox{}, false
	}

	b := BoundingBox{
		MinLat: polygon[0].Lat, MaxLat: polygon[0].Lat,
		MinLng: polygon[0].Lng, MaxLng: polygon[0].Lng,
	}
	for _, p := range polygon[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}
	return b, true
}

// WithinRadius reports whether p lies within radiusM meters of center.
func WithinRadius(center, p LatLng, radiusM float64) bool {
	return DistanceKm(center, p)*1000 <= radiusM
}

// Viewbox expands a center+radius into the lat/lng rectangle used by the
// place-search provider's viewbox mode. Longitude degrees shrink with
// latitude, so the delta is corrected by cos(lat).
func Viewbox(center LatLng, radiusM float64) BoundingBox {
	latDelta := radiusM / metersPerDegree
	lngDelta := radiusM / (metersPerDegree * math.Cos(toRad(center.Lat)))
	return BoundingBox{
		MinLat: center.Lat - latDelta,
		MinLng: center.Lng - lngDelta,
		MaxLat: center.Lat + latDelta,
		MaxLng: center.Lng + lngDelta,
	}
}
