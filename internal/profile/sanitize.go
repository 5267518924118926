// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package profile

import "strings"

// delimiterReplacer strips the characters that act as structural
// delimiters in downstream document stores and index payloads.
var delimiterReplacer = strings.NewReplacer("$", "_", ".", "_")

// SanitizeKey normalizes a raw signal key for use in a weight map.
// It strips reserved delimiter characters, trims whitespace, and rejects
// keys that end up empty or as underscore placeholders. Every weight-map
// write site goes through this function.
func SanitizeKey(raw string) (string, bool) {
	key := strings.TrimSpace(delimiterReplacer.Replace(raw))
	if key == "" || strings.HasPrefix(key, "_") {
		return "", false
	}
	return key, true
}

// vibeMapping translates the Vietnamese vibe labels used by the client
// apps to the English tags stored on zones.
var vibeMapping = map[string]string{
	"Văn hóa":    "culture",
	"Lịch sử":    "history",
	"Mạo hiểm":   "adventure",
	"Khám phá":   "adventure",
	"Thiên nhiên": "nature",
	"Tự nhiên":   "nature",
	"Ẩm thực":    "food",
	"Biển":       "beach",
	"Bãi biển":   "beach",
	"Núi":        "mountain",
	"Thư giãn":   "relaxation",
	"Nghỉ dưỡng": "relaxation",
	"Tâm linh":   "temple",
	"Chùa":       "temple",
	"Nhiếp ảnh":  "photo",
	"Chụp ảnh":   "photo",
	"Mua sắm":    "shopping",
	"Chợ":        "market",
	"Bản địa":    "local",
	"Cảnh đẹp":   "view",
	"Hoàng hôn":  "sunset",
	"Kiến trúc":  "architecture",
	"Nightlife":  "nightlife",
	"Hang động":  "cave",
}

// mapVibe translates a raw vibe label to its canonical English tag,
// falling back to the lowercased input.
func mapVibe(raw string) string {
	if mapped, ok := vibeMapping[raw]; ok {
		return mapped
	}
	return strings.ToLower(raw)
}
