// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package zone

import (
	"math"
	"sort"
	"strings"
)

// semanticGroups maps canonical interest groups to the Vietnamese and
// English surface forms users actually type. Group-level matching lets
// "yên tĩnh" count as a relax signal without an exact keyword hit.
var semanticGroups = map[string][]string{
	"mountain": {"núi", "mountain", "đồi", "hill", "peak", "view", "cảnh", "tầm nhìn"},
	"nature":   {"thiên nhiên", "nature", "rừng", "forest", "cảnh đẹp"},

	"culture": {"văn hóa", "culture", "lịch sử", "history"},
	"ancient": {"cổ kính", "ancient", "xưa", "phố cổ"},
	"temple":  {"chùa", "đền", "miếu", "pagoda", "temple", "tâm linh"},

	"relax":    {"nghỉ ngơi", "thư giãn", "relax", "peaceful", "yên tĩnh", "quiet"},
	"peaceful": {"bình yên", "peaceful", "thanh bình"},

	"beach":  {"biển", "beach", "bãi biển"},
	"sunset": {"hoàng hôn", "sunset", "bình minh", "sunrise"},
	"swim":   {"bơi", "tắm biển", "swimming"},

	"food":    {"ẩm thực", "món ăn", "food", "đặc sản"},
	"seafood": {"hải sản", "seafood", "đồ biển"},
	"cheap":   {"rẻ", "tiết kiệm", "budget", "cheap", "bình dân"},

	"photo": {"chụp ảnh", "photo", "sống ảo", "check in", "view", "cảnh"},

	"romantic": {"lãng mạn", "romantic", "đèn lồng", "lantern"},
	"family":   {"gia đình", "family", "kids", "children", "trẻ em"},

	"nightlife": {"nightlife", "đêm", "bar", "club", "pub"},
	"shopping":  {"mua sắm", "shopping", "chợ", "market"},
}

// stopWords are tokens dropped from free-text keyword extraction.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "want": {},
	"tôi": {}, "muốn": {}, "thích": {}, "được": {}, "những": {},
	"một": {}, "của": {}, "đi": {}, "và": {}, "có": {}, "nơi": {},
}

// ExtractFlexibleKeywords returns the canonical group names whose surface
// forms occur in text. One hit per group is enough.
func ExtractFlexibleKeywords(text string) []string {
	lower := strings.ToLower(text)
	var groups []string
	for group, terms := range semanticGroups {
		for _, term := range terms {
			if strings.Contains(lower, term) {
				groups = append(groups, group)
				break
			}
		}
	}
	sort.Strings(groups)
	return groups
}

// ExtractKeywords tokenizes free text for the keyword-match scoring term:
// lowercase, punctuation stripped, tokens of three or more characters
// that are not stop words.
func ExtractKeywords(text string) []string {
	lower := strings.ToLower(text)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !isWordRune(r)
	})

	seen := make(map[string]struct{})
	var keywords []string
	for _, tok := range fields {
		if len([]rune(tok)) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}

func isWordRune(r rune) bool {
	return r == '_' || r == '-' ||
		('0' <= r && r <= '9') ||
		('a' <= r && r <= 'z') ||
		r > 127 // keep accented Vietnamese letters
}

// SemanticMatch scores the lexical-semantic similarity between user text
// and a zone's keyword set, in [0,1]. Each keyword contributes by the
// strongest rung of the match ladder it clears: exact substring (1.0),
// shared semantic group (0.8), or partial token overlap (0.5).
func SemanticMatch(userText string, zoneKeywords []string) float64 {
	if len(zoneKeywords) == 0 {
		return 0
	}

	lower := strings.ToLower(userText)
	total := 0.0
	for _, kw := range zoneKeywords {
		total += scoreKeywordMatch(lower, strings.ToLower(kw))
	}
	return math.Min(total/float64(len(zoneKeywords)), 1)
}

func scoreKeywordMatch(userText, keyword string) float64 {
	if strings.Contains(userText, keyword) {
		return 1.0
	}

	// Same semantic group as something the user said.
	for _, terms := range semanticGroups {
		if !containsString(terms, keyword) {
			continue
		}
		for _, term := range terms {
			if strings.Contains(userText, term) {
				return 0.8
			}
		}
	}

	// Partial token overlap, both sides at least three characters.
	if len([]rune(keyword)) >= 3 {
		for _, word := range strings.Fields(userText) {
			if len([]rune(word)) < 3 {
				continue
			}
			if strings.Contains(word, keyword) || strings.Contains(keyword, word) {
				return 0.5
			}
		}
	}

	return 0
}

func containsString(s []string, target string) bool {
	for _, v := range s {
		if v == target {
			return true
		}
	}
	return false
}
