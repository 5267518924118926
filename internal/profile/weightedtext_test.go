// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package profile

import (
	"strings"
	"testing"
)

func sig(weight float64) WeightedSignal {
	return WeightedSignal{Weight: weight, Interactions: 1}
}

func TestBuildWeightedText_RepeatsByWeight(t *testing.T) {
	t.Parallel()

	p := &BehaviorProfile{
		UserID: "u1",
		VibeWeights: map[string]WeightedSignal{
			"beach":   sig(10),
			"sunset":  sig(5),
			"culture": sig(5),
		},
	}

	text := BuildWeightedText(p)
	words := strings.Fields(text)

	counts := make(map[string]int)
	for _, w := range words {
		counts[w]++
	}

	// Max weight maps to 5 repetitions, min weight to 1.
	if counts["beach"] != 5 {
		t.Errorf("beach repeated %d times, want 5", counts["beach"])
	}
	if counts["sunset"] != 1 || counts["culture"] != 1 {
		t.Errorf("min-weight vibes repeated %d/%d times, want 1/1",
			counts["sunset"], counts["culture"])
	}

	// Strongest vibe comes first.
	if words[0] != "beach" {
		t.Errorf("first word = %q, want beach", words[0])
	}
}

func TestBuildWeightedText_SingleVibe(t *testing.T) {
	t.Parallel()

	p := &BehaviorProfile{
		VibeWeights: map[string]WeightedSignal{"beach": sig(3)},
	}

	if text := BuildWeightedText(p); text != "beach" {
		t.Errorf("BuildWeightedText() = %q, want %q", text, "beach")
	}
}

func TestBuildWeightedText_AppendsInteractionsAndProvinces(t *testing.T) {
	t.Parallel()

	p := &BehaviorProfile{
		VibeWeights:      map[string]WeightedSignal{"beach": sig(3)},
		ProvinceWeights:  map[string]WeightedSignal{"Quảng Nam": sig(2), "Đà Nẵng": sig(5)},
		InteractionTexts: []string{"xem tour Cù Lao Chàm"},
	}

	text := BuildWeightedText(p)
	if !strings.Contains(text, "xem tour Cù Lao Chàm") {
		t.Errorf("interaction phrase missing from %q", text)
	}
	// Provinces follow in descending weight order.
	if !strings.HasSuffix(text, "Đà Nẵng Quảng Nam") {
		t.Errorf("provinces missing or misordered in %q", text)
	}
}

func TestBuildWeightedText_InteractionFallback(t *testing.T) {
	t.Parallel()

	phrases := make([]string, 25)
	for i := range phrases {
		phrases[i] = "xem tour X"
	}

	p := &BehaviorProfile{InteractionTexts: phrases}
	text := BuildWeightedText(p)

	// Fallback caps at 20 phrases.
	if got := len(strings.Split(text, "xem tour X")) - 1; got != 20 {
		t.Errorf("fallback used %d phrases, want 20", got)
	}
}

func TestBuildWeightedText_Empty(t *testing.T) {
	t.Parallel()

	if text := BuildWeightedText(&BehaviorProfile{}); text != "" {
		t.Errorf("BuildWeightedText(empty) = %q, want empty", text)
	}
}

func TestBuildWeightedText_CapsVibes(t *testing.T) {
	t.Parallel()

	weights := make(map[string]WeightedSignal)
	for _, v := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		weights[v] = sig(1)
	}

	text := BuildWeightedText(&BehaviorProfile{VibeWeights: weights})
	words := strings.Fields(text)

	// Equal weights mean one repetition each, truncated at the top 10.
	if len(words) != 10 {
		t.Errorf("vibe count = %d, want 10", len(words))
	}
}

func TestTopKeys_Deterministic(t *testing.T) {
	t.Parallel()

	m := map[string]WeightedSignal{
		"b": sig(2), "a": sig(2), "c": sig(5),
	}

	got := topKeys(m, 10)
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("topKeys() = %v, want %v", got, want)
		}
	}
}
