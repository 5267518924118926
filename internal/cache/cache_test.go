// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package cache

import (
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	defer c.Close()

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got.(string) != "v" {
		t.Errorf("Get() = %v, %v, want v, true", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) ok = true")
	}
}

func TestCache_Expiry(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	defer c.Close()

	c.SetWithTTL("k", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry still returned")
	}
}

func TestCache_Delete(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	defer c.Close()

	c.Set("k", "v")
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("deleted entry still returned")
	}
}

func TestCache_NilSafe(t *testing.T) {
	t.Parallel()

	var c *Cache

	// All operations on a nil cache are no-ops.
	c.Set("k", "v")
	c.SetWithTTL("k", "v", time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("nil cache returned a value")
	}
	c.Delete("k")
	c.Clear()
	c.Close()
	if stats := c.Stats(); stats.Keys != 0 {
		t.Errorf("nil cache stats = %+v", stats)
	}
}

func TestCache_Stats(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	defer c.Close()

	c.Set("k", "v")
	c.Get("k")
	c.Get("k")
	c.Get("missing")

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Keys != 1 {
		t.Errorf("Stats() = %+v, want 2 hits, 1 miss, 1 key", stats)
	}
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	a := GenerateKey("places", "15.88", "beach")
	b := GenerateKey("places", "15.88", "beach")
	if a != b {
		t.Error("GenerateKey not deterministic")
	}

	// The delimiter is unambiguous: shifting content between parts
	// produces a different key.
	c := GenerateKey("places", "15.88beach", "")
	if a == c {
		t.Error("GenerateKey collided across part boundaries")
	}
}
