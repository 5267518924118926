// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package zone

import (
	"context"
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
)

func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBadgerStore_UpsertGet(t *testing.T) {
	t.Parallel()

	store := NewBadgerStore(newTestDB(t))
	ctx := context.Background()

	z := &Zone{ID: "old-town", Name: "Hoi An Old Town", Province: "Quảng Nam",
		Rating: 4.6, Active: true}
	if err := store.Upsert(ctx, z); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.Get(ctx, "old-town")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != z.Name || got.Rating != z.Rating {
		t.Errorf("Get() = %+v, want %+v", got, z)
	}
}

func TestBadgerStore_GetMissing(t *testing.T) {
	t.Parallel()

	store := NewBadgerStore(newTestDB(t))
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("Get() error = %v, want ErrZoneNotFound", err)
	}
}

func TestBadgerStore_GetInactive(t *testing.T) {
	t.Parallel()

	store := NewBadgerStore(newTestDB(t))
	ctx := context.Background()

	if err := store.Upsert(ctx, &Zone{ID: "closed", Name: "Closed", Active: false}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "closed"); !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("Get(inactive) error = %v, want ErrZoneNotFound", err)
	}
}

func TestBadgerStore_UpsertIdempotent(t *testing.T) {
	t.Parallel()

	store := NewBadgerStore(newTestDB(t))
	ctx := context.Background()

	z := &Zone{ID: "z1", Name: "First", Active: true}
	if err := store.Upsert(ctx, z); err != nil {
		t.Fatal(err)
	}
	z.Name = "Replaced"
	if err := store.Upsert(ctx, z); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "z1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Replaced" {
		t.Errorf("Name = %q, want full-document replacement", got.Name)
	}
}

func TestBadgerStore_UpsertMissingID(t *testing.T) {
	t.Parallel()

	store := NewBadgerStore(newTestDB(t))
	if err := store.Upsert(context.Background(), &Zone{Name: "no id"}); err == nil {
		t.Error("Upsert() error = nil for zone without id")
	}
}

func TestBadgerStore_ListActive(t *testing.T) {
	t.Parallel()

	store := NewBadgerStore(newTestDB(t))
	ctx := context.Background()

	zones := []*Zone{
		{ID: "a", Name: "Alpha", Province: "Quảng Nam", ScorePriority: 1, Active: true},
		{ID: "b", Name: "Beta", Province: "Quảng Nam", ScorePriority: 5, Active: true},
		{ID: "c", Name: "Gamma", Province: "Đà Nẵng", ScorePriority: 3, Active: true},
		{ID: "d", Name: "Delta", Province: "Quảng Nam", Active: false},
	}
	for _, z := range zones {
		if err := store.Upsert(ctx, z); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("all provinces", func(t *testing.T) {
		got, err := store.ListActive(ctx, "")
		if err != nil {
			t.Fatalf("ListActive() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("ListActive() = %d zones, want 3 active", len(got))
		}
		// Ordered by descending priority.
		if got[0].ID != "b" || got[1].ID != "c" || got[2].ID != "a" {
			t.Errorf("order = %s,%s,%s, want b,c,a", got[0].ID, got[1].ID, got[2].ID)
		}
	})

	t.Run("province filter", func(t *testing.T) {
		got, err := store.ListActive(ctx, "Quảng Nam")
		if err != nil {
			t.Fatalf("ListActive() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("ListActive(Quảng Nam) = %d zones, want 2", len(got))
		}
	})
}

func TestBadgerStore_Exists(t *testing.T) {
	t.Parallel()

	store := NewBadgerStore(newTestDB(t))
	ctx := context.Background()

	if err := store.Upsert(ctx, &Zone{ID: "z1", Name: "Z", Active: true}); err != nil {
		t.Fatal(err)
	}

	if ok, err := store.Exists(ctx, "z1"); err != nil || !ok {
		t.Errorf("Exists(z1) = %v, %v, want true", ok, err)
	}
	if ok, err := store.Exists(ctx, "nope"); err != nil || ok {
		t.Errorf("Exists(nope) = %v, %v, want false", ok, err)
	}
}
