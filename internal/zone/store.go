// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package zone

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// ErrZoneNotFound is returned when a requested zone id does not exist or
// is inactive. This is the only error class this core surfaces to
// callers; everything else degrades.
var ErrZoneNotFound = errors.New("zone not found")

// zoneKeyPrefix namespaces zone documents in BadgerDB.
const zoneKeyPrefix = "zone:"

// Store defines read access to the zone catalog plus the idempotent
// upsert used by catalog imports.
type Store interface {
	Get(ctx context.Context, id string) (*Zone, error)
	ListActive(ctx context.Context, province string) ([]Zone, error)
	Exists(ctx context.Context, id string) (bool, error)
	Upsert(ctx context.Context, z *Zone) error
}

// BadgerStore implements Store using BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a BadgerDB-backed zone store.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get retrieves an active zone by id, or ErrZoneNotFound.
func (s *BadgerStore) Get(ctx context.Context, id string) (*Zone, error) {
	var z Zone

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(zoneKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrZoneNotFound
		}
		if err != nil {
			return fmt.Errorf("get zone: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &z)
		})
	})
	if err != nil {
		return nil, err
	}

	if !z.Active {
		return nil, ErrZoneNotFound
	}
	return &z, nil
}

// ListActive returns all active zones, optionally restricted to one
// province, ordered by descending score priority then name.
func (s *BadgerStore) ListActive(ctx context.Context, province string) ([]Zone, error) {
	var zones []Zone

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(zoneKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var z Zone
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &z)
			})
			if err != nil {
				return fmt.Errorf("decode zone: %w", err)
			}
			if !z.Active {
				continue
			}
			if province != "" && z.Province != province {
				continue
			}
			zones = append(zones, z)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(zones, func(i, j int) bool {
		if zones[i].ScorePriority != zones[j].ScorePriority {
			return zones[i].ScorePriority > zones[j].ScorePriority
		}
		return zones[i].Name < zones[j].Name
	})
	return zones, nil
}

// Exists reports whether an active zone with the given id exists.
func (s *BadgerStore) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Get(ctx, id)
	if errors.Is(err, ErrZoneNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Upsert replaces the stored zone document keyed by z.ID.
func (s *BadgerStore) Upsert(ctx context.Context, z *Zone) error {
	if z.ID == "" {
		return errors.New("zone missing id")
	}

	data, err := json.Marshal(z)
	if err != nil {
		return fmt.Errorf("marshal zone: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(zoneKeyPrefix+z.ID), data)
	})
}
