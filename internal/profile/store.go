// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// ErrProfileNotFound is returned when no profile exists for a user.
var ErrProfileNotFound = errors.New("profile not found")

// profileKeyPrefix namespaces profile documents in BadgerDB.
const profileKeyPrefix = "profile:"

// Store defines profile persistence. Upserts are idempotent full-document
// replacements keyed by user id, so concurrent re-runs of the aggregation
// job converge to the same final state.
type Store interface {
	Upsert(ctx context.Context, p *BehaviorProfile) error
	Get(ctx context.Context, userID string) (*BehaviorProfile, error)
}

// BadgerStore implements Store using BadgerDB for durable storage.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a BadgerDB-backed profile store.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Upsert replaces the stored profile for p.UserID.
func (s *BadgerStore) Upsert(ctx context.Context, p *BehaviorProfile) error {
	if p.UserID == "" {
		return errors.New("profile missing user id")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profileKeyPrefix+p.UserID), data)
	})
}

// Get retrieves the profile for userID, or ErrProfileNotFound.
func (s *BadgerStore) Get(ctx context.Context, userID string) (*BehaviorProfile, error) {
	var p BehaviorProfile

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrProfileNotFound
		}
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}
