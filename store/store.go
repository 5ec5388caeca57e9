// Package store is the persistence boundary of the progression core. Every
// read and write the rule engine, ledger, claim processor, leaderboard and
// frame unlocker perform goes through a *Store, either the root one or one
// bound to a transaction by Transaction.
package store

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("store: not found")

const defaultCatalogSize = 512

// Store wraps a *gorm.DB. Catalog rows (quests, achievements, frames,
// badges) are served from an LRU shared by the root store and every
// transaction derived from it.
type Store struct {
	db      *gorm.DB
	catalog *lru.Cache
}

// New creates a Store. catalogSize <= 0 uses the default size.
func New(db *gorm.DB, catalogSize int) *Store {
	if catalogSize <= 0 {
		catalogSize = defaultCatalogSize
	}
	c, _ := lru.New(catalogSize)
	return &Store{db: db, catalog: c}
}

// DB exposes the underlying handle for plumbing that is not part of the
// progression core (audit writer, health checks).
func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn against a Store bound to a single database
// transaction. fn's error rolls the whole transaction back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, catalog: s.catalog})
	})
}

// InvalidateCatalog drops every cached catalog row.
func (s *Store) InvalidateCatalog() { s.catalog.Purge() }

func (s *Store) with(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// cached looks up key in the catalog cache, falling back to load and
// caching its result. Misses are not cached.
func cached[T any](s *Store, key string, load func() (*T, error)) (*T, error) {
	if v, ok := s.catalog.Get(key); ok {
		row := v.(T)
		return &row, nil
	}
	row, err := load()
	if err != nil {
		return nil, err
	}
	s.catalog.Add(key, *row)
	return row, nil
}

func catalogKey(kind string, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}
