// Package badger is a BadgerDB-backed implementation of snapshot.Sink: a
// Config-to-New constructor wrapping a *badger.DB, with Put/Get/Close
// translating directly onto badger transactions.
package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/otterlearn/reusecache/snapshot"
)

// Store is a BadgerDB-backed snapshot.Sink.
type Store struct {
	db *badger.DB
}

// Config holds configuration for the BadgerDB-backed sink.
type Config struct {
	// DataDir is the directory BadgerDB stores its files in.
	DataDir string
}

// New opens (creating if necessary) a BadgerDB-backed sink at
// config.DataDir.
func New(config *Config) (*Store, error) {
	if config.DataDir == "" {
		return nil, fmt.Errorf("snapshot/badger: DataDir is required")
	}

	opts := badger.DefaultOptions(config.DataDir)
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("snapshot/badger: failed to open db: %w", err)
	}

	return &Store{db: db}, nil
}

// Put stores value under key, overwriting any value already stored there.
func (s *Store) Put(_ context.Context, key [32]byte, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key[:], value)
	})
}

// Get retrieves the value stored under key.
func (s *Store) Get(_ context.Context, key [32]byte) ([]byte, bool, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key[:])
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append([]byte{}, val...)
			return nil
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Close releases all BadgerDB resources.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RunGC runs BadgerDB garbage collection. Call this periodically to
// reclaim space from superseded snapshot generations.
func (s *Store) RunGC(discardRatio float64) error {
	err := s.db.RunValueLogGC(discardRatio)
	if err == badger.ErrNoRewrite {
		return nil
	}
	return err
}

var _ snapshot.Sink = (*Store)(nil)
