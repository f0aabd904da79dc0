// Package store provides durable key-to-JSON-document storage on Badger.
//
// The catalog keeps exactly two documents: the image collection and the
// tag group collection. Every mutation is a whole-document replace: read
// the full collection, mutate in memory, write the full collection back.
// There is no locking; two interleaved writers to the same document race
// last-write-wins.
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	apperrors "github.com/snaptagapp/snaptag-server/internal/errors"
)

// Document keys. Each holds a single JSON array.
const (
	keyImages    = "images"
	keyTagGroups = "tagGroups"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// getDocument retrieves a whole document by key.
// A missing key reports found=false with no error.
func (s *Store) getDocument(key []byte, dest any) (found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return found, err
}

// setDocument replaces a whole document by key.
func (s *Store) setDocument(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// wrapPersistence tags a storage failure with the domain persistence code.
// Callers treat these as non-fatal: in-memory state may run ahead of disk.
func wrapPersistence(err error, op string) error {
	return apperrors.Wrapf(err, apperrors.CodePersistence, "store: %s", op)
}
