package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStorage persists sessions in an embedded Badger database.
// Expiry is delegated to Badger's entry TTL.
type BadgerStorage struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens (or creates) a Badger database at path.
func OpenBadger(path string, logger *slog.Logger) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // badger's own logging is too chatty
	opts.SyncWrites = true       // a lost like would allow a second upvote
	opts.CompactL0OnClose = true // faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	if logger != nil {
		logger.Info("session storage opened", "path", path)
	}
	return &BadgerStorage{db: db, logger: logger}, nil
}

// Get returns the value for key or ErrNotFound.
func (b *BadgerStorage) Get(_ context.Context, key string) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return val, nil
}

// Set stores val with an optional TTL.
func (b *BadgerStorage) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), val)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes key. Missing keys are not an error.
func (b *BadgerStorage) Delete(_ context.Context, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// RunGC reclaims space from expired and deleted sessions until Badger
// reports nothing left to rewrite.
func (b *BadgerStorage) RunGC() {
	for b.db.RunValueLogGC(0.5) == nil {
	}
}

// Close flushes and closes the database.
func (b *BadgerStorage) Close() error {
	if b.logger != nil {
		b.logger.Info("closing session storage")
	}
	return b.db.Close()
}
