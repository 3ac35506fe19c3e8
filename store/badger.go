package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// BadgerTier is the durable tier, an embedded BadgerDB database. Writes are
// synchronous to disk; this is the tier of last resort and its failures
// propagate to the caller.
type BadgerTier struct {
	db *badger.DB
}

// BadgerConfig holds the knobs a deployment may need to turn.
type BadgerConfig struct {
	// Path is the directory for the database files. Ignored when InMemory
	// is set.
	Path string
	// InMemory keeps the whole database in memory, for tests.
	InMemory bool
	// SyncWrites forces an fsync on every write.
	SyncWrites bool
	// Logger receives BadgerDB's own log output. Nil disables it.
	Logger *zap.Logger
}

// DefaultBadgerConfig returns the production defaults: on-disk and synced.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{Path: path, SyncWrites: true}
}

// InMemoryBadgerConfig returns a configuration for tests: in-memory, no
// fsync, silent.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// NewBadgerTier opens the durable tier.
func NewBadgerTier(cfg BadgerConfig) (*BadgerTier, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{log: cfg.Logger.Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cannot open durable tier at %q: %w", cfg.Path, err)
	}
	return &BadgerTier{db: db}, nil
}

func badgerKey(namespace, key string) []byte {
	return []byte(namespace + "/" + key)
}

func (t *BadgerTier) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	var value []byte
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(namespace, key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cannot read %s/%s: %w", namespace, key, err)
	}
	return value, true, nil
}

func (t *BadgerTier) Put(_ context.Context, namespace, key string, value []byte) error {
	err := t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(namespace, key), value)
	})
	if err != nil {
		return fmt.Errorf("cannot write %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (t *BadgerTier) Delete(_ context.Context, namespace, key string) error {
	err := t.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(namespace, key))
	})
	if err != nil {
		return fmt.Errorf("cannot delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (t *BadgerTier) Close() error { return t.db.Close() }

// badgerLogger adapts zap to BadgerDB's Logger interface.
type badgerLogger struct {
	log *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...any)   { l.log.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...any) { l.log.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...any)    { l.log.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...any)   { l.log.Debugf(format, args...) }

var _ KV = (*BadgerTier)(nil)
var _ badger.Logger = (*badgerLogger)(nil)
