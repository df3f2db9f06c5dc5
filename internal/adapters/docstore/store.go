// Package docstore persists users, events and mentorship requests as JSON
// documents in an embedded badger database.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/okian/campusconnect/pkg/logger"
	"github.com/okian/campusconnect/pkg/metrics"
)

// Key prefixes.
const (
	userKeyPrefix          = "user:"
	eventKeyPrefix         = "event:"
	mentorshipKeyPrefix    = "mentorship:"
	mentorshipByMentorPref = "mentorship_mentor:"
	mentorshipByMenteePref = "mentorship_mentee:"
	connectionKeyPrefix    = "connection:"
	connectionByUserPref   = "connection_user:"
	knowledgeKeyPrefix     = "knowledge:"
)

// Option applies a configuration option to Open.
type Option func(*config)

type config struct {
	syncWrites bool
	log        logger.Logger
}

// WithSyncWrites makes every commit fsync before returning.
func WithSyncWrites(sync bool) Option {
	return func(c *config) { c.syncWrites = sync }
}

// WithLogger routes badger's internal logging through l.
func WithLogger(l logger.Logger) Option {
	return func(c *config) { c.log = l }
}

// Store is the badger-backed document store.
type Store struct {
	db *badger.DB
}

// Open opens the database at path. An empty path opens an in-memory database.
func Open(path string, opts ...Option) (*Store, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}

	bopts := badger.DefaultOptions(path).WithSyncWrites(c.syncWrites)
	if path == "" {
		bopts = bopts.WithInMemory(true)
	}
	if c.log != nil {
		bopts = bopts.WithLogger(&badgerLogger{log: c.log})
	} else {
		bopts = bopts.WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// observe records the outcome of one store operation.
func observe(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	metrics.RecordDocstoreOperation(op, result, float64(time.Since(start).Microseconds())/1000)
}

func get[T any](ctx context.Context, db *badger.DB, key string) (T, error) {
	var doc T
	if err := ctx.Err(); err != nil {
		return doc, err
	}
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	return doc, err
}

func set(txn *badger.Txn, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := txn.Set([]byte(key), data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func put(ctx context.Context, db *badger.DB, key string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.Update(func(txn *badger.Txn) error {
		return set(txn, key, doc)
	})
}

// update applies fn to the stored document in a single read-write transaction.
func update[T any](ctx context.Context, db *badger.DB, key string, fn func(*T) error) (T, error) {
	var doc T
	if err := ctx.Err(); err != nil {
		return doc, err
	}
	err := db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &doc) }); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		if err := fn(&doc); err != nil {
			return err
		}
		return set(txn, key, doc)
	})
	return doc, err
}

// scan decodes every document under prefix, in key order, keeping those keep
// accepts. A nil keep accepts everything.
func scan[T any](ctx context.Context, db *badger.DB, prefix string, keep func(*T) bool) ([]T, error) {
	out := []T{}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			var doc T
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &doc) }); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			if keep == nil || keep(&doc) {
				out = append(out, doc)
			}
		}
		return nil
	})
	return out, err
}

// scanKeys returns the key suffixes under prefix.
func scanKeys(db *badger.DB, prefix string) ([]string, error) {
	var out []string
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			out = append(out, string(it.Item().Key()[len(p):]))
		}
		return nil
	})
	return out, err
}

// badgerLogger adapts logger.Logger to badger.Logger.
type badgerLogger struct {
	log logger.Logger
}

func (b *badgerLogger) Errorf(format string, args ...any) {
	b.log.Error(context.Background(), fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Warningf(format string, args ...any) {
	b.log.Warn(context.Background(), fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Infof(format string, args ...any) {
	b.log.Debug(context.Background(), fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Debugf(format string, args ...any) {
	b.log.Debug(context.Background(), fmt.Sprintf(format, args...))
}
