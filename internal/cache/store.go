package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/vanshika/soltrace/internal/domain"
)

// Options configures the local transaction cache.
type Options struct {
	// Path is the cache directory. Required unless InMemory is set.
	Path string

	// InMemory keeps the cache off disk. Used by tests.
	InMemory bool

	// SyncWrites makes every write durable before returning.
	SyncWrites bool

	// Logger receives Badger's internal log output. Nil silences it.
	Logger *slog.Logger
}

// InMemoryOptions returns a configuration suitable for tests.
func InMemoryOptions() Options {
	return Options{InMemory: true}
}

// Store persists transaction records in an embedded Badger database keyed
// by signature. Confirmed transactions never change, so entries have no
// expiry; repeated traces over the same addresses skip the node entirely.
type Store struct {
	db *badger.DB
}

// Open opens the cache database, creating the directory when needed.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, errors.New("cache path is required")
	}

	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", opts.Path, err)
		}
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	badgerOpts = badgerOpts.WithSyncWrites(opts.SyncWrites)
	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(&badgerLogger{logger: opts.Logger})
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	return &Store{db: db}, nil
}

// Get looks up a record by signature. found reports whether the signature
// was cached.
func (s *Store) Get(signature string) (rec domain.TransactionRecord, found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(signature))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &rec); err != nil {
				return fmt.Errorf("decode cached record %s: %w", signature, err)
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return domain.TransactionRecord{}, false, fmt.Errorf("read cache: %w", err)
	}
	return rec, found, nil
}

// Put stores a record under its signature, overwriting any previous entry.
func (s *Store) Put(rec domain.TransactionRecord) error {
	if rec.Signature == "" {
		return errors.New("record has no signature")
	}

	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.Signature, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(rec.Signature), val)
	})
	if err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// Len counts the cached records. Intended for diagnostics and tests.
func (s *Store) Len() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan cache: %w", err)
	}
	return count, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger adapts slog to Badger's logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
