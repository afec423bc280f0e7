// ABOUTME: BadgerDB wrapper for normalized error-record storage
// ABOUTME: Provides Put, Get, BatchPut, List, Delete, and stats operations

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/sinugotshifhiwa4/errsift/internal/taxonomy"
	"github.com/sinugotshifhiwa4/errsift/internal/types"
)

// Key layout. Records live under a time-ordered primary key so listing
// walks newest-last without a sort; the id and category keys are
// secondary indexes pointing back at the primary key.
const (
	recPrefix = "rec:"
	idPrefix  = "id:"
	catPrefix = "cat:"
)

// Config holds configuration for the archive.
type Config struct {
	// Path to the database directory. Required unless InMemory is true.
	Path string

	// InMemory runs the database in memory (for testing).
	InMemory bool

	// SyncWrites enables synchronous writes (slower but safer).
	SyncWrites bool

	// TTL expires records after this duration. Zero keeps them forever.
	TTL time.Duration

	// Logger for BadgerDB operations.
	Logger badger.Logger
}

// Stats contains statistics about the archive.
type Stats struct {
	// Number of records in the database.
	RecordCount int64

	// Database size in bytes.
	SizeBytes int64
}

// ListOptions narrows a List call.
type ListOptions struct {
	// Category restricts results to one category. Unknown means no filter
	// only when FilterCategory is false.
	Category       taxonomy.Category
	FilterCategory bool

	// Source restricts results to records from one source.
	Source string

	// Limit caps the number of records returned. Zero means no cap.
	Limit int
}

// Archive wraps BadgerDB for error-record storage.
type Archive struct {
	db     *badger.DB
	config Config
}

// New creates a new archive with the given configuration.
func New(cfg Config) (*Archive, error) {
	opts := badger.DefaultOptions(cfg.Path)

	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}

	if cfg.SyncWrites {
		opts = opts.WithSyncWrites(true)
	}

	if cfg.Logger != nil {
		opts = opts.WithLogger(cfg.Logger)
	} else {
		opts = opts.WithLogger(nil) // Disable logging by default.
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &Archive{
		db:     db,
		config: cfg,
	}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Put stores a record with its id and category index entries.
func (a *Archive) Put(ctx context.Context, rec *types.ErrorRecord) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	if rec.ID == "" {
		return fmt.Errorf("record id is empty")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	primary := primaryKey(rec)
	return a.db.Update(func(txn *badger.Txn) error {
		if err := a.set(txn, primary, data); err != nil {
			return err
		}
		if err := a.set(txn, []byte(idPrefix+rec.ID), primary); err != nil {
			return err
		}
		return a.set(txn, categoryKey(rec), primary)
	})
}

// BatchPut stores multiple records in a single write batch.
func (a *Archive) BatchPut(ctx context.Context, recs []*types.ErrorRecord) error {
	if len(recs) == 0 {
		return nil
	}

	wb := a.db.NewWriteBatch()
	defer wb.Cancel()

	for _, rec := range recs {
		if rec == nil || rec.ID == "" {
			continue
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		primary := primaryKey(rec)
		for _, kv := range []struct {
			key, val []byte
		}{
			{primary, data},
			{[]byte(idPrefix + rec.ID), primary},
			{categoryKey(rec), primary},
		} {
			entry := badger.NewEntry(kv.key, kv.val)
			if a.config.TTL > 0 {
				entry = entry.WithTTL(a.config.TTL)
			}
			if err := wb.SetEntry(entry); err != nil {
				return fmt.Errorf("failed to set key %s: %w", kv.key, err)
			}
		}
	}

	return wb.Flush()
}

// Get retrieves a record by id. Returns nil if not found.
func (a *Archive) Get(ctx context.Context, id string) (*types.ErrorRecord, error) {
	var rec *types.ErrorRecord

	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(idPrefix + id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get id key %s: %w", id, err)
		}

		var primary []byte
		if err := item.Value(func(val []byte) error {
			primary = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return err
		}

		item, err = txn.Get(primary)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get record key %s: %w", primary, err)
		}

		return item.Value(func(val []byte) error {
			rec = &types.ErrorRecord{}
			if err := json.Unmarshal(val, rec); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}
			return nil
		})
	})

	return rec, err
}

// List returns records matching the options, oldest first.
func (a *Archive) List(ctx context.Context, opts ListOptions) ([]*types.ErrorRecord, error) {
	var recs []*types.ErrorRecord

	err := a.db.View(func(txn *badger.Txn) error {
		itOpts := badger.DefaultIteratorOptions
		it := txn.NewIterator(itOpts)
		defer it.Close()

		prefix := []byte(recPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if opts.Limit > 0 && len(recs) >= opts.Limit {
				return nil
			}

			var rec types.ErrorRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}

			if opts.FilterCategory && rec.Category != opts.Category {
				continue
			}
			if opts.Source != "" && rec.Source != opts.Source {
				continue
			}
			recs = append(recs, &rec)
		}
		return nil
	})

	return recs, err
}

// Delete removes a record and its index entries by id.
func (a *Archive) Delete(ctx context.Context, id string) error {
	return a.db.Update(func(txn *badger.Txn) error {
		idKey := []byte(idPrefix + id)
		item, err := txn.Get(idKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get id key %s: %w", id, err)
		}

		var primary []byte
		if err := item.Value(func(val []byte) error {
			primary = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return err
		}

		// Category index key is derivable from the record itself.
		item, err = txn.Get(primary)
		if err == nil {
			var rec types.ErrorRecord
			if verr := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); verr == nil {
				_ = txn.Delete(categoryKey(&rec))
			}
		}

		if err := txn.Delete(primary); err != nil {
			return fmt.Errorf("failed to delete record key %s: %w", primary, err)
		}
		return txn.Delete(idKey)
	})
}

// Stats returns statistics about the archive.
func (a *Archive) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(recPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stats.RecordCount++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	lsm, vlog := a.db.Size()
	stats.SizeBytes = lsm + vlog

	return stats, nil
}

// Compact triggers garbage collection on the database.
func (a *Archive) Compact() error {
	return a.db.RunValueLogGC(0.5)
}

// set writes a key applying the configured TTL.
func (a *Archive) set(txn *badger.Txn, key, val []byte) error {
	entry := badger.NewEntry(key, val)
	if a.config.TTL > 0 {
		entry = entry.WithTTL(a.config.TTL)
	}
	if err := txn.SetEntry(entry); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// primaryKey builds the time-ordered record key. Fixed-width nanosecond
// timestamps keep byte order equal to time order.
func primaryKey(rec *types.ErrorRecord) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", recPrefix, rec.Timestamp.UTC().UnixNano(), rec.ID))
}

// categoryKey builds the category index key.
func categoryKey(rec *types.ErrorRecord) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", catPrefix, rec.Category, rec.Timestamp.UTC().UnixNano(), rec.ID))
}
