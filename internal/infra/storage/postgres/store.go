package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
)

const (
	registerCollectionSQL = `INSERT INTO collections (name, key_field) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`
	putRecordSQL          = `INSERT INTO records (collection, key, value, updated_at) VALUES ($1, $2, $3::jsonb, now()) ON CONFLICT (collection, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	getRecordSQL          = `SELECT value FROM records WHERE collection = $1 AND key = $2`
	listRecordsSQL        = `SELECT key, value FROM records WHERE collection = $1 ORDER BY key`
	deleteRecordSQL       = `DELETE FROM records WHERE collection = $1 AND key = $2`
	clearRecordsSQL       = `DELETE FROM records WHERE collection = $1`
)

// Store implements storage.Backend on the records table.
type Store struct {
	db          *DB
	stopMetrics context.CancelFunc
}

var _ storage.Backend = (*Store)(nil)

// NewStore creates a store over an open database.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Opener returns a storage.OpenFunc that connects, migrates and registers the
// schema's collections. Each call opens a fresh pool.
func Opener(cfg Config, logger *slog.Logger) storage.OpenFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, schema storage.Schema) (storage.Backend, error) {
		db, err := NewDB(ctx, cfg)
		if err != nil {
			return nil, err
		}

		if !cfg.SkipMigrations {
			logger.Info("Running database migrations", "store", schema.Name, "version", schema.Version)
			if err := db.Migrate(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
		}

		s := NewStore(db)
		if err := s.Register(ctx, schema); err != nil {
			_ = db.Close()
			return nil, err
		}

		// The pool outlives ctx, so the collector is bound to Close instead.
		mctx, cancel := context.WithCancel(context.Background())
		db.StartMetricsCollector(mctx, PoolRecords)
		s.stopMetrics = cancel
		return s, nil
	}
}

// DB returns the underlying database.
func (s *Store) DB() *DB { return s.db }

// Register creates missing collection entries. Existing entries are left untouched.
func (s *Store) Register(ctx context.Context, schema storage.Schema) error {
	for _, c := range schema.Collections {
		if _, err := s.db.ExecContext(ctx, registerCollectionSQL, c.Name, c.KeyField); err != nil {
			return fmt.Errorf("failed to register collection %s: %w", c.Name, err)
		}
	}
	return nil
}

func (s *Store) Put(ctx context.Context, collection, key string, rec storage.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInvalidRecord, err)
	}
	if _, err := s.db.ExecContext(ctx, putRecordSQL, collection, key, string(data)); err != nil {
		return fmt.Errorf("failed to put record: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, key string) (storage.Record, bool, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, getRecordSQL, collection, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get record: %w", err)
	}

	var rec storage.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec, true, nil
}

type recordRow struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}

func (s *Store) GetAll(ctx context.Context, collection string) ([]storage.Record, error) {
	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, listRecordsSQL, collection); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	out := make([]storage.Record, 0, len(rows))
	for _, row := range rows {
		var rec storage.Record
		if err := json.Unmarshal(row.Value, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", row.Key, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteRecordSQL, collection, key); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, collection string) error {
	if _, err := s.db.ExecContext(ctx, clearRecordsSQL, collection); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.stopMetrics != nil {
		s.stopMetrics()
	}
	return s.db.Close()
}
