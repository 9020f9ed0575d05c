// Package storage provides the collection-oriented persistence facade.
//
// The facade opens its primary backend lazily, reuses the handle while it is
// healthy and reopens it on the next call after any failed operation. When the
// primary store cannot serve a request, the settings collection falls back to
// a flat key/value store; every other collection degrades to write-discarded
// and read-empty behavior unless the facade runs in strict mode.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/metrics"
)

// FallbackPrefix namespaces settings keys in the fallback store.
const FallbackPrefix = "fallback_"

// Policy configures how degraded operations are reported.
type Policy struct {
	// Strict turns silent no-op and empty-read degradation into ErrStoreUnavailable.
	Strict bool `yaml:"strict"`
}

// Option configures a Facade.
type Option func(*Facade)

// WithFallback sets the key/value store backing the settings collection.
func WithFallback(kv KV) Option {
	return func(f *Facade) { f.fallback = kv }
}

// WithPolicy sets the degradation policy.
func WithPolicy(p Policy) Option {
	return func(f *Facade) { f.policy = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Facade) {
		if l != nil {
			f.logger = l
		}
	}
}

// Facade implements Store over a lazily opened Backend.
type Facade struct {
	schema   Schema
	open     OpenFunc
	fallback KV
	policy   Policy
	logger   *slog.Logger

	mu      sync.Mutex
	backend Backend
	lastErr error
	state   atomic.Int32
}

var _ Store = (*Facade)(nil)

// NewFacade creates a facade. Nothing is opened until the first operation.
func NewFacade(schema Schema, open OpenFunc, opts ...Option) *Facade {
	f := &Facade{
		schema: schema,
		open:   open,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Schema returns the declared schema.
func (f *Facade) Schema() Schema { return f.schema }

// State returns the current connection state.
func (f *Facade) State() ConnState { return ConnState(f.state.Load()) }

// LastError returns the error that caused the most recent failure, if any.
func (f *Facade) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Strict reports whether degraded paths return errors.
func (f *Facade) Strict() bool { return f.policy.Strict }

// Ping opens the backend if needed and reports the open error.
func (f *Facade) Ping(ctx context.Context) error {
	_, err := f.acquire(ctx)
	return err
}

// Close releases the backend. The next operation reopens it.
func (f *Facade) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.backend == nil {
		return nil
	}
	err := f.backend.Close()
	f.backend = nil
	f.state.Store(int32(StateUninitialized))
	metrics.StorageConnState.Set(float64(StateUninitialized))
	return err
}

// Put upserts rec by its collection key field.
func (f *Facade) Put(ctx context.Context, collection string, rec Record) error {
	coll, err := f.lookup(collection)
	if err != nil {
		return err
	}
	key, ok := rec.Key(coll.KeyField)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrMissingKey, collection, coll.KeyField)
	}
	if _, err := json.Marshal(rec); err != nil {
		return fmt.Errorf("%w: %s/%s: %w", ErrInvalidRecord, collection, key, err)
	}
	metrics.StorageOpsTotal.WithLabelValues(collection, "put").Inc()

	err = f.withBackend(ctx, func(b Backend) error {
		return b.Put(ctx, collection, key, rec)
	})
	if err == nil {
		return nil
	}
	if err := callerError(ctx, "put", collection, err); err != nil {
		return err
	}

	if f.hasFallback(collection) {
		ferr := f.fallbackPut(ctx, key, rec)
		if ferr == nil {
			f.logger.Warn("Primary store failed, settings written to fallback",
				"collection", collection, "key", key, "error", err)
			metrics.StorageDegradedTotal.WithLabelValues(collection, "put", "fallback").Inc()
			return nil
		}
		err = errors.Join(err, ferr)
	}
	return f.degrade(collection, "put", err)
}

// Get returns the record stored under key. found is false when absent.
func (f *Facade) Get(ctx context.Context, collection, key string) (Record, bool, error) {
	coll, err := f.lookup(collection)
	if err != nil {
		return nil, false, err
	}
	metrics.StorageOpsTotal.WithLabelValues(collection, "get").Inc()

	var (
		rec   Record
		found bool
	)
	err = f.withBackend(ctx, func(b Backend) error {
		var gerr error
		rec, found, gerr = b.Get(ctx, collection, key)
		return gerr
	})
	if err == nil {
		return rec, found, nil
	}
	if err := callerError(ctx, "get", collection, err); err != nil {
		return nil, false, err
	}

	if f.hasFallback(collection) {
		rec, found, ferr := f.fallbackGet(ctx, coll, key)
		if ferr == nil {
			f.logger.Warn("Primary store failed, settings read from fallback",
				"collection", collection, "key", key, "error", err)
			metrics.StorageDegradedTotal.WithLabelValues(collection, "get", "fallback").Inc()
			return rec, found, nil
		}
		err = errors.Join(err, ferr)
	}
	return nil, false, f.degrade(collection, "get", err)
}

// GetAll returns every record of a collection. No fallback exists for this operation.
func (f *Facade) GetAll(ctx context.Context, collection string) ([]Record, error) {
	if _, err := f.lookup(collection); err != nil {
		return nil, err
	}
	metrics.StorageOpsTotal.WithLabelValues(collection, "get_all").Inc()

	var recs []Record
	err := f.withBackend(ctx, func(b Backend) error {
		var gerr error
		recs, gerr = b.GetAll(ctx, collection)
		return gerr
	})
	if err == nil {
		if recs == nil {
			recs = []Record{}
		}
		return recs, nil
	}
	if err := callerError(ctx, "get_all", collection, err); err != nil {
		return nil, err
	}
	return []Record{}, f.degrade(collection, "get_all", err)
}

// Delete removes the record stored under key.
func (f *Facade) Delete(ctx context.Context, collection, key string) error {
	if _, err := f.lookup(collection); err != nil {
		return err
	}
	metrics.StorageOpsTotal.WithLabelValues(collection, "delete").Inc()

	err := f.withBackend(ctx, func(b Backend) error {
		return b.Delete(ctx, collection, key)
	})
	if err == nil {
		return nil
	}
	if err := callerError(ctx, "delete", collection, err); err != nil {
		return err
	}
	return f.degrade(collection, "delete", err)
}

// Clear removes every record of one collection.
func (f *Facade) Clear(ctx context.Context, collection string) error {
	if _, err := f.lookup(collection); err != nil {
		return err
	}
	metrics.StorageOpsTotal.WithLabelValues(collection, "clear").Inc()

	err := f.withBackend(ctx, func(b Backend) error {
		return b.Clear(ctx, collection)
	})
	if err == nil {
		return nil
	}
	if err := callerError(ctx, "clear", collection, err); err != nil {
		return err
	}
	return f.degrade(collection, "clear", err)
}

func (f *Facade) lookup(collection string) (Collection, error) {
	coll, ok := f.schema.Lookup(collection)
	if !ok {
		return Collection{}, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return coll, nil
}

func (f *Facade) hasFallback(collection string) bool {
	return collection == CollSettings && f.fallback != nil
}

// withBackend runs fn against an open backend, invalidating it when fn fails.
func (f *Facade) withBackend(ctx context.Context, fn func(Backend) error) error {
	b, err := f.acquire(ctx)
	if err != nil {
		return err
	}
	if err := fn(b); err != nil {
		if ctx.Err() == nil && !errors.Is(err, ErrInvalidRecord) {
			f.invalidate(b, err)
		}
		return err
	}
	return nil
}

// callerError returns a non-nil error when a failure was caused by the caller
// rather than the store: a done context or an unencodable record. Such
// failures are surfaced as-is and never reach the fallback or degrade paths.
func callerError(ctx context.Context, op, collection string, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		if errors.Is(err, cerr) {
			return err
		}
		return fmt.Errorf("%s %s: %w: %w", op, collection, cerr, err)
	}
	if errors.Is(err, ErrInvalidRecord) {
		return err
	}
	return nil
}

func (f *Facade) acquire(ctx context.Context) (Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.backend != nil {
		return f.backend, nil
	}

	prev := f.State()
	f.setState(StateOpening)
	b, err := f.open(ctx, f.schema)
	if err != nil {
		if ctx.Err() != nil {
			// Abandoned by the caller; the store itself is not known to be down.
			f.setState(prev)
			return nil, fmt.Errorf("open %s: %w", f.schema.Name, err)
		}
		f.lastErr = err
		f.setState(StateFailed)
		return nil, fmt.Errorf("open %s: %w", f.schema.Name, err)
	}

	f.backend = b
	f.lastErr = nil
	f.setState(StateReady)
	f.logger.Debug("Storage opened", "store", f.schema.Name, "version", f.schema.Version)
	return b, nil
}

func (f *Facade) invalidate(b Backend, cause error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Another caller may already have replaced the handle.
	if f.backend != b {
		return
	}
	f.backend = nil
	f.lastErr = cause
	f.setState(StateFailed)
	if err := b.Close(); err != nil {
		f.logger.Debug("Closing failed backend", "error", err)
	}
}

// setState must be called with mu held.
func (f *Facade) setState(to ConnState) {
	from := f.State()
	if from == to {
		return
	}
	if !CanTransition(from, to) {
		f.logger.Warn("Unexpected storage state transition", "from", from, "to", to)
	}
	f.state.Store(int32(to))
	metrics.StorageConnState.Set(float64(to))
}

func (f *Facade) degrade(collection, op string, cause error) error {
	if f.policy.Strict {
		metrics.StorageDegradedTotal.WithLabelValues(collection, op, "rejected").Inc()
		return fmt.Errorf("%w: %s %s: %w", ErrStoreUnavailable, op, collection, cause)
	}
	f.logger.Warn("Storage unavailable, operation degraded",
		"collection", collection, "op", op, "error", cause)
	metrics.StorageDegradedTotal.WithLabelValues(collection, op, "discarded").Inc()
	return nil
}

func (f *Facade) fallbackPut(ctx context.Context, key string, rec Record) error {
	data, err := json.Marshal(rec["value"])
	if err != nil {
		return fmt.Errorf("encode fallback value: %w", err)
	}
	if err := f.fallback.Set(ctx, FallbackPrefix+key, data); err != nil {
		return fmt.Errorf("fallback set: %w", err)
	}
	return nil
}

func (f *Facade) fallbackGet(ctx context.Context, coll Collection, key string) (Record, bool, error) {
	data, found, err := f.fallback.Get(ctx, FallbackPrefix+key)
	if err != nil {
		return nil, false, fmt.Errorf("fallback get: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false, fmt.Errorf("decode fallback value: %w", err)
	}
	return Record{coll.KeyField: key, "value": value}, true, nil
}
