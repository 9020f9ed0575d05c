package storage

import (
	"context"
	"errors"
)

var (
	// ErrUnknownCollection is returned for a collection the schema does not declare.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrMissingKey is returned when a record lacks its collection's key field.
	ErrMissingKey = errors.New("record is missing its key field")

	// ErrInvalidRecord is returned when a record cannot be encoded as JSON.
	// It is a caller error and never degrades or invalidates the backend.
	ErrInvalidRecord = errors.New("record cannot be encoded")

	// ErrStoreUnavailable is returned in strict mode when an operation could
	// only be served by degrading.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Backend is an opened primary store.
type Backend interface {
	// Put replaces the record stored under key.
	Put(ctx context.Context, collection, key string, rec Record) error

	// Get returns the record stored under key, found=false when absent.
	Get(ctx context.Context, collection, key string) (Record, bool, error)

	// GetAll returns every record of a collection in store order.
	GetAll(ctx context.Context, collection string) ([]Record, error)

	// Delete removes a record. Missing keys are not an error.
	Delete(ctx context.Context, collection, key string) error

	// Clear removes every record of one collection.
	Clear(ctx context.Context, collection string) error

	Close() error
}

// OpenFunc opens a backend and creates any declared collection that is missing.
// Opening an already initialized store must be a no-op for existing collections.
type OpenFunc func(ctx context.Context, schema Schema) (Backend, error)

// KV is the flat key/value store used as the settings fallback tier.
type KV interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// Store is the collection-oriented API exposed to services.
type Store interface {
	Put(ctx context.Context, collection string, rec Record) error
	Get(ctx context.Context, collection, key string) (Record, bool, error)
	GetAll(ctx context.Context, collection string) ([]Record, error)
	Delete(ctx context.Context, collection, key string) error
	Clear(ctx context.Context, collection string) error
}
