// Package memory is an in-process storage backend.
// It is used when no database is configured and as a test double with fault injection.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
)

// ErrClosed is returned by operations on a closed backend handle.
var ErrClosed = errors.New("memory: backend closed")

// MemoryStorage holds collections of JSON-encoded records keyed by primary key.
type MemoryStorage struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
	opens       int
	failOpen    error
	failOps     error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		collections: make(map[string]map[string][]byte),
	}
}

// Open creates missing collections and returns a backend handle.
// It satisfies storage.OpenFunc.
func (s *MemoryStorage) Open(ctx context.Context, schema storage.Schema) (storage.Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opens++
	if s.failOpen != nil {
		return nil, s.failOpen
	}
	for _, c := range schema.Collections {
		if _, ok := s.collections[c.Name]; !ok {
			s.collections[c.Name] = make(map[string][]byte)
		}
	}
	return &backend{store: s}, nil
}

// Opens returns how many times Open was called.
func (s *MemoryStorage) Opens() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opens
}

// FailOpen makes subsequent Open calls return err.
func (s *MemoryStorage) FailOpen(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOpen = err
}

// FailOperations makes every record operation return err.
func (s *MemoryStorage) FailOperations(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOps = err
}

// Heal clears injected faults.
func (s *MemoryStorage) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOpen = nil
	s.failOps = nil
}

// Collections returns the names of created collections.
func (s *MemoryStorage) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type backend struct {
	store  *MemoryStorage
	mu     sync.Mutex
	closed bool
}

func (b *backend) check() error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return b.store.failOps
}

func (b *backend) collection(name string) (map[string][]byte, error) {
	records, ok := b.store.collections[name]
	if !ok {
		return nil, fmt.Errorf("memory: collection %q not found", name)
	}
	return records, nil
}

func (b *backend) Put(ctx context.Context, collection, key string, rec storage.Record) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	if err := b.check(); err != nil {
		return err
	}
	records, err := b.collection(collection)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("memory: %w: %w", storage.ErrInvalidRecord, err)
	}
	records[key] = data
	return nil
}

func (b *backend) Get(ctx context.Context, collection, key string) (storage.Record, bool, error) {
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	if err := b.check(); err != nil {
		return nil, false, err
	}
	records, err := b.collection(collection)
	if err != nil {
		return nil, false, err
	}
	data, ok := records[key]
	if !ok {
		return nil, false, nil
	}
	rec, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// GetAll returns records ordered by key.
func (b *backend) GetAll(ctx context.Context, collection string) ([]storage.Record, error) {
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	if err := b.check(); err != nil {
		return nil, err
	}
	records, err := b.collection(collection)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]storage.Record, 0, len(keys))
	for _, k := range keys {
		rec, err := decode(records[k])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (b *backend) Delete(ctx context.Context, collection, key string) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	if err := b.check(); err != nil {
		return err
	}
	records, err := b.collection(collection)
	if err != nil {
		return err
	}
	delete(records, key)
	return nil
}

func (b *backend) Clear(ctx context.Context, collection string) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	if err := b.check(); err != nil {
		return err
	}
	if _, err := b.collection(collection); err != nil {
		return err
	}
	b.store.collections[collection] = make(map[string][]byte)
	return nil
}

func (b *backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func decode(data []byte) (storage.Record, error) {
	var rec storage.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("memory: decode record: %w", err)
	}
	return rec, nil
}
