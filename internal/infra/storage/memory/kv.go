package memory

import (
	"context"
	"sync"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
)

// KV is an in-process flat key/value store.
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
	err  error
}

var _ storage.KV = (*KV)(nil)

func NewKV() *KV {
	return &KV{data: make(map[string][]byte)}
}

func (kv *KV) Set(ctx context.Context, key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.err != nil {
		return kv.err
	}
	kv.data[key] = append([]byte(nil), value...)
	return nil
}

func (kv *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	if kv.err != nil {
		return nil, false, kv.err
	}
	v, ok := kv.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Len returns the number of stored keys.
func (kv *KV) Len() int {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	return len(kv.data)
}

// Fail makes every call return err until Fail(nil).
func (kv *KV) Fail(err error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.err = err
}
