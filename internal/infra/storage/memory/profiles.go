package memory

import (
	"context"
	"encoding/json"
	"sync"
)

// Profiles keeps user profile documents keyed by uid.
type Profiles struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewProfiles() *Profiles {
	return &Profiles{docs: make(map[string][]byte)}
}

func (p *Profiles) GetDoc(ctx context.Context, uid string) (map[string]any, bool, error) {
	p.mu.RLock()
	raw, ok := p.docs[uid]
	p.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (p *Profiles) PutDoc(ctx context.Context, uid string, doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs[uid] = raw
	return nil
}

func (p *Profiles) DeleteDoc(ctx context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.docs, uid)
	return nil
}
