// Package settings stores user settings and personalization results as
// {key, value} records.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/domain"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
)

// Well-known keys.
const (
	KeyLastScreen   = "last_screen"
	KeyStyleProfile = "style_profile"
	KeyColorTheory  = "color_theory"
)

// StyleProfile is the result of the style quiz.
type StyleProfile struct {
	StyleType string `json:"styleType"`
	SavedAt   string `json:"savedAt"` // YYYY-MM-DD
}

// Service reads and writes the settings and personalization collections.
type Service struct {
	store storage.Store
}

func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// Set stores a setting value.
func (s *Service) Set(ctx context.Context, key string, value any) error {
	return s.put(ctx, storage.CollSettings, key, value)
}

// Get decodes a setting into dst. It reports false when the key is unset.
func (s *Service) Get(ctx context.Context, key string, dst any) (bool, error) {
	return s.get(ctx, storage.CollSettings, key, dst)
}

// All returns every setting ordered by key. Under a degraded store the
// fallback tier cannot enumerate, so the result may be empty.
func (s *Service) All(ctx context.Context) ([]domain.Setting, error) {
	items, err := storage.GetAllValues[domain.Setting](ctx, s.store, storage.CollSettings)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return items, nil
}

// Reset removes every setting.
func (s *Service) Reset(ctx context.Context) error {
	return s.store.Clear(ctx, storage.CollSettings)
}

// SavePersonal stores a personalization result.
func (s *Service) SavePersonal(ctx context.Context, key string, value any) error {
	return s.put(ctx, storage.CollPersonalization, key, value)
}

// LoadPersonal decodes a personalization result into dst.
func (s *Service) LoadPersonal(ctx context.Context, key string, dst any) (bool, error) {
	return s.get(ctx, storage.CollPersonalization, key, dst)
}

// SaveStyleProfile stores the style quiz result.
func (s *Service) SaveStyleProfile(ctx context.Context, p StyleProfile) error {
	return s.SavePersonal(ctx, KeyStyleProfile, p)
}

// SaveColorTheory stores a color analysis.
func (s *Service) SaveColorTheory(ctx context.Context, a domain.ColorAnalysis) error {
	return s.SavePersonal(ctx, KeyColorTheory, a)
}

// LastScreen returns the last visited screen, "" when unknown.
func (s *Service) LastScreen(ctx context.Context) (string, error) {
	var screen string
	if _, err := s.Get(ctx, KeyLastScreen, &screen); err != nil {
		return "", err
	}
	return screen, nil
}

func (s *Service) SetLastScreen(ctx context.Context, screen string) error {
	return s.Set(ctx, KeyLastScreen, screen)
}

func (s *Service) put(ctx context.Context, collection, key string, value any) error {
	// Round-trip through JSON so structs are stored as plain objects.
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.store.Put(ctx, collection, storage.Record{"key": key, "value": v})
}

func (s *Service) get(ctx context.Context, collection, key string, dst any) (bool, error) {
	rec, found, err := s.store.Get(ctx, collection, key)
	if err != nil || !found {
		return false, err
	}
	data, err := json.Marshal(rec["value"])
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	if dst == nil {
		return true, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
