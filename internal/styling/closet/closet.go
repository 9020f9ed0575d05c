// Package closet archives looks: images are uploaded to the image host and
// their metadata persisted in the savedLooks collection.
package closet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/domain"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/media"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
)

var (
	// ErrDuplicateLook is returned when the uploaded image is already archived.
	ErrDuplicateLook = errors.New("look is already in the closet")
	// ErrMissingImage is returned when a draft has no image.
	ErrMissingImage = errors.New("look has no image")
)

// Uploader publishes an image and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, image string) (string, error)
}

// Fetcher downloads a remote image as base64.
type Fetcher interface {
	FetchBase64(ctx context.Context, url string) (string, error)
}

// Service manages saved looks.
type Service struct {
	store    storage.Store
	uploader Uploader
	fetcher  Fetcher
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Service)

func WithFetcher(f Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a closet service.
func NewService(store storage.Store, uploader Uploader, opts ...Option) *Service {
	s := &Service{
		store:    store,
		uploader: uploader,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save uploads the draft image and archives the look.
func (s *Service) Save(ctx context.Context, draft domain.LookDraft) (domain.SavedLook, error) {
	img := draft.Image
	if img == "" {
		return domain.SavedLook{}, ErrMissingImage
	}

	if media.IsRemote(img) {
		if s.fetcher == nil {
			return domain.SavedLook{}, fmt.Errorf("fetch %s: no fetcher configured", img)
		}
		b64, err := s.fetcher.FetchBase64(ctx, img)
		if err != nil {
			return domain.SavedLook{}, fmt.Errorf("fetch look image: %w", err)
		}
		img = b64
	}

	url, err := s.uploader.Upload(ctx, img)
	if err != nil {
		return domain.SavedLook{}, fmt.Errorf("upload look image: %w", err)
	}

	existing, err := s.List(ctx)
	if err != nil {
		return domain.SavedLook{}, err
	}
	ids := make(map[string]bool, len(existing))
	for _, l := range existing {
		if l.ImageURL == url {
			return domain.SavedLook{}, fmt.Errorf("%w: %s", ErrDuplicateLook, l.ID)
		}
		ids[l.ID] = true
	}

	savedAt := s.now().UnixMilli()
	id := draft.ID
	if id == "" {
		id = fmt.Sprintf("look-%d", savedAt)
		if ids[id] {
			id = id + "-" + uuid.NewString()[:8]
		}
	}

	folder := draft.Folder
	if folder == "" {
		folder = domain.FolderUncategorized
	}

	look := domain.SavedLook{
		ID:           id,
		ImageURL:     url,
		ThumbnailURL: url,
		SavedAt:      savedAt,
		Source:       domain.SourceForFolder(draft.Folder),
		Items:        draft.Items,
		Folder:       folder,
		IsFavorite:   draft.IsFavorite,
	}
	if look.Items == nil {
		look.Items = []string{}
	}

	if err := storage.PutValue(ctx, s.store, storage.CollSavedLooks, look); err != nil {
		return domain.SavedLook{}, err
	}
	s.logger.Info("Look archived", "id", look.ID, "folder", look.Folder, "source", look.Source)
	return look, nil
}

// List returns saved looks, newest first.
func (s *Service) List(ctx context.Context) ([]domain.SavedLook, error) {
	looks, err := storage.GetAllValues[domain.SavedLook](ctx, s.store, storage.CollSavedLooks)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(looks, func(i, j int) bool {
		return looks[i].SavedAt > looks[j].SavedAt
	})
	return looks, nil
}

// Get returns one look.
func (s *Service) Get(ctx context.Context, id string) (domain.SavedLook, bool, error) {
	return storage.GetValue[domain.SavedLook](ctx, s.store, storage.CollSavedLooks, id)
}

// Move changes a look's folder. Missing looks are ignored.
func (s *Service) Move(ctx context.Context, id, folder string) error {
	return s.update(ctx, id, func(rec storage.Record) {
		rec["folder"] = folder
	})
}

// ToggleFavorite flips a look's favorite flag and returns the new value.
// Missing looks are ignored and report false.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	var state bool
	err := s.update(ctx, id, func(rec storage.Record) {
		cur, _ := rec["isFavorite"].(bool)
		state = !cur
		rec["isFavorite"] = state
	})
	return state, err
}

// Delete removes a look.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, storage.CollSavedLooks, id)
}

// Clear removes every saved look.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx, storage.CollSavedLooks)
}

// update is a read-modify-write that keeps fields it does not know about.
func (s *Service) update(ctx context.Context, id string, mutate func(storage.Record)) error {
	rec, found, err := s.store.Get(ctx, storage.CollSavedLooks, id)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Debug("Look not found", "id", id)
		return nil
	}
	mutate(rec)
	return s.store.Put(ctx, storage.CollSavedLooks, rec)
}
