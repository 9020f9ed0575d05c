// Package profile manages member profile documents.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/domain"
)

const (
	DefaultName        = "Luxe Member"
	UnsetMeasurement   = "-"
	documentTimeLayout = time.RFC3339
)

var (
	ErrMissingUID = errors.New("profile uid is required")
	// ErrNotFound is returned by Update for a profile that does not exist.
	ErrNotFound = errors.New("profile not found")
)

// Repository stores raw profile documents.
type Repository interface {
	GetDoc(ctx context.Context, uid string) (map[string]any, bool, error)
	PutDoc(ctx context.Context, uid string, doc map[string]any) error
	DeleteDoc(ctx context.Context, uid string) error
}

type Service struct {
	repo   Repository
	now    func() time.Time
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, now: time.Now, logger: logger}
}

// Sync ensures a profile exists for uid. A new profile gets default name and
// unset measurements; an existing one only has its email refreshed.
func (s *Service) Sync(ctx context.Context, uid, email, name string) error {
	if uid == "" {
		return ErrMissingUID
	}
	doc, found, err := s.repo.GetDoc(ctx, uid)
	if err != nil {
		return err
	}

	now := s.now().UTC().Format(documentTimeLayout)
	if found {
		doc["email"] = email
		doc["updatedAt"] = now
		return s.repo.PutDoc(ctx, uid, doc)
	}

	if name == "" {
		name = DefaultName
	}
	p := domain.UserProfile{
		UID:      uid,
		Email:    email,
		Name:     name,
		PhotoURL: "",
		Measurements: &domain.Measurements{
			Height: UnsetMeasurement,
			Bust:   UnsetMeasurement,
			Waist:  UnsetMeasurement,
			Hips:   UnsetMeasurement,
		},
		CreatedAt: now,
	}
	doc, err = toDoc(p)
	if err != nil {
		return err
	}
	if err := s.repo.PutDoc(ctx, uid, doc); err != nil {
		return err
	}
	s.logger.Info("Created user profile", "uid", uid)
	return nil
}

// Get returns the profile, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, uid string) (*domain.UserProfile, error) {
	doc, found, err := s.repo.GetDoc(ctx, uid)
	if err != nil || !found {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	var p domain.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// Update shallow-merges patch into the stored document. Top-level fields in
// patch replace stored ones wholesale.
func (s *Service) Update(ctx context.Context, uid string, patch map[string]any) error {
	doc, found, err := s.repo.GetDoc(ctx, uid)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, uid)
	}
	for k, v := range patch {
		if k == "uid" {
			continue
		}
		doc[k] = v
	}
	doc["updatedAt"] = s.now().UTC().Format(documentTimeLayout)
	return s.repo.PutDoc(ctx, uid, doc)
}

func (s *Service) Delete(ctx context.Context, uid string) error {
	return s.repo.DeleteDoc(ctx, uid)
}

func toDoc(p domain.UserProfile) (map[string]any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return doc, nil
}
