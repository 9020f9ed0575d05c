// Package planner keeps the style calendar and glow-up challenge progress.
package planner

import (
	"context"
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/domain"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
)

var ErrMissingTitle = errors.New("event title is required")

type Service struct {
	store storage.Store
	now   func() time.Time
}

func NewService(store storage.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// SaveEvent creates or replaces a calendar event. An empty ID is generated.
func (s *Service) SaveEvent(ctx context.Context, ev domain.CalendarEvent) (domain.CalendarEvent, error) {
	if ev.Title == "" {
		return domain.CalendarEvent{}, ErrMissingTitle
	}
	if ev.ID == "" {
		ev.ID = "evt-" + uuid.NewString()
	}
	if ev.Type == "" {
		ev.Type = domain.EventTypeEvent
	}
	if ev.Date == "" {
		ev.Date = s.now().Format(time.DateOnly)
	}
	if err := storage.PutValue(ctx, s.store, storage.CollCalendar, ev); err != nil {
		return domain.CalendarEvent{}, err
	}
	return ev, nil
}

// Events returns calendar events ordered by date and time.
func (s *Service) Events(ctx context.Context) ([]domain.CalendarEvent, error) {
	events, err := storage.GetAllValues[domain.CalendarEvent](ctx, s.store, storage.CollCalendar)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Time < events[j].Time
	})
	return events, nil
}

func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	return s.store.Delete(ctx, storage.CollCalendar, id)
}

// ToggleStep marks a challenge step done, or undone when it already was.
func (s *Service) ToggleStep(ctx context.Context, challengeID, step string) (domain.ChallengeProgress, error) {
	cur, found, err := storage.GetValue[domain.ChallengeProgress](ctx, s.store, storage.CollGlowUp, challengeID)
	if err != nil {
		return domain.ChallengeProgress{}, err
	}
	if !found {
		cur = domain.ChallengeProgress{ID: challengeID}
	}

	if i := slices.Index(cur.CompletedSteps, step); i >= 0 {
		cur.CompletedSteps = slices.Delete(cur.CompletedSteps, i, i+1)
	} else {
		cur.CompletedSteps = append(cur.CompletedSteps, step)
	}
	if cur.CompletedSteps == nil {
		cur.CompletedSteps = []string{}
	}
	cur.LastCheckIn = s.now().UTC().Format(time.RFC3339)

	if err := storage.PutValue(ctx, s.store, storage.CollGlowUp, cur); err != nil {
		return domain.ChallengeProgress{}, err
	}
	return cur, nil
}

// Progress returns challenge progress keyed by challenge id.
func (s *Service) Progress(ctx context.Context) (map[string]domain.ChallengeProgress, error) {
	all, err := storage.GetAllValues[domain.ChallengeProgress](ctx, s.store, storage.CollGlowUp)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.ChallengeProgress, len(all))
	for _, p := range all {
		out[p.ID] = p
	}
	return out, nil
}
