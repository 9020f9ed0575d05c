package planner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/domain"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage/memory"
)

func newService() *Service {
	mem := memory.NewMemoryStorage()
	s := NewService(storage.NewFacade(storage.DefaultSchema(), mem.Open))
	s.now = func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestSaveEvent(t *testing.T) {
	s := newService()
	ctx := context.Background()

	ev, err := s.SaveEvent(ctx, domain.CalendarEvent{Title: "Fitting"})
	if err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}
	if !strings.HasPrefix(ev.ID, "evt-") {
		t.Errorf("expected generated id, got %s", ev.ID)
	}
	if ev.Date != "2026-10-14" || ev.Type != domain.EventTypeEvent {
		t.Errorf("unexpected defaults %+v", ev)
	}

	if _, err := s.SaveEvent(ctx, domain.CalendarEvent{}); err != ErrMissingTitle {
		t.Errorf("expected ErrMissingTitle, got %v", err)
	}
}

func TestEventsOrdered(t *testing.T) {
	s := newService()
	ctx := context.Background()

	_, _ = s.SaveEvent(ctx, domain.CalendarEvent{ID: "a", Title: "Gala", Date: "2026-12-01", Time: "19:00"})
	_, _ = s.SaveEvent(ctx, domain.CalendarEvent{ID: "b", Title: "Brunch", Date: "2026-11-02", Time: "11:00"})
	_, _ = s.SaveEvent(ctx, domain.CalendarEvent{ID: "c", Title: "Skincare", Date: "2026-11-02", Time: "08:00", Type: domain.EventTypeRoutine})

	events, err := s.Events(ctx)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	var ids []string
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	if strings.Join(ids, ",") != "c,b,a" {
		t.Errorf("unexpected order %v", ids)
	}

	if err := s.DeleteEvent(ctx, "b"); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	events, _ = s.Events(ctx)
	if len(events) != 2 {
		t.Errorf("expected 2 events, got %d", len(events))
	}
}

func TestToggleStep(t *testing.T) {
	s := newService()
	ctx := context.Background()

	p, err := s.ToggleStep(ctx, "30-day-glow", "hydrate")
	if err != nil {
		t.Fatalf("ToggleStep: %v", err)
	}
	if len(p.CompletedSteps) != 1 || p.LastCheckIn != "2026-10-14T09:00:00Z" {
		t.Errorf("unexpected progress %+v", p)
	}

	_, _ = s.ToggleStep(ctx, "30-day-glow", "stretch")
	p, _ = s.ToggleStep(ctx, "30-day-glow", "hydrate")
	if len(p.CompletedSteps) != 1 || p.CompletedSteps[0] != "stretch" {
		t.Errorf("expected only stretch, got %v", p.CompletedSteps)
	}

	all, err := s.Progress(ctx)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if _, ok := all["30-day-glow"]; !ok || len(all) != 1 {
		t.Errorf("unexpected progress map %v", all)
	}
}
