package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/config"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/domain"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/styling/health"
)

func TestApp_Lifecycle(t *testing.T) {
	cfg := FromAppConfig(config.Default())
	cfg.Port = 0 // Random port

	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if got := app.Store.State(); got != storage.StateReady {
		t.Errorf("store state = %s, want ready", got)
	}

	if err := app.Settings.SetLastScreen(ctx, "closet"); err != nil {
		t.Fatalf("SetLastScreen: %v", err)
	}
	screen, err := app.Settings.LastScreen(ctx)
	if err != nil || screen != "closet" {
		t.Errorf("LastScreen = %q, %v", screen, err)
	}

	if _, err := app.Planner.SaveEvent(ctx, domain.CalendarEvent{Title: "Gala"}); err != nil {
		t.Errorf("SaveEvent: %v", err)
	}

	if report := app.Health(ctx); report.SystemStatus != health.StatusHealthy {
		t.Errorf("health = %s, want healthy", report.SystemStatus)
	}

	if err := app.Stop(ctx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestApp_StylistDisabledWithoutKey(t *testing.T) {
	app, err := New(context.Background(), FromAppConfig(config.Default()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer app.Stop(context.Background())

	if _, err := app.Stylist(); !errors.Is(err, ErrStylistDisabled) {
		t.Errorf("expected ErrStylistDisabled, got %v", err)
	}
}

func TestApp_StylistEnabledWithKey(t *testing.T) {
	cfg := FromAppConfig(config.Default())
	cfg.GenAI.APIKey = "test-key"

	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer app.Stop(context.Background())

	if _, err := app.Stylist(); err != nil {
		t.Errorf("Stylist: %v", err)
	}
	if _, ok := app.Health(context.Background()).Components["genai"]; !ok {
		t.Error("genai component missing from health report")
	}
}
