package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/media"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/genai"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/imghost"
	redisclient "github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/redis"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage/memory"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage/postgres"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/styling/closet"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/styling/health"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/styling/planner"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/styling/profile"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/styling/settings"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/styling/stylist"
)

// ErrStylistDisabled is returned when no generative API key is configured.
var ErrStylistDisabled = errors.New("stylist disabled: genai.api_key is not set")

// App owns every long-lived component.
type App struct {
	cfg Config
	log *slog.Logger

	Store    *storage.Facade
	Closet   *closet.Service
	Settings *settings.Service
	Planner  *planner.Service
	Profiles *profile.Service

	stylist      *stylist.Service
	genaiClient  *genai.Client
	redisClient  *redisclient.Client
	profileDB    *postgres.DB
	healthMon    *health.Monitor
	healthServer *health.Server
}

// New creates an App with all dependencies initialized. Nothing here dials the
// primary store; the facade opens it on first use.
func New(ctx context.Context, cfg Config) (*App, error) {
	a := &App{cfg: cfg, log: slog.Default().With("component", "app")}

	// 1. Settings fallback
	var fallback storage.KV
	if cfg.Fallback.URL != "" {
		rc, err := redisclient.NewClient(cfg.Fallback)
		if err != nil {
			a.log.Warn("Redis fallback unavailable, using in-process fallback", "error", err)
			fallback = memory.NewKV()
		} else {
			a.redisClient = rc
			fallback = rc
			a.log.Info("Using Redis settings fallback")
		}
	} else {
		fallback = memory.NewKV()
	}

	// 2. Primary store
	var open storage.OpenFunc
	var profiles profile.Repository
	if cfg.Database.URL != "" {
		open = postgres.Opener(cfg.Database, slog.Default())

		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			a.log.Warn("Profile database unavailable, using in-process profiles", "error", err)
			profiles = memory.NewProfiles()
		} else {
			a.profileDB = db
			profiles = postgres.NewProfileRepo(db)
		}
		a.log.Info("Using PostgreSQL storage")
	} else {
		mem := memory.NewMemoryStorage()
		open = mem.Open
		profiles = memory.NewProfiles()
		a.log.Info("Using Memory storage")
	}

	a.Store = storage.NewFacade(storage.DefaultSchema(), open,
		storage.WithFallback(fallback),
		storage.WithPolicy(cfg.Storage),
	)

	// 3. Media services
	fetcher := media.NewFetcher(cfg.Media.ProxyURL, cfg.Media.FetchTimeout)
	uploader := imghost.NewUploader(cfg.ImageHost)

	if cfg.GenAI.APIKey != "" {
		client, err := genai.NewClient(cfg.GenAI)
		if err != nil {
			a.closeClients()
			return nil, fmt.Errorf("failed to init genai client: %w", err)
		}
		a.genaiClient = client
		a.stylist = stylist.NewService(client, cfg.GenAI.Retry, stylist.WithFetcher(fetcher))
	} else {
		a.log.Warn("No genai api key configured, stylist operations are disabled")
	}

	// 4. Domain services
	a.Closet = closet.NewService(a.Store, uploader, closet.WithFetcher(fetcher))
	a.Settings = settings.NewService(a.Store)
	a.Planner = planner.NewService(a.Store)
	a.Profiles = profile.NewService(profiles, slog.Default())

	// 5. Health
	var gen health.GenAIProbe
	if a.genaiClient != nil {
		gen = a.genaiClient
	}
	a.healthMon = health.NewMonitor(a.Store, gen)
	a.healthServer = health.NewServer(a.healthMon, cfg.Port)

	return a, nil
}

// Stylist returns the AI styling service.
func (a *App) Stylist() (*stylist.Service, error) {
	if a.stylist == nil {
		return nil, ErrStylistDisabled
	}
	return a.stylist, nil
}

// Health returns the current health report.
func (a *App) Health(ctx context.Context) health.HealthReport {
	return a.healthMon.CheckHealth(ctx)
}

// Start starts background services.
func (a *App) Start(ctx context.Context) error {
	// Start Health Server
	go func() {
		if err := a.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	// Start DB Metrics Collector
	if a.profileDB != nil {
		a.profileDB.StartMetricsCollector(ctx, postgres.PoolProfiles)
	}

	// Warm the primary store. Failure leaves the app in degraded mode.
	if err := a.Store.Ping(ctx); err != nil {
		a.log.Warn("Primary store unavailable at startup", "error", err, "strict", a.Store.Strict())
	}

	return nil
}

// Stop releases every resource. It is safe to call without Start.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping app...")

	if err := a.Store.Close(); err != nil {
		a.log.Warn("Failed to close store", "error", err)
	}
	a.closeClients()

	// Stop Health Server
	return a.healthServer.Stop(ctx)
}

func (a *App) closeClients() {
	if a.genaiClient != nil {
		_ = a.genaiClient.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.profileDB != nil {
		if err := a.profileDB.Close(); err != nil {
			a.log.Warn("Failed to close profile database", "error", err)
		}
	}
}
