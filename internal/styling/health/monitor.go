package health

import (
	"context"
	"sync"
	"time"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/genai"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
)

// StorageProbe exposes the persistence facade's connection state.
type StorageProbe interface {
	Ping(ctx context.Context) error
	State() storage.ConnState
	Strict() bool
}

// GenAIProbe exposes the generative client's call statistics.
type GenAIProbe interface {
	GetHealth() genai.HealthStatus
}

// Monitor aggregates health status from various system components.
type Monitor struct {
	store      StorageProbe
	gen        GenAIProbe
	interval   time.Duration
	lastCheck  time.Time
	lastReport *HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor. gen may be nil when no API key is configured.
func NewMonitor(store StorageProbe, gen GenAIProbe) *Monitor {
	return &Monitor{
		store:    store,
		gen:      gen,
		interval: 10 * time.Second,
	}
}

// CheckHealth performs a health check of every component.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Rate limit checks to avoid reconnect storms against the store
	if m.lastReport != nil && time.Since(m.lastCheck) < m.interval {
		return *m.lastReport
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth),
	}

	if m.store != nil {
		c := ComponentHealth{Name: "storage", Status: StatusHealthy}
		if err := m.store.Ping(ctx); err != nil {
			c.Error = err.Error()
			// Non-strict stores keep serving in degraded mode
			if m.store.Strict() {
				c.Status = StatusCritical
			} else {
				c.Status = StatusDegraded
			}
		}
		c.State = m.store.State().String()
		report.Components[c.Name] = c
	}

	if m.gen != nil {
		h := m.gen.GetHealth()
		c := ComponentHealth{
			Name:      "genai",
			Status:    StatusHealthy,
			ErrorRate: h.ErrorRate,
			Throttled: h.Throttled,
		}
		if !h.Available {
			c.Status = StatusDegraded
		}
		report.Components[c.Name] = c
	}

	for _, c := range report.Components {
		report.SystemStatus = worse(report.SystemStatus, c.Status)
	}

	m.lastCheck = time.Now()
	m.lastReport = &report
	return report
}
