// Package control wires configuration into the running application.
package control

import (
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/config"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/genai"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/imghost"
	redisclient "github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/redis"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage/postgres"
)

// Config holds the application configuration.
type Config struct {
	Port      int
	GenAI     genai.Config
	ImageHost imghost.Config
	Media     config.MediaConfig
	Database  postgres.Config    // empty URL = in-process storage
	Fallback  redisclient.Config // empty URL = in-process settings fallback
	Storage   storage.Policy
}

// FromAppConfig transforms the file configuration into application settings.
func FromAppConfig(cfg *config.AppConfig) Config {
	return Config{
		Port:      cfg.Server.Port,
		GenAI:     cfg.GenAI,
		ImageHost: cfg.ImageHost,
		Media:     cfg.Media,
		Database:  cfg.Database,
		Fallback:  cfg.Fallback,
		Storage:   cfg.Storage,
	}
}
