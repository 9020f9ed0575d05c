package config

import (
	"time"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/genai"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/imghost"
	redisclient "github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/redis"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Logging   LoggingConfig      `yaml:"logging"`
	GenAI     genai.Config       `yaml:"genai"`
	ImageHost imghost.Config     `yaml:"image_host"`
	Media     MediaConfig        `yaml:"media"`
	Database  postgres.Config    `yaml:"database"`
	Fallback  redisclient.Config `yaml:"fallback"`
	Storage   storage.Policy     `yaml:"storage"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// MediaConfig controls how remote garment images are downloaded.
type MediaConfig struct {
	ProxyURL     string        `yaml:"proxy_url"` // empty = direct fetch
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}
