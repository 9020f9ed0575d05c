package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/retry"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, expanding environment variables first.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *AppConfig {
	var cfg AppConfig
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	def := retry.DefaultConfig()
	r := &cfg.GenAI.Retry
	if r.MaxAttempts == 0 {
		*r = def
	}
	if r.BackoffMultiple == 0 {
		r.BackoffMultiple = def.BackoffMultiple
	}

	if cfg.ImageHost.Timeout == 0 {
		cfg.ImageHost.Timeout = 30 * time.Second
	}
	if cfg.Media.FetchTimeout == 0 {
		cfg.Media.FetchTimeout = 30 * time.Second
	}
}
