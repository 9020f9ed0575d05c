package postgres

import (
	"context"
	"embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // "postgres" driver
	"github.com/pressly/goose/v3"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/metrics"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DefaultDriver is the database/sql driver used when none is configured.
const DefaultDriver = "pgx"

// Config holds PostgreSQL connection configuration.
type Config struct {
	URL string `yaml:"url"`
	// Driver is "pgx" (jackc/pgx stdlib) or "postgres" (lib/pq).
	Driver         string `yaml:"driver"`
	MaxConns       int    `yaml:"max_conns"`
	MinConns       int    `yaml:"min_conns"`
	SkipMigrations bool   `yaml:"skip_migrations"`
}

// DB wraps the PostgreSQL connection.
type DB struct {
	*sqlx.DB
}

// NewDB creates a new database connection.
func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DefaultDriver
	}

	db, err := sqlx.Open(driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set pool configuration
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	} else {
		db.SetMaxOpenConns(10)
	}

	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	} else {
		db.SetMaxIdleConns(2)
	}

	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate applies the embedded migrations.
func (db *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	// Goose needs the *sql.DB that sqlx wraps
	if err := goose.UpContext(ctx, db.DB.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}
	return nil
}

// Pool labels for DBConnectionPoolUsage.
const (
	PoolRecords  = "records"
	PoolProfiles = "profiles"
)

// StartMetricsCollector starts a background goroutine to collect DB metrics
// under the given pool label until ctx is done.
func (db *DB) StartMetricsCollector(ctx context.Context, pool string) {
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				db.samplePoolUsage(pool)
			}
		}
	}()
}

func (db *DB) samplePoolUsage(pool string) {
	stats := db.Stats()
	// MaxOpenConnections is 0 when unlimited
	if stats.MaxOpenConnections > 0 {
		usage := float64(stats.OpenConnections) / float64(stats.MaxOpenConnections) * 100
		metrics.DBConnectionPoolUsage.WithLabelValues(pool).Set(usage)
	}
}

// Health checks if the database is healthy.
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}
