package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/neexbeast/skycast/internal/weather"
)

// ErrCorrupt is returned by Load when persisted data exists but cannot be
// decoded. Callers choose whether to reset to an empty list.
var ErrCorrupt = errors.New("saved places are corrupt")

// Store persists the single ordered list of saved places. Save replaces the
// whole list.
type Store interface {
	Load(ctx context.Context) ([]weather.Place, error)
	Save(ctx context.Context, places []weather.Place) error
	Ping(ctx context.Context) error
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend       Backend
	FilePath      string
	SQLitePath    string
	DatabaseURL   string
	MigrationsDir string
	RedisURL      string
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(cfg.FilePath), nil
	case BackendSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case BackendPostgres:
		pool, err := Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		return NewPostgresStore(pool), nil
	case BackendRedis:
		client, err := ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func corrupt(err error) error {
	return fmt.Errorf("%w: %v", ErrCorrupt, err)
}
