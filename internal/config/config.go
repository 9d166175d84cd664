package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/neexbeast/skycast/internal/session"
	"github.com/neexbeast/skycast/internal/storage"
)

var validate = validator.New()

// Config is the process configuration read from the environment.
type Config struct {
	APIKey   string `validate:"required"`
	BaseURL  string `validate:"omitempty,url"`
	APIToken string `validate:"required"`
	Port     string `validate:"required,numeric"`

	StoreBackend  string `validate:"oneof=file sqlite postgres redis"`
	PlacesFile    string `validate:"required_if=StoreBackend file"`
	SQLitePath    string `validate:"required_if=StoreBackend sqlite"`
	DatabaseURL   string `validate:"required_if=StoreBackend postgres"`
	RedisURL      string `validate:"required_if=StoreBackend redis"`
	MigrationsDir string

	SearchDebounce       time.Duration `validate:"gte=0"`
	RefreshConcurrency   int           `validate:"gte=0"`
	DiscardStaleSearches bool
}

// Load reads .env when present and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	cfg := &Config{
		APIKey:        os.Getenv("WWO_API_KEY"),
		BaseURL:       os.Getenv("WWO_BASE_URL"),
		APIToken:      os.Getenv("API_TOKEN"),
		Port:          getEnv("PORT", "8080"),
		StoreBackend:  getEnv("STORE_BACKEND", string(storage.BackendFile)),
		PlacesFile:    getEnv("PLACES_FILE", storage.DefaultPlacesFile),
		SQLitePath:    os.Getenv("SQLITE_PATH"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
	}

	var err error
	if cfg.SearchDebounce, err = getEnvDuration("SEARCH_DEBOUNCE", session.DefaultDebounce); err != nil {
		return nil, err
	}
	if cfg.RefreshConcurrency, err = getEnvInt("REFRESH_CONCURRENCY", 0); err != nil {
		return nil, err
	}
	if cfg.DiscardStaleSearches, err = getEnvBool("DISCARD_STALE_SEARCHES", false); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Storage returns the store settings.
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Backend:       storage.Backend(c.StoreBackend),
		FilePath:      c.PlacesFile,
		SQLitePath:    c.SQLitePath,
		DatabaseURL:   c.DatabaseURL,
		MigrationsDir: c.MigrationsDir,
		RedisURL:      c.RedisURL,
	}
}

// Session returns the session tuning.
func (c *Config) Session() session.Config {
	return session.Config{
		Debounce:             c.SearchDebounce,
		RefreshLimit:         c.RefreshConcurrency,
		DiscardStaleSearches: c.DiscardStaleSearches,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
