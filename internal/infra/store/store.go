// Package store selects a record-store backend from configuration.
package store

import (
	"context"
	"fmt"
	"os"

	"isolateledger/internal/infra/store/memory"
	"isolateledger/internal/infra/store/postgres"
	"isolateledger/internal/infra/store/sqlite"
	"isolateledger/pkg/domain"
)

// Config names a backend and its location.
type Config struct {
	// Driver is memory, sqlite or postgres. Empty means memory.
	Driver string
	// SQLitePath is the database file for the sqlite driver.
	SQLitePath string
	// PostgresDSN is the connection string for the postgres driver.
	PostgresDSN string
}

// FromEnv reads the backend selection from the environment:
//
//	ISOLATELEDGER_STORAGE_DRIVER: memory|sqlite|postgres (default memory)
//	ISOLATELEDGER_SQLITE_PATH:    sqlite database file
//	ISOLATELEDGER_POSTGRES_DSN:   postgres connection string
func FromEnv() Config {
	return Config{
		Driver:      os.Getenv("ISOLATELEDGER_STORAGE_DRIVER"),
		SQLitePath:  os.Getenv("ISOLATELEDGER_SQLITE_PATH"),
		PostgresDSN: os.Getenv("ISOLATELEDGER_POSTGRES_DSN"),
	}
}

// Open constructs the configured record store. The returned close func is
// a no-op for the memory driver.
func Open(ctx context.Context, cfg Config) (domain.RecordStore, func() error, error) {
	switch cfg.Driver {
	case "", "memory":
		return memory.New(), func() error { return nil }, nil
	case "sqlite":
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "postgres":
		s, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}
