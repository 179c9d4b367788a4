// Package database opens the configured backend for the import engine.
package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/csv2db/internal/config"
	"github.com/JonMunkholm/csv2db/internal/core"
	"github.com/JonMunkholm/csv2db/internal/database/postgres"
	"github.com/JonMunkholm/csv2db/internal/database/sqlite"
)

// Open connects to the database selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (core.Database, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverPostgres, "":
		db, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
