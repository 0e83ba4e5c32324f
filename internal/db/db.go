// Package db opens the database/sql handle for the readings store. DuckDB
// is the default engine; SQLite (pure Go) is available for hosts without cgo.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
)

// ErrUnknownDriver is returned for a driver other than duckdb or sqlite.
var ErrUnknownDriver = errors.New("unknown database driver")

// Config holds database configuration. An empty DataDir opens an in-memory
// database.
type Config struct {
	Driver  string
	DataDir string
	DBName  string
}

// DSN returns the data source name for cfg, creating the engine directory
// under DataDir when needed.
func DSN(cfg Config) (string, error) {
	switch cfg.Driver {
	case DriverDuckDB, DriverSQLite:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if cfg.DataDir == "" {
		if cfg.Driver == DriverSQLite {
			return ":memory:", nil
		}
		return "", nil
	}

	name := cfg.DBName
	if name == "" {
		name = "irrigation"
	}
	dir := filepath.Join(cfg.DataDir, cfg.Driver)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s directory: %w", cfg.Driver, err)
	}
	ext := ".duckdb"
	if cfg.Driver == DriverSQLite {
		ext = ".db"
	}
	return filepath.Join(dir, name+ext), nil
}

// Open opens and pings the configured database.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverDuckDB
	}
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s at %q: %w", cfg.Driver, dsn, err)
	}

	if cfg.Driver == DriverSQLite {
		// A single connection keeps an in-memory database alive and
		// serializes writers.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		if err := sqlitePragmas(ctx, conn, dsn == ":memory:"); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return conn, nil
}

func sqlitePragmas(ctx context.Context, conn *sql.DB, memory bool) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
	if !memory {
		pragmas = append([]string{"PRAGMA journal_mode = WAL;"}, pragmas...)
	}
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("set %s: %w", p, err)
		}
	}
	return nil
}
