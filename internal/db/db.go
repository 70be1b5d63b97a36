// Package db opens SQLite databases used as snapshot containers.
package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/openmined/dirdiff/internal/utils"
)

// A snapshot database is written once and then only read, so durability on close matters more
// than write concurrency. WAL would leave -wal/-shm side files next to the output.
const defaultPragma = `
PRAGMA journal_mode=DELETE;
PRAGMA synchronous=FULL;
PRAGMA busy_timeout=5000;
PRAGMA temp_store=MEMORY;
`

type config struct {
	path     string
	readOnly bool
}

// Option configures Open.
type Option func(*config)

// WithPath sets the database file. ":memory:" opens an in-memory database.
func WithPath(path string) Option {
	return func(c *config) {
		c.path = path
	}
}

// WithReadOnly opens an existing file without creating it.
func WithReadOnly() Option {
	return func(c *config) {
		c.readOnly = true
	}
}

// Open connects to a SQLite database. A single connection is used: snapshots are written
// inside one transaction and read sequentially.
func Open(opts ...Option) (*sqlx.DB, error) {
	cfg := &config{
		path: ":memory:",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	dsn := ":memory:"
	if cfg.path != ":memory:" {
		mode := "rwc"
		if cfg.readOnly {
			mode = "ro"
		} else if err := utils.EnsureParent(cfg.path); err != nil {
			return nil, fmt.Errorf("ensure parent directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?mode=%s", cfg.path, mode)
	}

	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.path, err)
	}
	db.SetMaxOpenConns(1)

	if !cfg.readOnly {
		if _, err := db.Exec(defaultPragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragmas: %w", err)
		}
	}

	return db, nil
}
