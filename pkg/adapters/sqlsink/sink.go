// Package sqlsink persists captured contacts through database/sql.
//
// Two drivers are supported: "postgres" (lib/pq) and "sqlite3" (mattn/go-sqlite3).
// The schema is created on open.
package sqlsink

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/writ/pkg/domain"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

//go:embed migrations_postgres.sql
var postgresMigrations string

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Sink implements ports.ContactSink. Insert-only: nothing reads contacts back.
type Sink struct {
	db     *sql.DB
	insert string
	logger *slog.Logger
}

type Option func(*Sink)

// WithLogger sets the logger used for insert failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = l
	}
}

// Open connects to dsn with the given driver and applies the schema.
// For sqlite3 the parent directory of a file dsn is created.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Sink, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	var migrations, insert string
	switch driver {
	case DriverPostgres:
		migrations = postgresMigrations
		insert = `INSERT INTO contacts (full_name, email, document_type, user_agent, created_at) VALUES ($1, $2, $3, $4, $5)`
	case DriverSQLite:
		migrations = sqliteMigrations
		insert = `INSERT INTO contacts (full_name, email, document_type, user_agent, created_at) VALUES (?, ?, ?, ?, ?)`
		if !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported contact driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One connection keeps an in-memory database alive and serializes writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return New(db, insert, opts...), nil
}

// New wraps an open database. insert must take full_name, email, document_type,
// user_agent and created_at in that order.
func New(db *sql.DB, insert string, opts ...Option) *Sink {
	s := &Sink{
		db:     db,
		insert: insert,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert stores one contact row.
func (s *Sink) Insert(ctx context.Context, c domain.Contact) error {
	_, err := s.db.ExecContext(ctx, s.insert, c.FullName, c.Email, c.DocumentType, c.UserAgent, c.CreatedAt.UTC())
	if err != nil {
		s.logger.Error("contact insert failed", "err", err, "document_type", c.DocumentType)
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// DB exposes the handle for callers that own its lifecycle.
func (s *Sink) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Sink) Close() error {
	return s.db.Close()
}
