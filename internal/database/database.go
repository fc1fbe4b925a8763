package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"slotmarket/internal/config"
	"slotmarket/internal/domain"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var (
	ErrBuildQuery = errors.New("failed to build query")
	ErrExecQuery  = errors.New("failed to execute query")
	ErrScanRow    = errors.New("failed to scan row")
)

// DB is a SQL-backed marketplace store. It serves the same reads and
// mutations as the remote backend, for local and offline use.
type DB struct {
	db      *sql.DB
	driver  string
	builder squirrel.StatementBuilderType
	logger  *zerolog.Logger
}

var _ domain.Backend = (*DB)(nil)

// Open connects using the configured driver and creates the schema.
func Open(cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return open(config.DriverPostgres, cfg.Postgres.DSN(), cfg.Postgres.MaxConnections, logger)
	case config.DriverSQLite, "":
		return NewDB(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewDB opens (and creates if needed) a SQLite database at path.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return open(config.DriverSQLite, path+"?_busy_timeout=5000", 1, logger)
}

func open(driver, dsn string, maxConns int, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		db:      sqlDB,
		driver:  driver,
		builder: statementBuilder(driver),
		logger:  logger,
	}

	if err := db.createTables(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("driver", driver).Msg("database initialized")
	return db, nil
}

func statementBuilder(driver string) squirrel.StatementBuilderType {
	var placeholder squirrel.PlaceholderFormat = squirrel.Question
	if driver == config.DriverPostgres {
		placeholder = squirrel.Dollar
	}
	return squirrel.StatementBuilder.PlaceholderFormat(placeholder)
}

func (db *DB) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS professionals (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL DEFAULT '',
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            profession_id TEXT NOT NULL DEFAULT '',
            profession TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL DEFAULT '',
            state TEXT NOT NULL DEFAULT '',
            country TEXT NOT NULL DEFAULT '',
            hourly_price DOUBLE PRECISION NOT NULL DEFAULT 0,
            bio TEXT NOT NULL DEFAULT '',
            experience TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS professional_services (
            professional_id TEXT NOT NULL,
            service_id TEXT NOT NULL,
            name TEXT NOT NULL DEFAULT '',
            price DOUBLE PRECISION NOT NULL DEFAULT 0,
            PRIMARY KEY (professional_id, service_id)
        )`,
		`CREATE TABLE IF NOT EXISTS identities (
            id TEXT PRIMARY KEY,
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL DEFAULT '',
            country TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS appointments (
            id TEXT PRIMARY KEY,
            professional_id TEXT NOT NULL,
            client_id TEXT NOT NULL DEFAULT '',
            date TEXT NOT NULL,
            time TEXT NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            rating_value TEXT NOT NULL DEFAULT '',
            service_type_id TEXT,
            payment_id TEXT NOT NULL DEFAULT ''
        )`,
		// one review per (client, professional)
		`CREATE TABLE IF NOT EXISTS reviews (
            id TEXT PRIMARY KEY,
            professional_id TEXT NOT NULL,
            client_id TEXT NOT NULL,
            rating INTEGER NOT NULL,
            comment TEXT NOT NULL,
            created_at TIMESTAMP NOT NULL,
            CONSTRAINT reviews_client_professional_key UNIQUE (client_id, professional_id)
        )`,

		`CREATE INDEX IF NOT EXISTS idx_professionals_user_id ON professionals(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_professional_id ON appointments(professional_id)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_client_id ON appointments(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_professional_id ON reviews(professional_id)`,
	}

	for _, query := range queries {
		if _, err := db.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) PingContext(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.db.Close()
}

const reviewPairConstraint = "reviews_client_professional_key"

// uniqueViolation reports whether err is a primary key or unique constraint
// failure and, when it is, whether the primary key was the one violated.
func uniqueViolation(err error) (violated, primaryKey bool, detail string) {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey:
			return true, true, sqliteErr.Error()
		case sqlite3.ErrConstraintUnique:
			return true, false, sqliteErr.Error()
		}
		return false, false, ""
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true, strings.HasSuffix(pqErr.Constraint, "_pkey"), pqErr.Constraint
	}
	return false, false, ""
}

// isReviewPairViolation matches the one-review-per-pair rule. Postgres names
// the constraint; sqlite lists the columns.
func isReviewPairViolation(err error) bool {
	violated, primaryKey, detail := uniqueViolation(err)
	if !violated || primaryKey {
		return false
	}
	return detail == reviewPairConstraint ||
		strings.Contains(detail, "reviews.client_id, reviews.professional_id")
}
