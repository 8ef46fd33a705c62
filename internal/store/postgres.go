package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS validation_runs (
	id              UUID PRIMARY KEY,
	file_name       TEXT NOT NULL,
	dictionary_name TEXT NOT NULL,
	format          TEXT NOT NULL,
	row_count       INTEGER NOT NULL,
	errors          TEXT[] NOT NULL,
	warnings        TEXT[] NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	duration_ns     BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS validation_runs_created_at_idx ON validation_runs (created_at DESC);`

const runColumns = `id, file_name, dictionary_name, format, row_count, errors, warnings, created_at, duration_ns`

// PostgresStore persists runs in the validation_runs table.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore creates a store over db. Call Migrate once before use.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the runs table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createRunsTable); err != nil {
		return fmt.Errorf("migrate validation_runs: %w", err)
	}
	return nil
}

// Save implements RunStore. Saving an existing ID replaces its findings.
func (s *PostgresStore) Save(ctx context.Context, run Run) error {
	query := `INSERT INTO validation_runs (` + runColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	errors = EXCLUDED.errors,
	warnings = EXCLUDED.warnings,
	row_count = EXCLUDED.row_count,
	duration_ns = EXCLUDED.duration_ns`

	_, err := s.db.Exec(ctx, query, runArgs(run)...)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// Get implements RunStore.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	query := `SELECT ` + runColumns + ` FROM validation_runs WHERE id = $1`

	run, err := scanRun(s.db.QueryRow(ctx, query, toPgUUID(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// List implements RunStore.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM validation_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.Query(ctx, query, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var result []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		result = append(result, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return result, nil
}

// runArgs returns the column values in runColumns order.
func runArgs(run Run) []any {
	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}
	warns := run.Warnings
	if warns == nil {
		warns = []string{}
	}
	return []any{
		toPgUUID(run.ID),
		run.FileName,
		run.DictionaryName,
		run.Format,
		run.Rows,
		errs,
		warns,
		pgtype.Timestamptz{Time: run.CreatedAt, Valid: true},
		int64(run.Duration),
	}
}

func scanRun(row pgx.Row) (Run, error) {
	var (
		id        pgtype.UUID
		run       Run
		createdAt pgtype.Timestamptz
		durNs     int64
	)
	err := row.Scan(
		&id,
		&run.FileName,
		&run.DictionaryName,
		&run.Format,
		&run.Rows,
		&run.Errors,
		&run.Warnings,
		&createdAt,
		&durNs,
	)
	if err != nil {
		return Run{}, err
	}
	run.ID = uuid.UUID(id.Bytes)
	run.CreatedAt = createdAt.Time
	run.Duration = time.Duration(durNs)
	return run, nil
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}
