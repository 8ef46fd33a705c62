// Package store persists validation runs.
//
// Two implementations of [RunStore] are provided: [MemoryStore] for
// development and tests, and [PostgresStore] backed by pgx.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("validation run not found")

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Run is the persisted outcome of validating one data file.
type Run struct {
	ID             uuid.UUID     `json:"id"`
	FileName       string        `json:"fileName"`
	DictionaryName string        `json:"dictionaryName"`
	Format         string        `json:"format"`
	Rows           int           `json:"rows"`
	Errors         []string      `json:"errors"`
	Warnings       []string      `json:"warnings"`
	CreatedAt      time.Time     `json:"createdAt"`
	Duration       time.Duration `json:"durationNs"`
}

// Passed reports whether the run recorded no errors.
func (r Run) Passed() bool {
	return len(r.Errors) == 0
}

// RunStore saves and retrieves validation runs.
type RunStore interface {
	Save(ctx context.Context, run Run) error
	Get(ctx context.Context, id uuid.UUID) (Run, error)
	// List returns the most recent runs first.
	List(ctx context.Context, limit int) ([]Run, error)
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}
