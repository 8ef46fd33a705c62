package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun(name string, created time.Time) Run {
	return Run{
		ID:             uuid.New(),
		FileName:       name,
		DictionaryName: "dictionary.csv",
		Format:         "csv",
		Rows:           3,
		Errors:         []string{"The 2nd column has a blank header - please set the header and define it in the data dictionary."},
		Warnings:       []string{},
		CreatedAt:      created,
		Duration:       1500 * time.Microsecond,
	}
}

// ============================================================================
// MemoryStore Tests
// ============================================================================

func TestMemoryStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	run := sampleRun("pheno.csv", time.Now())

	require.NoError(t, s.Save(ctx, run))

	got, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, got)
	assert.False(t, got.Passed())

	// Returned runs are copies.
	got.Errors[0] = "changed"
	again, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Errors, again.Errors)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		run := sampleRun(fmt.Sprintf("file%d.csv", i), base.Add(time.Duration(i)*time.Second))
		ids = append(ids, run.ID)
		require.NoError(t, s.Save(ctx, run))
	}

	// Re-saving keeps the original position.
	first, err := s.Get(ctx, ids[0])
	require.NoError(t, err)
	first.Errors = nil
	require.NoError(t, s.Save(ctx, first))

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[2].Passed())
}

// ============================================================================
// PostgresStore Tests
// ============================================================================

// fakeDB records Exec arguments per run ID and replays them through QueryRow.
type fakeDB struct {
	execs []string
	rows  map[[16]byte][]any
	err   error
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: make(map[[16]byte][]any)}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	if len(args) > 0 {
		id := reflect.ValueOf(args[0]).FieldByName("Bytes").Interface().([16]byte)
		f.rows[id] = args
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("query not supported by fake")
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...interface{}) pgx.Row {
	id := reflect.ValueOf(args[0]).FieldByName("Bytes").Interface().([16]byte)
	values, ok := f.rows[id]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{values: values}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

func TestPostgresStore_Migrate(t *testing.T) {
	db := newFakeDB()
	require.NoError(t, NewPostgresStore(db).Migrate(context.Background()))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "CREATE TABLE IF NOT EXISTS validation_runs")

	db.err = errors.New("permission denied")
	err := NewPostgresStore(db).Migrate(context.Background())
	assert.ErrorContains(t, err, "migrate validation_runs")
}

func TestPostgresStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	s := NewPostgresStore(db)
	run := sampleRun("pheno.csv", time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
	run.Warnings = nil

	require.NoError(t, s.Save(ctx, run))
	assert.True(t, strings.Contains(db.execs[0], "ON CONFLICT (id)"))

	got, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.FileName, got.FileName)
	assert.Equal(t, run.Rows, got.Rows)
	assert.Equal(t, run.Errors, got.Errors)
	assert.Equal(t, []string{}, got.Warnings, "nil findings are stored as empty arrays")
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, run.Duration, got.Duration)
}

func TestPostgresStore_GetMissing(t *testing.T) {
	_, err := NewPostgresStore(newFakeDB()).Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestPostgresStore_ListError(t *testing.T) {
	_, err := NewPostgresStore(newFakeDB()).List(context.Background(), 10)
	assert.ErrorContains(t, err, "list runs")
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, normalizeLimit(0))
	assert.Equal(t, DefaultListLimit, normalizeLimit(-1))
	assert.Equal(t, DefaultListLimit, normalizeLimit(DefaultListLimit+1))
	assert.Equal(t, 7, normalizeLimit(7))
}
