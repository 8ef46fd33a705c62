package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/phenocheck/internal/dictionary"
	"github.com/JonMunkholm/phenocheck/internal/logging"
	"github.com/JonMunkholm/phenocheck/internal/store"
	"github.com/JonMunkholm/phenocheck/internal/tabular"
	"github.com/JonMunkholm/phenocheck/internal/validation"
)

var (
	// ErrInvalidInput wraps every failure caused by the caller's files or
	// parameters, as opposed to busy or storage failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoFile is returned when a request carries no data file.
	ErrNoFile = errors.New("no file provided")

	// ErrNoDictionary is returned when a request carries no dictionary.
	ErrNoDictionary = errors.New("no dictionary provided")

	// ErrFileTooLarge is returned when a data file exceeds Options.MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")
)

// Options configures a Service.
type Options struct {
	// MaxFileSize caps the data file size in bytes. Zero means unlimited.
	MaxFileSize int64

	// Timeout bounds a single run. Zero means no timeout beyond ctx.
	Timeout time.Duration

	// DefaultFormat applies when neither the request nor the file name
	// determines a format.
	DefaultFormat tabular.Format
}

// Request is one data file and the dictionary to check it against.
type Request struct {
	FileName string
	Content  io.Reader

	// Format is "csv" or "tsv". Empty means infer from FileName.
	Format string

	DictionaryName string
	Dictionary     io.Reader
}

// Service runs validations and keeps their results.
type Service struct {
	runs    store.RunStore
	limiter *RunLimiter
	opts    Options
	now     func() time.Time
}

// NewService creates a Service persisting runs in runs.
func NewService(runs store.RunStore, limiter *RunLimiter, opts Options) *Service {
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = tabular.FormatCSV
	}
	return &Service{
		runs:    runs,
		limiter: limiter,
		opts:    opts,
		now:     time.Now,
	}
}

// Limiter exposes the run limiter for shutdown draining and health reporting.
func (s *Service) Limiter() *RunLimiter {
	return s.limiter
}

// ValidateFile validates req and persists the outcome.
//
// Validation findings are part of the returned run, not an error. The error
// is non-nil only when the run could not happen: bad input (wrapping
// ErrInvalidInput), ErrTooManyRuns, a cancelled context, or a store failure.
func (s *Service) ValidateFile(ctx context.Context, req Request) (*store.Run, error) {
	if req.Content == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrNoFile)
	}
	if req.Dictionary == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrNoDictionary)
	}

	format, err := s.resolveFormat(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	runID := uuid.New()
	logger := logging.WithFields(ctx,
		"run_id", runID,
		"file", req.FileName,
		"dictionary", req.DictionaryName,
	)
	if ip := ClientIPFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}

	start := s.now()
	logger.Debug("validation started", "format", format)

	vars, err := dictionary.Load(req.Dictionary, req.DictionaryName)
	if err != nil {
		return nil, fmt.Errorf("%w: load dictionary %q: %w", ErrInvalidInput, req.DictionaryName, err)
	}

	grid, err := s.readDataFile(req.Content, format)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %w", ErrInvalidInput, req.FileName, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := validation.New(grid, vars).Validate()

	run := store.Run{
		ID:             runID,
		FileName:       req.FileName,
		DictionaryName: req.DictionaryName,
		Format:         format.String(),
		Rows:           len(grid.DataRows()),
		Errors:         result.Errors,
		Warnings:       result.Warnings,
		CreatedAt:      start.UTC(),
		Duration:       s.now().Sub(start),
	}

	if err := s.runs.Save(ctx, run); err != nil {
		logger.Error("failed to save run", "error", err)
		return nil, fmt.Errorf("save run: %w", err)
	}

	logger.Info("validation finished",
		"rows", run.Rows,
		"errors", len(run.Errors),
		"warnings", len(run.Warnings),
		"duration", run.Duration,
	)

	return &run, nil
}

// resolveFormat picks the explicit format, else the file extension, else the default.
func (s *Service) resolveFormat(req Request) (tabular.Format, error) {
	if req.Format != "" {
		return tabular.ParseFormat(req.Format)
	}
	return tabular.FormatFromFilename(req.FileName, s.opts.DefaultFormat), nil
}

// readDataFile tokenizes r, enforcing MaxFileSize. An empty file yields an
// empty grid, which the engine reports as having no rows.
func (s *Service) readDataFile(r io.Reader, format tabular.Format) (tabular.Grid, error) {
	if s.opts.MaxFileSize > 0 {
		r = io.LimitReader(r, s.opts.MaxFileSize+1)
	}
	counter := tabular.NewCountingReader(r)

	grid, err := tabular.Read(counter, format)
	if s.opts.MaxFileSize > 0 && counter.BytesRead() > s.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.opts.MaxFileSize)
	}
	if errors.Is(err, tabular.ErrEmptyInput) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return grid, nil
}

// Run returns a stored run by ID.
func (s *Service) Run(ctx context.Context, id uuid.UUID) (store.Run, error) {
	run, err := s.runs.Get(ctx, id)
	if err != nil {
		return store.Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Runs returns the most recent runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
