package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/phenocheck/internal/dictionary"
	"github.com/JonMunkholm/phenocheck/internal/store"
	"github.com/JonMunkholm/phenocheck/internal/tabular"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "file too large",
			err:         fmt.Errorf("%w: read %q: %w: limit is 10 bytes", ErrInvalidInput, "pheno.csv", ErrFileTooLarge),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "malformed data file",
			err:         fmt.Errorf("read: %w: bare quote", tabular.ErrMalformed),
			wantCode:    "FILE002",
			wantMessage: "File is not a valid CSV or TSV file",
		},
		{
			name:        "unknown format",
			err:         fmt.Errorf("%w: %q", tabular.ErrUnknownFormat, "xlsx"),
			wantCode:    "FILE003",
			wantMessage: "Unsupported file format",
		},
		{
			name:        "missing dictionary upload",
			err:         fmt.Errorf("%w: %w", ErrInvalidInput, ErrNoDictionary),
			wantCode:    "FILE004",
			wantMessage: "No data dictionary was selected",
		},
		{
			name:        "dictionary without variables",
			err:         fmt.Errorf("load dictionary: %w", dictionary.ErrNoVariables),
			wantCode:    "DICT001",
			wantMessage: "The data dictionary defines no variables",
		},
		{
			name:        "dictionary without name column",
			err:         dictionary.ErrMissingNameColumn,
			wantCode:    "DICT002",
			wantMessage: "The data dictionary has no VARNAME column",
		},
		{
			name:        "duplicate dictionary variable",
			err:         fmt.Errorf("line 4: %w: SUBJID", dictionary.ErrDuplicateVariable),
			wantCode:    "DICT003",
			wantMessage: "A variable is defined more than once in the dictionary",
		},
		{
			name:        "invalid bound",
			err:         fmt.Errorf("line 2: MIN: %w: %q", dictionary.ErrInvalidBound, "ten"),
			wantCode:    "DICT004",
			wantMessage: "A dictionary MIN or MAX value is invalid",
		},
		{
			name:        "busy",
			err:         ErrTooManyRuns,
			wantCode:    "RUN001",
			wantMessage: "System is busy validating other files",
		},
		{
			name:        "run not found",
			err:         fmt.Errorf("get run: %w", store.ErrRunNotFound),
			wantCode:    "RUN002",
			wantMessage: "Validation run not found",
		},
		{
			name:        "deadline beats generic timeout",
			err:         context.DeadlineExceeded,
			wantCode:    "RUN004",
			wantMessage: "Validation timed out",
		},
		{
			name:        "connection refused",
			err:         errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantCode:    "DB001",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("RATE LIMIT exceeded"),
			wantCode:    "RUN005",
			wantMessage: "Too many requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(dictionary.ErrNoVariables)

	expected := "The data dictionary defines no variables (Code: DICT001). Add one row per variable to the dictionary"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrNoFile, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
