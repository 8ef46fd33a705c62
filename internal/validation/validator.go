package validation

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/phenocheck/internal/tabular"
)

// report accumulates findings in encounter order.
type report struct {
	errors   []string
	warnings []string
}

func (r *report) addError(msg string) {
	r.errors = append(r.errors, msg)
}

func (r *report) addWarning(msg string) {
	r.warnings = append(r.warnings, msg)
}

// result returns an independent copy; empty lists are non-nil so they
// serialize as [] rather than null.
func (r *report) result() Result {
	return Result{
		Errors:   append(make([]string, 0, len(r.errors)), r.errors...),
		Warnings: append(make([]string, 0, len(r.warnings)), r.warnings...),
	}
}

// DataFileValidator validates one data file against one dictionary.
type DataFileValidator struct {
	grid tabular.Grid
	vars Variables
}

// New creates a validator for an already tokenized grid. The first row of
// grid is the header.
func New(grid tabular.Grid, vars Variables) *DataFileValidator {
	return &DataFileValidator{grid: grid, vars: vars}
}

// NewFromContent tokenizes content with the given format and creates a
// validator for it. Empty content is not an error; it validates as a file
// without data rows.
func NewFromContent(content []byte, vars Variables, format tabular.Format) (*DataFileValidator, error) {
	grid, err := tabular.Parse(content, format)
	if err != nil && !errors.Is(err, tabular.ErrEmptyInput) {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}
	return New(grid, vars), nil
}

// Validate runs header reconciliation and, when the file has data rows,
// row validation. It does not modify the validator, so repeated calls
// return equal results.
func (v *DataFileValidator) Validate() Result {
	rep := &report{}

	if len(v.grid) < 2 {
		rep.addError(MsgNoRows)
		return rep.result()
	}

	binding := reconcileHeader(v.grid.Header(), v.vars, rep)
	validateRows(v.grid.DataRows(), binding, rep)

	return rep.result()
}
