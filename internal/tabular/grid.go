package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEmptyInput is returned when the input contains no rows at all.
	ErrEmptyInput = errors.New("empty file")

	// ErrUnknownFormat is returned for an unsupported format hint.
	ErrUnknownFormat = errors.New("unknown file format")

	// ErrMalformed is returned when the delimited content cannot be tokenized.
	ErrMalformed = errors.New("invalid delimited file")
)

// Grid is a tokenized file: rows of raw cells, header first.
// Rows may be ragged; cells are untrimmed.
type Grid [][]string

// Header returns the first row, or nil for an empty grid.
func (g Grid) Header() []string {
	if len(g) == 0 {
		return nil
	}
	return g[0]
}

// DataRows returns every row after the header.
func (g Grid) DataRows() [][]string {
	if len(g) < 2 {
		return nil
	}
	return g[1:]
}

// Read tokenizes r into a Grid using the given format.
// Blank lines are skipped. Delimiter-only rows are kept as rows of empty
// cells so the blank checks can report them.
func Read(r io.Reader, f Format) (Grid, error) {
	return readGrid(newCleanReader(r), f)
}

// Parse tokenizes in-memory content.
func Parse(content []byte, f Format) (Grid, error) {
	return Read(bytes.NewReader(content), f)
}

func readGrid(r io.Reader, f Format) (Grid, error) {
	reader := csv.NewReader(r)
	reader.Comma = f.Delimiter()
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var grid Grid
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		grid = append(grid, record)
	}

	if len(grid) == 0 {
		return nil, ErrEmptyInput
	}
	return grid, nil
}
