package dictionary

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/phenocheck/internal/tabular"
	"github.com/JonMunkholm/phenocheck/internal/validation"
)

// Accepted header labels per dictionary column (lowercase).
var (
	nameColumns = []string{"varname", "variable", "variable name", "name"}
	typeColumns = []string{"type", "data type", "datatype"}
	minColumns  = []string{"min", "min value", "minimum"}
	maxColumns  = []string{"max", "max value", "maximum"}
)

// headerIndex maps lowercase header labels to their position.
type headerIndex map[string]int

func makeHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// find returns the position of the first matching alias, or -1.
func (h headerIndex) find(aliases []string) int {
	for _, a := range aliases {
		if pos, ok := h[a]; ok {
			return pos
		}
	}
	return -1
}

// LoadTable reads a delimited dictionary with one variable per row.
// VARNAME is required; TYPE, MIN and MAX are optional columns. Other
// columns (VARDESC, UNITS, VALUES, ...) are ignored. Rows with a blank
// VARNAME are skipped.
func LoadTable(r io.Reader, f tabular.Format) (validation.Variables, error) {
	grid, err := tabular.Read(r, f)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}

	idx := makeHeaderIndex(grid.Header())
	namePos := idx.find(nameColumns)
	if namePos < 0 {
		return nil, ErrMissingNameColumn
	}
	typePos := idx.find(typeColumns)
	minPos := idx.find(minColumns)
	maxPos := idx.find(maxColumns)

	b := newBuilder()
	for i, row := range grid.DataRows() {
		line := i + 2
		name := cell(row, namePos)
		if name == "" {
			continue
		}

		lower, err := parseBound(cell(row, minPos))
		if err != nil {
			return nil, fmt.Errorf("line %d: MIN: %w", line, err)
		}
		upper, err := parseBound(cell(row, maxPos))
		if err != nil {
			return nil, fmt.Errorf("line %d: MAX: %w", line, err)
		}

		if err := b.add(name, cell(row, typePos), lower, upper); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}

	return b.build()
}

// cell returns the trimmed value at pos, or "" when the column is absent.
func cell(row []string, pos int) string {
	if pos < 0 || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

func parseBound(s string) (validation.Optional[float64], error) {
	if s == "" {
		return validation.None[float64](), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return validation.None[float64](), fmt.Errorf("%w: %q", ErrInvalidBound, s)
	}
	return validation.Some(v), nil
}
