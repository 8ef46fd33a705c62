// Package dictionary loads data dictionaries into validation.Variables.
//
// A dictionary lists the variables a data file must contain, in the order
// they should appear. Two encodings are supported: a delimited table with
// one variable per row (VARNAME, TYPE, MIN, MAX columns) and a YAML document.
package dictionary

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/phenocheck/internal/tabular"
	"github.com/JonMunkholm/phenocheck/internal/validation"
)

var (
	// ErrNoVariables is returned when a dictionary defines no variables.
	ErrNoVariables = errors.New("dictionary defines no variables")

	// ErrMissingNameColumn is returned when a tabular dictionary has no variable name column.
	ErrMissingNameColumn = errors.New("dictionary is missing the VARNAME column")

	// ErrDuplicateVariable is returned when two entries share a variable key.
	ErrDuplicateVariable = errors.New("duplicate variable in dictionary")

	// ErrInvalidBound is returned for unparseable or inverted MIN/MAX values.
	ErrInvalidBound = errors.New("invalid range bound in dictionary")
)

// Load reads a dictionary, choosing the decoder from the file name:
// .yaml/.yml are YAML, .tsv/.txt are tab separated, anything else is CSV.
func Load(r io.Reader, name string) (validation.Variables, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return LoadYAML(r)
	default:
		return LoadTable(r, tabular.FormatFromFilename(name, tabular.FormatCSV))
	}
}

// NormalizeType maps a dictionary type label to a NormalizedType.
// Unrecognized labels map to TypeUnknown, which only receives blank checks.
func NormalizeType(s string) validation.NormalizedType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text", "varchar", "char":
		return validation.TypeString
	case "integer", "int":
		return validation.TypeInteger
	case "decimal", "float", "numeric", "number", "double":
		return validation.TypeDecimal
	case "date", "datetime":
		return validation.TypeDate
	case "encoded", "encoded value", "encoded values", "enum":
		return validation.TypeEncoded
	default:
		return validation.TypeUnknown
	}
}

// builder assigns dictionary rows in declaration order and enforces key uniqueness.
type builder struct {
	vars validation.Variables
}

func newBuilder() *builder {
	return &builder{vars: make(validation.Variables)}
}

// add registers a variable. The key is the upper-cased trimmed name.
func (b *builder) add(name, typ string, lower, upper validation.Optional[float64]) error {
	name = strings.TrimSpace(name)
	key := strings.ToUpper(name)

	if _, exists := b.vars[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateVariable, key)
	}

	lo, hasLo := lower.Get()
	hi, hasHi := upper.Get()
	if hasLo && hasHi && lo > hi {
		return fmt.Errorf("%w: %s min %v exceeds max %v", ErrInvalidBound, key, lo, hi)
	}

	b.vars[key] = validation.VariableDefinition{
		OriginalName:   name,
		DictionaryRow:  len(b.vars) + 1,
		NormalizedType: NormalizeType(typ),
		Min:            lower,
		Max:            upper,
	}
	return nil
}

func (b *builder) build() (validation.Variables, error) {
	if len(b.vars) == 0 {
		return nil, ErrNoVariables
	}
	return b.vars, nil
}
