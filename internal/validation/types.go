// Package validation checks a tokenized data file against a data dictionary.
//
// This package has no I/O dependencies: it consumes a [tabular.Grid] and a
// [Variables] mapping and produces a [Result] of human-readable errors and
// warnings. Validation happens in two stages:
//
//  1. Header reconciliation: blank headers, unknown or duplicate columns,
//     dictionary variables missing from the file, out-of-order columns
//  2. Row validation: blank values, decimals in integer columns, and values
//     outside the declared numeric range
//
// Findings are never returned as Go errors. A non-empty Result.Errors means
// the file should not be ingested; warnings alone still pass.
package validation

import (
	"sort"
	"strings"
)

// NormalizedType is the canonical type classification of a variable.
type NormalizedType int

const (
	TypeUnknown NormalizedType = iota
	TypeString
	TypeInteger
	TypeDecimal
	TypeDate
	TypeEncoded
)

// String returns the lower-case name used in dictionaries and JSON.
func (t NormalizedType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeDecimal:
		return "decimal"
	case TypeDate:
		return "date"
	case TypeEncoded:
		return "encoded"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether range constraints apply to the type.
func (t NormalizedType) IsNumeric() bool {
	return t == TypeInteger || t == TypeDecimal
}

// Optional holds a value that may be absent.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an empty Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// VariableDefinition describes one expected column of a data file.
type VariableDefinition struct {
	OriginalName   string            // Display name as authored in the dictionary
	DictionaryRow  int               // 1-based position in the dictionary
	NormalizedType NormalizedType    // Drives row-level checks
	Min            Optional[float64] // Inclusive lower bound (numeric types only)
	Max            Optional[float64] // Inclusive upper bound (numeric types only)
}

// Variables maps canonical variable keys (e.g. "SUBJID") to their definitions.
type Variables map[string]VariableDefinition

// Keys returns the variable keys in dictionary order.
// Ties on DictionaryRow are broken by key for a stable order.
func (v Variables) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := v[keys[i]].DictionaryRow, v[keys[j]].DictionaryRow
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Result is the outcome of one validation run.
type Result struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Passed reports whether the file can be ingested (warnings are allowed).
func (r Result) Passed() bool {
	return len(r.Errors) == 0
}

// HasWarnings reports whether any warning was recorded.
func (r Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// normalizeLabel folds a header label or variable name for matching.
// Only surrounding whitespace and case are ignored.
func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
