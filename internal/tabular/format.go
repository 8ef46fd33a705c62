// Package tabular tokenizes delimited data files into an in-memory grid of
// raw string cells.
//
// It owns everything the validation engine treats as an external concern:
// byte order marks, broken UTF-8 from spreadsheet exports, quoting, and
// CRLF/LF line endings. The output is a [Grid] whose first row is the header.
package tabular

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the delimiter convention of a data file.
type Format string

const (
	FormatCSV Format = "csv"
	FormatTSV Format = "tsv"
)

// Delimiter returns the field separator rune for the format.
func (f Format) Delimiter() rune {
	if f == FormatTSV {
		return '\t'
	}
	return ','
}

// String implements fmt.Stringer.
func (f Format) String() string {
	return string(f)
}

// ParseFormat converts a format hint to a Format.
// Accepts "csv", "tsv" and "txt" (tab separated) case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "tsv", "txt", "tab":
		return FormatTSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromFilename guesses the format from a file extension.
// Falls back to fallback when the extension is not recognized.
func FormatFromFilename(name string, fallback Format) Format {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return fallback
}
