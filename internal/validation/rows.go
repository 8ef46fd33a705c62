package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalPattern matches values with a decimal point, e.g. "7.0", "7." or "-.5".
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.\d*|\.\d+)$`)

// cell is one non-blank value under check. value is trimmed; raw is the
// cell as it appears in the file and is what messages quote.
type cell struct {
	row   int
	value string
	raw   string
}

// cellRule checks a cell. It returns a message when the value violates the
// rule, and halt=true when later rules must not run.
type cellRule func(def VariableDefinition, c cell) (msg string, halt bool)

// rulesFor returns the checks that apply to a normalized type, in order.
func rulesFor(t NormalizedType) []cellRule {
	switch t {
	case TypeInteger:
		return []cellRule{integerShape, numericRange}
	case TypeDecimal:
		return []cellRule{numericRange}
	default:
		return nil
	}
}

func integerShape(def VariableDefinition, c cell) (string, bool) {
	if decimalPattern.MatchString(c.value) {
		return msgDecimalForInteger(def.OriginalName, c.row, c.raw), true
	}
	return "", false
}

func numericRange(def VariableDefinition, c cell) (string, bool) {
	if !def.Min.IsSet() && !def.Max.IsSet() {
		return "", false
	}

	n, err := strconv.ParseFloat(c.value, 64)
	if err != nil {
		return "", false
	}

	// NaN compares false against every bound but lies inside none.
	outside := math.IsNaN(n)
	if lo, ok := def.Min.Get(); ok && n < lo {
		outside = true
	}
	if hi, ok := def.Max.Get(); ok && n > hi {
		outside = true
	}
	if outside {
		return msgOutOfRange(def.OriginalName, c.row, def.Min, def.Max), false
	}
	return "", false
}

// validateRows applies the per-cell checks to every bound column of every
// data row. Row numbers are 1-based and exclude the header.
func validateRows(rows [][]string, binding ColumnBinding, rep *report) {
	rules := make([][]cellRule, len(binding))
	for i, col := range binding {
		rules[i] = rulesFor(col.Variable.NormalizedType)
	}

	for r, row := range rows {
		rowNum := r + 1
		for i, col := range binding {
			c := cell{row: rowNum}
			if col.Position <= len(row) {
				c.raw = row[col.Position-1]
				c.value = strings.TrimSpace(c.raw)
			}

			if c.value == "" {
				rep.addError(msgBlankValue(col.Variable.OriginalName, rowNum))
				continue
			}

			for _, rule := range rules[i] {
				msg, halt := rule(col.Variable, c)
				if msg != "" {
					rep.addError(msg)
				}
				if halt {
					break
				}
			}
		}
	}
}
