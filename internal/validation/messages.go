package validation

import (
	"fmt"
	"math"
	"strconv"
)

// MsgNoRows is reported when a file has a header but no data rows.
const MsgNoRows = "No rows containing data could be found"

func msgBlankHeader(col int) string {
	return fmt.Sprintf("The %s column has a blank header - please set the header and define it in the data dictionary.", Ordinal(col))
}

func msgMissingVariable(key string) string {
	return fmt.Sprintf("The variable '%s' is defined in the data dictionary, but does not appear in the data file.", key)
}

func msgUnknownColumn(label string, col int) string {
	return fmt.Sprintf("The column '%s' (%s column) is not defined in the data dictionary.", label, Ordinal(col))
}

func msgDuplicateColumn(name string, first, col int) string {
	return fmt.Sprintf("The variable '%s' appears more than once in the data file (%s and %s columns).", name, Ordinal(first), Ordinal(col))
}

func msgOutOfOrder(name string, col, dictRow int) string {
	return fmt.Sprintf("The variable '%s' (%s column) is the %s variable in the data dictionary.  It's recommended to have variables in the same order.", name, Ordinal(col), Ordinal(dictRow))
}

func msgBlankValue(name string, row int) string {
	return fmt.Sprintf("A value for '%s' (%s row) is blank, however it is best practice to provide a value to explicitly define missing data.", name, Ordinal(row))
}

func msgDecimalForInteger(name string, row int, value string) string {
	return fmt.Sprintf("The value for '%s' in the %s row (%s) should be an integer, not a decimal.", name, Ordinal(row), value)
}

func msgOutOfRange(name string, row int, min, max Optional[float64]) string {
	return fmt.Sprintf("The value for '%s' (%s row) is outside of the range defined in the data dictionary (%s to %s).", name, Ordinal(row), formatBound(min, math.Inf(-1)), formatBound(max, math.Inf(1)))
}

// formatBound renders a bound in its shortest form; absent bounds render as ±∞.
func formatBound(b Optional[float64], unbounded float64) string {
	v, ok := b.Get()
	if !ok {
		v = unbounded
	}
	switch {
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
