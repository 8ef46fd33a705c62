package validation

import "strconv"

// Ordinal renders n as an English ordinal: 1st, 2nd, 3rd, 4th, 11th, 21st.
func Ordinal(n int) string {
	suffix := "th"
	abs := n
	if abs < 0 {
		abs = -abs
	}
	switch abs % 100 {
	case 11, 12, 13:
	default:
		switch abs % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
