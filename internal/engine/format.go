package engine

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatMagnitude abbreviates a number with B/M/K suffixes. Thresholds apply
// to the absolute value and the sign is kept, so -1500 renders as "-1.50K".
// Below 1000 the value is rounded to an integer.
func FormatMagnitude(n float64) string {
	switch {
	case math.IsNaN(n):
		return "0"
	case math.IsInf(n, 1):
		return "∞"
	case math.IsInf(n, -1):
		return "-∞"
	}

	sign := ""
	abs := n
	if n < 0 {
		sign = "-"
		abs = -n
	}
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%s%.2fB", sign, abs/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%s%.2fM", sign, abs/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%s%.2fK", sign, abs/1e3)
	}
	s := fmt.Sprintf("%.0f", abs)
	if s == "0" {
		return s
	}
	return sign + s
}

var countPrinter = message.NewPrinter(language.English)

// FormatCount renders an integer with thousands separators ("114,240").
func FormatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}
