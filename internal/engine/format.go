package engine

import (
	"math"
	"strconv"
	"strings"
)

// NumberFormat controls how operands are rendered into descriptions.
type NumberFormat struct {
	MinIntegerDigits  int
	MaxFractionDigits int
}

// DefaultNumberFormat renders at least one integer digit and at most six
// fractional digits.
var DefaultNumberFormat = NumberFormat{MinIntegerDigits: 1, MaxFractionDigits: 6}

// Format renders v in fixed-point notation with trailing zeros trimmed.
func (f NumberFormat) Format(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}

	digits := max(f.MaxFractionDigits, 0)
	s := strconv.FormatFloat(v, 'f', digits, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	intPart = strings.TrimLeft(intPart, "0")
	if pad := f.MinIntegerDigits - len(intPart); pad > 0 {
		intPart = strings.Repeat("0", pad) + intPart
	}

	s = intPart
	if hasFrac {
		s += "." + fracPart
	}
	if s == "" {
		s = "0"
	}
	if negative && strings.Trim(s, "0.") != "" {
		s = "-" + s
	}
	return s
}

// Decorate renders a description for a display line: a trailing ellipsis
// while an operator is pending and "=" right after equals.
func Decorate(description string, pending, equals bool) string {
	d := strings.TrimSpace(description)
	if pending {
		d += " ..."
	}
	if equals {
		d += " ="
	}
	return strings.TrimSpace(d)
}
