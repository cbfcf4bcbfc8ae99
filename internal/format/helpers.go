package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Percent renders a fraction in [0,1] as a percentage with prec decimals,
// e.g. Percent(0.97, 1) == "97.0%".
func Percent(frac float64, prec int) string {
	return strconv.FormatFloat(frac*100, 'f', prec, 64) + "%"
}

// Decimal renders v with exactly prec decimals.
func Decimal(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// Signed renders v with an explicit sign and prec decimals, e.g. "+12.5".
func Signed(v float64, prec int) string {
	return fmt.Sprintf("%+.*f", prec, v)
}

// Bytes renders a byte count in SI units ("1.2 kB").
func Bytes(n int64) string {
	if n < 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}

// Rule returns a horizontal rule of n copies of ch.
func Rule(ch string, n int) string {
	return strings.Repeat(ch, n)
}
