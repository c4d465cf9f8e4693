package calculator

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatCurrency renders $X.XM from a million up, $XK from a thousand up,
// and a plain dollar amount below that.
func FormatCurrency(amount float64, showCents bool) string {
	abs := math.Abs(amount)
	switch {
	case abs >= 1_000_000:
		return "$" + toFixed(amount/1_000_000, 1) + "M"
	case abs >= 1_000:
		return "$" + toFixed(amount/1_000, 0) + "K"
	case showCents:
		return "$" + humanize.FormatFloat("#,###.##", amount)
	default:
		return "$" + trimZeros(toFixed(amount, 3))
	}
}

// FormatPercent renders a ratio as a percentage with the given decimals.
func FormatPercent(value float64, decimals int) string {
	return toFixed(value*100, decimals) + "%"
}

// toFixed prints v with a fixed number of decimals the way toFixed does in
// browsers: the exact binary value is rounded, and an exact tie goes away
// from zero. 1.45 is stored just below 1.45, so it prints as 1.4.
func toFixed(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', decimals, 64)
	}

	// A float64 has at most 1074 fractional digits, so this expansion is exact.
	exact := new(big.Float).SetFloat64(math.Abs(v)).Text('f', 1074+1)
	dot := strings.IndexByte(exact, '.')
	digits := []byte(exact[:dot] + exact[dot+1:dot+1+decimals])
	if exact[dot+1+decimals] >= '5' {
		digits = roundUp(digits)
	}

	intLen := len(digits) - decimals
	out := string(digits[:intLen])
	if decimals > 0 {
		out += "." + string(digits[intLen:])
	}
	if v < 0 {
		out = "-" + out
	}
	return out
}

// roundUp adds one to the last digit, carrying to the left.
func roundUp(digits []byte) []byte {
	for i := len(digits) - 1; i >= 0; i-- {
		if digits[i] < '9' {
			digits[i]++
			return digits
		}
		digits[i] = '0'
	}
	return append([]byte{'1'}, digits...)
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
