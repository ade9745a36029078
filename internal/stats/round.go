package stats

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// roundNum rounds f to places using round-half-to-even and renders it without
// trailing zeros. Non-finite values render empty.
func roundNum(f float64, places uint32) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return decimal.NewFromFloat(f).RoundBank(int32(places)).String()
}

// formatFloat renders f in its shortest round-trip form, always with a
// fractional part so floats stay distinguishable from integers. Decimal
// exponents of 21 and above or below -5 switch to scientific notation
// (1e21, 1.5e-7).
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(sci, "e")
	if e, err := strconv.Atoi(exp); err == nil && f != 0 && (e >= 21 || e < -5) {
		return mant + "e" + strconv.Itoa(e)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if strings.ContainsRune(s, '.') {
		return s
	}
	return s + ".0"
}
