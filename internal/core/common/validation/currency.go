package validation

import "math"

// ParseCurrency interprets a bare digit string as an amount in integer cents,
// the way masked currency inputs submit values ("150000" => 1500.00). It is
// total: malformed, negative or overflowing input yields (0, false).
func ParseCurrency(rawDigits string) (cents int64, ok bool) {
	if rawDigits == "" {
		return 0, false
	}

	var value int64
	for i := 0; i < len(rawDigits); i++ {
		c := rawDigits[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		if value > (math.MaxInt64-int64(c-'0'))/10 {
			return 0, false
		}
		value = value*10 + int64(c-'0')
	}

	return value, true
}

// CentsToUnits converts integer cents to a float amount with two decimals.
// Display-only; arithmetic stays in cents.
func CentsToUnits(cents int64) float64 {
	return float64(cents) / 100
}
