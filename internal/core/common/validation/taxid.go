package validation

import "strings"

const taxIDLength = 14

// ValidTaxID reports whether id is a valid 14-digit organization tax id.
// Non-digit characters are stripped before checking, so both punctuated and
// bare inputs are accepted. All-same-digit strings satisfy the check-digit
// arithmetic but are not real registrations, so they are rejected.
func ValidTaxID(id string) bool {
	digits := OnlyDigits(id)
	if len(digits) != taxIDLength {
		return false
	}
	if allSameDigit(digits) {
		return false
	}

	first := checkDigit(digits[:12])
	if int(digits[12]-'0') != first {
		return false
	}
	second := checkDigit(digits[:13])
	return int(digits[13]-'0') == second
}

// checkDigit computes one modulus-11 check digit over the given digit prefix.
// Weights cycle 2..9 starting from the rightmost digit; a remainder below 2
// maps to 0, anything else to 11 minus the remainder.
func checkDigit(digits string) int {
	sum := 0
	weight := 2
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

// FormatTaxID re-punctuates a tax id into NN.NNN.NNN/NNNN-NN. Partial input
// is formatted as far as its digits allow, which is what live input masks
// need; storage always keeps the bare digits.
func FormatTaxID(raw string) string {
	digits := OnlyDigits(raw)
	if len(digits) > taxIDLength {
		digits = digits[:taxIDLength]
	}

	var b strings.Builder
	for i := 0; i < len(digits); i++ {
		switch i {
		case 2, 5:
			b.WriteByte('.')
		case 8:
			b.WriteByte('/')
		case 12:
			b.WriteByte('-')
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}

// OnlyDigits strips everything but ASCII digits.
func OnlyDigits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
