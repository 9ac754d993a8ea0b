package validation

import (
	"strings"
	"time"
)

// EarlyDueDateDays is the window below which a due date requires a written
// justification from the requester.
const EarlyDueDateDays = 10

// IsEarlyDueDate reports whether dueDate falls strictly before submittedAt
// plus the early-due-date window.
func IsEarlyDueDate(submittedAt, dueDate time.Time) bool {
	return dueDate.Before(submittedAt.AddDate(0, 0, EarlyDueDateDays))
}

// HasTitularDivergence reports whether the bank account holder differs from
// the invoice supplier, comparing tax ids digits-only and names case and
// whitespace insensitively. Only meaningful for bank-transfer payments.
func HasTitularDivergence(supplierTaxID, supplierName, holderTaxID, holderName string) bool {
	if OnlyDigits(supplierTaxID) != OnlyDigits(holderTaxID) {
		return true
	}
	return !strings.EqualFold(normalizeName(supplierName), normalizeName(holderName))
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
