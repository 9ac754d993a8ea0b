package validation_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/invoice-approval/internal/core/common/validation"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("ValidTaxID", func() {
	It("accepts known valid tax ids", func() {
		Expect(validation.ValidTaxID("11222333000181")).To(BeTrue())
		Expect(validation.ValidTaxID("00000000000191")).To(BeTrue())
		Expect(validation.ValidTaxID("34028316000103")).To(BeTrue())
	})

	It("accepts punctuated input", func() {
		Expect(validation.ValidTaxID("11.222.333/0001-81")).To(BeTrue())
	})

	It("rejects ids with a wrong check digit", func() {
		Expect(validation.ValidTaxID("11222333000180")).To(BeFalse())
		Expect(validation.ValidTaxID("11222333000171")).To(BeFalse())
		Expect(validation.ValidTaxID("00000000000190")).To(BeFalse())
	})

	It("rejects all-same-digit strings even though the arithmetic holds", func() {
		Expect(validation.ValidTaxID("00000000000000")).To(BeFalse())
		Expect(validation.ValidTaxID("11111111111111")).To(BeFalse())
		Expect(validation.ValidTaxID("99999999999999")).To(BeFalse())
	})

	It("rejects input without exactly 14 digits", func() {
		Expect(validation.ValidTaxID("")).To(BeFalse())
		Expect(validation.ValidTaxID("1122233300018")).To(BeFalse())
		Expect(validation.ValidTaxID("112223330001811")).To(BeFalse())
		Expect(validation.ValidTaxID("not a tax id")).To(BeFalse())
	})
})

var _ = Describe("FormatTaxID", func() {
	It("formats a complete id", func() {
		Expect(validation.FormatTaxID("11222333000181")).To(Equal("11.222.333/0001-81"))
	})

	It("strips existing punctuation before formatting", func() {
		Expect(validation.FormatTaxID("11.222.333/0001-81")).To(Equal("11.222.333/0001-81"))
	})

	It("formats partial input as far as digits allow", func() {
		Expect(validation.FormatTaxID("")).To(Equal(""))
		Expect(validation.FormatTaxID("11")).To(Equal("11"))
		Expect(validation.FormatTaxID("112")).To(Equal("11.2"))
		Expect(validation.FormatTaxID("11222333")).To(Equal("11.222.333"))
		Expect(validation.FormatTaxID("112223330001")).To(Equal("11.222.333/0001"))
	})

	It("truncates excess digits", func() {
		Expect(validation.FormatTaxID("1122233300018199")).To(Equal("11.222.333/0001-81"))
	})
})

var _ = Describe("ParseCurrency", func() {
	It("parses digit strings as integer cents", func() {
		cents, ok := validation.ParseCurrency("150000")
		Expect(ok).To(BeTrue())
		Expect(cents).To(Equal(int64(150000)))
		Expect(validation.CentsToUnits(cents)).To(Equal(1500.00))
	})

	It("rejects empty and non-digit input", func() {
		_, ok := validation.ParseCurrency("")
		Expect(ok).To(BeFalse())

		_, ok = validation.ParseCurrency("15.00")
		Expect(ok).To(BeFalse())

		_, ok = validation.ParseCurrency("-1500")
		Expect(ok).To(BeFalse())
	})

	It("rejects values that would overflow", func() {
		_, ok := validation.ParseCurrency("99999999999999999999999999")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("IsEarlyDueDate", func() {
	submitted := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	It("is true for a due date nine days after submission", func() {
		Expect(validation.IsEarlyDueDate(submitted, submitted.AddDate(0, 0, 9))).To(BeTrue())
	})

	It("is false for due dates ten or eleven days after submission", func() {
		Expect(validation.IsEarlyDueDate(submitted, submitted.AddDate(0, 0, 10))).To(BeFalse())
		Expect(validation.IsEarlyDueDate(submitted, submitted.AddDate(0, 0, 11))).To(BeFalse())
	})
})

var _ = Describe("HasTitularDivergence", func() {
	It("is false when holder and supplier match", func() {
		Expect(validation.HasTitularDivergence(
			"11222333000181", "Acme Supplies LTDA",
			"11.222.333/0001-81", "acme  supplies ltda",
		)).To(BeFalse())
	})

	It("is true when the tax ids differ", func() {
		Expect(validation.HasTitularDivergence(
			"11222333000181", "Acme Supplies LTDA",
			"00000000000191", "Acme Supplies LTDA",
		)).To(BeTrue())
	})

	It("is true when the names differ beyond case and spacing", func() {
		Expect(validation.HasTitularDivergence(
			"11222333000181", "Acme Supplies LTDA",
			"11222333000181", "Acme Holding LTDA",
		)).To(BeTrue())
	})
})
