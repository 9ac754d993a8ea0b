package request

import (
	"time"

	"github.com/frahmantamala/invoice-approval/internal"
	"github.com/frahmantamala/invoice-approval/internal/core/common/validation"
)

// CreateRequestDTO carries the requester-editable fields. Amount arrives as
// the raw digit string a masked currency input submits ("150000" for
// 1500.00); it is parsed into integer cents server-side.
type CreateRequestDTO struct {
	CompanyID    int64  `json:"company_id"`
	SectorID     int64  `json:"sector_id"`
	CostCenterID *int64 `json:"cost_center_id,omitempty"`

	SupplierName  string    `json:"supplier_name"`
	SupplierTaxID string    `json:"supplier_tax_id"`
	InvoiceNumber string    `json:"invoice_number"`
	IssueDate     time.Time `json:"issue_date"`
	DueDate       time.Time `json:"due_date"`
	Description   string    `json:"description"`
	Amount        string    `json:"amount"`

	PaymentMethod    *string `json:"payment_method,omitempty"`
	Bank             *string `json:"bank,omitempty"`
	Branch           *string `json:"branch,omitempty"`
	AccountNumber    *string `json:"account_number,omitempty"`
	PixKey           *string `json:"pix_key,omitempty"`
	HolderName       *string `json:"holder_name,omitempty"`
	HolderTaxID      *string `json:"holder_tax_id,omitempty"`
	SlipDocumentPath *string `json:"slip_document_path,omitempty"`

	EarlyDueDateJustification *string `json:"early_due_date_justification,omitempty"`
	TitularJustification      *string `json:"titular_justification,omitempty"`

	InvoiceDocumentPath string `json:"invoice_document_path"`
}

// Validate checks the payload against submission time: the early-due-date
// and titular-divergence policies depend on when the request is (re)submitted.
func (dto CreateRequestDTO) Validate(now time.Time) *internal.AppError {
	if dto.CompanyID == 0 {
		return internal.NewValidationFieldError("company_id", "company is required", internal.ErrCodeValidationFailed)
	}
	if dto.SectorID == 0 {
		return internal.NewValidationFieldError("sector_id", "sector is required", internal.ErrCodeValidationFailed)
	}
	if dto.SupplierName == "" {
		return internal.NewValidationFieldError("supplier_name", "supplier name is required", internal.ErrCodeValidationFailed)
	}
	if !validation.ValidTaxID(dto.SupplierTaxID) {
		return internal.NewValidationFieldError("supplier_tax_id", "supplier tax id failed check-digit validation", internal.ErrCodeInvalidTaxID)
	}
	if dto.InvoiceNumber == "" {
		return internal.NewValidationFieldError("invoice_number", "invoice number is required", internal.ErrCodeValidationFailed)
	}
	if dto.IssueDate.IsZero() {
		return internal.NewValidationFieldError("issue_date", "issue date is required", internal.ErrCodeInvalidDate)
	}
	if dto.DueDate.IsZero() {
		return internal.NewValidationFieldError("due_date", "due date is required", internal.ErrCodeInvalidDate)
	}
	if dto.Description == "" {
		return internal.NewValidationFieldError("description", "description is required", internal.ErrCodeValidationFailed)
	}
	if dto.InvoiceDocumentPath == "" {
		return internal.NewValidationFieldError("invoice_document_path", "invoice document is required", internal.ErrCodeValidationFailed)
	}

	cents, ok := validation.ParseCurrency(dto.Amount)
	if !ok || cents <= 0 {
		return internal.NewValidationFieldError("amount", "amount must be a positive value", internal.ErrCodeInvalidAmount)
	}

	if validation.IsEarlyDueDate(now, dto.DueDate) && strPtrEmpty(dto.EarlyDueDateJustification) {
		return internal.NewValidationFieldError("early_due_date_justification",
			"a justification is required when the due date is under 10 days away", internal.ErrCodeMissingJustification)
	}

	if dto.PaymentMethod != nil {
		switch *dto.PaymentMethod {
		case MethodBankTransfer:
			if err := dto.validateTransferFields(); err != nil {
				return err
			}
		case MethodBankSlip:
			if strPtrEmpty(dto.SlipDocumentPath) {
				return internal.NewValidationFieldError("slip_document_path",
					"a bank slip document is required for bank-slip payments", internal.ErrCodeMissingPaymentInfo)
			}
		default:
			return internal.NewValidationFieldError("payment_method",
				"payment method must be bank_transfer or bank_slip", internal.ErrCodeValidationFailed)
		}
	}

	return nil
}

func (dto CreateRequestDTO) validateTransferFields() *internal.AppError {
	required := []struct {
		field string
		value *string
	}{
		{"bank", dto.Bank},
		{"branch", dto.Branch},
		{"account_number", dto.AccountNumber},
		{"holder_name", dto.HolderName},
		{"holder_tax_id", dto.HolderTaxID},
	}
	for _, f := range required {
		if strPtrEmpty(f.value) {
			return internal.NewValidationFieldError(f.field, f.field+" is required for bank-transfer payments", internal.ErrCodeMissingPaymentInfo)
		}
	}

	if validation.HasTitularDivergence(dto.SupplierTaxID, dto.SupplierName, *dto.HolderTaxID, *dto.HolderName) &&
		strPtrEmpty(dto.TitularJustification) {
		return internal.NewValidationFieldError("titular_justification",
			"a justification is required when the account holder differs from the supplier", internal.ErrCodeMissingJustification)
	}

	return nil
}

// AmountCents returns the parsed amount; Validate must have passed.
func (dto CreateRequestDTO) AmountCents() int64 {
	cents, _ := validation.ParseCurrency(dto.Amount)
	return cents
}

func strPtrEmpty(s *string) bool {
	return s == nil || *s == ""
}

// DecisionDTO accompanies approve/reject/mark-paid actions.
type DecisionDTO struct {
	Comment string `json:"comment,omitempty"`
}

// ScheduleDTO accompanies the schedule action.
type ScheduleDTO struct {
	PlannedPaymentDate time.Time `json:"planned_payment_date"`
	Comment            string    `json:"comment,omitempty"`
}

// BatchTransitionDTO applies one action to a set of requests. Each id is
// evaluated on its own merits; there is no cross-id atomicity.
type BatchTransitionDTO struct {
	IDs                []int64    `json:"ids"`
	Action             string     `json:"action"`
	Comment            string     `json:"comment,omitempty"`
	PlannedPaymentDate *time.Time `json:"planned_payment_date,omitempty"`
}

func (dto BatchTransitionDTO) Validate() *internal.AppError {
	if len(dto.IDs) == 0 {
		return internal.NewValidationFieldError("ids", "at least one request id is required", internal.ErrCodeValidationFailed)
	}
	if dto.Action == "" {
		return internal.NewValidationFieldError("action", "action is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ResubmitDTO pairs the resubmit action with the corrected request fields.
type ResubmitDTO struct {
	CreateRequestDTO
}

// ListFilters narrows ListFor queries. Scope restrictions from the
// authorization gate are applied on top of these.
type ListFilters struct {
	Status    Status
	CompanyID *int64
	Limit     int
	Offset    int
}
