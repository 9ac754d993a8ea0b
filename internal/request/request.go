package request

import (
	"time"

	requestDatamodel "github.com/frahmantamala/invoice-approval/internal/core/datamodel/request"
)

// Status is the lifecycle state of a payment request. Transitions happen
// exclusively through the state machine; nothing else writes this field.
type Status string

const (
	StatusSubmitted        Status = "submitted"
	StatusFinanceReview    Status = "finance_review"
	StatusApproved         Status = "approved"
	StatusPaymentScheduled Status = "payment_scheduled"
	StatusPaid             Status = "paid"
	StatusManagerRejected  Status = "manager_rejected"
	StatusFinanceRejected  Status = "finance_rejected"
)

// Action is a request transition verb.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionSchedule Action = "schedule"
	ActionMarkPaid Action = "mark_paid"
	ActionResubmit Action = "resubmit"
)

const (
	MethodBankTransfer = "bank_transfer"
	MethodBankSlip     = "bank_slip"
)

// IsTerminal reports whether no further transition can leave s. A
// manager-rejected request is not terminal: its requester may resubmit.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusFinanceRejected
}

func (s Status) IsRejected() bool {
	return s == StatusManagerRejected || s == StatusFinanceRejected
}

type PaymentRequest struct {
	ID           int64  `json:"id"`
	CompanyID    int64  `json:"company_id"`
	RequesterID  int64  `json:"requester_id"`
	SectorID     int64  `json:"sector_id"`
	CostCenterID *int64 `json:"cost_center_id,omitempty"`

	SupplierName  string    `json:"supplier_name"`
	SupplierTaxID string    `json:"supplier_tax_id"`
	InvoiceNumber string    `json:"invoice_number"`
	IssueDate     time.Time `json:"issue_date"`
	DueDate       time.Time `json:"due_date"`
	Description   string    `json:"description"`
	AmountCents   int64     `json:"amount_cents"`

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

	Status             Status     `json:"status"`
	ManagerComment     *string    `json:"manager_comment,omitempty"`
	FinanceComment     *string    `json:"finance_comment,omitempty"`
	ManagerDecidedAt   *time.Time `json:"manager_decided_at,omitempty"`
	FinanceDecidedAt   *time.Time `json:"finance_decided_at,omitempty"`
	PlannedPaymentDate *time.Time `json:"planned_payment_date,omitempty"`

	InvoiceDocumentPath string `json:"invoice_document_path"`

	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CanBeEdited limits field edits to the window before a manager decision,
// plus the resubmission window after a manager rejection.
func (r *PaymentRequest) CanBeEdited() bool {
	return r.Status == StatusSubmitted || r.Status == StatusManagerRejected
}

func (r *PaymentRequest) CanBeDeleted() bool {
	return r.Status == StatusSubmitted
}

func (r *PaymentRequest) IsOwnedBy(userID int64) bool {
	return r.RequesterID == userID
}

func ToDataModel(r *PaymentRequest) *requestDatamodel.PaymentRequest {
	return &requestDatamodel.PaymentRequest{
		ID:                        r.ID,
		CompanyID:                 r.CompanyID,
		RequesterID:               r.RequesterID,
		SectorID:                  r.SectorID,
		CostCenter:                r.CostCenterID,
		SupplierName:              r.SupplierName,
		SupplierTaxID:             r.SupplierTaxID,
		InvoiceNumber:             r.InvoiceNumber,
		IssueDate:                 r.IssueDate,
		DueDate:                   r.DueDate,
		Description:               r.Description,
		AmountCents:               r.AmountCents,
		PaymentMethod:             r.PaymentMethod,
		Bank:                      r.Bank,
		Branch:                    r.Branch,
		AccountNumber:             r.AccountNumber,
		PixKey:                    r.PixKey,
		HolderName:                r.HolderName,
		HolderTaxID:               r.HolderTaxID,
		SlipDocumentPath:          r.SlipDocumentPath,
		EarlyDueDateJustification: r.EarlyDueDateJustification,
		TitularJustification:      r.TitularJustification,
		Status:                    string(r.Status),
		ManagerComment:            r.ManagerComment,
		FinanceComment:            r.FinanceComment,
		ManagerDecidedAt:          r.ManagerDecidedAt,
		FinanceDecidedAt:          r.FinanceDecidedAt,
		PlannedPaymentDate:        r.PlannedPaymentDate,
		InvoiceDocumentPath:       r.InvoiceDocumentPath,
		SubmittedAt:               r.SubmittedAt,
		CreatedAt:                 r.CreatedAt,
		UpdatedAt:                 r.UpdatedAt,
	}
}

func FromDataModel(m *requestDatamodel.PaymentRequest) *PaymentRequest {
	return &PaymentRequest{
		ID:                        m.ID,
		CompanyID:                 m.CompanyID,
		RequesterID:               m.RequesterID,
		SectorID:                  m.SectorID,
		CostCenterID:              m.CostCenter,
		SupplierName:              m.SupplierName,
		SupplierTaxID:             m.SupplierTaxID,
		InvoiceNumber:             m.InvoiceNumber,
		IssueDate:                 m.IssueDate,
		DueDate:                   m.DueDate,
		Description:               m.Description,
		AmountCents:               m.AmountCents,
		PaymentMethod:             m.PaymentMethod,
		Bank:                      m.Bank,
		Branch:                    m.Branch,
		AccountNumber:             m.AccountNumber,
		PixKey:                    m.PixKey,
		HolderName:                m.HolderName,
		HolderTaxID:               m.HolderTaxID,
		SlipDocumentPath:          m.SlipDocumentPath,
		EarlyDueDateJustification: m.EarlyDueDateJustification,
		TitularJustification:      m.TitularJustification,
		Status:                    Status(m.Status),
		ManagerComment:            m.ManagerComment,
		FinanceComment:            m.FinanceComment,
		ManagerDecidedAt:          m.ManagerDecidedAt,
		FinanceDecidedAt:          m.FinanceDecidedAt,
		PlannedPaymentDate:        m.PlannedPaymentDate,
		InvoiceDocumentPath:       m.InvoiceDocumentPath,
		SubmittedAt:               m.SubmittedAt,
		CreatedAt:                 m.CreatedAt,
		UpdatedAt:                 m.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*requestDatamodel.PaymentRequest) []*PaymentRequest {
	result := make([]*PaymentRequest, len(rows))
	for i, m := range rows {
		result[i] = FromDataModel(m)
	}
	return result
}
