package request

import "time"

type PaymentRequest struct {
	ID          int64  `gorm:"primaryKey"`
	CompanyID   int64  `gorm:"column:company_id;not null;index"`
	RequesterID int64  `gorm:"column:requester_id;not null;index"`
	SectorID    int64  `gorm:"column:sector_id;not null"`
	CostCenter  *int64 `gorm:"column:cost_center_id"`

	SupplierName  string    `gorm:"column:supplier_name;not null"`
	SupplierTaxID string    `gorm:"column:supplier_tax_id;not null"`
	InvoiceNumber string    `gorm:"column:invoice_number;not null"`
	IssueDate     time.Time `gorm:"column:issue_date;type:date"`
	DueDate       time.Time `gorm:"column:due_date;type:date"`
	Description   string    `gorm:"column:description;not null"`
	AmountCents   int64     `gorm:"column:amount_cents;not null"`

	PaymentMethod    *string `gorm:"column:payment_method"`
	Bank             *string `gorm:"column:bank"`
	Branch           *string `gorm:"column:branch"`
	AccountNumber    *string `gorm:"column:account_number"`
	PixKey           *string `gorm:"column:pix_key"`
	HolderName       *string `gorm:"column:holder_name"`
	HolderTaxID      *string `gorm:"column:holder_tax_id"`
	SlipDocumentPath *string `gorm:"column:slip_document_path"`

	EarlyDueDateJustification *string `gorm:"column:early_due_date_justification"`
	TitularJustification      *string `gorm:"column:titular_justification"`

	Status             string     `gorm:"column:status;default:submitted;index"`
	ManagerComment     *string    `gorm:"column:manager_comment"`
	FinanceComment     *string    `gorm:"column:finance_comment"`
	ManagerDecidedAt   *time.Time `gorm:"column:manager_decided_at"`
	FinanceDecidedAt   *time.Time `gorm:"column:finance_decided_at"`
	PlannedPaymentDate *time.Time `gorm:"column:planned_payment_date;type:date"`

	InvoiceDocumentPath string `gorm:"column:invoice_document_path;not null"`

	SubmittedAt time.Time `gorm:"column:submitted_at"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (PaymentRequest) TableName() string {
	return "payment_requests"
}
