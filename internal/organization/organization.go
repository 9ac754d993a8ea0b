package organization

import (
	"time"

	"github.com/frahmantamala/invoice-approval/internal/core/common/validation"
	orgDatamodel "github.com/frahmantamala/invoice-approval/internal/core/datamodel/organization"
)

// Company is one legal entity in the group. The directory drives the
// request form: a requester picks the company, then a sector within it,
// then optionally a cost center.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FormattedTaxID returns the company tax id with display punctuation.
func (c *Company) FormattedTaxID() string {
	return validation.FormatTaxID(c.TaxID)
}

type Sector struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CostCenter struct {
	ID        int64     `json:"id"`
	SectorID  int64     `json:"sector_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func CompanyFromDataModel(m *orgDatamodel.Company) *Company {
	return &Company{
		ID:        m.ID,
		Name:      m.Name,
		TaxID:     m.TaxID,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func SectorFromDataModel(m *orgDatamodel.Sector) *Sector {
	return &Sector{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Name:      m.Name,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func CostCenterFromDataModel(m *orgDatamodel.CostCenter) *CostCenter {
	return &CostCenter{
		ID:        m.ID,
		SectorID:  m.SectorID,
		Code:      m.Code,
		Name:      m.Name,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
