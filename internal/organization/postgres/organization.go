package postgres

import (
	"context"

	orgDatamodel "github.com/frahmantamala/invoice-approval/internal/core/datamodel/organization"
	"github.com/frahmantamala/invoice-approval/internal/organization"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) organization.RepositoryAPI {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) GetCompanies(ctx context.Context) ([]*orgDatamodel.Company, error) {
	var companies []*orgDatamodel.Company
	err := r.db.WithContext(ctx).Order("name ASC").Find(&companies).Error
	return companies, err
}

func (r *OrganizationRepository) GetSectors(ctx context.Context, companyID int64) ([]*orgDatamodel.Sector, error) {
	var sectors []*orgDatamodel.Sector
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&sectors).Error
	return sectors, err
}

func (r *OrganizationRepository) GetCostCenters(ctx context.Context, sectorID int64) ([]*orgDatamodel.CostCenter, error) {
	var centers []*orgDatamodel.CostCenter
	err := r.db.WithContext(ctx).
		Where("sector_id = ?", sectorID).
		Order("code ASC").
		Find(&centers).Error
	return centers, err
}
