package organization

import (
	"context"
	"log/slog"

	orgDatamodel "github.com/frahmantamala/invoice-approval/internal/core/datamodel/organization"
)

type RepositoryAPI interface {
	GetCompanies(ctx context.Context) ([]*orgDatamodel.Company, error)
	GetSectors(ctx context.Context, companyID int64) ([]*orgDatamodel.Sector, error)
	GetCostCenters(ctx context.Context, sectorID int64) ([]*orgDatamodel.CostCenter, error)
}

// Service serves the read-only organization directory. Entries are
// maintained out of band; only active entries are exposed.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetCompanies(ctx context.Context) ([]*Company, error) {
	rows, err := s.repo.GetCompanies(ctx)
	if err != nil {
		s.logger.Error("failed to get companies from repository", "error", err)
		return nil, err
	}

	companies := make([]*Company, 0, len(rows))
	for _, row := range rows {
		if row.IsActive {
			companies = append(companies, CompanyFromDataModel(row))
		}
	}
	return companies, nil
}

func (s *Service) GetSectors(ctx context.Context, companyID int64) ([]*Sector, error) {
	rows, err := s.repo.GetSectors(ctx, companyID)
	if err != nil {
		s.logger.Error("failed to get sectors from repository", "error", err, "company_id", companyID)
		return nil, err
	}

	sectors := make([]*Sector, 0, len(rows))
	for _, row := range rows {
		if row.IsActive {
			sectors = append(sectors, SectorFromDataModel(row))
		}
	}
	return sectors, nil
}

func (s *Service) GetCostCenters(ctx context.Context, sectorID int64) ([]*CostCenter, error) {
	rows, err := s.repo.GetCostCenters(ctx, sectorID)
	if err != nil {
		s.logger.Error("failed to get cost centers from repository", "error", err, "sector_id", sectorID)
		return nil, err
	}

	centers := make([]*CostCenter, 0, len(rows))
	for _, row := range rows {
		if row.IsActive {
			centers = append(centers, CostCenterFromDataModel(row))
		}
	}
	return centers, nil
}
