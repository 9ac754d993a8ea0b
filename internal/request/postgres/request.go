package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/invoice-approval/internal"
	requestDatamodel "github.com/frahmantamala/invoice-approval/internal/core/datamodel/request"
	"github.com/frahmantamala/invoice-approval/internal/request"
)

// RequestRepository implements the request.Repository interface using GORM
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) request.Repository {
	return &RequestRepository{db: db}
}

// Create saves a new request and its creation history record in one
// transaction.
func (r *RequestRepository) Create(ctx context.Context, req *request.PaymentRequest, rec *request.HistoryRecord) error {
	row := request.ToDataModel(req)
	historyRow := request.HistoryToDataModel(rec)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		historyRow.RequestID = row.ID
		return tx.Create(historyRow).Error
	})
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*request.PaymentRequest, error) {
	var row requestDatamodel.PaymentRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRequestNotFound
		}
		return nil, internal.NewDependencyError("could not load request", err)
	}
	return request.FromDataModel(&row), nil
}

// List applies the visibility scope at query level: finance sees every
// company, a manager sees their companies plus their own requests, a plain
// requester only their own.
func (r *RequestRepository) List(ctx context.Context, scope request.Scope, ownerID int64, filters request.ListFilters) ([]*request.PaymentRequest, error) {
	q := r.db.WithContext(ctx).Model(&requestDatamodel.PaymentRequest{})

	if !scope.AllCompanies {
		if len(scope.CompanyIDs) > 0 {
			q = q.Where("requester_id = ? OR company_id IN ?", ownerID, scope.CompanyIDs)
		} else {
			q = q.Where("requester_id = ?", ownerID)
		}
	}

	if filters.Status != "" {
		q = q.Where("status = ?", string(filters.Status))
	}
	if filters.CompanyID != nil {
		q = q.Where("company_id = ?", *filters.CompanyID)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}

	var rows []*requestDatamodel.PaymentRequest
	err := q.Order("submitted_at DESC").
		Limit(limit).
		Offset(filters.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return request.FromDataModelSlice(rows), nil
}

// Update rewrites the editable columns guarded by the updated_at value the
// caller read. Zero rows affected means another writer got there first.
func (r *RequestRepository) Update(ctx context.Context, req *request.PaymentRequest, expectedUpdatedAt time.Time) error {
	row := request.ToDataModel(req)

	res := r.db.WithContext(ctx).
		Model(&requestDatamodel.PaymentRequest{}).
		Where("id = ? AND updated_at = ?", row.ID, expectedUpdatedAt).
		Select("*").
		Omit("id", "created_at").
		Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrWriteConflict
	}
	return nil
}

// ApplyTransition persists a status change together with its history record
// under the same optimistic guard as Update.
func (r *RequestRepository) ApplyTransition(ctx context.Context, req *request.PaymentRequest, expectedUpdatedAt time.Time, rec *request.HistoryRecord) error {
	row := request.ToDataModel(req)
	historyRow := request.HistoryToDataModel(rec)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&requestDatamodel.PaymentRequest{}).
			Where("id = ? AND updated_at = ?", row.ID, expectedUpdatedAt).
			Select("*").
			Omit("id", "created_at").
			Updates(row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrWriteConflict
		}
		return tx.Create(historyRow).Error
	})
}

func (r *RequestRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&requestDatamodel.PaymentRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrRequestNotFound
	}
	return nil
}
