package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	historyDatamodel "github.com/frahmantamala/invoice-approval/internal/core/datamodel/history"
	"github.com/frahmantamala/invoice-approval/internal/request"
)

// HistoryRepository reads the append-only request_history table. Rows are
// only ever written alongside request writes in RequestRepository.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) request.HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) ListForRequest(ctx context.Context, requestID int64) ([]*request.HistoryRecord, error) {
	var rows []*historyDatamodel.Record
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return request.HistoryFromDataModelSlice(rows), nil
}

func (r *HistoryRepository) Latest(ctx context.Context, requestID int64) (*request.HistoryRecord, error) {
	var row historyDatamodel.Record
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return request.HistoryFromDataModel(&row), nil
}
