package postgres

import (
	"context"

	actionlogDatamodel "github.com/frahmantamala/invoice-approval/internal/core/datamodel/actionlog"
	"github.com/frahmantamala/invoice-approval/internal/request"
	"gorm.io/gorm"
)

type ActionLogRepository struct {
	db *gorm.DB
}

func NewActionLogRepository(db *gorm.DB) request.ActionLog {
	return &ActionLogRepository{db: db}
}

func (r *ActionLogRepository) RecordDeletion(ctx context.Context, requestID, actorID int64) error {
	entry := &actionlogDatamodel.Entry{
		Entity:   "payment_request",
		EntityID: requestID,
		Action:   "delete",
		ActorID:  actorID,
	}
	return r.db.WithContext(ctx).Create(entry).Error
}
