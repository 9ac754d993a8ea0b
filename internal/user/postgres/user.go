package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/invoice-approval/internal/auth"
	userDatamodel "github.com/frahmantamala/invoice-approval/internal/core/datamodel/user"
	"github.com/frahmantamala/invoice-approval/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = true", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}

	var grantRows []userDatamodel.RoleGrant
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&grantRows).Error; err != nil {
		return nil, err
	}

	grants := make([]auth.RoleGrant, 0, len(grantRows))
	for _, g := range grantRows {
		grants = append(grants, auth.RoleGrant{
			Role:      auth.Role(g.Role),
			CompanyID: g.CompanyID,
		})
	}

	return user.FromDataModelWithGrants(&row, grants), nil
}
