package user

import (
	"errors"
	"time"

	"github.com/frahmantamala/invoice-approval/internal/auth"
	userDatamodel "github.com/frahmantamala/invoice-approval/internal/core/datamodel/user"
)

type User struct {
	ID           int64            `json:"id"`
	Email        string           `json:"email"`
	Name         string           `json:"name"`
	PasswordHash string           `json:"-"`
	IsActive     bool             `json:"is_active"`
	Grants       []auth.RoleGrant `json:"grants,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

var ErrNotFound = errors.New("user not found")

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModelWithGrants(u *userDatamodel.User, grants []auth.RoleGrant) *User {
	domainUser := FromDataModel(u)
	domainUser.Grants = grants
	return domainUser
}
