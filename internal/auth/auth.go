package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Role names the fixed approval-pipeline roles. They are not configurable at
// runtime; authorization is a pure function over a user's grant set.
type Role string

const (
	RoleRequester Role = "requester"
	RoleManager   Role = "manager"
	RoleFinance   Role = "finance"
	RoleAdmin     Role = "admin"
)

// RoleGrant ties a role to an optional company scope. A nil CompanyID means
// the grant applies across all companies; finance and admin grants are
// issued that way.
type RoleGrant struct {
	Role      Role   `json:"role"`
	CompanyID *int64 `json:"company_id,omitempty"`
}

// User is the identity the rest of the system trusts: an id, a display name
// for audit denormalization, and the grant set loaded at request time.
type User struct {
	ID     int64       `json:"id"`
	Email  string      `json:"email"`
	Name   string      `json:"name"`
	Grants []RoleGrant `json:"grants,omitempty"`
}

func (u *User) HasRole(role Role) bool {
	for _, g := range u.Grants {
		if g.Role == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// IsFinance reports finance-stage rights. Admin explicitly carries finance's
// request-transition rights.
func (u *User) IsFinance() bool {
	return u.HasRole(RoleFinance) || u.HasRole(RoleAdmin)
}

// ManagedCompanies returns the company ids of the user's manager grants.
// A manager grant without a company scope grants nothing.
func (u *User) ManagedCompanies() []int64 {
	var ids []int64
	for _, g := range u.Grants {
		if g.Role == RoleManager && g.CompanyID != nil {
			ids = append(ids, *g.CompanyID)
		}
	}
	return ids
}

func (u *User) ManagesCompany(companyID int64) bool {
	for _, g := range u.Grants {
		if g.Role == RoleManager && g.CompanyID != nil && *g.CompanyID == companyID {
			return true
		}
	}
	return false
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
)

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
