package auth

import (
	"database/sql"
	"fmt"

	"github.com/frahmantamala/invoice-approval/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForEmail(email string) (string, int64, error) {
	var passwordHash string
	var userID int64
	query := `SELECT id, password_hash FROM users WHERE email = ? AND is_active = true`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, fmt.Errorf("user not found")
		}
		return "", 0, err
	}
	return passwordHash, userID, nil
}

func (r *Repository) GetUserWithGrants(userID int64) (*auth.User, error) {
	var user auth.User

	query := `SELECT id, email, name FROM users WHERE id = ? AND is_active = true`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Email, &user.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	grantQuery := `SELECT role, company_id FROM role_grants WHERE user_id = ?`

	rows, err := r.db.Raw(grantQuery, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []auth.RoleGrant
	for rows.Next() {
		var role string
		var companyID sql.NullInt64
		if err := rows.Scan(&role, &companyID); err != nil {
			return nil, err
		}
		grant := auth.RoleGrant{Role: auth.Role(role)}
		if companyID.Valid {
			id := companyID.Int64
			grant.CompanyID = &id
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	user.Grants = grants
	return &user, nil
}
