package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initGorm(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"request_history", "action_logs", "payment_requests", "role_grants", "users", "cost_centers", "sectors", "companies"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedOrganization(db)
		seedUsers(db, cfg.Security.BCryptCost)
	},
}

func seedOrganization(db *gorm.DB) {
	companies := []struct {
		Name  string
		TaxID string
	}{
		{"Acme Holding", "11222333000181"},
		{"Acme Logistics", "34028316000103"},
	}

	for _, c := range companies {
		var exists int
		row := db.Raw("SELECT 1 FROM companies WHERE tax_id = ?", c.TaxID).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec("INSERT INTO companies (name, tax_id, is_active, created_at, updated_at) VALUES (?, ?, true, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)", c.Name, c.TaxID).Error; err != nil {
			log.Fatalf("failed to insert company %s: %v", c.Name, err)
		}
		fmt.Println("Seeded company:", c.Name)
	}

	sectors := []struct {
		CompanyTaxID string
		Name         string
	}{
		{"11222333000181", "Operations"},
		{"11222333000181", "Marketing"},
		{"34028316000103", "Fleet"},
	}

	for _, s := range sectors {
		var companyID int64
		if err := db.Raw("SELECT id FROM companies WHERE tax_id = ?", s.CompanyTaxID).Row().Scan(&companyID); err != nil {
			log.Fatalf("failed to find company %s: %v", s.CompanyTaxID, err)
		}

		var exists int
		if err := db.Raw("SELECT 1 FROM sectors WHERE company_id = ? AND name = ?", companyID, s.Name).Row().Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec("INSERT INTO sectors (company_id, name, is_active, created_at, updated_at) VALUES (?, ?, true, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)", companyID, s.Name).Error; err != nil {
			log.Fatalf("failed to insert sector %s: %v", s.Name, err)
		}

		var sectorID int64
		if err := db.Raw("SELECT id FROM sectors WHERE company_id = ? AND name = ?", companyID, s.Name).Row().Scan(&sectorID); err != nil {
			log.Fatalf("failed to find sector %s: %v", s.Name, err)
		}
		code := fmt.Sprintf("CC-%d-01", sectorID)
		if err := db.Exec("INSERT INTO cost_centers (sector_id, code, name, is_active, created_at, updated_at) VALUES (?, ?, ?, true, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)", sectorID, code, s.Name+" General").Error; err != nil {
			log.Fatalf("failed to insert cost center for %s: %v", s.Name, err)
		}
		fmt.Println("Seeded sector:", s.Name)
	}
}

func seedUsers(db *gorm.DB, bcryptCost int) {
	password := "password"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	var firstCompanyID int64
	if err := db.Raw("SELECT id FROM companies ORDER BY id ASC LIMIT 1").Row().Scan(&firstCompanyID); err != nil {
		log.Fatalf("failed to find seed company: %v", err)
	}

	users := []struct {
		Email   string
		Name    string
		Role    string
		Company *int64
	}{
		{"maria@mail.com", "Maria Requester", "requester", nil},
		{"joao@mail.com", "Joao Manager", "manager", &firstCompanyID},
		{"ana@mail.com", "Ana Finance", "finance", nil},
		{"padil@mail.com", "Padil Admin", "admin", nil},
	}

	for _, u := range users {
		var exists int
		row := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Printf("user %s already exists; will ensure role grant\n", u.Email)
		} else {
			if err := db.Exec("INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, true, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)", u.Email, u.Name, string(hash)).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email)
		}

		var userID int64
		if err := db.Raw("SELECT id FROM users WHERE email = ?", u.Email).Row().Scan(&userID); err != nil {
			log.Fatalf("failed to find user %s: %v", u.Email, err)
		}

		var grantExists int
		if err := db.Raw("SELECT 1 FROM role_grants WHERE user_id = ? AND role = ?", userID, u.Role).Row().Scan(&grantExists); err == nil {
			continue
		}
		if err := db.Exec("INSERT INTO role_grants (user_id, role, company_id, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)", userID, u.Role, u.Company).Error; err != nil {
			log.Fatalf("failed to grant role %s to %s: %v", u.Role, u.Email, err)
		}
		fmt.Printf("Granted role %s to %s\n", u.Role, u.Email)
	}
}
