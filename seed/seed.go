// seed/seed.go
package seed

import (
	"log"
	"os"

	"crm-server/models"
	"crm-server/utils"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdminUser creates a default admin account when the user table is empty,
// so a fresh install can log in and add the rest of the team.
func SeedAdminUser() error {
	var count int64
	if err := utils.CRMDB.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Users already exist. Skipping admin seeding.")
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@crm.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "ChangeMe123"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		FullName: "Administrator",
		Email:    email,
		Phone:    "0000000000",
		Password: string(hashed),
		Role:     "admin",
	}

	if err := utils.CRMDB.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Default admin user seeded successfully.")
	return nil
}
