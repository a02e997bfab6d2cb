package migrations

import (
	"crm-server/models"
	"crm-server/utils"
)

func MigrateUsers() {
	utils.CRMDB.AutoMigrate(&models.User{}, &models.PasswordReset{})
}
