package migrations

import (
	"crm-server/models"
	"crm-server/utils"
)

func MigrateLeads() {
	utils.CRMDB.AutoMigrate(&models.Lead{}, &models.Notification{})
}
