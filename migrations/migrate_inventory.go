package migrations

import (
	"crm-server/models"
	"crm-server/utils"
)

func MigrateInventory() {
	utils.CRMDB.AutoMigrate(&models.Store{}, &models.PurchaseOrder{}, &models.MTokenSerialNumber{})
}
