package purchaseorders

import (
	"log"
	"net/http"
	"strings"

	"crm-server/models"
	"crm-server/utils"

	"github.com/gin-gonic/gin"
)

func GetAllSerialNumbers(c *gin.Context) {
	query := utils.CRMDB.Preload("Store").Order("created_at DESC")

	if storeID := c.Query("storeId"); storeID != "" {
		query = query.Where("store_id = ?", storeID)
	}
	if isUsed := c.Query("isUsed"); isUsed != "" {
		query = query.Where("is_used = ?", isUsed == "true")
	}

	var serials []models.MTokenSerialNumber
	if err := query.Find(&serials).Error; err != nil {
		log.Printf("Get serial numbers error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch serial numbers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"serials": serials, "total": len(serials)})
}

// SearchSerialNumbers returns unused serials only, optionally narrowed by a
// case-insensitive substring and a store
func SearchSerialNumbers(c *gin.Context) {
	query := utils.CRMDB.Preload("Store").Where("is_used = ?", false)

	if q := c.Query("query"); q != "" {
		query = query.Where("UPPER(serial_number) LIKE ?", "%"+strings.ToUpper(q)+"%")
	}
	if storeID := c.Query("storeId"); storeID != "" {
		query = query.Where("store_id = ?", storeID)
	}

	var results []models.MTokenSerialNumber
	if err := query.Order("created_at DESC").Find(&results).Error; err != nil {
		log.Printf("Search serial numbers error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search serial numbers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "total": len(results)})
}

// MarkSerialAsUsed binds a serial number to the lead that consumed it. The
// unused -> used transition is one-way; a serial that is already used cannot
// be re-marked or re-bound.
func MarkSerialAsUsed(c *gin.Context) {
	var input struct {
		SerialNumber string `json:"serialNumber"`
		LeadID       string `json:"leadId"`
	}

	if err := c.ShouldBindJSON(&input); err != nil || input.SerialNumber == "" || input.LeadID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Serial number and lead ID are required"})
		return
	}

	var serial models.MTokenSerialNumber
	if err := utils.CRMDB.Where("serial_number = ?", strings.ToUpper(input.SerialNumber)).First(&serial).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Serial number not found"})
		return
	}

	if serial.IsUsed {
		c.JSON(http.StatusConflict, gin.H{"error": "Serial number " + serial.SerialNumber + " is already used"})
		return
	}

	serial.IsUsed = true
	serial.UsedInLeadID = input.LeadID

	if err := utils.CRMDB.Save(&serial).Error; err != nil {
		log.Printf("Mark serial as used error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark serial number as used"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "MToken marked as used", "serial": serial})
}
