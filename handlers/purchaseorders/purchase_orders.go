package purchaseorders

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"crm-server/models"
	"crm-server/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func GetAllPurchaseOrders(c *gin.Context) {
	var orders []models.PurchaseOrder
	if err := utils.CRMDB.Preload("Store").Order("created_at DESC").Find(&orders).Error; err != nil {
		log.Printf("Get purchase orders error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch purchase orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

func GetPurchaseOrderByID(c *gin.Context) {
	var order models.PurchaseOrder
	if err := utils.CRMDB.Preload("Store").First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// CreatePurchaseOrder allocates a batch of serial numbers to a new order.
// Every precondition is checked before any write; the order row and its
// serial rows are then written in one transaction, with the unique index on
// serial_number as the authoritative duplicate guard.
func CreatePurchaseOrder(c *gin.Context) {
	var input struct {
		StoreID       string   `json:"storeId"`
		Quantity      *int     `json:"quantity"`
		Amount        *float64 `json:"amount"`
		PurchaseDate  string   `json:"purchaseDate"`
		SerialNumbers []string `json:"serialNumbers"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if input.StoreID == "" || input.Quantity == nil || input.Amount == nil || input.PurchaseDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Store, quantity, amount, and purchase date are required"})
		return
	}

	if len(input.SerialNumbers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one serial number is required"})
		return
	}

	if len(input.SerialNumbers) != *input.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Number of serial numbers (%d) must match quantity (%d)", len(input.SerialNumbers), *input.Quantity),
		})
		return
	}

	var store models.Store
	if err := utils.CRMDB.First(&store, "id = ?", input.StoreID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	// Case-insensitive duplicate detection within the request
	normalized := make([]string, len(input.SerialNumbers))
	unique := make(map[string]bool, len(input.SerialNumbers))
	for i, s := range input.SerialNumbers {
		normalized[i] = strings.ToUpper(s)
		unique[normalized[i]] = true
	}
	if len(unique) != len(normalized) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Duplicate serial numbers provided"})
		return
	}

	// One batched existence check instead of a query per serial
	var existing []models.MTokenSerialNumber
	if err := utils.CRMDB.Where("serial_number IN ?", normalized).Find(&existing).Error; err != nil {
		log.Printf("Create purchase order error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create purchase order"})
		return
	}
	if len(existing) > 0 {
		taken := make([]string, len(existing))
		for i, s := range existing {
			taken[i] = s.SerialNumber
		}
		c.JSON(http.StatusConflict, gin.H{"error": "Serial numbers already exist: " + strings.Join(taken, ", ")})
		return
	}

	order := models.PurchaseOrder{
		ProductName:  "MToken",
		StoreID:      input.StoreID,
		Quantity:     *input.Quantity,
		Amount:       *input.Amount,
		PurchaseDate: input.PurchaseDate,
	}

	serials := make([]models.MTokenSerialNumber, len(normalized))

	err := utils.CRMDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for i, serialNumber := range normalized {
			serials[i] = models.MTokenSerialNumber{
				SerialNumber:    serialNumber,
				PurchaseOrderID: order.ID,
				StoreID:         input.StoreID,
				PurchaseDate:    input.PurchaseDate,
				IsUsed:          false,
			}
			if err := tx.Create(&serials[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		// A concurrent request can win the race between the existence check
		// and the insert; the unique index reports it here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "One or more serial numbers already exist"})
			return
		}
		log.Printf("Create purchase order error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create purchase order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Purchase order created successfully",
		"order":         order,
		"serialNumbers": serials,
	})
}

func UpdatePurchaseOrder(c *gin.Context) {
	var input struct {
		StoreID      string   `json:"storeId"`
		Quantity     *int     `json:"quantity"`
		Amount       *float64 `json:"amount"`
		PurchaseDate string   `json:"purchaseDate"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	var order models.PurchaseOrder
	if err := utils.CRMDB.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
		return
	}

	if input.StoreID != "" && input.StoreID != order.StoreID {
		var store models.Store
		if err := utils.CRMDB.First(&store, "id = ?", input.StoreID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
			return
		}
		order.StoreID = input.StoreID
	}

	if input.Quantity != nil {
		order.Quantity = *input.Quantity
	}
	if input.Amount != nil {
		order.Amount = *input.Amount
	}
	if input.PurchaseDate != "" {
		order.PurchaseDate = input.PurchaseDate
	}

	if err := utils.CRMDB.Save(&order).Error; err != nil {
		log.Printf("Update purchase order error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update purchase order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Purchase order updated successfully", "order": order})
}

// DeletePurchaseOrder removes an order and its serial numbers together
func DeletePurchaseOrder(c *gin.Context) {
	id := c.Param("id")

	var order models.PurchaseOrder
	if err := utils.CRMDB.First(&order, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found"})
		return
	}

	err := utils.CRMDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", id).Delete(&models.MTokenSerialNumber{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		log.Printf("Delete purchase order error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete purchase order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Purchase order deleted successfully", "orderId": id})
}
