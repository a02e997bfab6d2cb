package stores

import (
	"fmt"
	"log"
	"net/http"

	"crm-server/models"
	"crm-server/utils"

	"github.com/gin-gonic/gin"
)

func GetAllStores(c *gin.Context) {
	var storeList []models.Store
	if err := utils.CRMDB.Find(&storeList).Error; err != nil {
		log.Printf("Get stores error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stores"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stores": storeList, "total": len(storeList)})
}

func CreateStore(c *gin.Context) {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if input.Name == "" || input.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Store name and description are required"})
		return
	}

	newStore := models.Store{
		Name:        input.Name,
		Description: input.Description,
	}

	if err := utils.CRMDB.Create(&newStore).Error; err != nil {
		log.Printf("Create store error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create store"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Store created successfully",
		"store":   newStore,
	})
}

func UpdateStore(c *gin.Context) {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	var store models.Store
	if err := utils.CRMDB.First(&store, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	if input.Name != "" {
		store.Name = input.Name
	}
	if input.Description != "" {
		store.Description = input.Description
	}

	if err := utils.CRMDB.Save(&store).Error; err != nil {
		log.Printf("Update store error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update store"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Store updated successfully", "store": store})
}

// DeleteStore removes a store unless purchase orders still reference it. The
// dependency must be cleared first; deletion never cascades.
func DeleteStore(c *gin.Context) {
	id := c.Param("id")

	var store models.Store
	if err := utils.CRMDB.First(&store, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	var dependents int64
	if err := utils.CRMDB.Model(&models.PurchaseOrder{}).Where("store_id = ?", id).Count(&dependents).Error; err != nil {
		log.Printf("Delete store error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete store"})
		return
	}

	if dependents > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Store has purchase orders and cannot be deleted",
			"details": fmt.Sprintf("%d purchase order(s) reference this store", dependents),
		})
		return
	}

	if err := utils.CRMDB.Delete(&store).Error; err != nil {
		log.Printf("Delete store error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete store"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Store deleted successfully", "storeId": id})
}
