package notifications

import (
	"net/http"

	"crm-server/models"
	"crm-server/utils"

	"github.com/gin-gonic/gin"
)

// GetNotifications lists the current user's notifications, newest first
func GetNotifications(c *gin.Context) {
	userInterface, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	user := userInterface.(models.User)

	var items []models.Notification
	if err := utils.CRMDB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": items, "total": len(items)})
}

// MarkNotificationViewed flags one of the current user's notifications as seen
func MarkNotificationViewed(c *gin.Context) {
	userInterface, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	user := userInterface.(models.User)

	var notification models.Notification
	if err := utils.CRMDB.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&notification).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	notification.IsViewed = true
	if err := utils.CRMDB.Save(&notification).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, notification)
}
