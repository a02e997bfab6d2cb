package users

import (
	"net/http"

	"crm-server/models"
	"crm-server/utils"

	"github.com/gin-gonic/gin"
)

// GetUsers returns the full user directory. The lead import screen resolves
// employee and assignee names against this list.
func GetUsers(c *gin.Context) {
	var users []models.User
	if err := utils.CRMDB.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "total": len(users)})
}

// GetUser returns a single user by id
func GetUser(c *gin.Context) {
	var user models.User
	if err := utils.CRMDB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}
