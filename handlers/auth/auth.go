package auth

import (
	"log"
	"net/http"

	"crm-server/models"
	"crm-server/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a new CRM user (first user, or added by an admin)
func Register(c *gin.Context) {
	var input struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
		Role     string `json:"role"`
		ImageURL string `json:"imageUrl"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data."})
		return
	}

	if input.FullName == "" || input.Email == "" || input.Phone == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Full name, email, phone, and password are required"})
		return
	}

	var existing models.User
	if err := utils.CRMDB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while processing your password. Please try again."})
		return
	}

	role := input.Role
	if role == "" {
		role = "employee"
	}

	user := models.User{
		FullName: input.FullName,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: string(hashed),
		Role:     role,
		ImageURL: input.ImageURL,
	}

	if err := utils.CRMDB.Create(&user).Error; err != nil {
		log.Printf("Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        user.ID,
		"full_name": user.FullName,
		"email":     user.Email,
		"phone":     user.Phone,
		"role":      user.Role,
		"image_url": user.ImageURL,
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email        string `json:"email"`
		Password     string `json:"password"`
		SelectedRole string `json:"selectedRole"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data. Please provide a valid email and password."})
		return
	}

	if input.Email == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	if input.SelectedRole == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a role to continue"})
		return
	}

	var user models.User
	if err := utils.CRMDB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.Role != input.SelectedRole {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Invalid credentials for " + input.SelectedRole + " role. Please select the correct role or check your credentials.",
		})
		return
	}

	tokenString, err := utils.GenerateToken(user.ID, user.Role, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": tokenString,
		"user": gin.H{
			"id":        user.ID,
			"full_name": user.FullName,
			"email":     user.Email,
			"role":      user.Role,
			"phone":     user.Phone,
			"image_url": user.ImageURL,
		},
	})
}
