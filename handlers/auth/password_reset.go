package auth

import (
	"log"
	"math/rand"
	"net/http"
	"time"

	"crm-server/models"
	"crm-server/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const resetCodeValidity = 15 * time.Minute

// generateResetCode generates a 6-digit verification code
func generateResetCode() string {
	source := rand.NewSource(time.Now().UnixNano())
	r := rand.New(source)
	const digits = "0123456789"
	code := make([]byte, 6)
	for i := range code {
		code[i] = digits[r.Intn(len(digits))]
	}
	return string(code)
}

// ForgotPassword issues a new reset code. The response never reveals whether
// the email exists.
func ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
	}

	if err := c.ShouldBindJSON(&input); err != nil || input.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	var user models.User
	if err := utils.CRMDB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "If the email exists, a verification code has been sent"})
		return
	}

	code := generateResetCode()

	// Invalidate any outstanding codes for this email before issuing a new one
	if err := utils.CRMDB.Model(&models.PasswordReset{}).
		Where("email = ? AND is_used = ?", input.Email, false).
		Update("is_used", true).Error; err != nil {
		log.Printf("Failed to invalidate previous reset codes for %s: %v", input.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
		return
	}

	reset := models.PasswordReset{
		Email:     input.Email,
		Code:      code,
		ExpiresAt: time.Now().Add(resetCodeValidity),
	}

	if err := utils.CRMDB.Create(&reset).Error; err != nil {
		log.Printf("Failed to store reset code for %s: %v", input.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
		return
	}

	go utils.SendResetCodeEmail(user.Email, code)

	c.JSON(http.StatusOK, gin.H{"message": "If the email exists, a verification code has been sent"})
}

func findValidResetCode(email, code string) (*models.PasswordReset, string) {
	var reset models.PasswordReset
	if err := utils.CRMDB.Where("email = ? AND code = ? AND is_used = ?", email, code, false).First(&reset).Error; err != nil {
		return nil, "Invalid or expired verification code"
	}

	if time.Now().After(reset.ExpiresAt) {
		return nil, "Verification code has expired"
	}

	return &reset, ""
}

// VerifyResetCode validates a reset code without consuming it
func VerifyResetCode(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}

	if err := c.ShouldBindJSON(&input); err != nil || input.Email == "" || input.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and code are required"})
		return
	}

	if _, errMsg := findValidResetCode(input.Email, input.Code); errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code verified successfully"})
}

func passwordStrengthError(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters long"
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return "Password must contain uppercase, lowercase, and numbers"
	}

	return ""
}

// ResetPassword sets a new password after verifying the code, then consumes
// the code
func ResetPassword(c *gin.Context) {
	var input struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}

	if err := c.ShouldBindJSON(&input); err != nil || input.Email == "" || input.Code == "" || input.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email, code, and new password are required"})
		return
	}

	if errMsg := passwordStrengthError(input.NewPassword); errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	reset, errMsg := findValidResetCode(input.Email, input.Code)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	var user models.User
	if err := utils.CRMDB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while processing your password. Please try again."})
		return
	}

	user.Password = string(hashed)
	if err := utils.CRMDB.Save(&user).Error; err != nil {
		log.Printf("Failed to update password for %s: %v", input.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	reset.IsUsed = true
	if err := utils.CRMDB.Save(reset).Error; err != nil {
		log.Printf("Failed to mark reset code as used for %s: %v", input.Email, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
