package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crm-server/models"
	"crm-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.PasswordReset{}))
	utils.CRMDB = db
	return db
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", Register)
	r.POST("/auth/login", Login)
	r.POST("/auth/forgot-password", ForgotPassword)
	r.POST("/auth/verify-reset-code", VerifyResetCode)
	r.POST("/auth/reset-password", ResetPassword)
	return r
}

func doJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedUser(t *testing.T, db *gorm.DB, email, password, role string) models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		FullName: "Asha Verma",
		Email:    email,
		Phone:    "9876543210",
		Password: string(hashed),
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t)

	w := doJSON(r, "/auth/register", gin.H{
		"fullName": "Ravi Kumar",
		"email":    "ravi@crm.test",
		"phone":    "9876543211",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "ravi@crm.test").First(&user).Error)
	require.Equal(t, "employee", user.Role)
	// Stored password is a bcrypt hash, never the plaintext
	require.NotEqual(t, "Secret123", user.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Secret123")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t)
	seedUser(t, db, "taken@crm.test", "Secret123", "employee")

	w := doJSON(r, "/auth/register", gin.H{
		"fullName": "Ravi Kumar",
		"email":    "taken@crm.test",
		"phone":    "9876543211",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "Email already exists")
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t)
	seedUser(t, db, "asha@crm.test", "Secret123", "manager")

	w := doJSON(r, "/auth/login", gin.H{
		"email":        "asha@crm.test",
		"password":     "Secret123",
		"selectedRole": "manager",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "manager", resp.User.Role)
}

func TestLoginRejectsBadCredentialsAndRole(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t)
	seedUser(t, db, "asha@crm.test", "Secret123", "manager")

	w := doJSON(r, "/auth/login", gin.H{
		"email":        "asha@crm.test",
		"password":     "wrong",
		"selectedRole": "manager",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, "/auth/login", gin.H{
		"email":        "nobody@crm.test",
		"password":     "Secret123",
		"selectedRole": "manager",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Right credentials, wrong role selection
	w = doJSON(r, "/auth/login", gin.H{
		"email":        "asha@crm.test",
		"password":     "Secret123",
		"selectedRole": "admin",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, "/auth/login", gin.H{
		"email":    "asha@crm.test",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Please select a role to continue")
}

func TestForgotPasswordNeutralResponse(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t)
	seedUser(t, db, "asha@crm.test", "Secret123", "employee")

	// Unknown email gets the same response and leaves no code behind
	w := doJSON(r, "/auth/forgot-password", gin.H{"email": "nobody@crm.test"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "If the email exists")

	var codes int64
	require.NoError(t, db.Model(&models.PasswordReset{}).Count(&codes).Error)
	require.Zero(t, codes)

	w = doJSON(r, "/auth/forgot-password", gin.H{"email": "asha@crm.test"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "If the email exists")

	var reset models.PasswordReset
	require.NoError(t, db.Where("email = ?", "asha@crm.test").First(&reset).Error)
	require.Len(t, reset.Code, 6)
	require.False(t, reset.IsUsed)
}

func TestForgotPasswordInvalidatesPreviousCodes(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t)
	seedUser(t, db, "asha@crm.test", "Secret123", "employee")

	require.Equal(t, http.StatusOK, doJSON(r, "/auth/forgot-password", gin.H{"email": "asha@crm.test"}).Code)
	require.Equal(t, http.StatusOK, doJSON(r, "/auth/forgot-password", gin.H{"email": "asha@crm.test"}).Code)

	var active int64
	require.NoError(t, db.Model(&models.PasswordReset{}).
		Where("email = ? AND is_used = ?", "asha@crm.test", false).Count(&active).Error)
	require.EqualValues(t, 1, active)
}

func TestVerifyResetCode(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t)
	seedUser(t, db, "asha@crm.test", "Secret123", "employee")

	reset := models.PasswordReset{
		Email:     "asha@crm.test",
		Code:      "123456",
		ExpiresAt: time.Now().Add(resetCodeValidity),
	}
	require.NoError(t, db.Create(&reset).Error)

	w := doJSON(r, "/auth/verify-reset-code", gin.H{"email": "asha@crm.test", "code": "123456"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "/auth/verify-reset-code", gin.H{"email": "asha@crm.test", "code": "654321"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Invalid or expired verification code")

	// Verification does not consume the code
	w = doJSON(r, "/auth/verify-reset-code", gin.H{"email": "asha@crm.test", "code": "123456"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestVerifyResetCodeExpired(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t)
	seedUser(t, db, "asha@crm.test", "Secret123", "employee")

	reset := models.PasswordReset{
		Email:     "asha@crm.test",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Create(&reset).Error)

	w := doJSON(r, "/auth/verify-reset-code", gin.H{"email": "asha@crm.test", "code": "123456"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Verification code has expired")
}

func TestResetPassword(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t)
	seedUser(t, db, "asha@crm.test", "OldSecret1", "employee")

	reset := models.PasswordReset{
		Email:     "asha@crm.test",
		Code:      "123456",
		ExpiresAt: time.Now().Add(resetCodeValidity),
	}
	require.NoError(t, db.Create(&reset).Error)

	w := doJSON(r, "/auth/reset-password", gin.H{
		"email":       "asha@crm.test",
		"code":        "123456",
		"newPassword": "NewSecret1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "asha@crm.test").First(&user).Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("NewSecret1")))

	// The code is consumed; a second reset with it fails
	w = doJSON(r, "/auth/reset-password", gin.H{
		"email":       "asha@crm.test",
		"code":        "123456",
		"newPassword": "AnotherSecret1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Invalid or expired verification code")
}

func TestResetPasswordStrength(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t)
	seedUser(t, db, "asha@crm.test", "OldSecret1", "employee")

	reset := models.PasswordReset{
		Email:     "asha@crm.test",
		Code:      "123456",
		ExpiresAt: time.Now().Add(resetCodeValidity),
	}
	require.NoError(t, db.Create(&reset).Error)

	w := doJSON(r, "/auth/reset-password", gin.H{
		"email":       "asha@crm.test",
		"code":        "123456",
		"newPassword": "short1A",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "at least 8 characters")

	w = doJSON(r, "/auth/reset-password", gin.H{
		"email":       "asha@crm.test",
		"code":        "123456",
		"newPassword": "alllowercase1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "uppercase, lowercase, and numbers")
}

func TestPasswordStrengthError(t *testing.T) {
	require.NotEmpty(t, passwordStrengthError("Ab1"))
	require.NotEmpty(t, passwordStrengthError("nouppercase1"))
	require.NotEmpty(t, passwordStrengthError("NOLOWERCASE1"))
	require.NotEmpty(t, passwordStrengthError("NoDigitsHere"))
	require.Empty(t, passwordStrengthError("GoodPass1"))
}
