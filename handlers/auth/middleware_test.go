package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func protectedRouter(t *testing.T, roles ...string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", AuthMiddleware())
	if len(roles) > 0 {
		group.Use(RequireAnyRole(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return r
}

func getWithAuth(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	db := setupTestDB(t)
	r := protectedRouter(t)
	user := seedUser(t, db, "asha@crm.test", "Secret123", "employee")

	token, err := utils.GenerateToken(user.ID, user.Role, user.Email)
	require.NoError(t, err)

	w := getWithAuth(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)

	w = getWithAuth(r, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Authorization header is missing")

	w = getWithAuth(r, token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Invalid authorization header format")

	w = getWithAuth(r, "Bearer not-a-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuthMiddlewareDeletedUser(t *testing.T) {
	db := setupTestDB(t)
	r := protectedRouter(t)
	user := seedUser(t, db, "asha@crm.test", "Secret123", "employee")

	token, err := utils.GenerateToken(user.ID, user.Role, user.Email)
	require.NoError(t, err)
	require.NoError(t, db.Delete(&user).Error)

	w := getWithAuth(r, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "User not found")
}

func TestRequireAnyRole(t *testing.T) {
	db := setupTestDB(t)
	r := protectedRouter(t, "admin", "manager")

	employee := seedUser(t, db, "emp@crm.test", "Secret123", "employee")
	admin := seedUser(t, db, "admin@crm.test", "Secret123", "admin")

	employeeToken, err := utils.GenerateToken(employee.ID, employee.Role, employee.Email)
	require.NoError(t, err)
	adminToken, err := utils.GenerateToken(admin.ID, admin.Role, admin.Email)
	require.NoError(t, err)

	w := getWithAuth(r, "Bearer "+adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = getWithAuth(r, "Bearer "+employeeToken)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "You do not have permission")
}
