package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-api/internal/auth"
	"crm-api/internal/database"
	"crm-api/internal/middleware"
	"crm-api/internal/models"
	"crm-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupUserRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	require.NoError(t, db.Create(&models.User{ID: "u-1", Name: "Alice", Email: "alice@example.com", Password: "hash", Role: models.RoleSupervisor}).Error)
	require.NoError(t, db.Create(&models.User{ID: "u-2", Name: "Bob", Email: "bob@example.com", Password: "hash", Role: models.RoleSales}).Error)

	r := gin.New()
	r.Use(middleware.JWTAuthMiddleware())
	r.GET("/api/users", GetAllUsers)
	r.GET("/api/users/:id", GetUserByID)
	return r
}

func TestGetAllUsers_OmitsPasswordHash(t *testing.T) {
	r := setupUserRouter(t)

	token, err := auth.GenerateToken("u-1", "alice@example.com", models.RoleSupervisor)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "hash")

	var resp struct {
		Users []UserResponse `json:"users"`
		Count int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
}

func TestGetUserByID_SalesSeeOnlyThemselves(t *testing.T) {
	r := setupUserRouter(t)

	token, err := auth.GenerateToken("u-2", "bob@example.com", models.RoleSales)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/users/u-2", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/users/u-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}
