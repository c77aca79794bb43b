package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crm-api/internal/auth"
	"crm-api/internal/database"
	"crm-api/internal/middleware"
	"crm-api/internal/models"
	"crm-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupSaleRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	require.NoError(t, db.Create(&models.User{ID: "u-1", Name: "Alice", Email: "alice@example.com", Password: "x", Role: models.RoleSales}).Error)

	r := gin.New()
	r.Use(middleware.JWTAuthMiddleware())
	r.POST("/api/sales", CreateSale)
	r.POST("/api/sales/import", ImportSales)

	token, err := auth.GenerateToken("u-1", "alice@example.com", models.RoleSales)
	require.NoError(t, err)
	return r, token
}

func multipartCSV(t *testing.T, csv string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "sales.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestImportSales_BadRowDoesNotAbortBatch(t *testing.T) {
	r, token := setupSaleRouter(t)

	csv := "clientName,clientEmail,date,amount,quantity,productFamily,productName\n" +
		"Acme,acme@example.com,2025-03-01,1200.50,2,Widgets,Widget Pro\n" +
		"Acme,acme@example.com,2025-03-05,not-a-number,1,Widgets,Widget Mini\n" +
		"Globex,globex@example.com,2025-03-07,300,1,Widgets,Widget Mini\n"
	body, contentType := multipartCSV(t, csv)

	req := httptest.NewRequest(http.MethodPost, "/api/sales/import", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		TotalRows         int        `json:"totalRows"`
		SuccessfulImports int        `json:"successfulImports"`
		Errors            []RowError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.TotalRows)
	require.Equal(t, 2, resp.SuccessfulImports)
	require.Len(t, resp.Errors, 1)
	require.Equal(t, 2, resp.Errors[0].Row)

	var saleCount int64
	require.NoError(t, database.DB.Model(&models.Sale{}).Count(&saleCount).Error)
	require.Equal(t, int64(2), saleCount)
}

func TestImportSales_FindsOrCreatesClientByEmail(t *testing.T) {
	r, token := setupSaleRouter(t)

	existing := models.Client{ID: "c-1", Name: "Acme Corp", Email: "acme@example.com", Active: true}
	require.NoError(t, database.DB.Create(&existing).Error)

	csv := "clientName,clientEmail,date,amount\n" +
		"Acme,acme@example.com,2025-03-01,500\n" + // matches existing by email
		"Globex,globex@example.com,2025-03-02,800\n" // new client
	body, contentType := multipartCSV(t, csv)

	req := httptest.NewRequest(http.MethodPost, "/api/sales/import", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var clientCount int64
	require.NoError(t, database.DB.Model(&models.Client{}).Count(&clientCount).Error)
	require.Equal(t, int64(2), clientCount)

	var sale models.Sale
	require.NoError(t, database.DB.Where("amount = ?", 500.0).First(&sale).Error)
	require.Equal(t, existing.ID, sale.ClientID)

	var updated models.Client
	require.NoError(t, database.DB.Where("id = ?", existing.ID).First(&updated).Error)
	require.NotNil(t, updated.LastPurchaseDate)
}

func TestImportSales_RejectsUnknownExtension(t *testing.T) {
	r, token := setupSaleRouter(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "sales.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("whatever"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sales/import", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSale_TouchesClientLastPurchase(t *testing.T) {
	r, token := setupSaleRouter(t)

	client := models.Client{ID: "c-1", Name: "Acme Corp", Email: "acme@example.com", Active: true}
	require.NoError(t, database.DB.Create(&client).Error)

	body, _ := json.Marshal(map[string]any{
		"date":          "2025-04-01",
		"amount":        999.99,
		"productFamily": "Widgets",
		"productName":   "Widget Pro",
		"clientId":      client.ID,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var updated models.Client
	require.NoError(t, database.DB.Where("id = ?", client.ID).First(&updated).Error)
	require.NotNil(t, updated.LastPurchaseDate)
	require.WithinDuration(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), *updated.LastPurchaseDate, time.Second)
}
