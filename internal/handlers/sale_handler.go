package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"crm-api/internal/database"
	"crm-api/internal/importer"
	"crm-api/internal/models"
	"crm-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateSaleRequest represents the request payload for recording a sale
type CreateSaleRequest struct {
	Date          string  `json:"date"`
	Amount        float64 `json:"amount" binding:"required"`
	Quantity      int     `json:"quantity"`
	ProductFamily string  `json:"productFamily" binding:"required"`
	ProductName   string  `json:"productName" binding:"required"`
	InvoiceNumber string  `json:"invoiceNumber"`
	Notes         string  `json:"notes"`
	ClientID      string  `json:"clientId"`
}

// RowError reports a single failed row of a bulk import.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// GetSales handles GET /api/sales
func GetSales(c *gin.Context) {
	var sales []models.Sale
	if err := database.GetDB().Preload("Client").Order("date desc").Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}
	c.JSON(http.StatusOK, sales)
}

// GetSaleByID handles GET /api/sales/:id
func GetSaleByID(c *gin.Context) {
	var sale models.Sale
	err := database.GetDB().Preload("Client").Where("id = ?", c.Param("id")).First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sale"})
		}
		return
	}
	c.JSON(http.StatusOK, sale)
}

// CreateSale handles POST /api/sales
func CreateSale(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, ok := parseDateFlexible(req.Date)
	if !ok {
		date = time.Now()
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	if req.ClientID != "" {
		var count int64
		if err := database.GetDB().Model(&models.Client{}).Where("id = ?", req.ClientID).Count(&count).Error; err != nil || count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clientId"})
			return
		}
	}

	sale := models.Sale{
		ID:            uuid.NewString(),
		Date:          date,
		Amount:        req.Amount,
		Quantity:      quantity,
		ProductFamily: req.ProductFamily,
		ProductName:   req.ProductName,
		InvoiceNumber: req.InvoiceNumber,
		Notes:         req.Notes,
		ClientID:      req.ClientID,
	}
	if err := database.GetDB().Create(&sale).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale"})
		return
	}

	touchLastPurchase(sale.ClientID, sale.Date)

	c.JSON(http.StatusCreated, sale)
}

// UpdateSale handles PUT /api/sales/:id
func UpdateSale(c *gin.Context) {
	var sale models.Sale
	err := database.GetDB().Where("id = ?", c.Param("id")).First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sale"})
		}
		return
	}

	var req struct {
		Date          *string  `json:"date"`
		Amount        *float64 `json:"amount"`
		Quantity      *int     `json:"quantity"`
		ProductFamily *string  `json:"productFamily"`
		ProductName   *string  `json:"productName"`
		InvoiceNumber *string  `json:"invoiceNumber"`
		Notes         *string  `json:"notes"`
		ClientID      *string  `json:"clientId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Date != nil {
		if d, ok := parseDateFlexible(*req.Date); ok {
			sale.Date = d
		}
	}
	if req.Amount != nil {
		sale.Amount = *req.Amount
	}
	if req.Quantity != nil {
		sale.Quantity = *req.Quantity
	}
	if req.ProductFamily != nil {
		sale.ProductFamily = *req.ProductFamily
	}
	if req.ProductName != nil {
		sale.ProductName = *req.ProductName
	}
	if req.InvoiceNumber != nil {
		sale.InvoiceNumber = *req.InvoiceNumber
	}
	if req.Notes != nil {
		sale.Notes = *req.Notes
	}
	if req.ClientID != nil {
		sale.ClientID = *req.ClientID
	}

	if err := database.GetDB().Save(&sale).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sale"})
		return
	}

	c.JSON(http.StatusOK, sale)
}

// DeleteSale handles DELETE /api/sales/:id
func DeleteSale(c *gin.Context) {
	var sale models.Sale
	err := database.GetDB().Where("id = ?", c.Param("id")).First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sale"})
		}
		return
	}

	if err := database.GetDB().Delete(&sale).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete sale"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted successfully", "id": sale.ID})
}

// ImportSales handles POST /api/sales/import
// Accepts a multipart CSV or XLSX file. Every row is attempted; failures are
// collected per row and returned alongside the success count, so one bad row
// never aborts the batch.
func ImportSales(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	var rows []importer.Row
	switch ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext {
	case ".csv":
		rows, err = importer.ParseCSV(file)
	case ".xlsx", ".xls":
		rows, err = importer.ParseXLSX(file)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only CSV and Excel files are allowed"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created := 0
	rowErrors := make([]RowError, 0)
	for _, row := range rows {
		if err := importSaleRow(row); err != nil {
			rowErrors = append(rowErrors, RowError{Row: row.Line, Error: err.Error()})
			continue
		}
		created++
	}

	realtime.GetHub().NotifyAll(realtime.Event{
		Type:   "sales_imported",
		Entity: "sale",
		UserID: c.GetString("user_id"),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":           fmt.Sprintf("Imported %d sales", created),
		"totalRows":         len(rows),
		"successfulImports": created,
		"errors":            rowErrors,
	})
}

func importSaleRow(row importer.Row) error {
	db := database.GetDB()

	amount, err := strconv.ParseFloat(row.Amount, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", row.Amount)
	}

	quantity := 1
	if row.Quantity != "" {
		q, err := strconv.Atoi(row.Quantity)
		if err != nil {
			return fmt.Errorf("invalid quantity %q", row.Quantity)
		}
		quantity = q
	}

	date, ok := parseDateFlexible(row.Date)
	if !ok {
		date = time.Now()
	}

	clientID := ""
	if row.ClientEmail != "" || row.ClientName != "" {
		client, err := findOrCreateClient(db, row)
		if err != nil {
			return fmt.Errorf("resolve client: %w", err)
		}
		clientID = client.ID
	}

	productFamily := row.ProductFamily
	if productFamily == "" {
		productFamily = "Unknown"
	}
	productName := row.ProductName
	if productName == "" {
		productName = "Unknown"
	}

	sale := models.Sale{
		ID:            uuid.NewString(),
		Date:          date,
		Amount:        amount,
		Quantity:      quantity,
		ProductFamily: productFamily,
		ProductName:   productName,
		InvoiceNumber: row.InvoiceNumber,
		Notes:         row.Notes,
		ClientID:      clientID,
	}
	if err := db.Create(&sale).Error; err != nil {
		return err
	}

	touchLastPurchase(clientID, sale.Date)
	return nil
}

// findOrCreateClient matches by email first, then by name, creating the
// client when neither matches.
func findOrCreateClient(db *gorm.DB, row importer.Row) (*models.Client, error) {
	var client models.Client
	query := db.Where("name = ?", row.ClientName)
	if row.ClientEmail != "" {
		query = db.Where("email = ?", row.ClientEmail)
	}

	err := query.First(&client).Error
	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := row.ClientName
	if name == "" {
		name = "Unknown"
	}
	client = models.Client{
		ID:     uuid.NewString(),
		Name:   name,
		Email:  row.ClientEmail,
		Phone:  row.ClientPhone,
		Active: true,
	}
	if err := db.Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// touchLastPurchase advances a client's last purchase date. Best effort: a
// failure here never fails the sale write.
func touchLastPurchase(clientID string, date time.Time) {
	if clientID == "" {
		return
	}
	_ = database.GetDB().Model(&models.Client{}).
		Where("id = ?", clientID).
		Update("last_purchase_date", date).Error
}
