package handlers

import (
	"errors"
	"net/http"

	"crm-api/internal/database"
	"crm-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateClientRequest represents the request payload for creating a client
type CreateClientRequest struct {
	Name      string          `json:"name" binding:"required"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Address   string          `json:"address"`
	Category  string          `json:"category"`
	Reason    string          `json:"reason"`
	ABCClass  models.ABCClass `json:"abcClass"`
	Latitude  *float64        `json:"latitude"`
	Longitude *float64        `json:"longitude"`
}

// UpdateClientRequest represents the request payload for updating a client
type UpdateClientRequest struct {
	Name      *string          `json:"name"`
	Email     *string          `json:"email"`
	Phone     *string          `json:"phone"`
	Address   *string          `json:"address"`
	Category  *string          `json:"category"`
	Reason    *string          `json:"reason"`
	ABCClass  *models.ABCClass `json:"abcClass"`
	Latitude  *float64         `json:"latitude"`
	Longitude *float64         `json:"longitude"`
	Active    *bool            `json:"active"`
}

// GetClients handles GET /api/clients
func GetClients(c *gin.Context) {
	var clients []models.Client
	if err := database.GetDB().Preload("Sales").Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clients"})
		return
	}
	c.JSON(http.StatusOK, clients)
}

// GetClientByID handles GET /api/clients/:id
func GetClientByID(c *gin.Context) {
	var client models.Client
	err := database.GetDB().Preload("Sales").Where("id = ?", c.Param("id")).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch client"})
		}
		return
	}
	c.JSON(http.StatusOK, client)
}

// CreateClient handles POST /api/clients
func CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := models.Client{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Category:  req.Category,
		Reason:    req.Reason,
		ABCClass:  req.ABCClass,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Active:    true,
	}
	if err := database.GetDB().Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create client"})
		return
	}

	c.JSON(http.StatusCreated, client)
}

// UpdateClient handles PUT /api/clients/:id
func UpdateClient(c *gin.Context) {
	var client models.Client
	err := database.GetDB().Where("id = ?", c.Param("id")).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch client"})
		}
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.Category != nil {
		client.Category = *req.Category
	}
	if req.Reason != nil {
		client.Reason = *req.Reason
	}
	if req.ABCClass != nil {
		client.ABCClass = *req.ABCClass
	}
	if req.Latitude != nil {
		client.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		client.Longitude = req.Longitude
	}
	if req.Active != nil {
		client.Active = *req.Active
	}

	if err := database.GetDB().Save(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client"})
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /api/clients/:id
// Deactivates the client instead of removing the row, so sales history and
// retention goals keep their reference.
func DeleteClient(c *gin.Context) {
	var client models.Client
	err := database.GetDB().Where("id = ?", c.Param("id")).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch client"})
		}
		return
	}

	if err := database.GetDB().Model(&client).Update("active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client marked as inactive", "id": client.ID})
}

// CategorizeClient handles PATCH /api/clients/:id/categorize
func CategorizeClient(c *gin.Context) {
	var req struct {
		Category string `json:"category" binding:"required"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var client models.Client
	err := database.GetDB().Where("id = ?", c.Param("id")).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch client"})
		}
		return
	}

	client.Category = req.Category
	client.Reason = req.Reason
	if err := database.GetDB().Save(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client"})
		return
	}

	c.JSON(http.StatusOK, client)
}
