package handlers

import (
	"errors"
	"net/http"

	"crm-api/internal/database"
	"crm-api/internal/middleware"
	"crm-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserResponse is the safe user payload (no password hash).
type UserResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// GetAllUsers returns all users (supervisor/admin)
// GET /api/users
func GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := database.GetDB().Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": resp,
		"count": len(resp),
	})
}

// GetUserByID returns a single user. Sales users may only view themselves.
// GET /api/users/:id
func GetUserByID(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := database.GetDB().Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		}
		return
	}

	if middleware.CurrentRole(c) == models.RoleSales && c.GetString("user_id") != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view this user"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}
