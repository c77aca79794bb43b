package handlers

import (
	"errors"
	"net/http"

	"crm-api/internal/database"
	"crm-api/internal/middleware"
	"crm-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateCommentRequest represents the request payload for creating a comment
type CreateCommentRequest struct {
	Content     string `json:"content" binding:"required"`
	Type        string `json:"type" binding:"required"`
	ReferenceID string `json:"referenceId" binding:"required"`
}

// GetComments handles GET /api/comments/:type/:referenceId
func GetComments(c *gin.Context) {
	subject, err := models.ParseCommentSubject(c.Param("type"), c.Param("referenceId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comments []models.Comment
	err = database.GetDB().Preload("Author").
		Where("subject_type = ? AND subject_id = ?", subject.Type, subject.ID).
		Order("created_at desc").
		Find(&comments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, comments)
}

// CreateComment handles POST /api/comments
func CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subject, err := models.ParseCommentSubject(req.Type, req.ReferenceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := subject.Exists(database.GetDB())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve comment subject"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment subject not found"})
		return
	}

	comment := models.Comment{
		ID:       uuid.NewString(),
		Content:  req.Content,
		Subject:  subject,
		AuthorID: c.GetString("user_id"),
	}
	if err := database.GetDB().Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	var created models.Comment
	if err := database.GetDB().Preload("Author").Where("id = ?", comment.ID).First(&created).Error; err != nil {
		created = comment
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateComment handles PUT /api/comments/:id
// Only the author or an admin may edit.
func UpdateComment(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.Comment
	err := database.GetDB().Where("id = ?", c.Param("id")).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comment"})
		}
		return
	}

	if comment.AuthorID != c.GetString("user_id") && middleware.CurrentRole(c) != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to update this comment"})
		return
	}

	comment.Content = req.Content
	if err := database.GetDB().Save(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment handles DELETE /api/comments/:id
// Only the author or an admin may delete.
func DeleteComment(c *gin.Context) {
	var comment models.Comment
	err := database.GetDB().Where("id = ?", c.Param("id")).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comment"})
		}
		return
	}

	if comment.AuthorID != c.GetString("user_id") && middleware.CurrentRole(c) != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this comment"})
		return
	}

	if err := database.GetDB().Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully", "id": comment.ID})
}
