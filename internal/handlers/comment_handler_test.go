package handlers

import (
	"bytes"
	"encoding/json"
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

func setupCommentRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	require.NoError(t, db.Create(&models.User{ID: "u-1", Name: "Alice", Email: "alice@example.com", Password: "x", Role: models.RoleSales}).Error)

	r := gin.New()
	r.Use(middleware.JWTAuthMiddleware())
	r.GET("/api/comments/:type/:referenceId", GetComments)
	r.POST("/api/comments", CreateComment)
	r.PUT("/api/comments/:id", UpdateComment)
	r.DELETE("/api/comments/:id", DeleteComment)
	return r
}

func commentRequest(t *testing.T, r *gin.Engine, method, path, role string, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	userID := "u-1"
	if role == "admin" {
		userID = "u-admin"
	}
	token, err := auth.GenerateToken(userID, userID+"@example.com", models.Role(role))
	require.NoError(t, err)

	var body *bytes.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateComment_OnTask(t *testing.T) {
	r := setupCommentRouter(t)

	task := models.Task{ID: "t-1", Title: "Visit", Status: models.StatusTodo, DueDate: time.Now(), AssignedToID: "u-1", CreatedByID: "u-1"}
	require.NoError(t, database.DB.Create(&task).Error)

	w := commentRequest(t, r, http.MethodPost, "/api/comments", "sales", map[string]any{
		"content":     "Bring the new catalog",
		"type":        "task",
		"referenceId": task.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, models.SubjectTask, created.Subject.Type)
	require.Equal(t, task.ID, created.Subject.ID)
	require.Equal(t, "u-1", created.AuthorID)

	w = commentRequest(t, r, http.MethodGet, "/api/comments/task/"+task.ID, "sales", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
}

func TestCreateComment_UnknownSubjectType(t *testing.T) {
	r := setupCommentRouter(t)

	w := commentRequest(t, r, http.MethodPost, "/api/comments", "sales", map[string]any{
		"content":     "Hello",
		"type":        "invoice",
		"referenceId": "x-1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateComment_MissingSubject(t *testing.T) {
	r := setupCommentRouter(t)

	w := commentRequest(t, r, http.MethodPost, "/api/comments", "sales", map[string]any{
		"content":     "Hello",
		"type":        "client",
		"referenceId": "no-such-client",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateComment_OnlyAuthorOrAdmin(t *testing.T) {
	r := setupCommentRouter(t)

	comment := models.Comment{
		ID:      "cm-1",
		Content: "Original",
		Subject: models.CommentSubject{Type: models.SubjectTask, ID: "t-1"},
		// Belongs to someone other than u-1.
		AuthorID: "u-9",
	}
	require.NoError(t, database.DB.Create(&comment).Error)

	w := commentRequest(t, r, http.MethodPut, "/api/comments/cm-1", "sales", map[string]any{"content": "Hijacked"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = commentRequest(t, r, http.MethodPut, "/api/comments/cm-1", "admin", map[string]any{"content": "Moderated"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Comment
	require.NoError(t, database.DB.Where("id = ?", "cm-1").First(&updated).Error)
	require.Equal(t, "Moderated", updated.Content)
}

func TestDeleteComment_AuthorAllowed(t *testing.T) {
	r := setupCommentRouter(t)

	comment := models.Comment{
		ID:       "cm-1",
		Content:  "Mine",
		Subject:  models.CommentSubject{Type: models.SubjectClient, ID: "c-1"},
		AuthorID: "u-1",
	}
	require.NoError(t, database.DB.Create(&comment).Error)

	w := commentRequest(t, r, http.MethodDelete, "/api/comments/cm-1", "sales", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, database.DB.Model(&models.Comment{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}
