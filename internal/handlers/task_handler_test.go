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

func setupTaskRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	// Seed the users the tests act as and assign to.
	require.NoError(t, db.Create(&models.User{ID: "u-1", Name: "Alice", Email: "alice@example.com", Password: "x", Role: models.RoleAdmin}).Error)
	require.NoError(t, db.Create(&models.User{ID: "u-2", Name: "Bob", Email: "bob@example.com", Password: "x", Role: models.RoleSales}).Error)

	r := gin.New()
	r.Use(middleware.JWTAuthMiddleware())
	r.POST("/api/tasks", CreateTask)
	r.PUT("/api/tasks/:id", UpdateTask)
	return r
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken("u-1", "alice@example.com", models.RoleAdmin)
	require.NoError(t, err)
	return token
}

func putTask(t *testing.T, r *gin.Engine, token, id string, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPut, "/api/tasks/"+id, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateTask_CompletionSpawnsWeeklySuccessor(t *testing.T) {
	r := setupTaskRouter(t)
	token := adminToken(t)

	require.NoError(t, database.DB.Create(&models.Strategy{ID: "s-1", Name: "Visit cadence", GoalID: "g-1"}).Error)

	due := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	task := models.Task{
		ID:           "t-1",
		Title:        "Weekly visit",
		Status:       models.StatusTodo,
		Priority:     models.PriorityHigh,
		DueDate:      due,
		Recurrence:   models.RecurrenceWeekly,
		AssignedToID: "u-1",
		CreatedByID:  "u-1",
		StrategyID:   "s-1",
	}
	require.NoError(t, database.DB.Create(&task).Error)

	w := putTask(t, r, token, task.ID, map[string]any{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	var original models.Task
	require.NoError(t, database.DB.Where("id = ?", task.ID).First(&original).Error)
	require.Equal(t, models.StatusDone, original.Status)
	require.NotNil(t, original.CompletedDate)

	var successors []models.Task
	require.NoError(t, database.DB.Where("id <> ?", task.ID).Find(&successors).Error)
	require.Len(t, successors, 1)
	require.WithinDuration(t, due.AddDate(0, 0, 7), successors[0].DueDate, time.Second)
	require.Equal(t, models.StatusTodo, successors[0].Status)
	require.Nil(t, successors[0].CompletedDate)
	require.Equal(t, task.Title, successors[0].Title)
	require.Equal(t, task.StrategyID, successors[0].StrategyID)
}

func TestUpdateTask_RepeatedDoneEditDoesNotRespawn(t *testing.T) {
	r := setupTaskRouter(t)
	token := adminToken(t)

	task := models.Task{
		ID:           "t-1",
		Title:        "Weekly visit",
		Status:       models.StatusTodo,
		DueDate:      time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		Recurrence:   models.RecurrenceWeekly,
		AssignedToID: "u-1",
		CreatedByID:  "u-1",
	}
	require.NoError(t, database.DB.Create(&task).Error)

	w := putTask(t, r, token, task.ID, map[string]any{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	// Editing a task that is already done must not trigger another spawn.
	w = putTask(t, r, token, task.ID, map[string]any{"status": "done", "title": "Weekly visit (edited)"})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, database.DB.Model(&models.Task{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestUpdateTask_NoRecurrenceNeverSpawns(t *testing.T) {
	r := setupTaskRouter(t)
	token := adminToken(t)

	task := models.Task{
		ID:           "t-1",
		Title:        "One-off call",
		Status:       models.StatusTodo,
		DueDate:      time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		Recurrence:   models.RecurrenceNone,
		AssignedToID: "u-1",
		CreatedByID:  "u-1",
	}
	require.NoError(t, database.DB.Create(&task).Error)

	w := putTask(t, r, token, task.ID, map[string]any{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, database.DB.Model(&models.Task{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUpdateTask_PastRecurrenceEndStopsChain(t *testing.T) {
	r := setupTaskRouter(t)
	token := adminToken(t)

	end := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	task := models.Task{
		ID:                "t-1",
		Title:             "Weekly visit",
		Status:            models.StatusTodo,
		DueDate:           time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		Recurrence:        models.RecurrenceWeekly,
		RecurrenceEndDate: &end,
		AssignedToID:      "u-1",
		CreatedByID:       "u-1",
	}
	require.NoError(t, database.DB.Create(&task).Error)

	w := putTask(t, r, token, task.ID, map[string]any{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, database.DB.Model(&models.Task{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUpdateTask_SalesCannotTouchOthersTask(t *testing.T) {
	r := setupTaskRouter(t)

	task := models.Task{
		ID:           "t-1",
		Title:        "Someone else's task",
		Status:       models.StatusTodo,
		DueDate:      time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		AssignedToID: "u-1",
		CreatedByID:  "u-1",
	}
	require.NoError(t, database.DB.Create(&task).Error)

	token, err := auth.GenerateToken("u-2", "bob@example.com", models.RoleSales)
	require.NoError(t, err)

	w := putTask(t, r, token, task.ID, map[string]any{"status": "done"})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateTask_InvalidStatusRejected(t *testing.T) {
	r := setupTaskRouter(t)
	token := adminToken(t)

	task := models.Task{
		ID:           "t-1",
		Title:        "Weekly visit",
		Status:       models.StatusTodo,
		DueDate:      time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		Recurrence:   models.RecurrenceWeekly,
		AssignedToID: "u-1",
		CreatedByID:  "u-1",
	}
	require.NoError(t, database.DB.Create(&task).Error)

	w := putTask(t, r, token, task.ID, map[string]any{"status": "bogus"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// The rejected status must not be stored.
	var stored models.Task
	require.NoError(t, database.DB.Where("id = ?", task.ID).First(&stored).Error)
	require.Equal(t, models.StatusTodo, stored.Status)

	// The rejected write must not disturb the completion invariant: one
	// successor, completedDate set once.
	w = putTask(t, r, token, task.ID, map[string]any{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, database.DB.Where("id = ?", task.ID).First(&stored).Error)
	require.NotNil(t, stored.CompletedDate)
	firstCompleted := *stored.CompletedDate

	w = putTask(t, r, token, task.ID, map[string]any{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, database.DB.Model(&models.Task{}).Count(&count).Error)
	require.Equal(t, int64(2), count)

	require.NoError(t, database.DB.Where("id = ?", task.ID).First(&stored).Error)
	require.NotNil(t, stored.CompletedDate)
	require.Equal(t, firstCompleted.UnixNano(), stored.CompletedDate.UnixNano())
}

func TestUpdateTask_InvalidPriorityRejected(t *testing.T) {
	r := setupTaskRouter(t)
	token := adminToken(t)

	task := models.Task{
		ID:           "t-1",
		Title:        "Visit",
		Status:       models.StatusTodo,
		DueDate:      time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		AssignedToID: "u-1",
		CreatedByID:  "u-1",
	}
	require.NoError(t, database.DB.Create(&task).Error)

	w := putTask(t, r, token, task.ID, map[string]any{"priority": "urgent"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTask_InvalidStatusRejected(t *testing.T) {
	r := setupTaskRouter(t)
	token := adminToken(t)

	body, _ := json.Marshal(map[string]any{
		"title":   "Bad status",
		"dueDate": "2025-03-10",
		"status":  "archived",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTask_InvalidRecurrenceRejected(t *testing.T) {
	r := setupTaskRouter(t)
	token := adminToken(t)

	body, _ := json.Marshal(map[string]any{
		"title":      "Bad recurrence",
		"dueDate":    "2025-03-10",
		"recurrence": "biweekly",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
