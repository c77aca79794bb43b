package handlers

import (
	"errors"
	"net/http"
	"time"

	"crm-api/internal/database"
	"crm-api/internal/middleware"
	"crm-api/internal/models"
	"crm-api/internal/realtime"
	"crm-api/internal/recurrence"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title             string              `json:"title" binding:"required"`
	Description       string              `json:"description"`
	Priority          models.TaskPriority `json:"priority"`
	Status            models.TaskStatus   `json:"status"`
	DueDate           string              `json:"dueDate" binding:"required"`
	Latitude          *float64            `json:"latitude"`
	Longitude         *float64            `json:"longitude"`
	Recurrence        models.Recurrence   `json:"recurrence"`
	RecurrenceEndDate string              `json:"recurrenceEndDate"`
	AssignedToID      string              `json:"assignedToId"`
	StrategyID        string              `json:"strategyId"`
	ClientID          string              `json:"clientId"`
}

// UpdateTaskRequest represents the request payload for updating a task
type UpdateTaskRequest struct {
	Title             *string              `json:"title"`
	Description       *string              `json:"description"`
	Priority          *models.TaskPriority `json:"priority"`
	Status            *models.TaskStatus   `json:"status"`
	DueDate           *string              `json:"dueDate"`
	Latitude          *float64             `json:"latitude"`
	Longitude         *float64             `json:"longitude"`
	Recurrence        *models.Recurrence   `json:"recurrence"`
	RecurrenceEndDate *string              `json:"recurrenceEndDate"`
	AssignedToID      *string              `json:"assignedToId"`
	StrategyID        *string              `json:"strategyId"`
	ClientID          *string              `json:"clientId"`
}

func parseDateFlexible(dateStr string) (time.Time, bool) {
	if dateStr == "" {
		return time.Time{}, false
	}
	layouts := []string{
		"2006-01-02",  // ISO date
		"2 Jan 2006",  // e.g., 30 Oct 2025
		time.RFC3339,  // full RFC3339
		"02 Jan 2006", // zero-padded day
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func taskQuery(db *gorm.DB) *gorm.DB {
	return db.Preload("AssignedTo").Preload("CreatedBy").Preload("Strategy").Preload("Client")
}

/*
*
GetTasks handles GET /api/tasks
Admins and supervisors see every task; sales users see only tasks assigned
to them.
*/
func GetTasks(c *gin.Context) {
	db := database.GetDB()
	query := taskQuery(db)
	if middleware.CurrentRole(c) == models.RoleSales {
		query = query.Where("assigned_to_id = ?", c.GetString("user_id"))
	}
	if strategyID := c.Query("strategyId"); strategyID != "" {
		query = query.Where("strategy_id = ?", strategyID)
	}

	var tasks []models.Task
	if err := query.Order("due_date asc").Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// GetTaskByID handles GET /api/tasks/:id
func GetTaskByID(c *gin.Context) {
	var task models.Task
	err := taskQuery(database.GetDB()).Where("id = ?", c.Param("id")).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		}
		return
	}

	if middleware.CurrentRole(c) == models.RoleSales && task.AssignedToID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view this task"})
		return
	}

	c.JSON(http.StatusOK, task)
}

/*
*
CreateTask handles POST /api/tasks
Creates a new task; the authenticated user becomes its creator.
*/
func CreateTask(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusTodo
	}
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}
	rec := req.Recurrence
	if rec == "" {
		rec = models.RecurrenceNone
	}
	if !rec.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recurrence"})
		return
	}

	dueDate, ok := parseDateFlexible(req.DueDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dueDate"})
		return
	}

	var recurrenceEnd *time.Time
	if req.RecurrenceEndDate != "" {
		end, ok := parseDateFlexible(req.RecurrenceEndDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recurrenceEndDate"})
			return
		}
		recurrenceEnd = &end
	}

	assignedTo := req.AssignedToID
	if assignedTo == "" {
		assignedTo = userID
	}

	task := models.Task{
		ID:                uuid.NewString(),
		Title:             req.Title,
		Description:       req.Description,
		Priority:          priority,
		Status:            status,
		DueDate:           dueDate,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		Recurrence:        rec,
		RecurrenceEndDate: recurrenceEnd,
		AssignedToID:      assignedTo,
		CreatedByID:       userID,
		StrategyID:        req.StrategyID,
		ClientID:          req.ClientID,
	}
	if err := database.GetDB().Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	realtime.GetHub().Notify(task.AssignedToID, realtime.Event{
		Type: "task_created", Entity: "task", ID: task.ID, UserID: userID,
	})

	created := task
	_ = taskQuery(database.GetDB()).Where("id = ?", task.ID).First(&created).Error
	c.JSON(http.StatusCreated, created)
}

// UpdateTask handles PUT /api/tasks/:id
// When the update moves status from non-done to done it records the
// completion date (exactly once) and asks the recurrence engine for a
// successor. The write is guarded by a compare against the last-read status
// so two concurrent completions spawn at most one successor.
func UpdateTask(c *gin.Context) {
	userID := c.GetString("user_id")
	db := database.GetDB()

	var task models.Task
	err := db.Where("id = ?", c.Param("id")).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		}
		return
	}

	if middleware.CurrentRole(c) == models.RoleSales && task.AssignedToID != userID && task.CreatedByID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to update this task"})
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	priorStatus := task.Status
	updates := map[string]any{}

	if req.Title != nil {
		task.Title = *req.Title
		updates["title"] = task.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
		updates["description"] = task.Description
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		task.Priority = *req.Priority
		updates["priority"] = task.Priority
	}
	if req.DueDate != nil {
		d, ok := parseDateFlexible(*req.DueDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dueDate"})
			return
		}
		task.DueDate = d
		updates["due_date"] = d
	}
	if req.Latitude != nil {
		task.Latitude = req.Latitude
		updates["latitude"] = req.Latitude
	}
	if req.Longitude != nil {
		task.Longitude = req.Longitude
		updates["longitude"] = req.Longitude
	}
	if req.Recurrence != nil {
		if !req.Recurrence.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recurrence"})
			return
		}
		task.Recurrence = *req.Recurrence
		updates["recurrence"] = task.Recurrence
	}
	if req.RecurrenceEndDate != nil {
		if *req.RecurrenceEndDate == "" {
			task.RecurrenceEndDate = nil
			updates["recurrence_end_date"] = nil
		} else {
			end, ok := parseDateFlexible(*req.RecurrenceEndDate)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recurrenceEndDate"})
				return
			}
			task.RecurrenceEndDate = &end
			updates["recurrence_end_date"] = &end
		}
	}
	if req.AssignedToID != nil {
		task.AssignedToID = *req.AssignedToID
		updates["assigned_to_id"] = task.AssignedToID
	}
	if req.StrategyID != nil {
		task.StrategyID = *req.StrategyID
		updates["strategy_id"] = task.StrategyID
	}
	if req.ClientID != nil {
		task.ClientID = *req.ClientID
		updates["client_id"] = task.ClientID
	}

	completing := false
	if req.Status != nil {
		if !req.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		task.Status = *req.Status
		updates["status"] = task.Status
		completing = *req.Status == models.StatusDone && priorStatus != models.StatusDone
	}
	if completing {
		now := time.Now()
		task.CompletedDate = &now
		updates["completed_date"] = &now
	}

	if len(updates) > 0 {
		// Conditional on the status we read: a concurrent writer that already
		// changed it makes this a no-op instead of a double completion.
		result := db.Model(&models.Task{}).
			Where("id = ? AND status = ?", task.ID, priorStatus).
			Updates(updates)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Task was modified concurrently, reload and retry"})
			return
		}
	}

	// Completion is committed at this point; a failed successor insert is
	// reported as partial success, never rolled back into the completion.
	var spawnErr error
	if completing && task.Recurrence != models.RecurrenceNone {
		if successor := recurrence.SpawnNext(task); successor != nil {
			if err := db.Create(successor).Error; err != nil {
				spawnErr = err
			} else {
				realtime.GetHub().Notify(successor.AssignedToID, realtime.Event{
					Type: "task_spawned", Entity: "task", ID: successor.ID, UserID: userID,
				})
			}
		}
	}
	if completing {
		realtime.GetHub().NotifyAll(realtime.Event{
			Type: "task_completed", Entity: "task", ID: task.ID, UserID: userID,
		})
	}

	var updated models.Task
	if err := taskQuery(db).Where("id = ?", task.ID).First(&updated).Error; err != nil {
		updated = task
	}

	if spawnErr != nil {
		c.JSON(http.StatusOK, gin.H{
			"task":    updated,
			"warning": "Task completed, but the recurring successor could not be created; retry later",
		})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteTask handles DELETE /api/tasks/:id
// Sales users may delete only tasks they created.
func DeleteTask(c *gin.Context) {
	userID := c.GetString("user_id")

	var task models.Task
	err := database.GetDB().Where("id = ?", c.Param("id")).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		}
		return
	}

	if middleware.CurrentRole(c) == models.RoleSales && task.CreatedByID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this task"})
		return
	}

	if err := database.GetDB().Delete(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	realtime.GetHub().NotifyAll(realtime.Event{
		Type: "task_deleted", Entity: "task", ID: task.ID, UserID: userID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully", "id": task.ID})
}

// AddTaskComment handles POST /api/tasks/:id/comments
func AddTaskComment(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	taskID := c.Param("id")
	var count int64
	if err := database.GetDB().Model(&models.Task{}).Where("id = ?", taskID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	comment := models.Comment{
		ID:       uuid.NewString(),
		Content:  req.Content,
		Subject:  models.CommentSubject{Type: models.SubjectTask, ID: taskID},
		AuthorID: c.GetString("user_id"),
	}
	if err := database.GetDB().Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}
