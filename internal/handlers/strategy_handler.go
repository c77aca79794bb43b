package handlers

import (
	"errors"
	"net/http"
	"time"

	"crm-api/internal/database"
	"crm-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateStrategyRequest represents the request payload for creating a strategy
type CreateStrategyRequest struct {
	Name              string               `json:"name" binding:"required"`
	Description       string               `json:"description"`
	State             models.StrategyState `json:"state"`
	StartDate         string               `json:"startDate"`
	EndDate           string               `json:"endDate"`
	GoalID            string               `json:"goalId"`
	ClientID          string               `json:"clientId"`
	CreateInitialTask bool                 `json:"createInitialTask"`
}

// UpdateStrategyRequest represents the request payload for updating a strategy
type UpdateStrategyRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	State       *models.StrategyState `json:"state"`
	StartDate   *string               `json:"startDate"`
	EndDate     *string               `json:"endDate"`
	Results     *string               `json:"results"`
	ROI         *float64              `json:"roi"`
	GoalID      *string               `json:"goalId"`
	ClientID    *string               `json:"clientId"`
}

func strategyQuery(db *gorm.DB) *gorm.DB {
	return db.Preload("Goal").Preload("Client").Preload("Tasks")
}

// GetStrategies handles GET /api/strategies
func GetStrategies(c *gin.Context) {
	var strategies []models.Strategy
	if err := strategyQuery(database.GetDB()).Find(&strategies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch strategies"})
		return
	}
	c.JSON(http.StatusOK, strategies)
}

// GetStrategyByID handles GET /api/strategies/:id
func GetStrategyByID(c *gin.Context) {
	var strategy models.Strategy
	err := strategyQuery(database.GetDB()).Where("id = ?", c.Param("id")).First(&strategy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch strategy"})
		}
		return
	}
	c.JSON(http.StatusOK, strategy)
}

// CreateStrategy handles POST /api/strategies (supervisor/admin)
// With createInitialTask set, a first task due in a week is attached so the
// strategy does not start empty.
func CreateStrategy(c *gin.Context) {
	var req CreateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state := req.State
	if state == "" {
		state = models.StrategyPlanned
	}

	startDate, _ := parseDateFlexible(req.StartDate)
	endDate, _ := parseDateFlexible(req.EndDate)

	strategy := models.Strategy{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		State:       state,
		StartDate:   startDate,
		EndDate:     endDate,
		GoalID:      req.GoalID,
		ClientID:    req.ClientID,
	}
	if err := database.GetDB().Create(&strategy).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create strategy"})
		return
	}

	if req.CreateInitialTask {
		userID := c.GetString("user_id")
		task := models.Task{
			ID:           uuid.NewString(),
			Title:        "Initial task for " + req.Name,
			Description:  "First task for strategy: " + req.Description,
			Priority:     models.PriorityMedium,
			Status:       models.StatusTodo,
			DueDate:      time.Now().AddDate(0, 0, 7),
			Recurrence:   models.RecurrenceNone,
			AssignedToID: userID,
			CreatedByID:  userID,
			StrategyID:   strategy.ID,
			ClientID:     req.ClientID,
		}
		if err := database.GetDB().Create(&task).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Strategy created but initial task failed"})
			return
		}
	}

	var created models.Strategy
	if err := strategyQuery(database.GetDB()).Where("id = ?", strategy.ID).First(&created).Error; err != nil {
		created = strategy
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateStrategy handles PUT /api/strategies/:id (supervisor/admin)
func UpdateStrategy(c *gin.Context) {
	db := database.GetDB()

	var strategy models.Strategy
	err := db.Where("id = ?", c.Param("id")).First(&strategy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch strategy"})
		}
		return
	}

	var req UpdateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		strategy.Name = *req.Name
	}
	if req.Description != nil {
		strategy.Description = *req.Description
	}
	if req.State != nil {
		strategy.State = *req.State
	}
	if req.StartDate != nil {
		if d, ok := parseDateFlexible(*req.StartDate); ok {
			strategy.StartDate = d
		}
	}
	if req.EndDate != nil {
		if d, ok := parseDateFlexible(*req.EndDate); ok {
			strategy.EndDate = d
		}
	}
	if req.Results != nil {
		strategy.Results = *req.Results
	}
	if req.ROI != nil {
		strategy.ROI = req.ROI
	}
	if req.GoalID != nil {
		strategy.GoalID = *req.GoalID
	}
	if req.ClientID != nil {
		strategy.ClientID = *req.ClientID
	}

	if err := db.Save(&strategy).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update strategy"})
		return
	}

	var updated models.Strategy
	if err := strategyQuery(db).Where("id = ?", strategy.ID).First(&updated).Error; err != nil {
		updated = strategy
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteStrategy handles DELETE /api/strategies/:id (supervisor/admin)
// With ?deleteTasks=true the strategy's tasks are removed too; otherwise
// they are detached and survive as standalone tasks.
func DeleteStrategy(c *gin.Context) {
	db := database.GetDB()

	var strategy models.Strategy
	err := db.Where("id = ?", c.Param("id")).First(&strategy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch strategy"})
		}
		return
	}

	if c.Query("deleteTasks") == "true" {
		err = db.Where("strategy_id = ?", strategy.ID).Delete(&models.Task{}).Error
	} else {
		err = db.Model(&models.Task{}).Where("strategy_id = ?", strategy.ID).Update("strategy_id", "").Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to detach strategy tasks"})
		return
	}

	if err := db.Delete(&strategy).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete strategy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Strategy deleted successfully", "id": strategy.ID})
}
