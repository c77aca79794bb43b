package handlers

import (
	"errors"
	"net/http"
	"time"

	"crm-api/internal/database"
	"crm-api/internal/middleware"
	"crm-api/internal/models"
	"crm-api/internal/progress"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MonthlyTargetRequest is one month's slice of a goal target.
type MonthlyTargetRequest struct {
	Month       int     `json:"month" binding:"required,min=1,max=12"`
	Year        int     `json:"year" binding:"required"`
	TargetValue float64 `json:"targetValue" binding:"required"`
}

// CreateGoalRequest represents the request payload for creating a goal
type CreateGoalRequest struct {
	Name           string                 `json:"name" binding:"required"`
	Description    string                 `json:"description"`
	Variable       models.GoalVariable    `json:"variable" binding:"required"`
	ProductFamily  string                 `json:"productFamily" binding:"required"`
	StartDate      string                 `json:"startDate" binding:"required"`
	EndDate        string                 `json:"endDate" binding:"required"`
	Target         float64                `json:"target"`
	UserID         string                 `json:"userId"`
	MonthlyTargets []MonthlyTargetRequest `json:"monthlyTargets"`
}

// UpdateGoalRequest represents the request payload for updating a goal
type UpdateGoalRequest struct {
	Name           *string                `json:"name"`
	Description    *string                `json:"description"`
	Variable       *models.GoalVariable   `json:"variable"`
	ProductFamily  *string                `json:"productFamily"`
	StartDate      *string                `json:"startDate"`
	EndDate        *string                `json:"endDate"`
	Target         *float64               `json:"target"`
	Status         *models.GoalStatus     `json:"status"`
	UserID         *string                `json:"userId"`
	MonthlyTargets []MonthlyTargetRequest `json:"monthlyTargets"`
}

// GoalResponse is a stored goal enriched with its computed progress.
type GoalResponse struct {
	models.Goal
	Actual         float64 `json:"actual"`
	Progress       int     `json:"progress"`
	ProgressStatus string  `json:"progressStatus"`
}

func goalQuery(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("MonthlyTargets").Preload("Strategies")
}

// enrichGoal computes actual/progress for a goal and rolls up its monthly
// targets from current sales and client data.
func enrichGoal(goal models.Goal, sales []models.Sale, clients []models.Client, now time.Time) GoalResponse {
	actual := progress.Actual(goal, sales, clients, goal.StartDate)
	pct := progress.Percent(actual, goal.Target)
	progress.RollUpMonthlyTargets(&goal, sales, clients, now)
	return GoalResponse{
		Goal:           goal,
		Actual:         actual,
		Progress:       pct,
		ProgressStatus: progress.Classify(pct),
	}
}

func loadProgressInputs(db *gorm.DB) ([]models.Sale, []models.Client, error) {
	var sales []models.Sale
	if err := db.Find(&sales).Error; err != nil {
		return nil, nil, err
	}
	var clients []models.Client
	if err := db.Find(&clients).Error; err != nil {
		return nil, nil, err
	}
	return sales, clients, nil
}

// GetGoals handles GET /api/goals
// Admins and supervisors see every goal; sales users only their own. Each
// goal carries its computed progress and refreshed monthly targets.
func GetGoals(c *gin.Context) {
	db := database.GetDB()
	query := goalQuery(db)
	if middleware.CurrentRole(c) == models.RoleSales {
		query = query.Where("user_id = ?", c.GetString("user_id"))
	}

	var goals []models.Goal
	if err := query.Find(&goals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch goals"})
		return
	}

	sales, clients, err := loadProgressInputs(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute goal progress"})
		return
	}

	now := time.Now()
	resp := make([]GoalResponse, 0, len(goals))
	for _, g := range goals {
		resp = append(resp, enrichGoal(g, sales, clients, now))
	}

	c.JSON(http.StatusOK, resp)
}

// GetGoalByID handles GET /api/goals/:id
// Refreshed monthly target values are written back to the store.
func GetGoalByID(c *gin.Context) {
	db := database.GetDB()

	var goal models.Goal
	err := goalQuery(db).Where("id = ?", c.Param("id")).First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch goal"})
		}
		return
	}

	if middleware.CurrentRole(c) == models.RoleSales && goal.UserID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view this goal"})
		return
	}

	sales, clients, err := loadProgressInputs(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute goal progress"})
		return
	}

	resp := enrichGoal(goal, sales, clients, time.Now())
	for i := range resp.MonthlyTargets {
		mt := resp.MonthlyTargets[i]
		_ = db.Model(&models.MonthlyTarget{}).Where("id = ?", mt.ID).
			Updates(map[string]any{"current_value": mt.CurrentValue, "status": mt.Status}).Error
	}

	c.JSON(http.StatusOK, resp)
}

// CreateGoal handles POST /api/goals (supervisor/admin)
func CreateGoal(c *gin.Context) {
	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Variable.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid goal variable"})
		return
	}

	startDate, ok := parseDateFlexible(req.StartDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
		return
	}
	endDate, ok := parseDateFlexible(req.EndDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
		return
	}
	if endDate.Before(startDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must not precede startDate"})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = c.GetString("user_id")
	}

	goal := models.Goal{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		Variable:      req.Variable,
		ProductFamily: req.ProductFamily,
		StartDate:     startDate,
		EndDate:       endDate,
		Target:        req.Target,
		Status:        models.GoalActive,
		UserID:        userID,
	}
	for _, mt := range req.MonthlyTargets {
		goal.MonthlyTargets = append(goal.MonthlyTargets, models.MonthlyTarget{
			ID:          uuid.NewString(),
			Month:       mt.Month,
			Year:        mt.Year,
			TargetValue: mt.TargetValue,
			Status:      models.TargetPending,
		})
	}

	if err := database.GetDB().Create(&goal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create goal"})
		return
	}

	var created models.Goal
	if err := goalQuery(database.GetDB()).Where("id = ?", goal.ID).First(&created).Error; err != nil {
		created = goal
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateGoal handles PUT /api/goals/:id (supervisor/admin)
// Providing monthlyTargets replaces the existing set.
func UpdateGoal(c *gin.Context) {
	db := database.GetDB()

	var goal models.Goal
	err := db.Where("id = ?", c.Param("id")).First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch goal"})
		}
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		goal.Name = *req.Name
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	if req.Variable != nil {
		if !req.Variable.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid goal variable"})
			return
		}
		goal.Variable = *req.Variable
	}
	if req.ProductFamily != nil {
		goal.ProductFamily = *req.ProductFamily
	}
	if req.StartDate != nil {
		d, ok := parseDateFlexible(*req.StartDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
			return
		}
		goal.StartDate = d
	}
	if req.EndDate != nil {
		d, ok := parseDateFlexible(*req.EndDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
			return
		}
		goal.EndDate = d
	}
	if req.Target != nil {
		goal.Target = *req.Target
	}
	if req.Status != nil {
		goal.Status = *req.Status
	}
	if req.UserID != nil {
		goal.UserID = *req.UserID
	}

	if err := db.Save(&goal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update goal"})
		return
	}

	if len(req.MonthlyTargets) > 0 {
		if err := db.Where("goal_id = ?", goal.ID).Delete(&models.MonthlyTarget{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace monthly targets"})
			return
		}
		for _, mt := range req.MonthlyTargets {
			target := models.MonthlyTarget{
				ID:          uuid.NewString(),
				Month:       mt.Month,
				Year:        mt.Year,
				TargetValue: mt.TargetValue,
				Status:      models.TargetPending,
				GoalID:      goal.ID,
			}
			if err := db.Create(&target).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace monthly targets"})
				return
			}
		}
	}

	var updated models.Goal
	if err := goalQuery(db).Where("id = ?", goal.ID).First(&updated).Error; err != nil {
		updated = goal
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteGoal handles DELETE /api/goals/:id (supervisor/admin)
func DeleteGoal(c *gin.Context) {
	db := database.GetDB()

	var goal models.Goal
	err := db.Where("id = ?", c.Param("id")).First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch goal"})
		}
		return
	}

	if err := db.Where("goal_id = ?", goal.ID).Delete(&models.MonthlyTarget{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete monthly targets"})
		return
	}
	if err := db.Delete(&goal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete goal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted successfully", "id": goal.ID})
}
