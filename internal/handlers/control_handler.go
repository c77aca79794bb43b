package handlers

import (
	"net/http"
	"time"

	"crm-api/internal/alerts"
	"crm-api/internal/cache"
	"crm-api/internal/database"
	"crm-api/internal/models"
	"crm-api/internal/progress"

	"github.com/gin-gonic/gin"
)

// GoalProgressRow is one line of the control dashboard's progress table.
type GoalProgressRow struct {
	GoalID        string              `json:"goalId"`
	Name          string              `json:"name"`
	Variable      models.GoalVariable `json:"variable"`
	ProductFamily string              `json:"productFamily"`
	Target        float64             `json:"target"`
	Actual        float64             `json:"actual"`
	Progress      int                 `json:"progress"`
	Status        string              `json:"status"`
}

// ControlOverview aggregates the progress table and the alert list.
type ControlOverview struct {
	Goals       []GoalProgressRow `json:"goals"`
	Alerts      []alerts.Alert    `json:"alerts"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

var controlCache = cache.New[string, ControlOverview]()

// The overview is a full-table recompute; a short TTL keeps dashboard polling
// cheap without hiding fresh completions for long.
const controlCacheTTL = 30 * time.Second

// GetControlOverview handles GET /api/control
// Alerts are recomputed on demand and never persisted; results are cached
// briefly. Pass ?refresh=true to bypass the cache.
func GetControlOverview(c *gin.Context) {
	if c.Query("refresh") != "true" {
		if overview, ok := controlCache.Get("overview"); ok {
			c.JSON(http.StatusOK, overview)
			return
		}
	}

	db := database.GetDB()

	var goals []models.Goal
	if err := db.Find(&goals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch goals"})
		return
	}
	var tasks []models.Task
	if err := db.Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}
	var strategies []models.Strategy
	if err := db.Find(&strategies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch strategies"})
		return
	}
	sales, clients, err := loadProgressInputs(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch progress inputs"})
		return
	}

	now := time.Now()
	rows := make([]GoalProgressRow, 0, len(goals))
	for _, g := range goals {
		actual := progress.Actual(g, sales, clients, g.StartDate)
		pct := progress.Percent(actual, g.Target)
		rows = append(rows, GoalProgressRow{
			GoalID:        g.ID,
			Name:          g.Name,
			Variable:      g.Variable,
			ProductFamily: g.ProductFamily,
			Target:        g.Target,
			Actual:        actual,
			Progress:      pct,
			Status:        progress.Classify(pct),
		})
	}

	overview := ControlOverview{
		Goals:       rows,
		Alerts:      alerts.Generate(goals, tasks, strategies, sales, clients, now),
		GeneratedAt: now,
	}
	controlCache.Set("overview", overview, controlCacheTTL)

	c.JSON(http.StatusOK, overview)
}
