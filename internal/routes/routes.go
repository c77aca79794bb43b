package routes

import (
	"crm-api/internal/handlers"
	"crm-api/internal/middleware"
	"crm-api/internal/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes() *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "CRM API is running",
		})
	})

	api := ginRouter.Group("/api")

	// Public routes (no authentication required)
	{
		api.POST("/auth/register", handlers.Register)
		api.POST("/auth/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		// Users
		protected.GET("/users", middleware.RequireRoles(models.RoleAdmin, models.RoleSupervisor), handlers.GetAllUsers)
		protected.GET("/users/:id", handlers.GetUserByID)

		// Clients
		protected.GET("/clients", handlers.GetClients)
		protected.GET("/clients/:id", handlers.GetClientByID)
		protected.POST("/clients", handlers.CreateClient)
		protected.PUT("/clients/:id", handlers.UpdateClient)
		protected.DELETE("/clients/:id", handlers.DeleteClient)
		protected.PATCH("/clients/:id/categorize", handlers.CategorizeClient)

		// Sales
		protected.GET("/sales", handlers.GetSales)
		protected.GET("/sales/:id", handlers.GetSaleByID)
		protected.POST("/sales", handlers.CreateSale)
		protected.PUT("/sales/:id", handlers.UpdateSale)
		protected.DELETE("/sales/:id", handlers.DeleteSale)
		protected.POST("/sales/import", handlers.ImportSales)

		// Goals (mutation restricted to supervisor/admin)
		protected.GET("/goals", handlers.GetGoals)
		protected.GET("/goals/:id", handlers.GetGoalByID)
		elevated := middleware.RequireRoles(models.RoleAdmin, models.RoleSupervisor)
		protected.POST("/goals", elevated, handlers.CreateGoal)
		protected.PUT("/goals/:id", elevated, handlers.UpdateGoal)
		protected.DELETE("/goals/:id", elevated, handlers.DeleteGoal)

		// Strategies (mutation restricted to supervisor/admin)
		protected.GET("/strategies", handlers.GetStrategies)
		protected.GET("/strategies/:id", handlers.GetStrategyByID)
		protected.POST("/strategies", elevated, handlers.CreateStrategy)
		protected.PUT("/strategies/:id", elevated, handlers.UpdateStrategy)
		protected.DELETE("/strategies/:id", elevated, handlers.DeleteStrategy)

		// Tasks
		protected.GET("/tasks", handlers.GetTasks)
		protected.GET("/tasks/:id", handlers.GetTaskByID)
		protected.POST("/tasks", handlers.CreateTask)
		protected.PUT("/tasks/:id", handlers.UpdateTask)
		protected.DELETE("/tasks/:id", handlers.DeleteTask)
		protected.POST("/tasks/:id/comments", handlers.AddTaskComment)

		// Comments
		protected.GET("/comments/:type/:referenceId", handlers.GetComments)
		protected.POST("/comments", handlers.CreateComment)
		protected.PUT("/comments/:id", handlers.UpdateComment)
		protected.DELETE("/comments/:id", handlers.DeleteComment)

		// Control dashboard aggregate
		protected.GET("/control", handlers.GetControlOverview)

		// Websocket event feed
		protected.GET("/ws", handlers.WebSocketHandler)
	}

	return ginRouter
}
