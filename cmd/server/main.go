package main

import (
	"log"

	"crm-api/internal/config"
	"crm-api/internal/database"
	"crm-api/internal/routes"
)

func main() {
	cfg := config.Load()

	// Init database and seed the admin account once
	database.InitDB(cfg.DatabasePath)
	if err := database.EnsureAdminUser(database.GetDB(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("Failed to seed admin user: ", err)
	}

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes()

	// Start server
	addr := ":" + cfg.Port
	log.Printf("CRM API starting on %s", addr)

	if err := ginRoutes.Run(addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
