package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config carries the runtime settings of the server.
type Config struct {
	Port          string
	DatabasePath  string
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from a .env file when present, falling back to
// process environment variables and defaults.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return Config{
		Port:          getEnv("PORT", "8001"),
		DatabasePath:  getEnv("DATABASE_PATH", "crm.db"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
