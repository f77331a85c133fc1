package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Tables
	TickRateHz        int
	TableWidth        float64
	TableHeight       float64
	TablePreset       string
	MaxTables         int
	TableIdleMinutes  int
	FrameCacheSeconds int

	// Security
	JWTSecret              string
	ControlTokenTTLMinutes int
	AdminTokenHash         string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Redis
		// Empty disables the event bus and frame cache
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Tables
		TickRateHz:        getEnvInt("TICK_RATE_HZ", 60),
		TableWidth:        getEnvFloat("TABLE_WIDTH", 1200),
		TableHeight:       getEnvFloat("TABLE_HEIGHT", 700),
		TablePreset:       getEnv("TABLE_PRESET", "standard"),
		MaxTables:         getEnvInt("MAX_TABLES", 50),
		TableIdleMinutes:  getEnvInt("TABLE_IDLE_MINUTES", 30),
		FrameCacheSeconds: getEnvInt("FRAME_CACHE_SECONDS", 10),

		// Security
		JWTSecret:              getEnv("JWT_SECRET", "change-me-in-production"),
		ControlTokenTTLMinutes: getEnvInt("CONTROL_TOKEN_TTL_MINUTES", 240),
		AdminTokenHash:         getEnv("ADMIN_TOKEN_HASH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
