package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port            int
	LogLevel        string
	DevMode         bool
	DataDir         string // directory scanned for CSV exports
	CSVSource       string // explicit CSV path or http(s) URL; overrides detection
	DatabasePath    string
	CachePath       string // msgpack cache of the last good snapshot
	RefreshSchedule string // cron spec for the reload job
	StaticDir       string // dashboard assets served at /
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 8080),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		DataDir:         getEnv("DATA_DIR", "./data/current"),
		CSVSource:       getEnv("CSV_SOURCE", ""),
		DatabasePath:    getEnv("DATABASE_PATH", "./data/portfolio.db"),
		CachePath:       getEnv("CACHE_PATH", "./data/cache/snapshot.msgpack"),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "@every 5m"),
		StaticDir:       getEnv("STATIC_DIR", "./web"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.DataDir == "" && c.CSVSource == "" {
		return fmt.Errorf("one of DATA_DIR or CSV_SOURCE is required")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
