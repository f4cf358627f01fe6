// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir             string // Base directory for the database file (always absolute)
	Port                int
	LogLevel            string
	DevMode             bool
	DefaultSeats        int     // Parliament seats used when a simulation request omits them
	DefaultThresholdPct float64 // Parliamentary entry threshold in percent
	MaxCoalitionParties int     // Upper bound on parliamentary parties for coalition search
}

// Load reads configuration from environment variables.
// A .env file in the working directory is honored if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("CHRONO_DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("PORT", 8000),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		DefaultSeats:        getEnvAsInt("DEFAULT_SEATS", 150),
		DefaultThresholdPct: getEnvAsFloat("DEFAULT_THRESHOLD_PCT", 5.0),
		MaxCoalitionParties: getEnvAsInt("MAX_COALITION_PARTIES", 20),
	}

	return cfg, nil
}

// DatabasePath returns the path of the SQLite database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "chronodemica.db")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
