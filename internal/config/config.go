// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults for the optimizer knobs. The iteration budget and learning rate
// are fixed-by-design (bounded latency, no convergence check); they are
// configurable only so operational tuning doesn't require a rebuild.
const (
	DefaultLookbackDays = 252
	DefaultIterations   = 50
	DefaultLearningRate = 0.01
)

// Config holds application configuration
type Config struct {
	DataDir      string // Base directory for the history and cache databases (always absolute)
	LogLevel     string
	LookbackDays int     // Trading days of price history fed to the estimator
	Iterations   int     // Gradient descent iteration budget
	LearningRate float64 // Gradient descent step size
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("ALLOCATOR_DATA_DIR", "")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".allocator")
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory to absolute path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	lookback, err := getEnvInt("ALLOCATOR_LOOKBACK_DAYS", DefaultLookbackDays)
	if err != nil {
		return nil, err
	}
	iterations, err := getEnvInt("ALLOCATOR_ITERATIONS", DefaultIterations)
	if err != nil {
		return nil, err
	}
	learningRate, err := getEnvFloat("ALLOCATOR_LEARNING_RATE", DefaultLearningRate)
	if err != nil {
		return nil, err
	}

	return &Config{
		DataDir:      absDataDir,
		LogLevel:     getEnv("ALLOCATOR_LOG_LEVEL", "info"),
		LookbackDays: lookback,
		Iterations:   iterations,
		LearningRate: learningRate,
	}, nil
}

// HistoryDBPath returns the path of the price history database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// CacheDBPath returns the path of the calculation cache database.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("invalid value for %s: must be positive, got %d", key, parsed)
	}
	return parsed, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("invalid value for %s: must be positive, got %f", key, parsed)
	}
	return parsed, nil
}
