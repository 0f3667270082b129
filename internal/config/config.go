package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Persistence; empty means the in-memory job store
	DatabaseURL string

	// Rendered audio artifacts
	OutputDir string

	// Pipeline workers
	WorkerCount int

	// Enhancement stage
	// - "identity": pass-through (default)
	// - "jitter": seeded local variation
	// - "external": POST note events to EnhancerURL
	EnhancerMode string
	EnhancerURL  string
	EnhancerSeed int64

	// Observability
	SentryDSN string
}

func Load() *Config {
	return &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		OutputDir:    getEnv("OUTPUT_DIR", "outputs"),
		WorkerCount:  getEnvInt("WORKER_COUNT", 4),
		EnhancerMode: getEnv("ENHANCER_MODE", "identity"),
		EnhancerURL:  getEnv("ENHANCER_URL", ""),
		EnhancerSeed: int64(getEnvInt("ENHANCER_SEED", 42)),
		SentryDSN:    getEnv("SENTRY_DSN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
