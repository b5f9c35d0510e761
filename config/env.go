package config

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnv loads the .env file. Missing file is not fatal: containerized
// deployments inject variables directly.
func LoadEnv() {
	if err := godotenv.Load(".env"); err != nil {
		Logger.Warn("No .env file loaded, relying on process environment", zap.Error(err))
	}
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvDefault returns the variable's value or a logged default.
func GetEnvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		Logger.Warn("Environment variable not set, using default",
			zap.String("key", key),
			zap.String("default", fallback))
		return fallback
	}
	return value
}
