package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Broker defaults
	Username       string
	Password       string
	ManagementPort string
	AMQPPort       string
	VHost          string

	// History
	HistoryPath string
	HistoryKeep int

	// Web (serve mode)
	WebPort   string
	JwtSecret string

	// Logging
	LogLevel string

	Version string
}

// LoadConfig loads configuration from .env file, environment variables, or defaults
// Priority: environment variables > .env file > default values
func LoadConfig(version string) *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	return &Config{
		Username:       getEnv("TOPOMQ_USERNAME", "guest"),
		Password:       getEnv("TOPOMQ_PASSWORD", "guest"),
		ManagementPort: getEnv("TOPOMQ_MANAGEMENT_PORT", "15672"),
		AMQPPort:       getEnv("TOPOMQ_AMQP_PORT", "5672"),
		VHost:          getEnv("TOPOMQ_VHOST", ""),

		HistoryPath: getEnv("TOPOMQ_HISTORY_PATH", "topomq-history.db"),
		HistoryKeep: getEnvAsInt("TOPOMQ_HISTORY_KEEP", 20),

		WebPort:   getEnv("TOPOMQ_WEB_PORT", "3000"),
		JwtSecret: getEnv("TOPOMQ_JWT_SECRET", "secret"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		Version:  version,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s: %s, using default: %d\n", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
