package config

import (
	"fmt"
	"os"
)

// Config holds all runtime configuration read from the environment.
// Call Load once at startup; a .env file (if present) should be loaded
// by the caller via godotenv before Load runs.
type Config struct {
	// HTTP
	Port string

	// Database: DATABASE_URL wins, otherwise assembled from DB_* parts
	DatabaseURL string

	// Redis (optional; the server runs without it)
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Bluesky PDS endpoint and optional service-account credentials.
	// Without credentials only unauthenticated reads are available.
	BlueskyService    string
	BlueskyIdentifier string
	BlueskyPassword   string

	// Auth
	JWTSecret string

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sane defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8788"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisHost:         os.Getenv("REDIS_HOST"),
		RedisPort:         getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		BlueskyService:    getEnvOrDefault("BLUESKY_SERVICE", "https://bsky.social"),
		BlueskyIdentifier: os.Getenv("BLUESKY_IDENTIFIER"),
		BlueskyPassword:   os.Getenv("BLUESKY_PASSWORD"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:           getEnvOrDefault("LOG_FILE", "gltch.log"),
	}

	if cfg.DatabaseURL == "" {
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "postgres")
		password := os.Getenv("DB_PASSWORD")
		dbname := getEnvOrDefault("DB_NAME", "gltch")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		cfg.DatabaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
