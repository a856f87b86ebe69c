package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultGatewayURL   = "https://ai.gateway.lovable.dev/v1/chat/completions"
	DefaultGatewayModel = "google/gemini-2.5-flash"
)

type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	DatabaseURL      string
	DatabasePassword string // overrides the password in DatabaseURL when set

	// Firebase
	FirebaseProjectID string

	// AI gateway (chat completions)
	GatewayAPIKey string
	GatewayURL    string
	GatewayModel  string

	// Rate limiting for generation endpoints
	RateLimitRPS int
}

func Load() (*Config, error) {
	// Load .env file if it exists (development only); real env vars win
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DatabasePassword:  getEnv("DATABASE_PASSWORD", ""),
		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
		GatewayAPIKey:     getEnv("AI_GATEWAY_API_KEY", ""),
		GatewayURL:        getEnv("AI_GATEWAY_URL", DefaultGatewayURL),
		GatewayModel:      getEnv("AI_GATEWAY_MODEL", DefaultGatewayModel),
		RateLimitRPS:      getEnvInt("RATE_LIMIT_RPS", 5),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
