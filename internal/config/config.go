package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	SessionDuration time.Duration
	AppBaseURL      string

	// OAuth sign-in
	GoogleClientID     string
	GoogleClientSecret string

	// Invitation email via SES
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	// Chat-bot integration
	BotPushURL       string
	BotChannelToken  string
	BotChannelSecret string
	CronSecret       string

	// Signing key for short-lived realtime tokens
	RealtimeTokenSecret string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./dinnerboard.db"),
		DatabaseURL:     getEnv("DB_URL", ""),
		SessionDuration: 24 * time.Hour,
		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:8080"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Dinnerboard"),

		BotPushURL:       getEnv("BOT_PUSH_URL", ""),
		BotChannelToken:  getEnv("BOT_CHANNEL_TOKEN", ""),
		BotChannelSecret: getEnv("BOT_CHANNEL_SECRET", ""),
		CronSecret:       getEnv("CRON_SECRET", ""),

		RealtimeTokenSecret: getEnv("REALTIME_TOKEN_SECRET", ""),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
