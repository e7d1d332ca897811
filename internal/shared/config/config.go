package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string

	JWTSecret string

	BrevoAPIKey   string
	EmailFrom     string
	EmailFromName string

	PaymentBaseURL string

	EngineWorkers          int
	WebhookTimeoutSeconds  int
	ExecutionRetentionDays int
	RetentionSweepSchedule string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		Port:                   os.Getenv("PORT"),
		Env:                    os.Getenv("ENV"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		BrevoAPIKey:            os.Getenv("BREVO_API_KEY"),
		EmailFrom:              os.Getenv("EMAIL_FROM"),
		EmailFromName:          os.Getenv("EMAIL_FROM_NAME"),
		PaymentBaseURL:         os.Getenv("PAYMENT_BASE_URL"),
		EngineWorkers:          envInt("ENGINE_WORKERS", 4),
		WebhookTimeoutSeconds:  envInt("WEBHOOK_TIMEOUT_SECONDS", 15),
		ExecutionRetentionDays: envInt("EXECUTION_LOG_RETENTION_DAYS", 90),
		RetentionSweepSchedule: os.Getenv("RETENTION_SWEEP_SCHEDULE"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.EmailFromName == "" {
		cfg.EmailFromName = "Practice Suite"
	}
	if cfg.PaymentBaseURL == "" {
		cfg.PaymentBaseURL = "https://pay.practice-suite.app"
	}
	if cfg.RetentionSweepSchedule == "" {
		cfg.RetentionSweepSchedule = "0 0 3 * * *" // daily at 03:00
	}

	return cfg
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("⚠️ Invalid value for %s: %q, using default %d", key, raw, def)
		return def
	}
	return n
}
