package config

import (
	"fmt"
	"os"
)

// Config holds application configuration
type Config struct {
	Port          string
	DBConn        string
	LogLevel      string
	JWTSecret     string
	RedisAddr     string
	RedisPassword string
	WatchlistURL  string
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SenderEmail   string
	AlertEmail    string
	SweepSchedule string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBConn:        getEnv("DB_CONN", "host=localhost port=5432 user=fraud password=fraud dbname=fraudsight sslmode=disable"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		WatchlistURL:  getEnv("WATCHLIST_URL", ""),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SenderEmail:   getEnv("SENDER_EMAIL", "alerts@fraudsight.local"),
		AlertEmail:    getEnv("ALERT_EMAIL", ""),
		SweepSchedule: getEnv("SWEEP_SCHEDULE", "@hourly"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
