package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken      string
	AdminID       int64
	DatabaseURL   string
	WebPort       string
	WebAppURL     string
	ExportPath    string
	MetricsUser   string
	MetricsPass   string
	DialogIdleTTL time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		WebPort:     os.Getenv("WEB_PORT"),
		WebAppURL:   os.Getenv("WEB_APP_URL"),
		ExportPath:  os.Getenv("EXPORT_PATH"),
		MetricsUser: os.Getenv("METRICS_USER"),
		MetricsPass: os.Getenv("METRICS_PASS"),
	}

	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	adminID := os.Getenv("ADMIN_ID")
	if adminID == "" {
		log.Fatal("ADMIN_ID is required")
	}
	cfg.AdminID, err = strconv.ParseInt(adminID, 10, 64)
	if err != nil {
		log.Fatalf("ADMIN_ID must be an integer: %v", err)
	}

	if cfg.WebPort == "" {
		cfg.WebPort = "8080"
	}

	// Необязательный TTL для брошенных диалогов, 0 = без истечения
	if ttl := os.Getenv("DIALOG_IDLE_TTL"); ttl != "" {
		cfg.DialogIdleTTL, err = time.ParseDuration(ttl)
		if err != nil {
			log.Fatalf("DIALOG_IDLE_TTL is not a duration: %v", err)
		}
	}

	return cfg
}
