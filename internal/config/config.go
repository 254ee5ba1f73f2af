package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
)

type Config struct {
	Port         string
	StoreBackend string

	FirebaseProjectID       string
	FirebaseCredentialsFile string
	FirebaseServiceAccount  string // base64 encoded JSON, preferred over the file
	DatabaseURL             string
	SQLitePath              string

	CatalogPath        string
	StreakLookbackDays int
	Location           *time.Location

	NotificationWorkers int

	ClerkSecretKey string
	MetricsUser    string
	MetricsPass    string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults/environment variables")
	}

	cfg := Config{
		Port:                    getenv("PORT", "3333"),
		StoreBackend:            strings.ToLower(getenv("STORE_BACKEND", BackendFirestore)),
		FirebaseProjectID:       getenv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getenv("FIREBASE_CREDENTIALS_FILE", "./serviceAccountKey.json"),
		FirebaseServiceAccount:  getenv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		DatabaseURL:             getenv("DATABASE_URL", ""),
		SQLitePath:              getenv("SQLITE_PATH", "./data/congregation.db"),
		CatalogPath:             getenv("CATALOG_PATH", ""),
		StreakLookbackDays:      getenvInt("STREAK_LOOKBACK_DAYS", 365),
		NotificationWorkers:     getenvInt("NOTIFICATION_WORKERS", 3),
		ClerkSecretKey:          getenv("CLERK_SECRET_KEY", ""),
		MetricsUser:             getenv("METRICS_USER", ""),
		MetricsPass:             getenv("METRICS_PASS", ""),
		RateLimitRPS:            getenvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:          getenvInt("RATE_LIMIT_BURST", 30),
	}

	loc, err := time.LoadLocation(getenv("TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreBackend {
	case BackendFirestore:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.ClerkSecretKey == "" {
		return fmt.Errorf("CLERK_SECRET_KEY environment variable is not set")
	}
	if c.StreakLookbackDays <= 0 {
		return fmt.Errorf("STREAK_LOOKBACK_DAYS must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("Config: ignoring invalid %s=%q", key, v)
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("Config: ignoring invalid %s=%q", key, v)
	}
	return fallback
}
