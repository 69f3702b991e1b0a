package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DatabaseURL    string
	DBAutoMigrate  bool
	RedisURL       string
	JobStore       string
	UploadDir      string
	MaxUploadBytes int

	ImportBatchSize     int
	ImportMaxConcurrent int

	WebhookTimeout       time.Duration
	WebhookSigningSecret string

	CORSOrigins string
	LogLevel    string
	LogFormat   string
}

// Load reads .env when present, then the process environment.
// It reports whether a .env file was found so callers can log it.
func Load() (*Config, bool) {
	envLoaded := godotenv.Load() == nil

	cfg := &Config{
		Port:                 GetEnv("PORT", "8000"),
		DatabaseURL:          databaseURL(),
		DBAutoMigrate:        GetEnvBool("DB_AUTO_MIGRATE", true),
		RedisURL:             GetEnv("REDIS_URL", ""),
		JobStore:             strings.ToLower(GetEnv("JOB_STORE", "memory")),
		UploadDir:            GetEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes:       GetEnvInt("MAX_UPLOAD_MB", 100) * 1024 * 1024,
		ImportBatchSize:      GetEnvInt("IMPORT_BATCH_SIZE", 500),
		ImportMaxConcurrent:  GetEnvInt("IMPORT_MAX_CONCURRENT", 4),
		WebhookTimeout:       GetEnvDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookSigningSecret: GetEnv("WEBHOOK_SIGNING_SECRET", ""),
		CORSOrigins:          GetEnv("CORS_ORIGINS", ""),
		LogLevel:             GetEnv("LOG_LEVEL", "info"),
		LogFormat:            GetEnv("LOG_FORMAT", "json"),
	}
	return cfg, envLoaded
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		GetEnv("DB_USER", "postgres"),
		GetEnv("DB_PASSWORD", ""),
		GetEnv("DB_HOST", "localhost"),
		GetEnv("DB_PORT", "5432"),
		GetEnv("DB_NAME", "catalog"),
	)
}

// GetEnv returns the value of key or fallback when unset or empty.
func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(GetEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func GetEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(GetEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(GetEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
