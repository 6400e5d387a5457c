package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-wide settings read from the environment
type Config struct {
	Port    string
	GinMode string

	LogLevel string

	FirebaseProjectID          string
	FirebaseServiceAccountPath string
	FirebaseStorageBucket      string

	GeminiAPIKey string
	GeminiModel  string
	AILanguage   string

	RateLimitPerMinute    int
	MutationRatePerMinute int
	TokenCacheTTL         time.Duration
	FeedCacheTTL          time.Duration
	ReminderCron          string
	MaxUploadBytes        int64
}

// Load reads a .env file if present and builds a Config from the environment
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return Config{
		Port:    GetEnvOrDefault("PORT", "9091"),
		GinMode: GetEnvOrDefault("GIN_MODE", "debug"),

		LogLevel: GetEnvOrDefault("LOG_LEVEL", "info"),

		FirebaseProjectID:          os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseServiceAccountPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
		FirebaseStorageBucket:      os.Getenv("FIREBASE_STORAGE_BUCKET"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  GetEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		AILanguage:   GetEnvOrDefault("AI_LANGUAGE", "ko"),

		RateLimitPerMinute:    GetIntOrDefault("RATE_LIMIT_PER_MINUTE", 120),
		MutationRatePerMinute: GetIntOrDefault("MUTATION_RATE_PER_MINUTE", 30),
		TokenCacheTTL:         GetDurationOrDefault("TOKEN_CACHE_TTL", 30*time.Minute),
		FeedCacheTTL:          GetDurationOrDefault("FEED_CACHE_TTL", 2*time.Minute),
		ReminderCron:          GetEnvOrDefault("REMINDER_CRON", "0 21 * * *"),
		MaxUploadBytes:        int64(GetIntOrDefault("MAX_UPLOAD_BYTES", 10<<20)),
	}
}

// GetEnvOrDefault returns the environment variable value or a default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetIntOrDefault parses an integer variable, falling back to the default when unset or malformed
func GetIntOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("invalid %s value %q, using default %d", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

// GetDurationOrDefault parses a time.Duration variable such as "30m"
func GetDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("invalid %s value %q, using default %s", key, raw, defaultValue)
		return defaultValue
	}
	return v
}
