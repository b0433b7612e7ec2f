package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBDriver      string
	DBDSN         string
	MigrationsDir string
	JWTSecret     string
	TokenTTL      time.Duration
	CORSOrigins   []string

	LogLevel  string
	LogFormat string
	Location  *time.Location

	AI    AIConfig
	Redis RedisConfig

	GenerationLimit        int
	GenerationWindow       time.Duration
	RecentGenerationWindow time.Duration
	StoreRetryDelay        time.Duration
	LookbackDays           int
	MinRecordsForRoutine   int
	ClassifierRulesPath    string
}

type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Enabled reports whether an AI provider is configured.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads the environment, after an optional .env file in the working directory.
func Load() Config {
	_ = godotenv.Load()

	driver := getEnv("DB_DRIVER", "sqlite3")
	dsn := getEnv("DB_DSN", "")
	if dsn == "" {
		dsn = getEnv("DB_PATH", "./data/focusflow.db")
	}

	return Config{
		Port:          getEnv("PORT", "8080"),
		DBDriver:      driver,
		DBDSN:         dsn,
		MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),
		JWTSecret:     getEnv("JWT_SECRET", "change-this-secret"),
		TokenTTL:      time.Duration(getEnvInt("TOKEN_TTL_HOURS", 72)) * time.Hour,
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		Location:  getEnvLocation("APP_TIMEZONE", time.UTC),

		AI: AIConfig{
			APIKey:  getEnv("AI_API_KEY", ""),
			BaseURL: getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnv("AI_MODEL", "gpt-4o-mini"),
			Timeout: getEnvDuration("AI_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},

		GenerationLimit:        getEnvInt("GENERATION_LIMIT_PER_HOUR", 3),
		GenerationWindow:       time.Hour,
		RecentGenerationWindow: getEnvDuration("RECENT_GENERATION_WINDOW", 10*time.Minute),
		StoreRetryDelay:        getEnvDuration("STORE_RETRY_DELAY", 2*time.Second),
		LookbackDays:           getEnvInt("ANALYSIS_LOOKBACK_DAYS", 7),
		MinRecordsForRoutine:   getEnvInt("MIN_RECORDS_FOR_ROUTINE", 5),
		ClassifierRulesPath:    getEnv("CLASSIFIER_RULES_PATH", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func getEnvLocation(key string, fallback *time.Location) *time.Location {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	loc, err := time.LoadLocation(value)
	if err != nil {
		return fallback
	}
	return loc
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
