package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/thad75/questday/internal/domain"
)

// Backend selects the quest state persistence layer.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	Environment string
	APIKey      string // API key for authentication

	// Quest engine
	TemplatePoolPath string
	StoreBackend     Backend

	// Generation tuning
	DailyQuestCount       int
	WeeklyQuestCount      int
	MonthlyQuestCount     int
	SpecialQuestCount     int
	MaxDifficultyPerLevel int
	EnsureVariety         bool
	ConsiderPlayerHistory bool
	AdaptToPlayerLevel    bool

	// Database (postgres backend only)
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBMaxConns int
	DBMaxIdle  time.Duration
	DBMaxLife  time.Duration
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	gen := domain.DefaultGenerationConfig()

	cfg := &Config{
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		Environment:      getEnv("ENVIRONMENT", "prod"),
		APIKey:           getEnv("API_KEY", ""),
		TemplatePoolPath: getEnv("TEMPLATE_POOL_PATH", "configs/quest_templates.json"),
		StoreBackend:     Backend(getEnv("STORE_BACKEND", string(BackendMemory))),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "postgres"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBName:           getEnv("DB_NAME", "questday"),
		DBMaxConns:       getEnvAsInt("DB_MAX_CONNS", 10),
		DBMaxIdle:        getEnvAsDuration("DB_MAX_IDLE", 5*time.Minute),
		DBMaxLife:        getEnvAsDuration("DB_MAX_LIFE", 30*time.Minute),

		DailyQuestCount:       getEnvAsInt("QUEST_DAILY_COUNT", gen.DailyQuestCount),
		WeeklyQuestCount:      getEnvAsInt("QUEST_WEEKLY_COUNT", gen.WeeklyQuestCount),
		MonthlyQuestCount:     getEnvAsInt("QUEST_MONTHLY_COUNT", gen.MonthlyQuestCount),
		SpecialQuestCount:     getEnvAsInt("QUEST_SPECIAL_COUNT", gen.SpecialQuestCount),
		MaxDifficultyPerLevel: getEnvAsInt("QUEST_LEVELS_PER_DIFFICULTY", gen.MaxDifficultyPerLevel),
		EnsureVariety:         getEnvAsBool("QUEST_ENSURE_VARIETY", gen.EnsureVariety),
		ConsiderPlayerHistory: getEnvAsBool("QUEST_CONSIDER_HISTORY", gen.ConsiderPlayerHistory),
		AdaptToPlayerLevel:    getEnvAsBool("QUEST_ADAPT_TO_LEVEL", gen.AdaptToPlayerLevel),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	switch cfg.StoreBackend {
	case BackendMemory, BackendPostgres:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND value %q", cfg.StoreBackend)
	}

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an integer environment variable or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvAsBool retrieves a boolean environment variable or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvAsDuration retrieves a duration environment variable or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GenerationConfig assembles the engine tuning from the loaded environment.
// Category balance stays at the built-in defaults; it is a per-deployment
// JSON structure, not a flat env value.
func (c *Config) GenerationConfig() domain.GenerationConfig {
	gen := domain.DefaultGenerationConfig()
	gen.DailyQuestCount = c.DailyQuestCount
	gen.WeeklyQuestCount = c.WeeklyQuestCount
	gen.MonthlyQuestCount = c.MonthlyQuestCount
	gen.SpecialQuestCount = c.SpecialQuestCount
	gen.MaxDifficultyPerLevel = c.MaxDifficultyPerLevel
	gen.EnsureVariety = c.EnsureVariety
	gen.ConsiderPlayerHistory = c.ConsiderPlayerHistory
	gen.AdaptToPlayerLevel = c.AdaptToPlayerLevel
	return gen
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
