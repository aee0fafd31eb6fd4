package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ClassifierConfig holds settings for the optional LLM classification
// service. When APIKey is empty the feature is silently disabled and the
// rule-based path is always available.
type ClassifierConfig struct {
	APIKey     string        // API key; empty disables the classifier
	BaseURL    string        // OpenAI-compatible chat completions endpoint
	Model      string        // Model name
	BatchSize  int           // Calls between throttle pauses
	BatchDelay time.Duration // Pause between batches to respect rate limits
	Timeout    time.Duration // Per-call HTTP timeout
}

// SheetsConfig holds Google Sheets sync settings. Sync is silently
// disabled when CredentialsPath or SpreadsheetID is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

type Config struct {
	// Server
	Port string
	Env  string // "development", "production"

	// CORS
	AllowedOrigins []string

	// Data
	DataDir       string // directory scanned for statement CSVs
	RulesPath     string // category keyword rules (yaml)
	CacheDBPath   string // sqlite categorization cache; empty = in-memory

	// Classifier
	Classifier ClassifierConfig

	// Sheets sync
	Sheets SheetsConfig

	// Scheduler
	SyncEnabled  bool
	SyncSchedule string        // Cron expression (e.g., "0 6 * * *" for daily at 06:00)
	SyncTimeout  time.Duration // Timeout for a complete refresh+sync cycle
}

func Load() *Config {
	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// CORS
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		// Data
		DataDir:     getEnv("DATA_DIR", "data/raw"),
		RulesPath:   getEnv("CATEGORY_RULES_PATH", "configs/categories.yaml"),
		CacheDBPath: getEnv("CACHE_DB_PATH", "data/categorization_cache.db"),

		// Classifier
		Classifier: ClassifierConfig{
			APIKey:     os.Getenv("CLASSIFIER_API_KEY"),
			BaseURL:    getEnv("CLASSIFIER_BASE_URL", "https://api.openai.com/v1/chat/completions"),
			Model:      getEnv("CLASSIFIER_MODEL", "gpt-4o-mini"),
			BatchSize:  getIntEnv("CLASSIFIER_BATCH_SIZE", 50),
			BatchDelay: getDurationEnv("CLASSIFIER_BATCH_DELAY", time.Second),
			Timeout:    getDurationEnv("CLASSIFIER_TIMEOUT", 30*time.Second),
		},

		// Sheets sync
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
		},

		// Scheduler
		SyncEnabled:  getBoolEnv("SYNC_ENABLED", false),
		SyncSchedule: getEnv("SYNC_SCHEDULE", "0 6 * * *"), // Default: daily at 06:00
		SyncTimeout:  getDurationEnv("SYNC_TIMEOUT", 5*time.Minute),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
