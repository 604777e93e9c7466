package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string
	TemplatesPath  string

	// Shared access password gating the whole app. Empty means the gate
	// fails closed: nobody can log in.
	AccessPassword string

	SessionSecret   string
	SessionDuration time.Duration

	// Generation provider credentials. A missing key disables the
	// candidates that need it; if none is set, generation is disabled.
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Ordered candidate model identifiers, "provider:model" or a bare
	// model name (implies gemini). Tried in order until one responds.
	ModelCandidates []string

	GenerationTimeout time.Duration
	AnswerDuration    time.Duration
	HistoryLimit      int
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:    getEnv("DB_URL", ""),
		DatabasePath:   getEnv("DB_PATH", "./examcoach.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		TemplatesPath:  getEnv("TEMPLATES_PATH", "./web/templates"),

		AccessPassword: os.Getenv("ACCESS_PASSWORD"),

		SessionSecret:   os.Getenv("SESSION_SECRET"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 12*time.Hour),

		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),

		ModelCandidates: getEnvList("GENERATION_MODELS", []string{
			"gemini:gemini-2.0-flash",
			"gemini:gemini-1.5-flash",
			"gemini:gemini-1.5-flash-8b",
		}),

		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 3*time.Minute),
		AnswerDuration:    getEnvDuration("ANSWER_DURATION", 5*time.Minute),
		HistoryLimit:      getEnvInt("HISTORY_LIMIT", 50),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration reads a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// getEnvList reads a comma-separated environment variable or returns a default value
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
