package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Sessions are kept in memory when DatabaseURL is empty; RedisURL is
	// optional in the same way.
	DatabaseURL string
	RedisURL    string

	// Responses
	ResponsesDir string

	// Questions
	QuestionSourceURL  string
	QuestionSourceFile string
	FetchTimeout       time.Duration

	// Form submission
	FormSubmitEnabled bool
	FormSubmitTimeout time.Duration

	// Answer suggestions
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	SessionCacheTTL time.Duration

	Events EventConfig
}

// LoadConfig reads the environment, loading a .env file first when one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		ResponsesDir: getEnv("RESPONSES_DIR", "responses"),

		QuestionSourceURL:  getEnv("QUESTION_SOURCE_URL", ""),
		QuestionSourceFile: getEnv("QUESTION_SOURCE_FILE", ""),
		FetchTimeout:       getEnvDuration("QUESTION_FETCH_TIMEOUT", 15*time.Second),

		FormSubmitEnabled: getEnvBool("FORM_SUBMIT_ENABLED", true),
		FormSubmitTimeout: getEnvDuration("FORM_SUBMIT_TIMEOUT", 10*time.Second),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),

		SessionCacheTTL: getEnvDuration("SESSION_CACHE_TTL", 30*time.Minute),

		Events: EventConfig{
			Enabled:      getEnvBool("EVENTS_ENABLED", true),
			Publisher:    getEnv("EVENTS_PUBLISHER", "mock"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			SurveyTopic:  getEnv("SURVEY_EVENTS_TOPIC", "survey-events"),
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvDuration accepts Go durations ("90s") or a plain number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
