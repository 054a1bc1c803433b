package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort     string
	GinMode        string
	LogLevel       string
	LogFormat      string
	ServiceName    string
	ServiceVersion string
	// AllowedOrigins controls HTTP CORS.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string

	// RedisURL is optional. Without it rate limiting stays in-process and
	// subject verdicts are not cached.
	RedisURL        string
	SubjectCacheTTL time.Duration

	// AMQPURL is optional. Without it quiz events are dropped.
	AMQPURL        string
	EventExchange  string
	EventQueueSize int

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	GenerationTimeout time.Duration
	ExplanationPolicy string

	GlobalRateLimit   RateLimit
	SubjectRateLimit  RateLimit
	GenerateRateLimit RateLimit
	ReviewRateLimit   RateLimit
}

// RateLimit is a request budget per client over a fixed window.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "pretty"),
		ServiceName:    getEnv("SERVICE_NAME", "ace-ai-quiz"),
		ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),

		RedisURL:        getEnv("REDIS_URL", ""),
		SubjectCacheTTL: getEnvDuration("SUBJECT_CACHE_TTL_MINUTES", 24*60, time.Minute),

		AMQPURL:        getEnv("AMQP_URL", ""),
		EventExchange:  getEnv("EVENT_EXCHANGE", "quiz.events"),
		EventQueueSize: getEnvInt("EVENT_QUEUE_SIZE", 256),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o"),
		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT_SECONDS", 60, time.Second),
		ExplanationPolicy: getEnv("EXPLANATION_POLICY", "incorrect"),

		GlobalRateLimit: RateLimit{
			Requests: getEnvInt("RATE_LIMIT_GLOBAL", 100),
			Window:   15 * time.Minute,
		},
		SubjectRateLimit: RateLimit{
			Requests: getEnvInt("RATE_LIMIT_SUBJECT", 20),
			Window:   time.Minute,
		},
		GenerateRateLimit: RateLimit{
			Requests: getEnvInt("RATE_LIMIT_GENERATE", 5),
			Window:   time.Minute,
		},
		ReviewRateLimit: RateLimit{
			Requests: getEnvInt("RATE_LIMIT_REVIEW", 10),
			Window:   time.Minute,
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration reads an integer count of unit from key.
func getEnvDuration(key string, fallback int, unit time.Duration) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * unit
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
