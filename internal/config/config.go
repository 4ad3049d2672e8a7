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
	ServerPort string

	// Database
	DatabaseType string
	DatabaseURL  string
	DatabasePath string

	// Sessions
	SessionSecret   string
	CSRFSecret      string
	SessionDuration time.Duration

	CORSAllowedOrigins []string

	// Hosted chat completion (OpenAI-compatible Moonshot endpoint)
	MoonshotAPIKey  string
	MoonshotBaseURL string
	MoonshotModel   string

	// Image generation
	ReplicateAPIToken string
	ReplicateBaseURL  string

	// AWS
	AWSRegion      string
	S3Bucket       string
	S3Endpoint     string
	S3UsePathStyle bool
	SESFromEmail   string
	SESFromName    string

	AppBaseURL         string
	CoverImageMaxBytes int64
	Debug              bool

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	sessionSecret := getEnv("SESSION_SECRET", "dev-session-secret-change-me")

	return &Config{
		ServerPort:         getEnv("PORT", "8080"),
		DatabaseType:       getEnv("DATABASE_TYPE", "sqlite"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DatabasePath:       getEnv("DB_PATH", "./researchnest.db"),
		SessionSecret:      sessionSecret,
		CSRFSecret:         getEnv("CSRF_SECRET", sessionSecret),
		SessionDuration:    getEnvAsDuration("SESSION_DURATION", 30*24*time.Hour),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		MoonshotAPIKey:     getEnv("MOONSHOT_API_KEY", ""),
		MoonshotBaseURL:    getEnv("MOONSHOT_BASE_URL", "https://api.moonshot.ai/v1"),
		MoonshotModel:      getEnv("MOONSHOT_MODEL", "moonshot-v1-8k"),
		ReplicateAPIToken:  getEnv("REPLICATE_API_TOKEN", ""),
		ReplicateBaseURL:   getEnv("REPLICATE_BASE_URL", "https://api.replicate.com"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:           getEnv("AWS_S3_BUCKET", ""),
		S3Endpoint:         getEnv("AWS_S3_ENDPOINT", ""),
		S3UsePathStyle:     getEnvAsBool("AWS_S3_PATH_STYLE", false),
		SESFromEmail:       getEnv("SES_FROM_EMAIL", ""),
		SESFromName:        getEnv("SES_FROM_NAME", "ResearchNest"),
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:3000"),
		CoverImageMaxBytes: int64(getEnvAsInt("COVER_IMAGE_MAX_BYTES", 10*1024*1024)),
		Debug:              getEnvAsBool("DEBUG", false),
		RateLimitRequests:  getEnvAsInt("RATE_LIMIT_REQUESTS", 10),
		RateLimitWindow:    getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid boolean for %s=%q, using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid duration for %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList splits a comma separated variable, dropping empty entries
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
