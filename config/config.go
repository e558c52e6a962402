package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIPort        string
	APIHost        string
	APIEnvironment string

	// Redis
	RedisURL string

	// Quota
	QuotaStore   string // memory or redis
	QuotaCeiling int

	// Generation
	GenerationProvider string // gemini or openai
	GeminiAPIKey       string
	GeminiEndpoint     string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string

	// Identity provider (Supabase Auth)
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string

	// Stripe
	StripeSecretKey       string
	StripePricePro        string
	StripePriceEnterprise string

	// Frontend
	FrontendURL string

	// Rate Limiting
	RateLimitRequestsPerMinute int
	RateLimitBurst             int

	// Logging
	LogLevel  string
	LogFormat string

	// Sentry
	SentryDSN         string
	SentryEnvironment string

	// Secrets
	SecretsBackend string // env or aws-secrets-manager
	AWSRegion      string

	// Features
	FeatureAuthProxy bool
}

// Load loads configuration from environment variables.
// A .env file in the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// API
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIEnvironment: getEnv("API_ENVIRONMENT", "development"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		// Quota
		QuotaStore:   getEnv("QUOTA_STORE", "memory"),
		QuotaCeiling: getEnvAsInt("QUOTA_CEILING", 10),

		// Generation
		GenerationProvider: getEnv("GENERATION_PROVIDER", "gemini"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiEndpoint:     getEnv("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com/v1/models/gemini-pro:generateContent"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		// Supabase
		SupabaseURL:       getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:   getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),

		// Stripe
		StripeSecretKey:       getEnv("STRIPE_SECRET_KEY", ""),
		StripePricePro:        getEnv("STRIPE_PRICE_PRO", ""),
		StripePriceEnterprise: getEnv("STRIPE_PRICE_ENTERPRISE", ""),

		// Frontend
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Rate Limiting
		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 10),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Sentry
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "development"),

		// Secrets
		SecretsBackend: getEnv("SECRETS_BACKEND", "env"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),

		// Features
		FeatureAuthProxy: getEnvAsBool("FEATURE_AUTH_PROXY", true),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
