package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIPort        string
	APIHost        string
	APIEnvironment string

	// OpenAI (AI scoring backend)
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAITemperature float64
	OpenAIMaxTokens   int

	// Apollo.io (people/org search provider)
	ApolloAPIKey  string
	ApolloBaseURL string

	// Source provider selection: apollo, directory or fake
	ProviderKind string

	// Ideal customer profile
	TargetIndustries []string
	TargetLocations  []string
	MajorCities      []string
	TargetJobTitles  []string
	ProductCatalog   []string

	// Job orchestration
	MaxLeadsPerJob    int
	ProviderBatchSize int
	ProviderRetries   int
	JobWorkers        int
	JobRetentionDays  int
	PreviewSampleSize int

	// Rate Limiting
	RateLimitRequestsPerMinute int
	RateLimitBurst             int
	ProviderRequestsPerMinute  int

	// Exports
	ExportFolder  string
	MaxExportRows int

	// Sentry
	SentryDSN         string
	SentryEnvironment string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		// API
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIEnvironment: getEnv("API_ENVIRONMENT", "development"),

		// OpenAI
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4-turbo-preview"),
		OpenAITemperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.3),
		OpenAIMaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 1000),

		// Apollo
		ApolloAPIKey:  getEnv("APOLLO_API_KEY", ""),
		ApolloBaseURL: getEnv("APOLLO_BASE_URL", "https://api.apollo.io/api/v1"),

		ProviderKind: getEnv("LEAD_PROVIDER", "apollo"),

		// Ideal customer profile
		TargetIndustries: getEnvAsSlice("TARGET_INDUSTRIES", []string{
			"fragrance", "perfume", "scent marketing", "essential oils",
			"aromatherapy", "hotel amenities", "luxury retail", "boutique stores",
			"spa wellness", "hospitality", "commercial fragrance",
		}),
		TargetLocations: getEnvAsSlice("TARGET_LOCATIONS", []string{
			"Sydney, Australia", "Melbourne, Australia", "Brisbane, Australia",
			"Perth, Australia", "Adelaide, Australia", "Hobart, Australia",
			"Darwin, Australia", "Canberra, Australia",
		}),
		MajorCities: getEnvAsSlice("MAJOR_CITIES", []string{
			"sydney", "melbourne", "brisbane", "perth",
		}),
		TargetJobTitles: getEnvAsSlice("TARGET_JOB_TITLES", []string{
			"Owner", "Founder", "CEO", "Managing Director", "General Manager",
			"Marketing Director", "Operations Manager", "Purchasing Manager",
		}),
		ProductCatalog: getEnvAsSlice("PRODUCT_CATALOG", []string{
			"Ambient Scenting Systems", "Brand Signature Scents",
			"Aromatherapy Oils", "Room Diffusers", "Air Care Systems",
		}),

		// Jobs
		MaxLeadsPerJob:    getEnvAsInt("MAX_LEADS_PER_JOB", 1000),
		ProviderBatchSize: getEnvAsInt("PROVIDER_BATCH_SIZE", 25),
		ProviderRetries:   getEnvAsInt("PROVIDER_RETRIES", 3),
		JobWorkers:        getEnvAsInt("JOB_WORKERS", 4),
		JobRetentionDays:  getEnvAsInt("JOB_RETENTION_DAYS", 30),
		PreviewSampleSize: getEnvAsInt("PREVIEW_SAMPLE_SIZE", 10),

		// Rate Limiting
		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		ProviderRequestsPerMinute:  getEnvAsInt("PROVIDER_REQUESTS_PER_MINUTE", 30),

		// Exports
		ExportFolder:  getEnv("EXPORT_FOLDER", "./data/exports"),
		MaxExportRows: getEnvAsInt("MAX_EXPORT_ROWS", 10000),

		// Sentry
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "development"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
