package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL string
	JWTSecret   string
	Port        string
	Environment string
	LogLevel    string

	// LLM research configuration
	LLMProvider           string
	LLMAPIKey             string
	LLMModel              string
	LLMBaseURL            string
	GeminiAPIKey          string
	ResearchTimeout       time.Duration
	ResearchCacheTTL      time.Duration
	EnableWebsiteSnapshot bool

	// Cache configuration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	QuickLookupTTL time.Duration

	// Calculation configuration
	BenchmarksFile string

	// Observability
	OTELEndpoint string

	// Security configuration
	AdminEmails     string
	AllowedOrigins  string
	TrustedProxies  string
	EnableRateLimit bool
	RateLimitRPM    int
	MaxRequestSize  int64
}

// New creates a new configuration instance from environment variables
func New() *Config {
	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		LLMProvider:           strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		LLMAPIKey:             getEnv("LLM_API_KEY", ""),
		LLMModel:              getEnv("LLM_MODEL", ""),
		LLMBaseURL:            getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		ResearchTimeout:       getEnvAsDuration("RESEARCH_TIMEOUT", 45*time.Second),
		ResearchCacheTTL:      getEnvAsDuration("RESEARCH_CACHE_TTL", 7*24*time.Hour),
		EnableWebsiteSnapshot: getEnv("ENABLE_WEBSITE_SNAPSHOT", "true") == "true",

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		QuickLookupTTL: getEnvAsDuration("QUICK_LOOKUP_TTL", 24*time.Hour),

		BenchmarksFile: getEnv("BENCHMARKS_FILE", ""),

		OTELEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		// Security configuration
		AdminEmails:     getEnv("ADMIN_EMAILS", ""),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", ""),
		TrustedProxies:  getEnv("TRUSTED_PROXIES", ""),
		EnableRateLimit: getEnv("ENABLE_RATE_LIMIT", "true") == "true",
		RateLimitRPM:    getEnvAsInt("RATE_LIMIT_RPM", 100),
		MaxRequestSize:  getEnvAsInt64("MAX_REQUEST_SIZE", 1024*1024), // 1MB default
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasLLMCredentials returns true if the selected research provider has an API key
func (c *Config) HasLLMCredentials() bool {
	if c.LLMProvider == "gemini" {
		return c.GeminiAPIKey != ""
	}
	return c.LLMAPIKey != ""
}

// HasRedis returns true if a Redis address is configured
func (c *Config) HasRedis() bool {
	return c.RedisAddr != ""
}

// HasTracing returns true if an OTLP endpoint is configured
func (c *Config) HasTracing() bool {
	return c.OTELEndpoint != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetAllowedOrigins returns a slice of allowed CORS origins
func (c *Config) GetAllowedOrigins() []string {
	if c.AllowedOrigins == "" {
		return []string{
			"https://www.blueally.com",
			"https://blueally.com",
		}
	}
	return strings.Split(c.AllowedOrigins, ",")
}

// GetAdminEmails returns the lower-cased accounts that hold the admin role
func (c *Config) GetAdminEmails() []string {
	var emails []string
	for _, e := range strings.Split(c.AdminEmails, ",") {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

// GetTrustedProxies returns a slice of trusted proxy IPs
func (c *Config) GetTrustedProxies() []string {
	if c.TrustedProxies == "" {
		return []string{} // No trusted proxies by default
	}
	return strings.Split(c.TrustedProxies, ",")
}
