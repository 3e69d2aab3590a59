package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL     string
	ServerPort      string
	FrontendURL     string
	ServerDebugMode bool
	WorkerDebugMode bool

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OllamaHost    string
	OllamaModel   string
	AITimeout     time.Duration

	RedisURL  string
	RateLimit string

	PatternSchedulerEnabled bool
	PatternInterval         time.Duration
	PatternMinGap           time.Duration
	PatternStartupDelay     time.Duration

	MetricsEnabled bool
	OTELEnabled    bool
	OTELEndpoint   string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", "*"),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode: getEnvBool("WORKER_DEBUG_MODE", false),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", ""),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://127.0.0.1:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),

		RedisURL:  getEnv("REDIS_URL", ""),
		RateLimit: getEnv("RATE_LIMIT", "30-M"),

		PatternSchedulerEnabled: getEnvBool("PATTERN_SCHEDULER_ENABLED", true),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		OTELEnabled:    getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"AI_TIMEOUT", 30 * time.Second, &cfg.AITimeout},
		{"PATTERN_INTERVAL", 24 * time.Hour, &cfg.PatternInterval},
		{"PATTERN_MIN_GAP", 23 * time.Hour, &cfg.PatternMinGap},
		{"PATTERN_STARTUP_DELAY", 10 * time.Second, &cfg.PatternStartupDelay},
	}
	for _, d := range durations {
		v, err := getEnvDuration(d.key, d.def)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	return cfg, nil
}

// AllowedOrigins returns the CORS origins from FRONTEND_URL
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
