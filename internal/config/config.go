package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Site        SiteConfig
	RateLimit   RateLimitConfig
	Logging     LoggingConfig
	Tracing     TracingConfig
	Environment string
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdle        int
}

// SiteConfig describes the public site this core serves content for.
// Locales are the supported UI locales; DefaultLocale is used when a
// caller supplies none.
type SiteConfig struct {
	Locales       []string
	DefaultLocale string
	RSSLimit      int
}

type RateLimitConfig struct {
	RegisterPerMinute int
	PublicPerMinute   int
	// TrustedProxyCIDRs lists proxies whose X-Forwarded-For is honored.
	TrustedProxyCIDRs []string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type TracingConfig struct {
	Enabled      bool
	Exporter     string
	ServiceName  string
	OTLPEndpoint string
	SampleRate   float64
}

func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
			MaxIdle:        getEnvInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
		},
		Site: SiteConfig{
			Locales:       getEnvList("SITE_LOCALES", []string{"ar", "en"}),
			DefaultLocale: getEnv("SITE_DEFAULT_LOCALE", "ar"),
			RSSLimit:      getEnvInt("SITE_RSS_LIMIT", 20),
		},
		RateLimit: RateLimitConfig{
			RegisterPerMinute: getEnvInt("RATE_LIMIT_REGISTER", 30),
			PublicPerMinute:   getEnvInt("RATE_LIMIT_PUBLIC", 120),
			TrustedProxyCIDRs: getEnvList("RATE_LIMIT_TRUSTED_PROXIES", nil),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("TRACING_ENABLED", false),
			Exporter:     getEnv("TRACING_EXPORTER", "stdout"),
			ServiceName:  getEnv("TRACING_SERVICE_NAME", "smartcrowds-server"),
			OTLPEndpoint: getEnv("TRACING_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if err := cfg.Site.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (s SiteConfig) validate() error {
	if len(s.Locales) == 0 {
		return fmt.Errorf("SITE_LOCALES must list at least one locale")
	}
	for _, locale := range s.Locales {
		if s.DefaultLocale == locale {
			return nil
		}
	}
	return fmt.Errorf("SITE_DEFAULT_LOCALE %q is not in SITE_LOCALES", s.DefaultLocale)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
