package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
	Extraction    ExtractionConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	MaxUploadBytes     int64
	AllowedOrigins     []string
	ShutdownTimeout    time.Duration
}

type StorageConfig struct {
	SpoolPath string
	MaxAge    time.Duration
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
	LogLevel       string
	LogFormat      string
}

type ExtractionConfig struct {
	// SuffixPolicy is "per_page" or "with_header".
	SuffixPolicy  string
	TemplatesPath string
	Currency      string
	ValidatePDF   bool
	MaxPages      int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 20),
			MaxUploadBytes:     getEnvAsInt64("SERVER_MAX_UPLOAD_BYTES", 64<<20),
			AllowedOrigins:     getEnvAsSlice("SERVER_ALLOWED_ORIGINS", []string{"*"}),
			ShutdownTimeout:    getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Storage: StorageConfig{
			SpoolPath: getEnv("SPOOL_PATH", os.TempDir()+"/invoice-converter"),
			MaxAge:    getEnvAsDuration("SPOOL_MAX_AGE", time.Hour),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
		},
		Extraction: ExtractionConfig{
			SuffixPolicy:  getEnv("PLV_SUFFIX_POLICY", "per_page"),
			TemplatesPath: getEnv("TEMPLATES_PATH", ""),
			Currency:      getEnv("CURRENCY", "EUR"),
			ValidatePDF:   getEnvAsBool("PDF_VALIDATE", true),
			MaxPages:      getEnvAsInt("PDF_MAX_PAGES", 500),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port))
	}
	if c.Observability.MetricsEnabled && c.Observability.MetricsPort == c.Server.Port {
		errs = append(errs, errors.New("METRICS_PORT must differ from SERVER_PORT"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("SERVER_MAX_UPLOAD_BYTES must be positive"))
	}
	if c.Storage.SpoolPath == "" {
		errs = append(errs, errors.New("SPOOL_PATH is required"))
	}
	if c.Storage.MaxAge <= 0 {
		errs = append(errs, errors.New("SPOOL_MAX_AGE must be positive"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address of the API server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
