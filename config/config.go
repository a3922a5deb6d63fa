// Package config loads the service configuration from environment variables.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment is the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

// Defaults for the external services
const (
	DefaultLabelSourceURL = "https://api.fda.gov/drug/label.json"
	DefaultChatAPIURL     = "https://api.groq.com/openai/v1/chat/completions"
	DefaultChatModel      = "moonshotai/kimi-k2-instruct-0905"
)

// Config holds all application configuration.
// The text-generation API key is not part of it: textgen reads it from the environment on each call.
type Config struct {
	Port              string
	Address           string
	Env               Environment
	LogLevel          string
	LogDir            string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	LabelSourceURL   string
	LabelSourceLimit int
	ChatAPIURL       string
	ChatModel        string

	SearchDebounce    time.Duration
	EnrichmentTimeout time.Duration // 0 waits for the service
	SessionTTL        time.Duration
	RefreshTimes      []string // daily "HH:MM" catalog rebuilds
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               Environment(strings.ToLower(getEnvWithDefault("ENV", string(EnvDevelopment)))),
		LogLevel:          strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		LogDir:            getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),         // 4 weeks default
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default

		LabelSourceURL:   getEnvWithDefault("LABEL_SOURCE_URL", DefaultLabelSourceURL),
		LabelSourceLimit: getIntEnvWithDefault("LABEL_SOURCE_LIMIT", 100),
		ChatAPIURL:       getEnvWithDefault("CHAT_API_URL", DefaultChatAPIURL),
		ChatModel:        getEnvWithDefault("CHAT_MODEL", DefaultChatModel),

		SearchDebounce:    time.Duration(getIntEnvWithDefault("SEARCH_DEBOUNCE_MS", 800)) * time.Millisecond,
		EnrichmentTimeout: getDurationEnvWithDefault("ENRICHMENT_TIMEOUT", 0),
		SessionTTL:        getDurationEnvWithDefault("SESSION_TTL", 30*time.Minute),
		RefreshTimes:      splitList(getEnvWithDefault("REFRESH_TIMES", "06:00;18:00")),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateRange(cfg.LogRetentionWeeks, 1, 52); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if err := validateHTTPURL(cfg.LabelSourceURL); err != nil {
		return fmt.Errorf("invalid LABEL_SOURCE_URL: %w", err)
	}

	// The label service caps page size at 1000
	if err := validateRange(cfg.LabelSourceLimit, 1, 1000); err != nil {
		return fmt.Errorf("invalid LABEL_SOURCE_LIMIT: %w", err)
	}

	if err := validateHTTPURL(cfg.ChatAPIURL); err != nil {
		return fmt.Errorf("invalid CHAT_API_URL: %w", err)
	}

	if strings.TrimSpace(cfg.ChatModel) == "" {
		return fmt.Errorf("invalid CHAT_MODEL: cannot be empty")
	}

	if cfg.SearchDebounce < time.Millisecond || cfg.SearchDebounce > 10*time.Second {
		return fmt.Errorf("invalid SEARCH_DEBOUNCE_MS: must be between 1 and 10000, got: %d", cfg.SearchDebounce.Milliseconds())
	}

	if cfg.EnrichmentTimeout < 0 {
		return fmt.Errorf("invalid ENRICHMENT_TIMEOUT: must not be negative, got: %s", cfg.EnrichmentTimeout)
	}

	if cfg.SessionTTL < time.Minute || cfg.SessionTTL > 24*time.Hour {
		return fmt.Errorf("invalid SESSION_TTL: must be between 1m and 24h, got: %s", cfg.SessionTTL)
	}

	if err := validateRefreshTimes(cfg.RefreshTimes); err != nil {
		return fmt.Errorf("invalid REFRESH_TIMES: %w", err)
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1024 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1024 and 65535, got: %d", portNum)
	}

	return nil
}

// validateAddress accepts loopback and private network addresses
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

func validateEnv(env Environment) error {
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction, EnvTest:
		return nil
	}
	return fmt.Errorf("ENV must be one of: dev, staging, prod, test, got: %s", env)
}

func validateLogLevel(logLevel string) error {
	switch logLevel {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", logLevel)
}

// validateSizeLimit validates request size limits
func validateSizeLimit(size int64) error {
	if size <= 0 {
		return fmt.Errorf("must be positive, got: %d", size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("too large (max 100MB), got: %d bytes", size)
	}

	return nil
}

func validateRange(value, minValue, maxValue int) error {
	if value < minValue || value > maxValue {
		return fmt.Errorf("must be between %d and %d, got: %d", minValue, maxValue, value)
	}
	return nil
}

// validateMaxLogFileSize allows 1MB to 1GB
func validateMaxLogFileSize(size int64) error {
	if size < 1024*1024 {
		return fmt.Errorf("too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got: %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	return nil
}

// validateRefreshTimes requires at least one "HH:MM" time
func validateRefreshTimes(times []string) error {
	if len(times) == 0 {
		return fmt.Errorf("at least one time is required")
	}
	for _, t := range times {
		if _, err := time.Parse("15:04", t); err != nil {
			return fmt.Errorf("time must use HH:MM, got: %q", t)
		}
	}
	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnvWithDefault parses values such as "30m" or "15s"
func getDurationEnvWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// splitList splits a ';' or ',' separated list, dropping empty entries
func splitList(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"LABEL_SOURCE_URL",
		"LABEL_SOURCE_LIMIT",
		"CHAT_API_URL",
		"CHAT_MODEL",
		"SEARCH_DEBOUNCE_MS",
		"ENRICHMENT_TIMEOUT",
		"SESSION_TTL",
		"REFRESH_TIMES",
	}
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// ListenAddr returns the host:port the server binds to
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Address, c.Port)
}
