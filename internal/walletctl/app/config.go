package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIURL           string        `yaml:"api_url"`           // Required: base URL of the wallet service
	NotificationsURL string        `yaml:"notifications_url"` // Optional: notifications service URL (default: APIURL)
	PrivateKey       string        `yaml:"private_key"`       // Required: hex Ed25519 seed of the wallet
	TokenDB          string        `yaml:"token_db"`          // Optional: SQLite file caching the token pair (disabled when empty)
	MasterKey        string        `yaml:"master_key"`        // Optional: secret sealing the cached tokens (default: PrivateKey)
	RateLimit        float64       `yaml:"rate_limit"`        // Optional: calls per second, 0 disables limiting
	RateBurst        int           `yaml:"rate_burst"`        // Optional: limiter burst (default: 1)
	HTTPTimeout      time.Duration `yaml:"http_timeout"`      // Optional: per call timeout (default: 10s)
	Env              string        `yaml:"env"`               // Environment (dev, staging, prod) (default: dev)
	LogLevel         string        `yaml:"log_level"`         // Log level (debug, info, warn, error) (default: warn)
	LogFormat        string        `yaml:"log_format"`        // Log format (json, text) (default: text)
}

func defaultConfig() Config {
	return Config{
		RateBurst:   1,
		HTTPTimeout: 10 * time.Second,
		Env:         "dev",
		LogLevel:    "warn",
		LogFormat:   "text",
	}
}

// LoadConfig builds the configuration from defaults, then the YAML profile at
// path (skipped when path is empty), then WALLET_* environment variables.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}

		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Reject unknown fields
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.APIURL = getEnvOrDefault("WALLET_API_URL", cfg.APIURL)
	cfg.NotificationsURL = getEnvOrDefault("WALLET_NOTIFICATIONS_URL", cfg.NotificationsURL)
	cfg.PrivateKey = getEnvOrDefault("WALLET_PRIVATE_KEY", cfg.PrivateKey)
	cfg.TokenDB = getEnvOrDefault("WALLET_TOKEN_DB", cfg.TokenDB)
	cfg.MasterKey = getEnvOrDefault("WALLET_MASTER_KEY", cfg.MasterKey)
	cfg.RateLimit = getEnvFloatOrDefault("WALLET_RATE_LIMIT", cfg.RateLimit)
	cfg.RateBurst = getEnvIntOrDefault("WALLET_RATE_BURST", cfg.RateBurst)
	cfg.HTTPTimeout = getEnvDurationOrDefault("WALLET_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)

	return cfg, nil
}

// Validate reports the first missing required setting.
func (c Config) Validate() error {
	switch {
	case c.APIURL == "":
		return errors.New("api url is required (WALLET_API_URL or api_url)")
	case c.PrivateKey == "":
		return errors.New("private key is required (WALLET_PRIVATE_KEY or private_key)")
	case c.RateLimit < 0:
		return errors.New("rate limit must not be negative")
	case c.HTTPTimeout <= 0:
		return errors.New("http timeout must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
		return floatValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "30s", "1m")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
