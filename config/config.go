// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	// HTTP Server
	Port               string
	CORSAllowedOrigins []string
	UserHeader         string // request header carrying the authenticated user id
	StaticDir          string // built presentation layer, served when present

	// Database
	DBPath string

	// Ledger
	Timezone          string        // day boundary for "today"
	SettleInterval    time.Duration // background income settlement; 0 disables
	SettleIntervalRaw string        // SETTLE_INTERVAL as given, checked by Validate

	// Logging
	LogLevel  string
	LogFormat string // "console" or "json"

	// AMQP (optional: events are published only when AMQPURL is set)
	AMQPURL      string
	AMQPExchange string
}

// Load reads a .env file if one exists, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	settleRaw := getEnv("SETTLE_INTERVAL", "")

	return &Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		UserHeader:         getEnv("USER_HEADER", "X-User-ID"),
		StaticDir:          getEnv("STATIC_DIR", "web/dist"),

		DBPath: getEnv("DB_PATH", "budget.db"),

		Timezone:          getEnv("LEDGER_TIMEZONE", "Local"),
		SettleInterval:    parseDuration(settleRaw, time.Hour),
		SettleIntervalRaw: settleRaw,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledger"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	}

	if c.UserHeader == "" {
		errors = append(errors, "user header cannot be empty")
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.SettleIntervalRaw != "" {
		if _, err := time.ParseDuration(c.SettleIntervalRaw); err != nil {
			errors = append(errors, fmt.Sprintf("invalid settle interval '%s': %v", c.SettleIntervalRaw, err))
		}
	}
	if c.SettleInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid settle interval %s: cannot be negative", c.SettleInterval))
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'console' or 'json'", c.LogFormat))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Location is the time zone whose midnight separates one ledger day from
// the next.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration falls back to defaultValue when value is empty or does not
// parse. Validate reports the second case.
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
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
