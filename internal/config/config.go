package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Envelope values for the RESPONSE_ENVELOPE flag. The wrapped form returns
// {"customers":[...]} and {"summary":[...]}; bare returns the arrays directly.
const (
	EnvelopeWrapped = "wrapped"
	EnvelopeBare    = "bare"
)

type Config struct {
	// HTTP Server
	Port        string
	RoutePrefix string
	CORSOrigin  string
	Envelope    string

	// Database
	DBPath string

	// AMQP (optional; empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Summary export worker
	ExportInterval time.Duration

	// Google Sheets export (optional)
	SpreadsheetID string
	SheetName     string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		RoutePrefix: getEnv("ROUTE_PREFIX", "/api"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "*"),
		Envelope:    getEnv("RESPONSE_ENVELOPE", EnvelopeWrapped),

		DBPath: getEnv("DB_PATH", "./data/finance.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_events"),

		ExportInterval: getEnvDuration("EXPORT_INTERVAL", 5*time.Minute),

		SpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		SheetName:     getEnv("GOOGLE_SHEET_NAME", "Summary"),
	}
}

// Validate checks the configuration and returns every problem in one error.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.Envelope != EnvelopeWrapped && c.Envelope != EnvelopeBare {
		errs = append(errs, fmt.Sprintf("invalid response envelope '%s': must be '%s' or '%s'", c.Envelope, EnvelopeWrapped, EnvelopeBare))
	}

	if c.RoutePrefix != "" && !strings.HasPrefix(c.RoutePrefix, "/") {
		errs = append(errs, fmt.Sprintf("invalid route prefix '%s': must start with '/'", c.RoutePrefix))
	}

	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	} else if dir := filepath.Dir(c.DBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ExportInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid export interval %v: must be at least 1 second", c.ExportInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
