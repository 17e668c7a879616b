package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	applog "sales/internal/log"
)

const (
	EngineMemory = "memory"
	EngineSQLite = "sqlite"
)

type Config struct {
	// Report
	Top         int
	GroupAllKey string

	// Input schema
	AmountColumn string
	DateColumn   string
	SKUColumn    string

	// Aggregation engine selection
	Engine        string
	DateCacheSize int

	// Logging
	LogLevel  string
	LogFormat string

	// env values that could not be parsed, reported by Validate
	invalid []envError
}

type envError struct {
	key string
	msg string
}

func Load() *Config {
	cfg := &Config{
		GroupAllKey: getEnv("SALES_GROUP_ALL_KEY", "ALL"),

		AmountColumn: getEnv("SALES_AMOUNT_COLUMN", "amount"),
		DateColumn:   getEnv("SALES_DATE_COLUMN", "date"),
		SKUColumn:    getEnv("SALES_SKU_COLUMN", "sku"),

		Engine: getEnvLower("SALES_ENGINE", EngineMemory),

		LogLevel:  getEnvLower("SALES_LOG_LEVEL", "warn"),
		LogFormat: getEnvLower("SALES_LOG_FORMAT", applog.FormatText),
	}
	cfg.Top = cfg.getEnvInt("SALES_TOP", 10)
	cfg.DateCacheSize = cfg.getEnvInt("SALES_DATE_CACHE_SIZE", 1024)

	return cfg
}

// SetTop overrides Top, discarding any parse error recorded for SALES_TOP.
func (c *Config) SetTop(top int) {
	c.Top = top
	c.invalid = slices.DeleteFunc(c.invalid, func(e envError) bool { return e.key == "SALES_TOP" })
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string
	for _, e := range c.invalid {
		errors = append(errors, e.msg)
	}

	if c.Top < 1 {
		errors = append(errors, fmt.Sprintf("invalid top %d: must be at least 1", c.Top))
	}

	validEngines := []string{EngineMemory, EngineSQLite}
	isValidEngine := false
	for _, engine := range validEngines {
		if c.Engine == engine {
			isValidEngine = true
			break
		}
	}
	if !isValidEngine {
		errors = append(errors, fmt.Sprintf("invalid engine '%s': must be one of %v", c.Engine, validEngines))
	}

	// Column names must be set and distinct
	columns := map[string]string{
		"amount": c.AmountColumn,
		"date":   c.DateColumn,
		"sku":    c.SKUColumn,
	}
	seen := map[string]string{}
	for _, role := range []string{"amount", "date", "sku"} {
		name := strings.ToLower(strings.TrimSpace(columns[role]))
		if name == "" {
			errors = append(errors, fmt.Sprintf("%s column name cannot be empty", role))
			continue
		}
		if other, dup := seen[name]; dup {
			errors = append(errors, fmt.Sprintf("%s and %s columns cannot share the name '%s'", other, role, name))
			continue
		}
		seen[name] = role
	}

	if strings.TrimSpace(c.GroupAllKey) == "" {
		errors = append(errors, "group-all key cannot be empty")
	}

	if c.DateCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid date cache size %d: must not be negative", c.DateCacheSize))
	} else if c.DateCacheSize > 1_000_000 {
		errors = append(errors, fmt.Sprintf("invalid date cache size %d: must be at most 1000000", c.DateCacheSize))
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if c.LogFormat != applog.FormatText && c.LogFormat != applog.FormatJSON {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvLower(key, defaultValue string) string {
	return strings.ToLower(strings.TrimSpace(getEnv(key, defaultValue)))
}

func (c *Config) getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		c.invalid = append(c.invalid, envError{key: key, msg: fmt.Sprintf("invalid %s '%s': must be a number", key, value)})
		return defaultValue
	}
	return i
}
