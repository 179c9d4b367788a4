package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// loadStruct populates tagged fields of v from the environment, descending
// into nested config groups.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value, err := lookup(field.Tag)
		if err != nil {
			return err
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// lookup resolves a field's raw value: the primary variable, then the
// alternate, then the default. Missing required values are an error.
func lookup(tag reflect.StructTag) (string, error) {
	envName := tag.Get("env")

	value := os.Getenv(envName)
	if value == "" {
		if alt := tag.Get("envAlt"); alt != "" {
			value = os.Getenv(alt)
		}
	}
	if value != "" {
		return value, nil
	}

	if tag.Get("required") == "true" {
		return "", fmt.Errorf("required environment variable %s is not set", envName)
	}
	return tag.Get("default"), nil
}

// setField parses value into field according to the field's type.
func setField(field reflect.Value, value string) error {
	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))

	case field.Kind() == reflect.String:
		field.SetString(value)

	case field.Kind() == reflect.Int, field.Kind() == reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
		var items []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		field.Set(reflect.ValueOf(items))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Database validation
	if c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	switch strings.ToLower(c.Database.Driver) {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER (%q) must be one of: postgres, sqlite", c.Database.Driver))
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}

	// Import validation
	if utf8.RuneCountInString(c.Import.Delimiter) != 1 {
		errs = append(errs, fmt.Sprintf("IMPORT_DELIMITER (%q) must be a single character", c.Import.Delimiter))
	} else if d := c.Import.DelimiterRune(); d == '"' || d == '\r' || d == '\n' || d == utf8.RuneError {
		errs = append(errs, fmt.Sprintf("IMPORT_DELIMITER (%q) cannot be a quote, line break or invalid UTF-8", c.Import.Delimiter))
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Upload validation
	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Upload.MaxConcurrent <= 0 {
		errs = append(errs, "UPLOAD_MAX_CONCURRENT must be positive")
	}
	if c.Upload.MaxWaitTime <= 0 {
		errs = append(errs, "UPLOAD_MAX_WAIT_TIME must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The database URL is masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Database: {Driver: %q, URL: [MASKED], Schema: %q, MaxConns: %d, MinConns: %d}, ",
		c.Database.Driver, c.Database.Schema, c.Database.MaxConns, c.Database.MinConns)
	fmt.Fprintf(&b, "Import: {Delimiter: %q, StagingDir: %q, KeepStaging: %v}, ",
		c.Import.Delimiter, c.Import.StagingDir, c.Import.KeepStaging)
	fmt.Fprintf(&b, "Upload: {MaxFileSize: %d, MaxConcurrent: %d}, ",
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent)
	fmt.Fprintf(&b, "Security: {APIKeys: %d configured, TrustedProxies: %v}, ",
		len(c.Security.APIKeys), c.Security.TrustedProxies)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
