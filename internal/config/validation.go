package config

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/goapriori/internal/sqlutil"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	// Validate source database
	if err := c.validateDatabase("source", &c.Source); err != nil {
		errors = append(errors, err...)
	}

	// Validate global mining settings
	if err := c.validateMining("mining", &c.Mining, false); err != nil {
		errors = append(errors, err...)
	}

	// Validate jobs
	if len(c.Jobs) == 0 {
		errors = append(errors, ValidationError{
			Field:   "jobs",
			Message: "at least one job must be defined",
		})
	}
	for name, job := range c.Jobs {
		if err := c.validateJob(name, &job); err != nil {
			errors = append(errors, err...)
		}
	}

	// Validate load settings
	if c.Load.BatchSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "load.batch_size",
			Message: "batch_size must be positive",
		})
	}

	// Validate output settings
	validOutputs := map[string]bool{"table": true, "json": true, "": true}
	if !validOutputs[c.Output.Format] {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Message: "format must be 'table' or 'json'",
		})
	}

	// Validate logging settings
	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateDatabase(prefix string, db *DatabaseConfig) ValidationErrors {
	var errors ValidationErrors

	switch db.Driver {
	case DriverSQLite:
		if db.Path == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".path",
				Message: "path is required for the sqlite driver",
			})
		}
		return errors
	case DriverMySQL, DriverPostgres, "":
	default:
		errors = append(errors, ValidationError{
			Field:   prefix + ".driver",
			Message: "driver must be 'mysql', 'postgres', or 'sqlite'",
		})
		return errors
	}

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	return errors
}

// validateMining checks thresholds lie in (0, 1]. Zero values are allowed in
// job overrides, where they mean "inherit".
func (c *Config) validateMining(prefix string, m *MiningConfig, override bool) ValidationErrors {
	var errors ValidationErrors

	if !validFraction(m.Support, override) {
		errors = append(errors, ValidationError{
			Field:   prefix + ".support",
			Message: "support must be in (0, 1]",
		})
	}

	if !validFraction(m.Confidence, override) {
		errors = append(errors, ValidationError{
			Field:   prefix + ".confidence",
			Message: "confidence must be in (0, 1]",
		})
	}

	if m.CacheSize < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".cache_size",
			Message: "cache_size cannot be negative",
		})
	}

	switch m.Engine {
	case EngineSQL, "":
	case EngineGorm:
		if c.Source.Driver == DriverMySQL || c.Source.Driver == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".engine",
				Message: "engine 'gorm' requires the postgres or sqlite driver",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   prefix + ".engine",
			Message: "engine must be 'sql' or 'gorm'",
		})
	}

	return errors
}

func validFraction(v float64, allowZero bool) bool {
	if v == 0 {
		return allowZero
	}
	return v > 0 && v <= 1
}

func (c *Config) validateJob(name string, job *JobConfig) ValidationErrors {
	var errors ValidationErrors
	prefix := fmt.Sprintf("jobs.%s", name)

	if job.Table == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".table",
			Message: "table is required",
		})
	} else if !sqlutil.IsValidIdentifier(job.Table) {
		errors = append(errors, ValidationError{
			Field:   prefix + ".table",
			Message: "table must contain only alphanumeric characters and underscores",
		})
	}

	if len(job.Categories) == 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".categories",
			Message: "at least one category is required",
		})
	}

	seen := make(map[string]bool, len(job.Categories))
	for i, cat := range job.Categories {
		field := fmt.Sprintf("%s.categories[%d]", prefix, i)
		if !sqlutil.IsValidIdentifier(cat) {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: "category must contain only alphanumeric characters and underscores",
			})
			continue
		}
		if seen[cat] {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("category %q is listed twice", cat),
			})
		}
		seen[cat] = true
	}

	if job.Mining != nil {
		if err := c.validateMining(prefix+".mining", job.Mining, true); err != nil {
			errors = append(errors, err...)
		}
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
