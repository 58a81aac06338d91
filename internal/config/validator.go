package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "locate.max_attempts")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

const (
	maxPollIntervalMs = 60_000
	maxInitialDelayMs = 300_000
	maxLogSizeMB      = 1000
)

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLaunch()...)
	errors = append(errors, c.validateLocate()...)
	errors = append(errors, c.validateEmbed()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateLaunch validates the LaunchConfig
func (c *Config) validateLaunch() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Launch.Executable) == "" {
		errors = append(errors, ValidationError{
			Field:   "launch.executable",
			Value:   c.Launch.Executable,
			Message: "must not be empty",
		})
	}

	for i, ext := range c.Launch.Extensions {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("launch.extensions[%d]", i),
				Value:   ext,
				Message: "must be empty or start with a dot",
			})
		}
	}

	return errors
}

// validateLocate validates the LocateConfig
func (c *Config) validateLocate() []ValidationError {
	var errors []ValidationError

	// An empty title would match nothing and burn the whole poll budget
	if strings.TrimSpace(c.Locate.Title) == "" {
		errors = append(errors, ValidationError{
			Field:   "locate.title",
			Value:   c.Locate.Title,
			Message: "must not be empty",
		})
	}

	if c.Locate.InitialDelayMs < 0 || c.Locate.InitialDelayMs > maxInitialDelayMs {
		errors = append(errors, ValidationError{
			Field:   "locate.initial_delay_ms",
			Value:   c.Locate.InitialDelayMs,
			Message: fmt.Sprintf("must be between 0 and %d", maxInitialDelayMs),
		})
	}

	if c.Locate.PollIntervalMs <= 0 || c.Locate.PollIntervalMs > maxPollIntervalMs {
		errors = append(errors, ValidationError{
			Field:   "locate.poll_interval_ms",
			Value:   c.Locate.PollIntervalMs,
			Message: fmt.Sprintf("must be between 1 and %d", maxPollIntervalMs),
		})
	}

	if c.Locate.MaxAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "locate.max_attempts",
			Value:   c.Locate.MaxAttempts,
			Message: "must be at least 1",
		})
	}

	return errors
}

// validateEmbed validates the EmbedConfig
func (c *Config) validateEmbed() []ValidationError {
	var errors []ValidationError

	if c.Embed.MaxDepth < 0 {
		errors = append(errors, ValidationError{
			Field:   "embed.max_depth",
			Value:   c.Embed.MaxDepth,
			Message: "must be non-negative",
		})
	}

	if c.Embed.MaxWindows < 1 {
		errors = append(errors, ValidationError{
			Field:   "embed.max_windows",
			Value:   c.Embed.MaxWindows,
			Message: "must be at least 1",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Zero disables rotation
	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
