package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "expansion.max_patterns").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateExpansion(&cfg.Expansion)...)
	errs = append(errs, validateSource(&cfg.Source)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateEvents(&cfg.Events)...)
	errs = append(errs, validateSync(&cfg.Sync)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateExpansion(cfg *ExpansionConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxPatterns < 1 {
		errs = append(errs, FieldError{
			Field:   "expansion.max_patterns",
			Message: "max patterns must be at least 1",
		})
	}
	if cfg.Language == "" || strings.ContainsAny(cfg.Language, `/\`) {
		errs = append(errs, FieldError{
			Field:   "expansion.language",
			Message: fmt.Sprintf("invalid language %q", cfg.Language),
		})
	}
	if cfg.ExplosionFactor < 1 {
		errs = append(errs, FieldError{
			Field:   "expansion.explosion_factor",
			Message: "explosion factor must be at least 1",
		})
	}
	if cfg.MaxRuleDepth < 1 {
		errs = append(errs, FieldError{
			Field:   "expansion.max_rule_depth",
			Message: "max rule depth must be at least 1",
		})
	}
	if cfg.Workers < 1 || cfg.Workers > 64 {
		errs = append(errs, FieldError{
			Field:   "expansion.workers",
			Message: "workers must be between 1 and 64",
		})
	}

	return errs
}

func validateSource(cfg *SourceConfig) []FieldError {
	var errs []FieldError

	switch cfg.Mode {
	case "archive":
		if u, err := url.Parse(cfg.ArchiveURL); err != nil || u.Scheme == "" {
			errs = append(errs, FieldError{
				Field:   "source.archive_url",
				Message: fmt.Sprintf("invalid archive URL %q", cfg.ArchiveURL),
			})
		}
		if cfg.SentencesPath == "" {
			errs = append(errs, FieldError{
				Field:   "source.sentences_path",
				Message: "sentences path is required in archive mode",
			})
		}
	case "git":
		if cfg.Git.Repository == "" {
			errs = append(errs, FieldError{
				Field:   "source.git.repository",
				Message: "repository is required in git mode",
			})
		}
		if cfg.Git.Depth < 0 {
			errs = append(errs, FieldError{
				Field:   "source.git.depth",
				Message: "depth must be non-negative",
			})
		}
		switch cfg.Git.Auth.Type {
		case "none":
		case "token":
			if cfg.Git.Auth.Token == "" {
				errs = append(errs, FieldError{
					Field:   "source.git.auth.token",
					Message: "token is required when auth type is token",
				})
			}
		default:
			errs = append(errs, FieldError{
				Field:   "source.git.auth.type",
				Message: fmt.Sprintf("invalid auth type %q (must be none or token)", cfg.Git.Auth.Type),
			})
		}
	case "dir":
		if cfg.InboxPath == "" {
			errs = append(errs, FieldError{
				Field:   "source.inbox_path",
				Message: "inbox path is required in dir mode",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "source.mode",
			Message: fmt.Sprintf("invalid mode %q (must be archive, git or dir)", cfg.Mode),
		})
	}

	if cfg.Watch && cfg.InboxPath == "" {
		errs = append(errs, FieldError{
			Field:   "source.inbox_path",
			Message: "inbox path is required when watch is enabled",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "source.timeout",
			Message: "timeout must be positive",
		})
	}

	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.Driver != "sqlite" && cfg.Driver != "sqlite3" {
			errs = append(errs, FieldError{
				Field:   "storage.driver",
				Message: fmt.Sprintf("invalid driver %q (must be sqlite or sqlite3)", cfg.Driver),
			})
		}
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "storage.path",
				Message: "path is required for the sqlite backend",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend %q (must be sqlite or memory)", cfg.Backend),
		})
	}
	if cfg.MaxOpenConns < 0 {
		errs = append(errs, FieldError{
			Field:   "storage.max_open_conns",
			Message: "max open connections must be non-negative",
		})
	}

	return errs
}

func validateEvents(cfg *EventsConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Topic == "" {
		errs = append(errs, FieldError{
			Field:   "events.topic",
			Message: "topic is required when events are enabled",
		})
	}
	if cfg.BufferSize < 1 {
		errs = append(errs, FieldError{
			Field:   "events.buffer_size",
			Message: "buffer size must be at least 1",
		})
	}
	if cfg.MQTT.URL != "" {
		u, err := url.Parse(cfg.MQTT.URL)
		switch {
		case err != nil:
			errs = append(errs, FieldError{
				Field:   "events.mqtt.url",
				Message: fmt.Sprintf("invalid broker URL: %v", err),
			})
		case !validMQTTSchemes[u.Scheme] || u.Host == "":
			errs = append(errs, FieldError{
				Field:   "events.mqtt.url",
				Message: fmt.Sprintf("broker URL must look like tcp://host:port (schemes: tcp, mqtt, ssl, tls, mqtts, ws, wss), got %q", u.Redacted()),
			})
		}
	}
	if cfg.MQTT.QoS < 0 || cfg.MQTT.QoS > 2 {
		errs = append(errs, FieldError{
			Field:   "events.mqtt.qos",
			Message: fmt.Sprintf("qos must be 0, 1 or 2, got %d", cfg.MQTT.QoS),
		})
	}

	return errs
}

var validMQTTSchemes = map[string]bool{
	"tcp": true, "mqtt": true, "ssl": true, "tls": true, "mqtts": true, "ws": true, "wss": true,
}

func validateSync(cfg *SyncConfig) []FieldError {
	var errs []FieldError

	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "sync.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "sync.timeout",
			Message: "timeout must be positive",
		})
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server",
			Message: "timeouts must be positive",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q (must be debug, info, warn or error)", cfg.Logging.Level),
		})
	}
	switch cfg.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q (must be json, text or console)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q (must be always, never or ratio)", cfg.Tracing.Sampler),
			})
		}
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0 and 1",
		})
	}

	return errs
}
