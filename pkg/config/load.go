package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention HASSIL_SECTION_FIELD (e.g., HASSIL_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
// An empty path skips the file, which is how the service runs in containers.
//
// The loading sequence is:
// 1. Load YAML from file over the boolean defaults
// 2. Apply environment variable overrides
// 3. Apply default values to fields still unset
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := newBaseConfig()
	if path != "" {
		var err error
		if cfg, err = decodeFile(path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func decodeFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := newBaseConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format HASSIL_SECTION_FIELD. The legacy
// MAX_PATTERNS_PER_INTENT, DATA_INBOX_PATH and MQTT_URL names are honoured too; the
// prefixed variable wins when both are set.
func applyEnvOverrides(cfg *Config) {
	// Legacy names first so the prefixed ones override them.
	envInt("MAX_PATTERNS_PER_INTENT", &cfg.Expansion.MaxPatterns)
	envString("DATA_INBOX_PATH", &cfg.Source.InboxPath)
	envString("MQTT_URL", &cfg.Events.MQTT.URL)

	// Expansion overrides
	envInt("HASSIL_EXPANSION_MAX_PATTERNS", &cfg.Expansion.MaxPatterns)
	envString("HASSIL_EXPANSION_LANGUAGE", &cfg.Expansion.Language)
	envBool("HASSIL_EXPANSION_EXTERNAL_ENGINE", &cfg.Expansion.ExternalEngine)
	envInt("HASSIL_EXPANSION_EXPLOSION_FACTOR", &cfg.Expansion.ExplosionFactor)
	envInt("HASSIL_EXPANSION_MAX_RULE_DEPTH", &cfg.Expansion.MaxRuleDepth)
	envInt("HASSIL_EXPANSION_WORKERS", &cfg.Expansion.Workers)

	// Source overrides
	envString("HASSIL_SOURCE_MODE", &cfg.Source.Mode)
	envString("HASSIL_SOURCE_ARCHIVE_URL", &cfg.Source.ArchiveURL)
	envString("HASSIL_SOURCE_SENTENCES_PATH", &cfg.Source.SentencesPath)
	envString("HASSIL_SOURCE_GIT_REPOSITORY", &cfg.Source.Git.Repository)
	envString("HASSIL_SOURCE_GIT_BRANCH", &cfg.Source.Git.Branch)
	envString("HASSIL_SOURCE_GIT_PATH", &cfg.Source.Git.Path)
	envString("HASSIL_SOURCE_GIT_LOCAL_PATH", &cfg.Source.Git.LocalPath)
	envInt("HASSIL_SOURCE_GIT_DEPTH", &cfg.Source.Git.Depth)
	envString("HASSIL_SOURCE_GIT_AUTH_TYPE", &cfg.Source.Git.Auth.Type)
	envString("HASSIL_SOURCE_GIT_AUTH_TOKEN", &cfg.Source.Git.Auth.Token)
	envString("HASSIL_SOURCE_INBOX_PATH", &cfg.Source.InboxPath)
	envBool("HASSIL_SOURCE_WATCH", &cfg.Source.Watch)
	envDuration("HASSIL_SOURCE_WATCH_DEBOUNCE", &cfg.Source.WatchDebounce)
	envDuration("HASSIL_SOURCE_TIMEOUT", &cfg.Source.Timeout)
	envString("HASSIL_SOURCE_TAG", &cfg.Source.Tag)

	// Storage overrides
	envString("HASSIL_STORAGE_BACKEND", &cfg.Storage.Backend)
	envString("HASSIL_STORAGE_DRIVER", &cfg.Storage.Driver)
	envString("HASSIL_STORAGE_PATH", &cfg.Storage.Path)
	envDuration("HASSIL_STORAGE_BUSY_TIMEOUT", &cfg.Storage.BusyTimeout)
	envBool("HASSIL_STORAGE_WAL_MODE", &cfg.Storage.WALMode)
	envInt("HASSIL_STORAGE_MAX_OPEN_CONNS", &cfg.Storage.MaxOpenConns)

	// Events overrides
	envBool("HASSIL_EVENTS_ENABLED", &cfg.Events.Enabled)
	envString("HASSIL_EVENTS_TOPIC", &cfg.Events.Topic)
	envInt("HASSIL_EVENTS_BUFFER_SIZE", &cfg.Events.BufferSize)
	envDuration("HASSIL_EVENTS_WRITE_TIMEOUT", &cfg.Events.WriteTimeout)
	envString("HASSIL_EVENTS_MQTT_URL", &cfg.Events.MQTT.URL)
	envString("HASSIL_EVENTS_MQTT_CLIENT_ID", &cfg.Events.MQTT.ClientID)
	envInt("HASSIL_EVENTS_MQTT_QOS", &cfg.Events.MQTT.QoS)
	envDuration("HASSIL_EVENTS_MQTT_TIMEOUT", &cfg.Events.MQTT.Timeout)

	// Sync overrides
	envString("HASSIL_SYNC_SCHEDULE", &cfg.Sync.Schedule)
	envBool("HASSIL_SYNC_ON_START", &cfg.Sync.OnStart)
	envDuration("HASSIL_SYNC_TIMEOUT", &cfg.Sync.Timeout)

	// Server overrides
	envString("HASSIL_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("HASSIL_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("HASSIL_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("HASSIL_SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("HASSIL_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envInt("HASSIL_SERVER_MAX_HEADER_BYTES", &cfg.Server.MaxHeaderBytes)

	// Telemetry overrides
	envString("HASSIL_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("HASSIL_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("HASSIL_TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	envBool("HASSIL_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("HASSIL_TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envString("HASSIL_TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)
	envBool("HASSIL_TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("HASSIL_TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envString("HASSIL_TELEMETRY_TRACING_SERVICE_NAME", &cfg.Telemetry.Tracing.ServiceName)
	envString("HASSIL_TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	envFloat("HASSIL_TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
	envBool("HASSIL_TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

// Unparseable values are ignored with a warning; validation still runs on
// whatever the file provided.
func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		} else {
			ignoreEnv(key, val, err)
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		} else {
			ignoreEnv(key, val, err)
		}
	}
}

func envFloat(key string, dst *float64) {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		} else {
			ignoreEnv(key, val, err)
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		} else {
			ignoreEnv(key, val, err)
		}
	}
}

func ignoreEnv(key, val string, err error) {
	slog.Warn("ignoring invalid environment override", "variable", key, "value", val, "error", err)
}
