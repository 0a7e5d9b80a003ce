package config

import (
	"path"
	"time"
)

// Default values for configuration fields.
const (
	// Expansion defaults
	DefaultMaxPatterns     = 50
	DefaultLanguage        = "de"
	DefaultExternalEngine  = true
	DefaultExplosionFactor = 10
	DefaultMaxRuleDepth    = 32
	DefaultWorkers         = 4

	// Source defaults
	DefaultSourceMode    = "archive"
	DefaultArchiveURL    = "https://github.com/home-assistant/intents/archive/refs/heads/main.zip"
	DefaultArchiveRoot   = "intents-main/sentences"
	DefaultGitRepository = "https://github.com/home-assistant/intents.git"
	DefaultGitBranch     = "main"
	DefaultGitPath       = "sentences"
	DefaultGitDepth      = 1
	DefaultGitAuthType   = "none"
	DefaultInboxPath     = "/data_inbox"
	DefaultWatchDebounce = 2 * time.Second
	DefaultSourceTimeout = 60 * time.Second
	DefaultSourceTag     = "github"

	// Storage defaults
	DefaultStorageBackend      = "sqlite"
	DefaultStorageDriver       = "sqlite"
	DefaultStoragePath         = "data/templates.db"
	DefaultStorageBusyTimeout  = 5 * time.Second
	DefaultStorageWALMode      = true
	DefaultStorageMaxOpenConns = 4

	// Events defaults
	DefaultEventsEnabled      = true
	DefaultEventsTopic        = "alice/ha/sync"
	DefaultEventsBufferSize   = 16
	DefaultEventsWriteTimeout = 5 * time.Second
	DefaultMQTTClientID       = "hassil-parser"
	DefaultMQTTQoS            = 1
	DefaultMQTTTimeout        = 10 * time.Second

	// Sync defaults
	DefaultSyncTimeout = 5 * time.Minute

	// Server defaults
	DefaultListenAddress   = "0.0.0.0:8000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "hassil"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "hassil-parser"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingInsecure    = true
	DefaultTracingTimeout     = 10 * time.Second
)

// NewDefaultConfig returns a configuration with every default applied,
// including the boolean switches whose zero value differs from the default.
// Loading decodes the YAML file over the boolean defaults, so a boolean the
// file sets explicitly to false stays false.
func NewDefaultConfig() *Config {
	cfg := newBaseConfig()
	ApplyDefaults(cfg)
	return cfg
}

// newBaseConfig carries only the defaults whose zero value is meaningful
// (booleans and the MQTT QoS), so that file and environment values can
// still derive dependent defaults afterwards.
func newBaseConfig() *Config {
	cfg := &Config{}
	cfg.Expansion.ExternalEngine = DefaultExternalEngine
	cfg.Storage.WALMode = DefaultStorageWALMode
	cfg.Events.Enabled = DefaultEventsEnabled
	cfg.Events.MQTT.QoS = DefaultMQTTQoS
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Insecure = DefaultTracingInsecure
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
// Boolean fields are left untouched; see NewDefaultConfig.
func ApplyDefaults(cfg *Config) {
	applyExpansionDefaults(&cfg.Expansion)
	applySourceDefaults(&cfg.Source, cfg.Expansion.Language)
	applyStorageDefaults(&cfg.Storage)
	applyEventsDefaults(&cfg.Events)
	if cfg.Sync.Timeout == 0 {
		cfg.Sync.Timeout = DefaultSyncTimeout
	}
	applyServerDefaults(&cfg.Server)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyExpansionDefaults(cfg *ExpansionConfig) {
	if cfg.MaxPatterns == 0 {
		cfg.MaxPatterns = DefaultMaxPatterns
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.ExplosionFactor == 0 {
		cfg.ExplosionFactor = DefaultExplosionFactor
	}
	if cfg.MaxRuleDepth == 0 {
		cfg.MaxRuleDepth = DefaultMaxRuleDepth
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
}

func applySourceDefaults(cfg *SourceConfig, language string) {
	if cfg.Mode == "" {
		cfg.Mode = DefaultSourceMode
	}
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = DefaultArchiveURL
	}
	if cfg.SentencesPath == "" {
		cfg.SentencesPath = path.Join(DefaultArchiveRoot, language)
	}
	if cfg.Git.Repository == "" {
		cfg.Git.Repository = DefaultGitRepository
	}
	if cfg.Git.Branch == "" {
		cfg.Git.Branch = DefaultGitBranch
	}
	if cfg.Git.Path == "" {
		cfg.Git.Path = DefaultGitPath
	}
	if cfg.Git.Depth == 0 {
		cfg.Git.Depth = DefaultGitDepth
	}
	if cfg.Git.Auth.Type == "" {
		cfg.Git.Auth.Type = DefaultGitAuthType
	}
	if cfg.InboxPath == "" {
		cfg.InboxPath = DefaultInboxPath
	}
	if cfg.WatchDebounce == 0 {
		cfg.WatchDebounce = DefaultWatchDebounce
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultSourceTimeout
	}
	if cfg.Tag == "" {
		cfg.Tag = DefaultSourceTag
	}
}

func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultStorageBackend
	}
	if cfg.Driver == "" {
		cfg.Driver = DefaultStorageDriver
	}
	if cfg.Path == "" {
		cfg.Path = DefaultStoragePath
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = DefaultStorageBusyTimeout
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = DefaultStorageMaxOpenConns
	}
}

func applyEventsDefaults(cfg *EventsConfig) {
	if cfg.Topic == "" {
		cfg.Topic = DefaultEventsTopic
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultEventsBufferSize
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultEventsWriteTimeout
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = DefaultMQTTClientID
	}
	if cfg.MQTT.Timeout == 0 {
		cfg.MQTT.Timeout = DefaultMQTTTimeout
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.MaxHeaderBytes == 0 {
		cfg.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
}
