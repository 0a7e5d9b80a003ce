// Package config provides configuration management for hassil-parser.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From an optional YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//     cfg, err := config.LoadConfigWithEnvOverrides("") // environment only
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention HASSIL_SECTION_FIELD.
// For example:
//
//   - HASSIL_EXPANSION_MAX_PATTERNS overrides expansion.max_patterns
//   - HASSIL_SOURCE_MODE overrides source.mode
//   - HASSIL_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// MAX_PATTERNS_PER_INTENT and DATA_INBOX_PATH are accepted as legacy names
// for expansion.max_patterns and source.inbox_path.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Boolean defaults
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Remaining default values (defined in defaults.go)
//  5. Validation (fails fast if invalid)
//
// source.sentences_path defaults to intents-main/sentences/<language>, so a
// language override moves it unless it is set explicitly.
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Expansion.MaxPatterns)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Example Configuration
//
//	expansion:
//	  max_patterns: 50
//	  language: "de"
//
//	source:
//	  mode: "archive"
//
//	storage:
//	  backend: "sqlite"
//	  path: "data/templates.db"
//
//	sync:
//	  schedule: "0 */6 * * *"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
