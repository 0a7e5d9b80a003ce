package config

import (
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// current holds the process-wide configuration.
	current atomic.Pointer[Config]

	// initOnce guards the first Initialize call.
	initOnce sync.Once
)

// Initialize loads configuration from path (empty for environment only)
// and stores it as the process configuration. Only the first call loads;
// later calls return nil without reading anything. Use ReloadConfig to
// replace the configuration afterwards.
func Initialize(path string) error {
	var initErr error
	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}
		current.Store(cfg)
	})
	return initErr
}

// GetConfig returns the process configuration, or nil before a successful
// Initialize. Safe for concurrent use.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig replaces the process configuration. Intended for tests and for
// commands that build a Config from flags.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig loads path again and swaps it in only when loading and
// validation succeed; on error the previous configuration stays active.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	current.Store(cfg)
	return nil
}

// MustGetConfig is GetConfig for code paths that run after startup.
// It panics if the configuration has not been initialized.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
