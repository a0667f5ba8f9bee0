package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults, applies
// VIGIL_* environment variable overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides. Variables
// use the format VIGIL_SECTION_FIELD and take precedence over the file.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("VIGIL_PROPERTIES_SOURCE"); val != "" {
		cfg.Properties.Source = val
	}
	if val := os.Getenv("VIGIL_PROPERTIES_RESCAN_SCHEDULE"); val != "" {
		cfg.Properties.RescanSchedule = val
	}
	if val := os.Getenv("VIGIL_PROPERTIES_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Properties.DebounceInterval = d
		}
	}
	if val := os.Getenv("VIGIL_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
		cfg.Audit.Enabled = true
	}
	if val := os.Getenv("VIGIL_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("VIGIL_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("VIGIL_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
}
