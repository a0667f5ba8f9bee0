package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for inconsistencies.
func Validate(cfg *Config) error {
	if cfg.Properties.Source == "" {
		return fmt.Errorf("properties.source is required")
	}
	if cfg.Properties.DebounceInterval < 0 {
		return fmt.Errorf("properties.debounce_interval cannot be negative")
	}
	if cfg.Properties.MaxFileSize < 0 {
		return fmt.Errorf("properties.max_file_size cannot be negative")
	}
	if cfg.Properties.RescanSchedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(cfg.Properties.RescanSchedule); err != nil {
			return fmt.Errorf("properties.rescan_schedule: %w", err)
		}
	}
	if cfg.Audit.Retention < 0 {
		return fmt.Errorf("audit.retention cannot be negative")
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level: unknown level %q", cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format: unknown format %q", cfg.Telemetry.Logging.Format)
	}
	return nil
}
