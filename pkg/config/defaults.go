package config

import "time"

// Default values applied to unset fields.
const (
	DefaultDebounceInterval = 500 * time.Millisecond
	DefaultMaxFileSize      = 1 << 20
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultListenAddress    = ":9090"
)

// ApplyDefaults fills unset fields with default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Properties.DebounceInterval == 0 {
		cfg.Properties.DebounceInterval = DefaultDebounceInterval
	}
	if cfg.Properties.MaxFileSize == 0 {
		cfg.Properties.MaxFileSize = DefaultMaxFileSize
	}
	if len(cfg.Properties.Extensions) == 0 {
		cfg.Properties.Extensions = []string{".yaml", ".yml"}
	}
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultListenAddress
	}
}
