package config

import "time"

// Config is the top-level configuration for the vigil daemon and CLI.
type Config struct {
	// Properties configures where property documents are loaded from.
	Properties PropertiesConfig `yaml:"properties"`

	// Audit configures the validation audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PropertiesConfig configures property document loading.
type PropertiesConfig struct {
	// Source is the file or directory holding property documents.
	Source string `yaml:"source"`

	// RescanSchedule is an optional cron expression for periodic rescans.
	RescanSchedule string `yaml:"rescan_schedule"`

	// DebounceInterval collapses bursts of file change events.
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// MaxFileSize caps the size of a single document.
	MaxFileSize int64 `yaml:"max_file_size"`

	// Extensions lists recognized document extensions.
	Extensions []string `yaml:"extensions"`
}

// AuditConfig configures the validation audit trail.
type AuditConfig struct {
	// Enabled turns audit recording on.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file. Empty with Enabled true keeps
	// records in memory only.
	Path string `yaml:"path"`

	// Retention is how long records are kept; 0 disables pruning.
	Retention time.Duration `yaml:"retention"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the telemetry HTTP endpoint.
type MetricsConfig struct {
	// Enabled turns the telemetry HTTP server on.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the telemetry server's bind address.
	ListenAddress string `yaml:"listen_address"`
}
