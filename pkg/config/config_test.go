package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vigil.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
properties:
  source: ./props
  rescan_schedule: "@hourly"
  debounce_interval: 200ms
audit:
  enabled: true
  path: /var/lib/vigil/audit.db
  retention: 720h
telemetry:
  logging:
    level: debug
  metrics:
    enabled: true
    listen_address: ":9191"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Properties.Source != "./props" {
		t.Errorf("Source = %q", cfg.Properties.Source)
	}
	if cfg.Properties.DebounceInterval != 200*time.Millisecond {
		t.Errorf("DebounceInterval = %v", cfg.Properties.DebounceInterval)
	}
	if cfg.Properties.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("MaxFileSize default not applied: %d", cfg.Properties.MaxFileSize)
	}
	if cfg.Audit.Retention != 720*time.Hour {
		t.Errorf("Retention = %v", cfg.Audit.Retention)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Level = %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Logging.Format != DefaultLogFormat {
		t.Errorf("Format default not applied: %q", cfg.Telemetry.Logging.Format)
	}
	if cfg.Telemetry.Metrics.ListenAddress != ":9191" {
		t.Errorf("ListenAddress = %q", cfg.Telemetry.Metrics.ListenAddress)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
properties:
  source: ./props
`)
	t.Setenv("VIGIL_PROPERTIES_SOURCE", "/etc/vigil/props")
	t.Setenv("VIGIL_LOG_LEVEL", "warn")
	t.Setenv("VIGIL_AUDIT_PATH", "/tmp/audit.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Properties.Source != "/etc/vigil/props" {
		t.Errorf("Source = %q, env override not applied", cfg.Properties.Source)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Level = %q", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Audit.Enabled || cfg.Audit.Path != "/tmp/audit.db" {
		t.Errorf("Audit = %+v", cfg.Audit)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing source", "audit:\n  enabled: true\n"},
		{"bad schedule", "properties:\n  source: ./p\n  rescan_schedule: nonsense\n"},
		{"bad level", "properties:\n  source: ./p\ntelemetry:\n  logging:\n    level: loud\n"},
		{"bad format", "properties:\n  source: ./p\ntelemetry:\n  logging:\n    format: xml\n"},
		{"negative retention", "properties:\n  source: ./p\naudit:\n  retention: -1h\n"},
		{"invalid yaml", "properties: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("invalid configuration accepted")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
