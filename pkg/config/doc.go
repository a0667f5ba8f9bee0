// Package config loads and validates the daemon's YAML configuration.
//
// Values resolve in three layers: file contents, then defaults for
// unset fields, then VIGIL_* environment variable overrides.
package config
