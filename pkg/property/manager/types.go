package manager

import (
	"context"
	"time"

	"vigil-hq/vigil/pkg/vpl/ast"
	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
)

// Manager coordinates property loading, validation, registration, and
// hot reload from a file or directory source.
type Manager interface {
	// Load loads all properties from the configured source. The update is
	// atomic: every document is parsed and validated before any property
	// is registered, and a failing load leaves the previous set active.
	Load() error

	// Reload is Load under a different name, for watcher callbacks.
	Reload() error

	// Property retrieves one registered property by its identifier.
	Property(id string) (*ast.Property, bool)

	// Properties returns a snapshot of all registered properties.
	Properties() []*ast.Property

	// Version identifies the currently registered property set. It
	// changes whenever the set changes.
	Version() string

	// Watch blocks, reloading on source changes, until the context is
	// cancelled.
	Watch(ctx context.Context) error

	// Close releases watcher resources.
	Close() error
}

// Config configures a property manager.
type Config struct {
	// Source is the file or directory to load VPL documents from.
	Source string

	// RescanSchedule is an optional cron expression (robfig/cron syntax,
	// "@every 5m" included) for periodic rescans of the source. Rescans
	// catch changes the file watcher misses, such as edits through
	// bind mounts. Empty disables periodic rescans.
	RescanSchedule string

	// DebounceInterval is the quiet period before a file change triggers
	// a reload.
	DebounceInterval time.Duration

	// MaxFileSize bounds individual document size in bytes.
	MaxFileSize int64

	// Extensions lists the file extensions treated as VPL documents.
	Extensions []string
}

// DefaultConfig returns the default manager configuration.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 100 * time.Millisecond,
		MaxFileSize:      10 * 1024 * 1024,
		Extensions:       []string{".yaml", ".yml"},
	}
}

// LoadResult summarizes one load of the source.
type LoadResult struct {
	// Properties holds every accepted property, in document order.
	Properties []*ast.Property

	// IDs holds the registration identifier of each accepted property,
	// aligned with Properties.
	IDs []string

	// Reports maps property identifiers to their validation reports,
	// including reports that carry only warnings.
	Reports map[string]*vplErrors.Report

	// Files is the number of documents processed.
	Files int

	// Duration is how long the load took.
	Duration time.Duration
}

// Warnings counts the warning diagnostics across all reports.
func (r *LoadResult) Warnings() int {
	n := 0
	for _, report := range r.Reports {
		n += len(report.Warnings)
	}
	return n
}
