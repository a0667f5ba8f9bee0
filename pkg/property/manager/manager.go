package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"vigil-hq/vigil/pkg/audit"
	"vigil-hq/vigil/pkg/telemetry/metrics"
	"vigil-hq/vigil/pkg/vpl/ast"
	"vigil-hq/vigil/pkg/vpl/validator"
)

// DefaultManager is the default Manager implementation.
type DefaultManager struct {
	config   *Config
	loader   *Loader
	registry *Registry
	logger   *slog.Logger
	metrics  *metrics.Collector
	audit    audit.Store

	mu           sync.Mutex
	lastLoadTime time.Time
	lastResult   *LoadResult

	watchMu sync.Mutex
	watcher *FileWatcher
	cron    *cron.Cron
}

// New creates a property manager over the config's source. The validator
// and metrics collector are optional; a nil validator uses the default
// function registry, and nil metrics disables instrumentation.
func New(config *Config, v *validator.Validator, collector *metrics.Collector, logger *slog.Logger) (*DefaultManager, error) {
	if config == nil {
		return nil, fmt.Errorf("manager: config cannot be nil")
	}
	if config.Source == "" {
		return nil, fmt.Errorf("manager: config requires a source path")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultManager{
		config:   config,
		loader:   NewLoader(config, v),
		registry: NewRegistry(),
		logger:   logger,
		metrics:  collector,
	}, nil
}

// Load loads, validates, and registers all properties from the source.
// The swap is atomic: a failing load leaves the previous set registered.
func (m *DefaultManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	m.logger.Info("loading properties", "source", m.config.Source)

	result, err := m.loader.Load(m.config.Source)
	m.recordLoad(result)
	if err != nil {
		if m.metrics != nil {
			m.metrics.RecordReload(err)
		}
		m.archiveLoad(result)
		m.logger.Error("property load failed",
			"source", m.config.Source,
			"error", err,
		)
		return err
	}

	m.registry.ReplaceAll(result.IDs, result.Properties)
	m.archiveLoad(result)

	m.lastLoadTime = time.Now()
	m.lastResult = result
	if m.metrics != nil {
		m.metrics.RecordReload(nil)
		m.metrics.SetPropertiesLoaded(m.registry.Len())
	}
	m.logger.Info("properties loaded",
		"count", len(result.Properties),
		"files", result.Files,
		"warnings", result.Warnings(),
		"version", m.registry.Version(),
		"duration", time.Since(start),
	)
	return nil
}

// recordLoad feeds per-property validation reports into the metrics
// collector, including those of a load that ends up rejected.
func (m *DefaultManager) recordLoad(result *LoadResult) {
	if m.metrics == nil || result == nil {
		return
	}
	per := time.Duration(0)
	if n := len(result.Reports); n > 0 {
		per = result.Duration / time.Duration(n)
	}
	for _, report := range result.Reports {
		m.metrics.RecordValidation(report, per)
	}
}

// archiveLoad saves one audit record per validated property. Archiving
// failures are logged, never propagated: the load outcome stands.
func (m *DefaultManager) archiveLoad(result *LoadResult) {
	if m.audit == nil || result == nil {
		return
	}
	version := m.registry.Version()
	for id, report := range result.Reports {
		record := audit.NewRecord(id, m.config.Source, version, report)
		if err := m.audit.Save(context.Background(), record); err != nil {
			m.logger.Error("audit record save failed", "property", id, "error", err)
		}
	}
}

// SetAuditStore attaches an audit store. Every subsequent load archives
// one record per validated property, rejected loads included.
func (m *DefaultManager) SetAuditStore(store audit.Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = store
}

// Reload delegates to Load.
func (m *DefaultManager) Reload() error {
	return m.Load()
}

// Property retrieves one registered property by identifier.
func (m *DefaultManager) Property(id string) (*ast.Property, bool) {
	return m.registry.Get(id)
}

// Properties returns a snapshot of the registered properties.
func (m *DefaultManager) Properties() []*ast.Property {
	return m.registry.All()
}

// Version identifies the registered property set.
func (m *DefaultManager) Version() string {
	return m.registry.Version()
}

// Watch blocks, reloading on file changes and on the optional rescan
// schedule, until the context is cancelled.
func (m *DefaultManager) Watch(ctx context.Context) error {
	m.watchMu.Lock()
	if m.watcher != nil {
		m.watchMu.Unlock()
		return fmt.Errorf("manager: already watching")
	}

	watcher, err := NewFileWatcher(m.config, m.logger)
	if err != nil {
		m.watchMu.Unlock()
		return err
	}
	m.watcher = watcher

	if m.config.RescanSchedule != "" {
		m.cron = cron.New()
		_, err := m.cron.AddFunc(m.config.RescanSchedule, func() {
			m.logger.Debug("scheduled property rescan", "schedule", m.config.RescanSchedule)
			if err := m.Reload(); err != nil {
				m.logger.Error("scheduled rescan failed", "error", err)
			}
		})
		if err != nil {
			m.watcher = nil
			m.cron = nil
			m.watchMu.Unlock()
			return fmt.Errorf("manager: invalid rescan schedule %q: %w", m.config.RescanSchedule, err)
		}
		m.cron.Start()
	}
	m.watchMu.Unlock()

	defer func() {
		m.watchMu.Lock()
		if m.cron != nil {
			m.cron.Stop()
			m.cron = nil
		}
		m.watcher = nil
		m.watchMu.Unlock()
	}()

	return watcher.Watch(ctx, m.Reload)
}

// Close stops any active watcher and scheduler.
func (m *DefaultManager) Close() error {
	m.watchMu.Lock()
	watcher := m.watcher
	if m.cron != nil {
		m.cron.Stop()
		m.cron = nil
	}
	m.watchMu.Unlock()

	if watcher != nil {
		return watcher.Stop()
	}
	return nil
}

// LastResult returns the result of the most recent successful load.
func (m *DefaultManager) LastResult() *LoadResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastResult
}
