package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
)

// Config controls metric naming and histogram resolution.
type Config struct {
	Namespace string
	Subsystem string

	// ValidationDurationBuckets are the histogram buckets for validation
	// latency in seconds. Validation is a pure tree walk and should sit
	// well under a millisecond for typical properties.
	ValidationDurationBuckets []float64
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() *Config {
	return &Config{
		Namespace:                 "vigil",
		Subsystem:                 "vpl",
		ValidationDurationBuckets: prometheus.ExponentialBuckets(0.000001, 4, 10), // 1µs to ~262ms
	}
}

// Collector registers and records the Prometheus metrics of the property
// pipeline: validation outcomes, diagnostic counts, reloads, and the
// number of properties currently loaded.
type Collector struct {
	registry *prometheus.Registry

	validationsTotal   *prometheus.CounterVec
	validationDuration prometheus.Histogram
	diagnosticsTotal   *prometheus.CounterVec
	reloadsTotal       *prometheus.CounterVec
	propertiesLoaded   prometheus.Gauge
}

// NewCollector creates a collector registered against the given registry.
// A nil registry gets a fresh private one, keeping tests and embedders
// isolated from the global default.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validations_total",
				Help:      "Total property validations by outcome",
			},
			[]string{"outcome"},
		),
		validationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validation_duration_seconds",
				Help:      "Duration of one property validation in seconds",
				Buckets:   cfg.ValidationDurationBuckets,
			},
		),
		diagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "diagnostics_total",
				Help:      "Total diagnostics produced by validation, by code and severity",
			},
			[]string{"code", "severity"},
		),
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reloads_total",
				Help:      "Total property reloads by status",
			},
			[]string{"status"},
		),
		propertiesLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "properties_loaded",
				Help:      "Number of properties currently registered",
			},
		),
	}

	registry.MustRegister(
		c.validationsTotal,
		c.validationDuration,
		c.diagnosticsTotal,
		c.reloadsTotal,
		c.propertiesLoaded,
	)
	return c
}

// RecordValidation records the outcome of one property validation.
func (c *Collector) RecordValidation(report *vplErrors.Report, duration time.Duration) {
	outcome := "accepted"
	if !report.Accepted() {
		outcome = "rejected"
	}
	c.validationsTotal.WithLabelValues(outcome).Inc()
	c.validationDuration.Observe(duration.Seconds())

	for _, d := range report.Errors {
		c.diagnosticsTotal.WithLabelValues(string(d.Code), string(d.Severity)).Inc()
	}
	for _, d := range report.Warnings {
		c.diagnosticsTotal.WithLabelValues(string(d.Code), string(d.Severity)).Inc()
	}
}

// RecordReload records the outcome of a property source reload.
func (c *Collector) RecordReload(err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.reloadsTotal.WithLabelValues(status).Inc()
}

// SetPropertiesLoaded updates the loaded-properties gauge.
func (c *Collector) SetPropertiesLoaded(n int) {
	c.propertiesLoaded.Set(float64(n))
}

// Registry exposes the underlying registry, for embedding into a larger
// telemetry surface.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler serving the collector's metrics in the
// Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
