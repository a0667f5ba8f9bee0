// Package metrics exposes Prometheus instrumentation for the property
// pipeline. The collector registers against an injected registry so that
// embedders control the exposition surface and tests stay isolated.
package metrics
