// Package telemetry groups the daemon's observability concerns:
// structured logging, Prometheus metrics, and health probes.
package telemetry
