// Package health exposes liveness and readiness probes for the daemon.
package health
