// Package cli provides shared helpers for vigil's command-line
// commands: typed errors, output formatting, and signal handling.
package cli
