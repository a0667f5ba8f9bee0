// Package logging builds the process-wide structured logger and carries
// common log fields through contexts.
package logging
