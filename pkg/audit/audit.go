// Package audit persists a trail of property validation outcomes, so
// operators can answer "when did this property start failing and with
// what diagnostics" after the fact. Two backends are provided: an
// in-memory store for tests and ephemeral deployments, and a SQLite
// store for durable single-instance deployments.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("audit: record not found")

// Record is one archived validation outcome.
type Record struct {
	// ID is the record's unique identifier, assigned on creation.
	ID string

	// PropertyID identifies the validated property.
	PropertyID string

	// Source is the document the property was loaded from.
	Source string

	// SetVersion is the property-set fingerprint active at validation.
	SetVersion string

	// Accepted mirrors the report's outcome.
	Accepted bool

	// Diagnostics carries the report's errors and warnings.
	Diagnostics []*vplErrors.Diagnostic

	// CreatedAt is when the record was stored.
	CreatedAt time.Time
}

// NewRecord builds a record from a validation report.
func NewRecord(propertyID, source, setVersion string, report *vplErrors.Report) *Record {
	diagnostics := make([]*vplErrors.Diagnostic, 0, report.Count())
	diagnostics = append(diagnostics, report.Errors...)
	diagnostics = append(diagnostics, report.Warnings...)
	return &Record{
		ID:          uuid.NewString(),
		PropertyID:  propertyID,
		Source:      source,
		SetVersion:  setVersion,
		Accepted:    report.Accepted(),
		Diagnostics: diagnostics,
		CreatedAt:   time.Now().UTC(),
	}
}

// Store archives and retrieves validation records.
type Store interface {
	// Save archives a record.
	Save(ctx context.Context, record *Record) error

	// Get retrieves a record by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// ByProperty returns the records for one property, newest first,
	// up to limit (0 means no limit).
	ByProperty(ctx context.Context, propertyID string, limit int) ([]*Record, error)

	// Recent returns the newest records across all properties, up to
	// limit (0 means no limit).
	Recent(ctx context.Context, limit int) ([]*Record, error)

	// Prune deletes records created before the cutoff and reports how
	// many were removed.
	Prune(ctx context.Context, before time.Time) (int, error)

	// Close releases backend resources.
	Close() error
}
