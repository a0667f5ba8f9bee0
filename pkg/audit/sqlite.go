package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS validation_records (
    id TEXT PRIMARY KEY,
    property_id TEXT NOT NULL,
    source TEXT NOT NULL,
    set_version TEXT NOT NULL,
    accepted INTEGER NOT NULL,
    diagnostics TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_property
    ON validation_records(property_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_records_created
    ON validation_records(created_at DESC);
`

// SQLiteConfig configures the SQLite audit store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// SQLiteStore is a durable Store backed by SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if necessary) the audit database.
func NewSQLiteStore(cfg SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("audit: database path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: open database: %w", err)
	}

	// SQLite supports a single writer; the pool mirrors that.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: create schema: %w", err)
	}

	logger.Info("audit store opened", "path", cfg.Path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Save archives a record.
func (s *SQLiteStore) Save(ctx context.Context, record *Record) error {
	diagnostics, err := json.Marshal(record.Diagnostics)
	if err != nil {
		return fmt.Errorf("audit: encode diagnostics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO validation_records
		    (id, property_id, source, set_version, accepted, diagnostics, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.PropertyID, record.Source, record.SetVersion,
		boolToInt(record.Accepted), string(diagnostics), record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("audit: save record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, property_id, source, set_version, accepted, diagnostics, created_at
		FROM validation_records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return record, err
}

// ByProperty returns one property's records, newest first.
func (s *SQLiteStore) ByProperty(ctx context.Context, propertyID string, limit int) ([]*Record, error) {
	return s.query(ctx, `
		SELECT id, property_id, source, set_version, accepted, diagnostics, created_at
		FROM validation_records WHERE property_id = ?
		ORDER BY created_at DESC, id`+limitClause(limit), propertyID)
}

// Recent returns the newest records across all properties.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*Record, error) {
	return s.query(ctx, `
		SELECT id, property_id, source, set_version, accepted, diagnostics, created_at
		FROM validation_records
		ORDER BY created_at DESC, id`+limitClause(limit))
}

// Prune deletes records created before the cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM validation_records WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("audit: prune: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("audit: prune: %w", err)
	}
	return int(removed), nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: iterate records: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		record      Record
		accepted    int
		diagnostics string
	)
	err := row.Scan(&record.ID, &record.PropertyID, &record.Source, &record.SetVersion,
		&accepted, &diagnostics, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	record.Accepted = accepted != 0
	if err := json.Unmarshal([]byte(diagnostics), &record.Diagnostics); err != nil {
		return nil, fmt.Errorf("audit: decode diagnostics: %w", err)
	}
	if record.Diagnostics == nil {
		record.Diagnostics = []*vplErrors.Diagnostic{}
	}
	return &record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func limitClause(limit int) string {
	if limit > 0 {
		return fmt.Sprintf(" LIMIT %d", limit)
	}
	return ""
}
