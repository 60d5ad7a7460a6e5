package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/listingwatch/internal/model"
)

// Ensure SQLiteStore implements model.KnownStore.
var _ model.KnownStore = (*SQLiteStore)(nil)

const lastUpdatedKey = "last_updated"

// SQLiteStore keeps the known set in a SQLite database. Rows are only ever
// inserted, matching the grow-only semantics of the known set.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS known_listings (
			listing_id TEXT PRIMARY KEY,
			first_seen DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS store_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns every known listing ID and the last save time.
func (s *SQLiteStore) Load() (model.Snapshot, error) {
	rows, err := s.db.Query("SELECT listing_id FROM known_listings ORDER BY listing_id")
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("querying known listings: %w", err)
	}
	defer rows.Close()

	var snap model.Snapshot
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return model.Snapshot{}, fmt.Errorf("scanning known listing: %w", err)
		}
		snap.IDs = append(snap.IDs, id)
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, fmt.Errorf("iterating known listings: %w", err)
	}

	var raw string
	err = s.db.QueryRow("SELECT value FROM store_meta WHERE key = ?", lastUpdatedKey).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return model.Snapshot{}, fmt.Errorf("reading %s: %w", lastUpdatedKey, err)
	default:
		snap.LastUpdated = parseLastUpdated(raw)
	}

	return snap, nil
}

// Save inserts any IDs not yet stored and records the save time, in one transaction.
func (s *SQLiteStore) Save(snap model.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO known_listings (listing_id) VALUES (?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range snap.IDs {
		if _, err := stmt.Exec(id); err != nil {
			return fmt.Errorf("inserting listing %s: %w", id, err)
		}
	}

	updated := snap.LastUpdated
	if updated.IsZero() {
		updated = time.Now()
	}
	if _, err := tx.Exec(
		"INSERT INTO store_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		lastUpdatedKey, updated.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("recording %s: %w", lastUpdatedKey, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
