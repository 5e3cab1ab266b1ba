package storage

import (
	"database/sql"
	"fmt"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// OpenSQLite opens an embedded sqlite database holding the storage slots
// and creates the schema when absent.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := migrateSlots(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrateSlots(db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS slots (
		slot_key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create slots table: %w", err)
	}
	return nil
}

// SQLiteSlot stores one value as a row of the slots table.
type SQLiteSlot struct {
	db  *sql.DB
	key string
}

func NewSQLiteSlot(db *sql.DB, key string) *SQLiteSlot {
	return &SQLiteSlot{db: db, key: key}
}

func (s *SQLiteSlot) Load() ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM slots WHERE slot_key = ?", s.key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load slot %q: %w", s.key, err)
	}
	return value, true, nil
}

func (s *SQLiteSlot) Save(data []byte) error {
	query := `INSERT INTO slots (slot_key, value) VALUES (?, ?)
		ON CONFLICT(slot_key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.Exec(query, s.key, data); err != nil {
		return fmt.Errorf("failed to save slot %q: %w", s.key, err)
	}
	return nil
}

func (s *SQLiteSlot) Delete() error {
	if _, err := s.db.Exec("DELETE FROM slots WHERE slot_key = ?", s.key); err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", s.key, err)
	}
	return nil
}
