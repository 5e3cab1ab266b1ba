package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/pasalkarvaibhavi/fintrack/logging"
)

// OpenMySQL opens the slot storage on a MySQL server, retrying until the
// server is ready. Meant for deployments that already run a database; the
// file and sqlite backends cover the embedded case.
func OpenMySQL(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql handle: %w", err)
	}

	connected := false
	for i := 0; i < 15; i++ {
		if err := db.Ping(); err == nil {
			connected = true
			break
		}
		logging.Logger.Warnf("Database not ready, retrying... (%d/15)", i+1)
		time.Sleep(3 * time.Second)
	}
	if !connected {
		return nil, fmt.Errorf("failed to connect to mysql server")
	}

	query := `CREATE TABLE IF NOT EXISTS slots (
		slot_key VARCHAR(255) PRIMARY KEY,
		value LONGBLOB NOT NULL
	)`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create slots table: %w", err)
	}
	return db, nil
}

// MySQLSlot stores one value as a row of the slots table.
type MySQLSlot struct {
	db  *sql.DB
	key string
}

func NewMySQLSlot(db *sql.DB, key string) *MySQLSlot {
	return &MySQLSlot{db: db, key: key}
}

func (s *MySQLSlot) Load() ([]byte, bool, error) {
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

func (s *MySQLSlot) Save(data []byte) error {
	query := "INSERT INTO slots (slot_key, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)"
	if _, err := s.db.Exec(query, s.key, data); err != nil {
		return fmt.Errorf("failed to save slot %q: %w", s.key, err)
	}
	return nil
}

func (s *MySQLSlot) Delete() error {
	if _, err := s.db.Exec("DELETE FROM slots WHERE slot_key = ?", s.key); err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", s.key, err)
	}
	return nil
}
