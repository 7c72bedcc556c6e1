// Package storage owns the SQLite schema and all entity persistence.
//
// Every mutating write passes through the relationship maintenance in
// relations.go before it is considered durable. Reads never mutate.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store is the single handle to the knowledge base. It is constructed
// explicitly and passed to every component that needs it; there is no
// package-level singleton.
type Store struct {
	conn   *sql.DB
	log    *logrus.Logger
	dbPath string
}

// Open opens or creates the SQLite database at dbPath, creating parent
// directories as needed. A fresh database gets the full schema.
func Open(dbPath string, log *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{conn: conn, log: log, dbPath: dbPath}

	if !dbExists {
		log.WithField("path", dbPath).Info("creating new knowledge base")
		if err := s.initializeSchema(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	} else {
		if err := s.runMigrations(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Path returns the location of the database file.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) exec(query string, args ...any) (sql.Result, error) {
	return s.conn.Exec(query, args...)
}

func (s *Store) query(query string, args ...any) (*sql.Rows, error) {
	return s.conn.Query(query, args...)
}

func (s *Store) queryRow(query string, args ...any) *sql.Row {
	return s.conn.QueryRow(query, args...)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
