// Package store is the sqlite-backed recipe store and chef directory. The
// pipeline itself depends only on small interfaces; this package is the
// concrete adapter that makes the tool runnable end to end.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type Store struct {
	*sql.DB
	path string
}

// Open opens or creates the sqlite database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{DB: sqlDB, path: path}
	if err := s.ensureSchemaExists(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ensureSchemaExists() error {
	var name string
	err := s.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='recipes'").Scan(&name)
	if err == sql.ErrNoRows {
		return s.InitSchema()
	}
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	return nil
}

// InitSchema creates all tables and indexes.
func (s *Store) InitSchema() error {
	_, err := s.Exec(schema)
	return err
}
