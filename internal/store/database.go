// Package store persists analyzed cases in a local SQLite database so
// completed morning-report cases form a browsable library.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/nelsonlabs/morningreport/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// Database wraps the SQLite connection.
type Database struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the SQLite database at path and
// applies the schema. An empty path defaults to ./data/morningreport.db.
func Open(path string) (*Database, error) {
	if path == "" {
		path = "./data/morningreport.db"
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := configure(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger := logging.WithComponent("store")
	logger.Info().Str("path", path).Msg("database opened")
	return &Database{db: db, path: path}, nil
}

func configure(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// DB returns the underlying connection.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Ping tests the connection.
func (d *Database) Ping() error {
	return d.db.Ping()
}

// Close closes the connection.
func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
