// Package store persists rollup runs in SQLite so results can be compared
// across snapshots of the survey exports.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection to the run history database.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the run history at dbPath, creating its directory
// when needed. The file is put in WAL mode so `history` can read while a
// `run` is writing.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return open(dbPath, "PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000")
}

// OpenInMemory opens an empty in-memory history, used by tests.
func OpenInMemory() (*DB, error) {
	return open(":memory:")
}

// open connects, applies pragmas plus foreign keys and migrates. In-memory
// databases are private to a connection, so the pool is capped at one.
func open(dsn string, pragmas ...string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", dsn, err)
	}
	if dsn == ":memory:" {
		conn.SetMaxOpenConns(1)
	}
	for _, p := range append(pragmas, "PRAGMA foreign_keys=ON") {
		if _, err := conn.Exec(p); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	db := &DB{conn: conn}
	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// SchemaVersion reports the migration level of the open database.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
