package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means a fresh database.
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}

func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id                  TEXT PRIMARY KEY,
			taken_at            TEXT NOT NULL,
			key_mode            TEXT NOT NULL,
			survey_rows         INTEGER NOT NULL,
			mapped_rows         INTEGER NOT NULL,
			unmatched_questions INTEGER NOT NULL,
			malformed_mappings  INTEGER NOT NULL,
			duplicate_mappings  INTEGER NOT NULL,
			parent_conflicts    INTEGER NOT NULL,
			categories          INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS category_stats (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL REFERENCES runs(id),
			position       INTEGER NOT NULL,
			category       TEXT NOT NULL,
			path           TEXT NOT NULL DEFAULT '',
			parent         TEXT NOT NULL,
			total          INTEGER NOT NULL,
			agree_pct      INTEGER NOT NULL,
			disagree_pct   INTEGER NOT NULL,
			unanswered_pct INTEGER NOT NULL,
			no_data        BOOLEAN NOT NULL,
			status         TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_category_stats_run ON category_stats(run_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_category_stats_category ON category_stats(category)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
