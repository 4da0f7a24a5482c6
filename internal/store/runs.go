package store

import (
	"database/sql"
	"fmt"
	"time"

	"survey-insights-go/internal/types"
)

// Run is the header row of one persisted rollup.
type Run struct {
	ID                 string    `json:"id"`
	TakenAt            time.Time `json:"taken_at"`
	KeyMode            string    `json:"key_mode"`
	SurveyRows         int       `json:"survey_rows"`
	MappedRows         int       `json:"mapped_rows"`
	UnmatchedQuestions int       `json:"unmatched_questions"`
	MalformedMappings  int       `json:"malformed_mappings"`
	DuplicateMappings  int       `json:"duplicate_mappings"`
	ParentConflicts    int       `json:"parent_conflicts"`
	Categories         int       `json:"categories"`
}

// CategoryRow is one persisted category result of a run.
type CategoryRow struct {
	RunID    string `json:"run_id"`
	Position int    `json:"position"`
	Parent   string `json:"parent"`
	types.CategoryStats
}

// SaveRun stores a run and its category rows atomically. Row positions are
// taken from their index in rows.
func (db *DB) SaveRun(run Run, rows []CategoryRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO runs
		(id, taken_at, key_mode, survey_rows, mapped_rows, unmatched_questions,
		 malformed_mappings, duplicate_mappings, parent_conflicts, categories)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.TakenAt.UTC().Format(time.RFC3339), run.KeyMode, run.SurveyRows,
		run.MappedRows, run.UnmatchedQuestions, run.MalformedMappings,
		run.DuplicateMappings, run.ParentConflicts, run.Categories,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert run: %w", err)
	}
	for i, r := range rows {
		_, err := tx.Exec(
			`INSERT INTO category_stats
			(run_id, position, category, path, parent, total, agree_pct, disagree_pct,
			 unanswered_pct, no_data, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, r.Category, r.Path, r.Parent, r.Total, r.AgreePct, r.DisagreePct,
			r.UnansweredPct, r.NoData, string(r.Status),
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert category %q: %w", r.Category, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns up to limit runs, most recent first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	rows, err := db.conn.Query(
		`SELECT id, taken_at, key_mode, survey_rows, mapped_rows, unmatched_questions,
		        malformed_mappings, duplicate_mappings, parent_conflicts, categories
		 FROM runs ORDER BY taken_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var takenAt string
		if err := rows.Scan(&r.ID, &takenAt, &r.KeyMode, &r.SurveyRows, &r.MappedRows,
			&r.UnmatchedQuestions, &r.MalformedMappings, &r.DuplicateMappings,
			&r.ParentConflicts, &r.Categories); err != nil {
			return nil, err
		}
		r.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun returns a run by ID, or nil if it does not exist.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.conn.QueryRow(
		`SELECT id, taken_at, key_mode, survey_rows, mapped_rows, unmatched_questions,
		        malformed_mappings, duplicate_mappings, parent_conflicts, categories
		 FROM runs WHERE id = ?`, id)
	var r Run
	var takenAt string
	err := row.Scan(&r.ID, &takenAt, &r.KeyMode, &r.SurveyRows, &r.MappedRows,
		&r.UnmatchedQuestions, &r.MalformedMappings, &r.DuplicateMappings,
		&r.ParentConflicts, &r.Categories)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	return &r, nil
}

// GetCategoryStats returns the category rows of a run in hierarchy order.
func (db *DB) GetCategoryStats(runID string) ([]CategoryRow, error) {
	rows, err := db.conn.Query(
		`SELECT run_id, position, category, path, parent, total, agree_pct, disagree_pct,
		        unanswered_pct, no_data, status
		 FROM category_stats WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryRow
	for rows.Next() {
		var r CategoryRow
		var st string
		if err := rows.Scan(&r.RunID, &r.Position, &r.Category, &r.Path, &r.Parent, &r.Total,
			&r.AgreePct, &r.DisagreePct, &r.UnansweredPct, &r.NoData, &st); err != nil {
			return nil, err
		}
		r.Status = types.Status(st)
		out = append(out, r)
	}
	return out, rows.Err()
}
