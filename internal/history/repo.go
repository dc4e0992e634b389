package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/dotlint/internal/apperr"
	"github.com/starford/dotlint/internal/models"
)

// DefaultListLimit caps ListRuns when no positive limit is given.
const DefaultListLimit = 20

// RunRow is the summary of one stored run.
type RunRow struct {
	ID           string      `json:"id"`
	Root         string      `json:"root"`
	Mode         models.Mode `json:"mode"`
	StartedAt    time.Time   `json:"started_at"`
	FilesChecked int         `json:"files_checked"`
	Errors       int         `json:"errors"`
	Warnings     int         `json:"warnings"`
}

// SaveRun stores rep and all of its results in one transaction. A report
// without an ID is assigned one.
func (db *DB) SaveRun(rep *models.Report) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.StartedAt.IsZero() {
		rep.StartedAt = time.Now().UTC()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO runs (id, root, mode, started_at, files_checked, errors, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rep.ID, rep.Root, string(rep.Mode), rep.StartedAt, rep.FilesChecked, rep.Errors, rep.Warnings)
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}

	if len(rep.Results) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO results (run_id, seq, path, rel_path, kind, checksum, read_error, skipped, findings)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("history: prepare result insert: %w", err)
		}
		defer stmt.Close()
		for i, r := range rep.Results {
			findings := r.Findings
			if findings == nil {
				findings = []models.Finding{}
			}
			fj, err := json.Marshal(findings)
			if err != nil {
				return fmt.Errorf("history: encode findings: %w", err)
			}
			if _, err := stmt.Exec(rep.ID, i, r.Path, r.RelPath, string(r.Kind), r.Checksum, r.ReadError, r.Skipped, string(fj)); err != nil {
				return fmt.Errorf("history: insert result: %w", err)
			}
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.conn.Query(`
		SELECT id, root, mode, started_at, files_checked, errors, warnings
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	out := []RunRow{}
	for rows.Next() {
		var r RunRow
		var mode string
		if err := rows.Scan(&r.ID, &r.Root, &mode, &r.StartedAt, &r.FilesChecked, &r.Errors, &r.Warnings); err != nil {
			return nil, err
		}
		r.Mode = models.Mode(mode)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun loads a full report. Unknown IDs yield apperr.ErrNotFound.
func (db *DB) GetRun(id string) (*models.Report, error) {
	rep := &models.Report{ID: id}
	var mode string
	err := db.conn.QueryRow(`
		SELECT root, mode, started_at, files_checked, errors, warnings FROM runs WHERE id = ?
	`, id).Scan(&rep.Root, &mode, &rep.StartedAt, &rep.FilesChecked, &rep.Errors, &rep.Warnings)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("history: run %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("history: get run: %w", err)
	}
	rep.Mode = models.Mode(mode)

	rows, err := db.conn.Query(`
		SELECT path, rel_path, kind, checksum, read_error, skipped, findings
		FROM results WHERE run_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("history: get results: %w", err)
	}
	defer rows.Close()

	rep.Results = []models.Result{}
	for rows.Next() {
		var r models.Result
		var kind, fj string
		if err := rows.Scan(&r.Path, &r.RelPath, &kind, &r.Checksum, &r.ReadError, &r.Skipped, &fj); err != nil {
			return nil, err
		}
		r.Kind = models.ArtifactKind(kind)
		if err := json.Unmarshal([]byte(fj), &r.Findings); err != nil {
			return nil, fmt.Errorf("history: decode findings: %w", err)
		}
		if len(r.Findings) == 0 {
			r.Findings = nil
		}
		rep.Results = append(rep.Results, r)
	}
	return rep, rows.Err()
}
