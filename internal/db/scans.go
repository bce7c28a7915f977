package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScanRun describes one sampled segment through a field map.
type ScanRun struct {
	ID        string
	Source    string
	Component string
	From      [3]float64
	To        [3]float64
	Count     int
	MaxField  float64
	CreatedAt time.Time
}

// Sample is a single evaluated point of a scan, in world coordinates.
type Sample struct {
	Seq   int
	Pos   [3]float64
	Field [3]float64
}

// RecordScan stores run and its samples in a single transaction. A new run
// id is assigned when run.ID is empty; the id is returned.
func (db *DB) RecordScan(run ScanRun, samples []Sample) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.Count = len(samples)

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO scan_runs (run_id, source, component, from_x, from_y, from_z, to_x, to_y, to_z, sample_count, max_field)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Component,
		run.From[0], run.From[1], run.From[2],
		run.To[0], run.To[1], run.To[2],
		run.Count, run.MaxField,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert scan run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO field_samples (run_id, seq, x, y, z, bx, by, bz)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(run.ID, s.Seq, s.Pos[0], s.Pos[1], s.Pos[2], s.Field[0], s.Field[1], s.Field[2]); err != nil {
			return "", fmt.Errorf("failed to insert sample %d: %w", s.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit scan: %w", err)
	}
	return run.ID, nil
}

// GetScan returns the run with id, or sql.ErrNoRows.
func (db *DB) GetScan(id string) (*ScanRun, error) {
	row := db.QueryRow(`
		SELECT run_id, source, component, from_x, from_y, from_z, to_x, to_y, to_z, sample_count, max_field, created_at
		FROM scan_runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListScans returns all runs, newest first.
func (db *DB) ListScans() ([]ScanRun, error) {
	rows, err := db.Query(`
		SELECT run_id, source, component, from_x, from_y, from_z, to_x, to_y, to_z, sample_count, max_field, created_at
		FROM scan_runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var runs []ScanRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Samples returns the samples of run id ordered by sequence number.
func (db *DB) Samples(id string) ([]Sample, error) {
	rows, err := db.Query(`
		SELECT seq, x, y, z, bx, by, bz
		FROM field_samples WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.Seq, &s.Pos[0], &s.Pos[1], &s.Pos[2], &s.Field[0], &s.Field[1], &s.Field[2]); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteScan removes a run and its samples. Deleting an unknown run
// returns sql.ErrNoRows.
func (db *DB) DeleteScan(id string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM field_samples WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete samples of %s: %w", id, err)
	}
	res, err := tx.Exec(`DELETE FROM scan_runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scan %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(r rowScanner) (*ScanRun, error) {
	var run ScanRun
	var created sql.NullString
	err := r.Scan(&run.ID, &run.Source, &run.Component,
		&run.From[0], &run.From[1], &run.From[2],
		&run.To[0], &run.To[1], &run.To[2],
		&run.Count, &run.MaxField, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	if created.Valid {
		run.CreatedAt = parseTimestamp(created.String)
	}
	return &run, nil
}

// parseTimestamp accepts both the SQLite CURRENT_TIMESTAMP text form and
// the RFC 3339 form the driver produces for TIMESTAMP columns.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
