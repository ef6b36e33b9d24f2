// Package convertdb records conversion run outcomes in a SQLite database so
// tools and the viewer can report past conversions.
package convertdb

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps the conversion history database.
type DB struct {
	*sql.DB
}

// Run is one recorded conversion attempt.
type Run struct {
	ID           string
	InputPath    string
	OutputPath   string
	Format       string
	Status       string // "ok" or "failed"
	PointCount   uint64
	BytesWritten uint64
	Warnings     []string
	Error        string
	FinishedAt   time.Time
}

// New opens (creating if needed) the database at path and applies the schema.
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{db}, nil
}

// RecordRun inserts a run outcome. A zero ID is assigned a fresh UUID.
func (db *DB) RecordRun(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := db.Exec(`
		INSERT INTO conversion_runs
			(id, input_path, output_path, format, status,
			 point_count, bytes_written, warning_count, warnings, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputPath, run.OutputPath, run.Format, run.Status,
		run.PointCount, run.BytesWritten, len(run.Warnings),
		strings.Join(run.Warnings, "\n"), run.Error,
	)
	if err != nil {
		return "", fmt.Errorf("insert conversion run: %w", err)
	}
	return run.ID, nil
}

// RecentRuns returns up to limit runs, most recent first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	rows, err := db.Query(`
		SELECT id, input_path, output_path, format, status,
		       point_count, bytes_written, warnings, error, finished_at
		FROM conversion_runs
		ORDER BY finished_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var warnings string
		if err := rows.Scan(&r.ID, &r.InputPath, &r.OutputPath, &r.Format, &r.Status,
			&r.PointCount, &r.BytesWritten, &warnings, &r.Error, &r.FinishedAt); err != nil {
			return nil, err
		}
		if warnings != "" {
			r.Warnings = strings.Split(warnings, "\n")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
