package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/spdash/pkg/aggregate"
	"github.com/vanderheijden86/spdash/pkg/dashboard"
	"github.com/vanderheijden86/spdash/pkg/metrics"
	"github.com/vanderheijden86/spdash/pkg/version"
)

// SQLiteExporter writes the aggregate tables of one render to a SQLite
// database, so external dashboards can query day/project/tag time without
// reparsing the backup.
type SQLiteExporter struct {
	Render *dashboard.Render
}

// NewSQLiteExporter creates an exporter for the given render.
func NewSQLiteExporter(render *dashboard.Render) *SQLiteExporter {
	return &SQLiteExporter{Render: render}
}

const sqliteSchema = `
CREATE TABLE time_by_day (
	date       TEXT NOT NULL,
	project_id TEXT NOT NULL,
	project    TEXT NOT NULL,
	minutes    REAL NOT NULL,
	PRIMARY KEY (date, project_id)
);
CREATE TABLE project_totals (
	project_id TEXT PRIMARY KEY,
	project    TEXT NOT NULL,
	minutes    REAL NOT NULL
);
CREATE TABLE tag_totals (
	tag_id  TEXT PRIMARY KEY,
	tag     TEXT NOT NULL,
	minutes REAL NOT NULL
);
CREATE TABLE project_stats (
	project_id      TEXT PRIMARY KEY,
	project         TEXT NOT NULL,
	total_minutes   REAL NOT NULL,
	completed_tasks INTEGER NOT NULL,
	total_tasks     INTEGER NOT NULL,
	completion_rate REAL NOT NULL
);
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE INDEX idx_time_by_day_date ON time_by_day(date);
`

// Export writes the database at path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	defer metrics.Timer(metrics.SQLiteExport)()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := e.insertTimeByDay(tx); err != nil {
		return err
	}
	if err := e.insertProjectTotals(tx); err != nil {
		return err
	}
	if err := e.insertTagTotals(tx); err != nil {
		return err
	}
	if err := e.insertProjectStats(tx); err != nil {
		return err
	}
	if err := e.insertMeta(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (e *SQLiteExporter) insertTimeByDay(tx *sql.Tx) error {
	stmt, err := tx.Prepare(`INSERT INTO time_by_day (date, project_id, project, minutes) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare time_by_day: %w", err)
	}
	defer stmt.Close()

	for _, r := range e.Render.Records {
		if _, err := stmt.Exec(r.Date.Format(aggregate.DayFormat), r.ProjectID, r.Project, r.Minutes); err != nil {
			return fmt.Errorf("insert time_by_day: %w", err)
		}
	}
	return nil
}

func (e *SQLiteExporter) insertProjectTotals(tx *sql.Tx) error {
	stmt, err := tx.Prepare(`INSERT INTO project_totals (project_id, project, minutes) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare project_totals: %w", err)
	}
	defer stmt.Close()

	for _, t := range aggregate.TotalsByProject(e.Render.Records) {
		if _, err := stmt.Exec(t.ProjectID, t.Project, t.Minutes); err != nil {
			return fmt.Errorf("insert project_totals: %w", err)
		}
	}
	return nil
}

func (e *SQLiteExporter) insertTagTotals(tx *sql.Tx) error {
	stmt, err := tx.Prepare(`INSERT INTO tag_totals (tag_id, tag, minutes) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare tag_totals: %w", err)
	}
	defer stmt.Close()

	breakdown := aggregate.TagTime(e.Render.Tasks, e.Render.Snapshot)
	for _, t := range breakdown.ByTag {
		if _, err := stmt.Exec(t.TagID, t.Tag, t.Minutes); err != nil {
			return fmt.Errorf("insert tag_totals: %w", err)
		}
	}
	if breakdown.Untagged > 0 {
		if _, err := stmt.Exec("", "Untagged", breakdown.Untagged); err != nil {
			return fmt.Errorf("insert untagged total: %w", err)
		}
	}
	return nil
}

func (e *SQLiteExporter) insertProjectStats(tx *sql.Tx) error {
	stmt, err := tx.Prepare(`INSERT INTO project_stats
		(project_id, project, total_minutes, completed_tasks, total_tasks, completion_rate)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare project_stats: %w", err)
	}
	defer stmt.Close()

	for _, s := range aggregate.ProjectStats(e.Render.Tasks, e.Render.Projects) {
		if _, err := stmt.Exec(s.ProjectID, s.Project, s.TotalMinutes, s.CompletedTasks, s.TotalTasks, s.CompletionRate); err != nil {
			return fmt.Errorf("insert project_stats: %w", err)
		}
	}
	return nil
}

func (e *SQLiteExporter) insertMeta(tx *sql.Tx) error {
	meta := map[string]string{
		"source_path":  e.Render.File.Path,
		"source_mtime": e.Render.File.ModTime.UTC().Format(time.RFC3339),
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"version":      version.Version,
	}
	for key, value := range meta {
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}
