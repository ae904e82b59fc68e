// Package testutil provides deterministic snapshot fixtures for tests.
// The builder assembles backup snapshots entity by entity; WriteBackup
// serializes them into the on-disk layouts the loader accepts.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/spdash/pkg/model"
)

// SnapshotBuilder accumulates entities and produces a *model.Snapshot.
// All Add methods return the builder for chaining.
type SnapshotBuilder struct {
	snap model.Snapshot
}

// NewSnapshot creates an empty builder with initialized collections.
func NewSnapshot() *SnapshotBuilder {
	b := &SnapshotBuilder{}
	b.snap.Data.Task = &model.Collection[model.Task]{Entities: map[string]model.Task{}}
	b.snap.Data.Project = &model.Collection[model.Project]{Entities: map[string]model.Project{}}
	b.snap.Data.Tag = &model.Collection[model.Tag]{Entities: map[string]model.Tag{}}
	b.snap.Data.SimpleCounter = &model.Collection[model.SimpleCounter]{Entities: map[string]model.SimpleCounter{}}
	return b
}

// TaskOpt mutates a task before it is added.
type TaskOpt func(*model.Task)

// SpentOn records timeSpentOnDay milliseconds for a day key.
func SpentOn(day string, ms float64) TaskOpt {
	return func(t *model.Task) {
		if t.TimeSpentOnDay == nil {
			t.TimeSpentOnDay = map[string]float64{}
		}
		t.TimeSpentOnDay[day] = ms
	}
}

// Estimate sets timeEstimate in milliseconds.
func Estimate(ms int64) TaskOpt {
	return func(t *model.Task) { t.TimeEstimate = ms }
}

// Done marks the task complete at the given unix-millisecond timestamp.
func Done(doneOnMs int64) TaskOpt {
	return func(t *model.Task) {
		t.IsDone = true
		t.DoneOn = doneOnMs
	}
}

// Tags assigns tag ids.
func Tags(ids ...string) TaskOpt {
	return func(t *model.Task) { t.TagIDs = ids }
}

// SubTasks marks the task as a parent.
func SubTasks(ids ...string) TaskOpt {
	return func(t *model.Task) { t.SubTaskIDs = ids }
}

// Created sets the creation timestamp in unix milliseconds.
func Created(ms int64) TaskOpt {
	return func(t *model.Task) { t.Created = ms }
}

// Task adds a task with total timeSpent milliseconds and options.
func (b *SnapshotBuilder) Task(id, title, projectID string, spentMs int64, opts ...TaskOpt) *SnapshotBuilder {
	task := model.Task{
		ID:        id,
		Title:     title,
		ProjectID: projectID,
		TimeSpent: spentMs,
	}
	for _, opt := range opts {
		opt(&task)
	}
	b.snap.Data.Task.IDs = append(b.snap.Data.Task.IDs, id)
	b.snap.Data.Task.Entities[id] = task
	return b
}

// Project adds a project with a theme color and optional icon.
func (b *SnapshotBuilder) Project(id, title, color, icon string) *SnapshotBuilder {
	b.snap.Data.Project.IDs = append(b.snap.Data.Project.IDs, id)
	b.snap.Data.Project.Entities[id] = model.Project{
		ID:    id,
		Title: title,
		Icon:  icon,
		Theme: model.Theme{Primary: color},
	}
	return b
}

// Tag adds a tag with a theme color and optional icon.
func (b *SnapshotBuilder) Tag(id, title, color, icon string) *SnapshotBuilder {
	b.snap.Data.Tag.IDs = append(b.snap.Data.Tag.IDs, id)
	b.snap.Data.Tag.Entities[id] = model.Tag{
		ID:    id,
		Title: title,
		Icon:  icon,
		Theme: model.Theme{Primary: color},
	}
	return b
}

// Counter adds a simple counter with per-day counts.
func (b *SnapshotBuilder) Counter(id, title string, countOnDay map[string]float64) *SnapshotBuilder {
	b.snap.Data.SimpleCounter.IDs = append(b.snap.Data.SimpleCounter.IDs, id)
	b.snap.Data.SimpleCounter.Entities[id] = model.SimpleCounter{
		ID:         id,
		Title:      title,
		CountOnDay: countOnDay,
	}
	return b
}

// Build returns the assembled snapshot.
func (b *SnapshotBuilder) Build() *model.Snapshot {
	return &b.snap
}

// WriteBackup marshals the snapshot into dir with the given name. When
// wrapped is true the payload is nested under a top-level "data" key, the
// newer backup layout; otherwise the entity collections sit at the root.
func (b *SnapshotBuilder) WriteBackup(t *testing.T, dir, name string, wrapped bool) string {
	t.Helper()

	var payload any = b.snap.Data
	if wrapped {
		payload = map[string]any{"data": b.snap.Data}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// WriteBackupAt writes the backup and forces its mtime, for tests that
// exercise most-recent-file selection.
func (b *SnapshotBuilder) WriteBackupAt(t *testing.T, dir, name string, wrapped bool, mtime time.Time) string {
	t.Helper()
	path := b.WriteBackup(t, dir, name, wrapped)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes fixture: %v", err)
	}
	return path
}

// Day is shorthand for a date key in the backup's day format.
func Day(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
