// Package normalize flattens raw snapshot entities into row-oriented tables.
//
// The raw backup stores durations in milliseconds and timestamps in epoch
// milliseconds; rows carry minutes and time.Time so the aggregation and
// chart layers never deal in raw units. Rows are derived once per render
// cycle and never mutated.
package normalize

import (
	"sort"
	"time"

	"github.com/vanderheijden86/spdash/pkg/metrics"
	"github.com/vanderheijden86/spdash/pkg/model"
)

// TaskRow is one normalized task. TimeEstimate and DoneOn stay nil when the
// source field was absent or zero.
type TaskRow struct {
	ID           string
	Title        string
	IsDone       bool
	TimeSpent    float64  // minutes
	TimeEstimate *float64 // minutes, nil when unset
	Created      time.Time
	DueDay       string
	DoneOn       *time.Time
	ProjectID    string
	ProjectTitle string // filled by JoinProjects
	Notes        string
	TagIDs       []string
	IsLeaf       bool
}

// ProjectRow is one normalized project.
type ProjectRow struct {
	ID    string
	Title string
}

// NormalizeTasks converts the raw task collection into rows, sorted by task
// id for deterministic output. Required fields (id, title, timeSpent,
// projectId) are taken as-is; their absence is malformed input, not a
// handled condition.
func NormalizeTasks(snap *model.Snapshot) []TaskRow {
	defer metrics.Timer(metrics.Normalize)()

	entities := snap.Tasks()
	rows := make([]TaskRow, 0, len(entities))
	for _, task := range entities {
		row := TaskRow{
			ID:        task.ID,
			Title:     task.Title,
			IsDone:    task.IsDone,
			TimeSpent: float64(task.TimeSpent) / model.MillisPerMinute,
			Created:   time.UnixMilli(task.Created),
			DueDay:    task.DueDay,
			ProjectID: task.ProjectID,
			Notes:     task.Notes,
			TagIDs:    task.TagIDs,
			IsLeaf:    task.IsLeaf(),
		}
		if task.TimeEstimate != 0 {
			estimate := float64(task.TimeEstimate) / model.MillisPerMinute
			row.TimeEstimate = &estimate
		}
		if task.DoneOn != 0 {
			doneOn := time.UnixMilli(task.DoneOn)
			row.DoneOn = &doneOn
		}
		if row.TagIDs == nil {
			row.TagIDs = []string{}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

// NormalizeProjects converts the raw project collection into rows, sorted
// by project id.
func NormalizeProjects(snap *model.Snapshot) []ProjectRow {
	entities := snap.Projects()
	rows := make([]ProjectRow, 0, len(entities))
	for _, proj := range entities {
		rows = append(rows, ProjectRow{ID: proj.ID, Title: proj.Title})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

// JoinProjects fills each task row's ProjectTitle from its project id.
// Tasks referencing an unknown project keep an empty title; they still
// aggregate, just without a resolvable display name.
func JoinProjects(tasks []TaskRow, projects []ProjectRow) []TaskRow {
	titles := make(map[string]string, len(projects))
	for _, p := range projects {
		titles[p.ID] = p.Title
	}
	joined := make([]TaskRow, len(tasks))
	copy(joined, tasks)
	for i := range joined {
		joined[i].ProjectTitle = titles[joined[i].ProjectID]
	}
	return joined
}
