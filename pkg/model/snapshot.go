// Package model defines the raw Super Productivity backup snapshot types.
//
// A backup is a single JSON document. Entity collections come in two layouts:
// the flat backup form `{task: {...}, project: {...}}` and the wrapped form
// `{data: {task: {...}, project: {...}}}`. The loader normalizes both into a
// canonical Snapshot; everything downstream consumes only the canonical form.
package model

import (
	"errors"
	"fmt"
)

// Millisecond-based unit conversions used throughout the pipeline.
const (
	MillisPerMinute = 60_000.0
	MillisPerHour   = 3_600_000.0
)

// Collection holds an entity set as exported by Super Productivity:
// an optional id order plus a map from opaque id to entity.
type Collection[T any] struct {
	IDs      []string     `json:"ids,omitempty"`
	Entities map[string]T `json:"entities"`
}

// Len returns the number of entities in the collection.
// Safe on a nil receiver.
func (c *Collection[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entities)
}

// Theme carries the subset of an entity theme the dashboard uses.
type Theme struct {
	Primary string `json:"primary,omitempty"`
}

// Task is a raw task entity. Durations and timestamps are epoch/duration
// milliseconds exactly as stored in the backup; conversion to minutes and
// time.Time happens in the normalizer. A zero TimeEstimate or DoneOn means
// the field was absent or null.
type Task struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	IsDone         bool               `json:"isDone"`
	TimeSpent      int64              `json:"timeSpent"`
	TimeEstimate   int64              `json:"timeEstimate"`
	Created        int64              `json:"created"`
	DueDay         string             `json:"dueDay,omitempty"`
	DoneOn         int64              `json:"doneOn,omitempty"`
	ProjectID      string             `json:"projectId"`
	Notes          string             `json:"notes,omitempty"`
	TagIDs         []string           `json:"tagIds,omitempty"`
	SubTaskIDs     []string           `json:"subTaskIds,omitempty"`
	TimeSpentOnDay map[string]float64 `json:"timeSpentOnDay,omitempty"`
}

// IsLeaf reports whether the task has no subtasks. Only leaf tasks count
// toward daily time aggregation; parents carry rolled-up child time.
func (t Task) IsLeaf() bool {
	return len(t.SubTaskIDs) == 0
}

// Project is a raw project entity.
type Project struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Theme Theme  `json:"theme,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// Tag is a raw tag entity.
type Tag struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Theme Theme  `json:"theme,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// SimpleCounter is a generic daily tally (water, media, workout). The unit
// of CountOnDay values depends on the counter: plain units for count-style
// counters, milliseconds for stopwatch-style ones.
type SimpleCounter struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	CountOnDay map[string]float64 `json:"countOnDay,omitempty"`
}

// Data holds the canonical entity collections of one snapshot.
type Data struct {
	Task          *Collection[Task]          `json:"task"`
	Project       *Collection[Project]       `json:"project"`
	Tag           *Collection[Tag]           `json:"tag,omitempty"`
	SimpleCounter *Collection[SimpleCounter] `json:"simpleCounter,omitempty"`
}

// Snapshot is the canonical form of one backup file. The loader owns the
// raw parsed structure for the duration of one render cycle; derived tables
// are rebuilt from scratch on every refresh.
type Snapshot struct {
	Data Data `json:"data"`
}

// ErrMissingEntities is returned when a parsed document lacks the required
// task and project collections in either layout.
var ErrMissingEntities = errors.New("missing task/project entity collections")

// Validate checks the canonical snapshot for the required collections.
// Tag and simpleCounter collections are optional.
func (s *Snapshot) Validate() error {
	if s.Data.Task == nil || s.Data.Task.Entities == nil {
		return fmt.Errorf("task: %w", ErrMissingEntities)
	}
	if s.Data.Project == nil || s.Data.Project.Entities == nil {
		return fmt.Errorf("project: %w", ErrMissingEntities)
	}
	return nil
}

// Tasks returns the task entity map, never nil.
func (s *Snapshot) Tasks() map[string]Task {
	if s.Data.Task == nil {
		return map[string]Task{}
	}
	return s.Data.Task.Entities
}

// Projects returns the project entity map, never nil.
func (s *Snapshot) Projects() map[string]Project {
	if s.Data.Project == nil {
		return map[string]Project{}
	}
	return s.Data.Project.Entities
}

// Tags returns the tag entity map, never nil.
func (s *Snapshot) Tags() map[string]Tag {
	if s.Data.Tag == nil {
		return map[string]Tag{}
	}
	return s.Data.Tag.Entities
}

// Counters returns the simple counter entity map, never nil.
func (s *Snapshot) Counters() map[string]SimpleCounter {
	if s.Data.SimpleCounter == nil {
		return map[string]SimpleCounter{}
	}
	return s.Data.SimpleCounter.Entities
}

// TagTitles returns an id -> title map for all tags.
func (s *Snapshot) TagTitles() map[string]string {
	tags := s.Tags()
	titles := make(map[string]string, len(tags))
	for id, tag := range tags {
		titles[id] = tag.Title
	}
	return titles
}
