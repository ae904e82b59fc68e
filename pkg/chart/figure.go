// Package chart turns aggregate tables into renderer-agnostic figure specs.
//
// Builders are pure: aggregates plus a theme resolver in, a Figure out. A
// Figure says what to draw (traces, labels, colors, hover text, reference
// lines); the export package decides how to draw it (SVG, PNG) and the UI
// how to summarize it. Nothing here touches the filesystem.
package chart

import (
	"fmt"
	"math"
	"time"
)

// Dark dashboard layout shared by every figure.
const (
	PlotBackground  = "#000"
	PaperBackground = "#000"
	GridColor       = "#333"
	GuideColor      = "#888"
	MinorGuideColor = "#666"
	DefaultHeight   = 400
)

// TraceType enumerates the supported trace kinds.
type TraceType string

const (
	TraceBar       TraceType = "bar"
	TracePie       TraceType = "pie"
	TraceScatter   TraceType = "scatter"
	TraceHistogram TraceType = "histogram"
)

// Trace is one series of a figure. Which fields are meaningful depends on
// Type: bar and scatter use X/Y, pie uses Labels/Values, histogram uses
// Samples/Bins.
type Trace struct {
	Type   TraceType
	Name   string // legend entry
	X      []string
	Y      []float64
	Labels []string
	Values []float64
	Hover  []string // per-point hover text, parallel to X or Labels

	Color   string    // uniform color
	Colors  []string  // per-point colors, wins over Color when set
	Mode    string    // scatter: "markers" or "lines+markers"
	Sizes   []float64 // scatter marker sizes
	Samples []float64 // histogram raw samples
	Bins    int       // histogram bin count
}

// RefLine is a dashed guide line at a fixed axis value.
type RefLine struct {
	Axis  string // "x" or "y"
	Value float64
	Style string // "dash" or "dot"
	Color string
	Label string
}

// Figure is a complete chart specification.
type Figure struct {
	Key        string // stable identifier used for export filenames and navigation
	Title      string
	Height     int
	Stacked    bool // bar traces stack instead of grouping
	XAxisTitle string
	YAxisTitle string
	XRange     [2]float64 // histogram x range; zero value means auto
	Traces     []Trace
	RefLines   []RefLine
}

// DisplayName returns the human-readable name for a figure key, falling
// back to the key itself.
func DisplayName(key string) string {
	if name, ok := displayNames[key]; ok {
		return name
	}
	return key
}

var displayNames = map[string]string{
	"accumulated":         "Accumulated Work Time",
	"time_per_day":        "All Time Spent Per Day",
	"project_pie":         "Time Spent Per Project",
	"day_project":         "Time Spent Per Day Per Project",
	"avg_workday":         "Average Time Per Workday",
	"tags_pie":            "Time Spent Distribution by Tag",
	"water":               "Daily Water Intake",
	"media":               "Daily Media Watching",
	"workout":             "Daily Workout Time",
	"tag_trends":          "Tag Usage Trends Over Time",
	"project_efficiency":  "Project Efficiency",
	"estimation_accuracy": "Task Estimation Accuracy",
}

// FormatMinutes renders minutes as "2h 30m", or "45m" under an hour.
// Mirrors the hover strings of the upstream dashboard.
func FormatMinutes(minutes float64) string {
	total := int(math.Round(minutes))
	h := total / 60
	m := total % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// dayLabel formats a date the way day keys are stored.
func dayLabel(t time.Time) string {
	return t.Format("2006-01-02")
}

// Placeholder returns an empty dark figure used when a widget cannot be
// built (for example a missing counter id).
func Placeholder(key string) Figure {
	return Figure{
		Key:    key,
		Title:  "Placeholder",
		Height: DefaultHeight,
	}
}
