package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/spdash/pkg/aggregate"
	"github.com/vanderheijden86/spdash/pkg/chart"
	"github.com/vanderheijden86/spdash/pkg/dashboard"
	"github.com/vanderheijden86/spdash/pkg/version"
)

// JSONReport is the machine-readable dump of one render: provenance,
// aggregate tables, figures, and calendar events. Figures carry their full
// trace data so a consumer can re-plot without the original backup.
type JSONReport struct {
	GeneratedAt  string                 `json:"generated_at"`
	Version      string                 `json:"version"`
	SourcePath   string                 `json:"source_path"`
	SourceMtime  string                 `json:"source_mtime"`
	TimeByDay    []dayRow               `json:"time_by_day"`
	ByProject    []projectRow           `json:"by_project"`
	ByTag        []tagRow               `json:"by_tag"`
	Untagged     float64                `json:"untagged_minutes"`
	Figures      []figureEntry          `json:"figures"`
	Calendar     []chart.CalendarEvent  `json:"calendar"`
	WidgetErrors []string               `json:"widget_errors,omitempty"`
}

type dayRow struct {
	Date      string  `json:"date"`
	ProjectID string  `json:"project_id"`
	Project   string  `json:"project"`
	Minutes   float64 `json:"minutes"`
}

type projectRow struct {
	ProjectID string  `json:"project_id"`
	Project   string  `json:"project"`
	Minutes   float64 `json:"minutes"`
}

type tagRow struct {
	TagID   string  `json:"tag_id"`
	Tag     string  `json:"tag"`
	Minutes float64 `json:"minutes"`
}

type figureEntry struct {
	Key    string       `json:"key"`
	Title  string       `json:"title"`
	Figure chart.Figure `json:"figure"`
}

// BuildJSONReport assembles the report from a render.
func BuildJSONReport(render *dashboard.Render) JSONReport {
	report := JSONReport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version.Version,
		SourcePath:  render.File.Path,
		SourceMtime: render.File.ModTime.UTC().Format(time.RFC3339),
		Calendar:    render.Calendar,
	}

	for _, r := range render.Records {
		report.TimeByDay = append(report.TimeByDay, dayRow{
			Date:      r.Date.Format(aggregate.DayFormat),
			ProjectID: r.ProjectID,
			Project:   r.Project,
			Minutes:   r.Minutes,
		})
	}
	for _, t := range aggregate.TotalsByProject(render.Records) {
		report.ByProject = append(report.ByProject, projectRow{
			ProjectID: t.ProjectID,
			Project:   t.Project,
			Minutes:   t.Minutes,
		})
	}

	breakdown := aggregate.TagTime(render.Tasks, render.Snapshot)
	for _, t := range breakdown.ByTag {
		report.ByTag = append(report.ByTag, tagRow{TagID: t.TagID, Tag: t.Tag, Minutes: t.Minutes})
	}
	report.Untagged = breakdown.Untagged

	for _, fig := range render.Figures {
		report.Figures = append(report.Figures, figureEntry{
			Key:    fig.Key,
			Title:  fig.Title,
			Figure: fig,
		})
	}
	for _, err := range render.WidgetErrors {
		report.WidgetErrors = append(report.WidgetErrors, err.Error())
	}
	return report
}

// SaveJSON writes the report to path with indentation.
func SaveJSON(render *dashboard.Render, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	data, err := json.MarshalIndent(BuildJSONReport(render), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
