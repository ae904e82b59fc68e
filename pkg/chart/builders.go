package chart

import (
	"fmt"
	"sort"

	"github.com/vanderheijden86/spdash/pkg/aggregate"
	"github.com/vanderheijden86/spdash/pkg/normalize"
	"github.com/vanderheijden86/spdash/pkg/theme"
)

// TimePerDay is the daily-total bar chart.
func TimePerDay(totals []aggregate.DayTotal) Figure {
	trace := Trace{Type: TraceBar, Color: theme.DefaultColor}
	for _, t := range totals {
		trace.X = append(trace.X, dayLabel(t.Date))
		trace.Y = append(trace.Y, t.Minutes)
		trace.Hover = append(trace.Hover, fmt.Sprintf("%s: %s", dayLabel(t.Date), FormatMinutes(t.Minutes)))
	}
	return Figure{
		Key:    "time_per_day",
		Title:  "All Time Spent Per Day (min)",
		Traces: []Trace{trace},
	}
}

// CumulativeTime is the running-sum bar chart over date-sorted day totals.
func CumulativeTime(totals []aggregate.DayTotal) Figure {
	trace := Trace{Type: TraceBar, Color: theme.DefaultColor}
	for _, t := range aggregate.Cumulative(totals) {
		trace.X = append(trace.X, dayLabel(t.Date))
		trace.Y = append(trace.Y, t.Minutes)
		trace.Hover = append(trace.Hover, fmt.Sprintf("%s: %s", dayLabel(t.Date), FormatMinutes(t.Minutes)))
	}
	return Figure{
		Key:    "accumulated",
		Title:  "Accumulated Work Time Across Days (Minutes)",
		Traces: []Trace{trace},
	}
}

// ProjectPie is the per-project total pie. Every project appears, including
// ones with no recorded time, so the legend always shows the full project
// list.
func ProjectPie(records []aggregate.DayRecord, projects []normalize.ProjectRow, resolver *theme.Resolver) Figure {
	totals := aggregate.TotalsByProject(records)
	byID := make(map[string]float64, len(totals))
	for _, t := range totals {
		byID[t.ProjectID] = t.Minutes
	}

	trace := Trace{Type: TracePie}
	for _, p := range projects {
		minutes := byID[p.ID]
		trace.Labels = append(trace.Labels, resolver.ProjectDisplayName(p.Title))
		trace.Values = append(trace.Values, minutes)
		trace.Colors = append(trace.Colors, resolver.ProjectColor(p.Title))
		trace.Hover = append(trace.Hover, fmt.Sprintf("%s: %s", p.Title, FormatMinutes(minutes)))
	}
	return Figure{
		Key:    "project_pie",
		Title:  "Time Spent Per Project (minutes)",
		Height: DefaultHeight,
		Traces: []Trace{trace},
	}
}

// StackedDayProject is the stacked per-day-per-project bar chart. Each
// project trace carries the full date axis with zero fill so stacks align.
func StackedDayProject(records []aggregate.DayRecord, resolver *theme.Resolver) Figure {
	dates, projects, titles, cells := denseGrid(records)

	fig := Figure{
		Key:     "day_project",
		Title:   "Time Spent/day/project",
		Stacked: true,
	}
	for _, projectID := range projects {
		title := titles[projectID]
		trace := Trace{
			Type:  TraceBar,
			Name:  resolver.ProjectDisplayName(title),
			Color: resolver.ProjectColor(title),
		}
		for _, date := range dates {
			minutes := cells[cellKey{date, projectID}]
			trace.X = append(trace.X, date)
			trace.Y = append(trace.Y, minutes)
			trace.Hover = append(trace.Hover, fmt.Sprintf("%s: %s", date, FormatMinutes(minutes)))
		}
		fig.Traces = append(fig.Traces, trace)
	}
	return fig
}

// WeekdayStacked is the stacked average-minutes-per-weekday bar chart.
func WeekdayStacked(records []aggregate.DayRecord, resolver *theme.Resolver) Figure {
	averages := aggregate.WeekdayAverages(records)

	byProject := make(map[string][]aggregate.WeekdayAverage)
	var projectOrder []string
	titles := make(map[string]string)
	for _, avg := range averages {
		if _, seen := byProject[avg.ProjectID]; !seen {
			projectOrder = append(projectOrder, avg.ProjectID)
		}
		byProject[avg.ProjectID] = append(byProject[avg.ProjectID], avg)
		titles[avg.ProjectID] = avg.Project
	}
	sort.Strings(projectOrder)

	fig := Figure{
		Key:     "avg_workday",
		Title:   "Average Time Spent Per Workday (Stacked by Project)",
		Stacked: true,
	}
	for _, projectID := range projectOrder {
		title := titles[projectID]
		trace := Trace{
			Type:  TraceBar,
			Name:  resolver.ProjectDisplayName(title),
			Color: resolver.ProjectColor(title),
		}
		for _, avg := range byProject[projectID] {
			trace.X = append(trace.X, avg.Weekday)
			trace.Y = append(trace.Y, avg.Minutes)
			trace.Hover = append(trace.Hover, fmt.Sprintf("%s: %s", avg.Weekday, FormatMinutes(avg.Minutes)))
		}
		fig.Traces = append(fig.Traces, trace)
	}
	return fig
}

// TagsPie is the tag-time distribution pie. All known tags appear, even at
// zero minutes, minus the excluded set; untagged time gets its own grey
// slice when present (or when there are no tags at all).
func TagsPie(breakdown aggregate.TagBreakdown, excluded map[string]bool, resolver *theme.Resolver) Figure {
	trace := Trace{Type: TracePie}
	for _, tag := range breakdown.ByTag {
		if excluded[tag.Tag] {
			continue
		}
		trace.Labels = append(trace.Labels, resolver.TagDisplayName(tag.Tag))
		trace.Values = append(trace.Values, tag.Minutes)
		trace.Colors = append(trace.Colors, resolver.TagColor(tag.Tag))
		trace.Hover = append(trace.Hover, fmt.Sprintf("%s: %s", tag.Tag, FormatMinutes(tag.Minutes)))
	}
	if breakdown.Untagged > 0 || len(trace.Labels) == 0 {
		trace.Labels = append(trace.Labels, "Untagged")
		trace.Values = append(trace.Values, breakdown.Untagged)
		trace.Colors = append(trace.Colors, theme.UntaggedColor)
		trace.Hover = append(trace.Hover, fmt.Sprintf("Untagged: %s", FormatMinutes(breakdown.Untagged)))
	}
	return Figure{
		Key:    "tags_pie",
		Title:  "Time Spent Distribution by Tag",
		Height: DefaultHeight,
		Traces: []Trace{trace},
	}
}

// TagTrendLines plots the per-day minutes of the top tags as line+marker
// traces.
func TagTrendLines(trends []aggregate.TagTrend, resolver *theme.Resolver) Figure {
	fig := Figure{
		Key:        "tag_trends",
		Title:      "Tag Usage Trends Over Time",
		Height:     DefaultHeight,
		XAxisTitle: "Date",
		YAxisTitle: "Time Spent (minutes)",
	}
	for _, trend := range trends {
		trace := Trace{
			Type:  TraceScatter,
			Mode:  "lines+markers",
			Name:  resolver.TagDisplayName(trend.Tag),
			Color: resolver.TagColor(trend.Tag),
		}
		for _, p := range trend.Points {
			trace.X = append(trace.X, dayLabel(p.Date))
			trace.Y = append(trace.Y, p.Minutes)
			trace.Hover = append(trace.Hover, fmt.Sprintf("%s: %.1f min", dayLabel(p.Date), p.Minutes))
		}
		fig.Traces = append(fig.Traces, trace)
	}
	return fig
}

// ProjectEfficiency is the time vs. completion-rate scatter. Marker size
// scales with the project's task count; projects without recorded time are
// omitted.
func ProjectEfficiency(stats []aggregate.ProjectStat, resolver *theme.Resolver) Figure {
	fig := Figure{
		Key:        "project_efficiency",
		Title:      "Project Efficiency: Time vs. Completion Rate",
		Height:     DefaultHeight,
		XAxisTitle: "Total Time Spent (minutes)",
		YAxisTitle: "Completion Rate (%)",
	}
	for _, stat := range stats {
		if stat.TotalMinutes <= 0 {
			continue
		}
		fig.Traces = append(fig.Traces, Trace{
			Type:  TraceScatter,
			Mode:  "markers",
			Name:  resolver.ProjectDisplayName(stat.Project),
			Color: resolver.ProjectColor(stat.Project),
			X:     []string{fmt.Sprintf("%.1f", stat.TotalMinutes)},
			Y:     []float64{stat.CompletionRate * 100},
			Sizes: []float64{float64(stat.TotalTasks)*2 + 10},
			Hover: []string{fmt.Sprintf("%s: %d tasks, %s, %.1f%% done",
				stat.Project, stat.TotalTasks, FormatMinutes(stat.TotalMinutes), stat.CompletionRate*100)},
		})
	}
	return fig
}

// EstimationAccuracy is the estimation-deviation histogram with guide lines
// at perfect estimation and at the ±50% / ±100% marks. With no estimated
// tasks it degrades to a placeholder.
func EstimationAccuracy(deviations []float64) Figure {
	if len(deviations) == 0 {
		return Placeholder("estimation_accuracy")
	}
	return Figure{
		Key:        "estimation_accuracy",
		Title:      "Task Estimation Accuracy Distribution",
		Height:     DefaultHeight,
		XAxisTitle: "Estimation Accuracy (% over/under)",
		YAxisTitle: "Number of Tasks",
		XRange:     [2]float64{-150, 150},
		Traces: []Trace{{
			Type:    TraceHistogram,
			Color:   theme.DefaultColor,
			Samples: deviations,
			Bins:    20,
		}},
		RefLines: []RefLine{
			{Axis: "x", Value: 0, Style: "dash", Color: GuideColor, Label: "Perfect Estimation"},
			{Axis: "x", Value: 50, Style: "dot", Color: MinorGuideColor},
			{Axis: "x", Value: -50, Style: "dot", Color: MinorGuideColor},
			{Axis: "x", Value: 100, Style: "dot", Color: MinorGuideColor},
			{Axis: "x", Value: -100, Style: "dot", Color: MinorGuideColor},
		},
	}
}

type cellKey struct {
	date      string
	projectID string
}

// denseGrid indexes the sparse day records into a dense date x project grid.
func denseGrid(records []aggregate.DayRecord) (dates []string, projects []string, titles map[string]string, cells map[cellKey]float64) {
	titles = make(map[string]string)
	cells = make(map[cellKey]float64)
	dateSeen := make(map[string]bool)
	projectSeen := make(map[string]bool)

	for _, r := range records {
		date := dayLabel(r.Date)
		if !dateSeen[date] {
			dateSeen[date] = true
			dates = append(dates, date)
		}
		if !projectSeen[r.ProjectID] {
			projectSeen[r.ProjectID] = true
			projects = append(projects, r.ProjectID)
		}
		titles[r.ProjectID] = r.Project
		cells[cellKey{date, r.ProjectID}] += r.Minutes
	}
	sort.Strings(dates)
	sort.Strings(projects)
	return dates, projects, titles, cells
}
