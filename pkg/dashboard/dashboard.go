// Package dashboard runs the full snapshot-to-figures pipeline.
//
// One Render is produced per cycle: load the newest backup, normalize the
// entities, aggregate the time tables, and build every figure. Renders are
// immutable once built and rebuilt from scratch on refresh; there is no
// incremental update and no state shared between cycles beyond the caller's
// loader.FileState.
package dashboard

import (
	"github.com/vanderheijden86/spdash/pkg/aggregate"
	"github.com/vanderheijden86/spdash/pkg/chart"
	"github.com/vanderheijden86/spdash/pkg/loader"
	"github.com/vanderheijden86/spdash/pkg/metrics"
	"github.com/vanderheijden86/spdash/pkg/model"
	"github.com/vanderheijden86/spdash/pkg/normalize"
	"github.com/vanderheijden86/spdash/pkg/theme"
)

// DefaultTopTags bounds the tag-trend chart to the busiest tags.
const DefaultTopTags = 8

// Options configures one pipeline run.
type Options struct {
	// CounterIDs maps logical counter names to snapshot entity ids.
	// Nil uses chart.DefaultCounterIDs.
	CounterIDs map[string]string
	// ExcludedTags are tag titles left out of the tags pie.
	ExcludedTags map[string]bool
	// TopTags bounds the tag trends chart; 0 means DefaultTopTags.
	TopTags int
}

// DefaultOptions mirrors the upstream dashboard's fixed choices.
func DefaultOptions() Options {
	return Options{
		ExcludedTags: map[string]bool{"Today": true},
		TopTags:      DefaultTopTags,
	}
}

// Render is the complete output of one pipeline cycle.
type Render struct {
	File     loader.FileInfo
	Snapshot *model.Snapshot

	Tasks    []normalize.TaskRow
	Projects []normalize.ProjectRow
	Records  []aggregate.DayRecord

	Resolver *theme.Resolver

	// Figures in page order; FigureByKey indexes the same values.
	Figures     []chart.Figure
	FigureByKey map[string]chart.Figure

	Calendar []chart.CalendarEvent

	// WidgetErrors are per-widget failures (missing counters). They do
	// not abort the render.
	WidgetErrors []error
}

// Run loads the most recent backup from the search locations and builds a
// full render. Load failures (not found, invalid format, parse errors)
// abort the cycle.
func Run(locations []loader.SearchLocation, loadOpts loader.Options, opts Options) (*Render, error) {
	snap, info, err := loader.Load(locations, loadOpts)
	if err != nil {
		return nil, err
	}
	render := Build(snap, opts)
	render.File = info
	return render, nil
}

// Build derives every table and figure from an already-parsed snapshot.
func Build(snap *model.Snapshot, opts Options) *Render {
	defer metrics.Timer(metrics.ChartBuild)()

	if opts.TopTags == 0 {
		opts.TopTags = DefaultTopTags
	}

	tasks := normalize.JoinProjects(normalize.NormalizeTasks(snap), normalize.NormalizeProjects(snap))
	projects := normalize.NormalizeProjects(snap)
	resolver := theme.NewResolver(snap)

	records := aggregate.BuildTimeByDay(tasks, snap)
	dayTotals := aggregate.TotalsByDay(records)

	render := &Render{
		Snapshot: snap,
		Tasks:    tasks,
		Projects: projects,
		Records:  records,
		Resolver: resolver,
		Calendar: chart.CalendarEvents(dayTotals),
	}

	counterFigs, widgetErrs := chart.CounterFigures(snap, opts.CounterIDs)
	render.WidgetErrors = widgetErrs

	// Page order matches the upstream dashboard.
	render.Figures = []chart.Figure{
		chart.CumulativeTime(dayTotals),
		chart.StackedDayProject(records, resolver),
		chart.WeekdayStacked(records, resolver),
		chart.TimePerDay(dayTotals),
		chart.ProjectPie(records, projects, resolver),
		chart.TagsPie(aggregate.TagTime(tasks, snap), opts.ExcludedTags, resolver),
		counterFigs[chart.CounterWater],
		counterFigs[chart.CounterMedia],
		counterFigs[chart.CounterWorkout],
		chart.TagTrendLines(aggregate.TagTrends(tasks, snap, opts.TopTags), resolver),
		chart.ProjectEfficiency(aggregate.ProjectStats(tasks, projects), resolver),
		chart.EstimationAccuracy(aggregate.EstimationAccuracy(tasks)),
	}

	render.FigureByKey = make(map[string]chart.Figure, len(render.Figures))
	for _, fig := range render.Figures {
		render.FigureByKey[fig.Key] = fig
	}
	return render
}
