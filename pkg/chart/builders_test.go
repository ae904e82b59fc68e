package chart

import (
	"testing"
	"time"

	"github.com/vanderheijden86/spdash/pkg/aggregate"
	"github.com/vanderheijden86/spdash/pkg/normalize"
	"github.com/vanderheijden86/spdash/pkg/testutil"
	"github.com/vanderheijden86/spdash/pkg/theme"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestTimePerDay(t *testing.T) {
	fig := TimePerDay([]aggregate.DayTotal{
		{Date: day(1), Minutes: 90},
		{Date: day(2), Minutes: 30},
	})
	if fig.Key != "time_per_day" {
		t.Errorf("key = %q", fig.Key)
	}
	if len(fig.Traces) != 1 {
		t.Fatalf("traces = %d", len(fig.Traces))
	}
	trace := fig.Traces[0]
	if trace.X[0] != "2024-03-01" || trace.Y[0] != 90 {
		t.Errorf("first point = (%s, %v)", trace.X[0], trace.Y[0])
	}
	if trace.Hover[0] != "2024-03-01: 1h 30m" {
		t.Errorf("hover = %q", trace.Hover[0])
	}
	if trace.Color != theme.DefaultColor {
		t.Errorf("color = %q", trace.Color)
	}
}

func TestCumulativeTime(t *testing.T) {
	fig := CumulativeTime([]aggregate.DayTotal{
		{Date: day(1), Minutes: 60},
		{Date: day(2), Minutes: 30},
	})
	if fig.Key != "accumulated" {
		t.Errorf("key = %q", fig.Key)
	}
	y := fig.Traces[0].Y
	if y[0] != 60 || y[1] != 90 {
		t.Errorf("cumulative series = %v", y)
	}
}

func TestProjectPieIncludesZeroProjects(t *testing.T) {
	snap := testutil.NewSnapshot().
		Project("p1", "Work", "#ff0000", "").
		Project("p2", "Idle", "", "").
		Task("t1", "A", "p1", 0, testutil.SpentOn("2024-03-01", 3_600_000)).
		Build()
	resolver := theme.NewResolver(snap)
	tasks := normalize.JoinProjects(normalize.NormalizeTasks(snap), normalize.NormalizeProjects(snap))
	records := aggregate.BuildTimeByDay(tasks, snap)

	fig := ProjectPie(records, normalize.NormalizeProjects(snap), resolver)
	trace := fig.Traces[0]
	if len(trace.Labels) != 2 {
		t.Fatalf("expected both projects in the pie, got %v", trace.Labels)
	}
	// Projects sorted by id: p1 then p2.
	if trace.Values[0] != 60 || trace.Values[1] != 0 {
		t.Errorf("values = %v", trace.Values)
	}
	if trace.Colors[0] != "#ff0000" {
		t.Errorf("themed color lost: %v", trace.Colors)
	}
	if trace.Labels[1] != theme.DefaultProjectIcon+" Idle" {
		t.Errorf("label = %q", trace.Labels[1])
	}
}

func TestStackedDayProjectDenseGrid(t *testing.T) {
	records := []aggregate.DayRecord{
		{Date: day(1), ProjectID: "p1", Project: "Work", Minutes: 60},
		{Date: day(2), ProjectID: "p2", Project: "Home", Minutes: 30},
	}
	snap := testutil.NewSnapshot().Build()
	fig := StackedDayProject(records, theme.NewResolver(snap))

	if !fig.Stacked {
		t.Error("figure should stack")
	}
	if len(fig.Traces) != 2 {
		t.Fatalf("expected one trace per project, got %d", len(fig.Traces))
	}
	for _, trace := range fig.Traces {
		if len(trace.X) != 2 {
			t.Errorf("trace %s should carry the full date axis, got %v", trace.Name, trace.X)
		}
	}
	// p1 trace has zero fill on day 2.
	if fig.Traces[0].Y[1] != 0 {
		t.Errorf("expected zero fill, got %v", fig.Traces[0].Y)
	}
}

func TestWeekdayStacked(t *testing.T) {
	records := []aggregate.DayRecord{
		{Date: day(1), ProjectID: "p1", Project: "Work", Minutes: 60}, // Friday
	}
	snap := testutil.NewSnapshot().Build()
	fig := WeekdayStacked(records, theme.NewResolver(snap))

	if fig.Key != "avg_workday" || !fig.Stacked {
		t.Errorf("key/stacked = %q/%v", fig.Key, fig.Stacked)
	}
	trace := fig.Traces[0]
	if len(trace.X) != 7 || trace.X[0] != "Monday" || trace.X[6] != "Sunday" {
		t.Fatalf("weekday axis = %v", trace.X)
	}
	if trace.Y[4] != 60 { // Friday
		t.Errorf("Friday mean = %v", trace.Y[4])
	}
}

func TestTagsPieExclusionAndUntagged(t *testing.T) {
	snap := testutil.NewSnapshot().
		Tag("g1", "Deep", "#00ff00", "").
		Tag("g2", "Today", "", "").
		Build()
	resolver := theme.NewResolver(snap)

	breakdown := aggregate.TagBreakdown{
		ByTag: []aggregate.TagTotal{
			{TagID: "g1", Tag: "Deep", Minutes: 45},
			{TagID: "g2", Tag: "Today", Minutes: 120},
		},
		Untagged: 15,
	}
	fig := TagsPie(breakdown, map[string]bool{"Today": true}, resolver)
	trace := fig.Traces[0]

	if len(trace.Labels) != 2 {
		t.Fatalf("labels = %v", trace.Labels)
	}
	if trace.Labels[1] != "Untagged" || trace.Values[1] != 15 {
		t.Errorf("untagged slice = %q %v", trace.Labels[1], trace.Values[1])
	}
	if trace.Colors[1] != theme.UntaggedColor {
		t.Errorf("untagged color = %q", trace.Colors[1])
	}
	for _, label := range trace.Labels {
		if label == theme.DefaultTagIcon+" Today" {
			t.Error("excluded tag leaked into the pie")
		}
	}
}

func TestTagsPieEmptyStillHasSlice(t *testing.T) {
	snap := testutil.NewSnapshot().Build()
	fig := TagsPie(aggregate.TagBreakdown{}, nil, theme.NewResolver(snap))
	trace := fig.Traces[0]
	if len(trace.Labels) != 1 || trace.Labels[0] != "Untagged" {
		t.Errorf("empty breakdown should degrade to a lone untagged slice, got %v", trace.Labels)
	}
}

func TestProjectEfficiency(t *testing.T) {
	snap := testutil.NewSnapshot().Build()
	stats := []aggregate.ProjectStat{
		{ProjectID: "p1", Project: "Work", TotalMinutes: 120, TotalTasks: 4, CompletedTasks: 3, CompletionRate: 0.75},
		{ProjectID: "p2", Project: "Idle", TotalMinutes: 0, TotalTasks: 2},
	}
	fig := ProjectEfficiency(stats, theme.NewResolver(snap))
	if len(fig.Traces) != 1 {
		t.Fatalf("zero-time project should be skipped, got %d traces", len(fig.Traces))
	}
	trace := fig.Traces[0]
	if trace.Y[0] != 75 {
		t.Errorf("completion rate percent = %v", trace.Y[0])
	}
	if trace.Sizes[0] != 18 { // 4 tasks * 2 + 10
		t.Errorf("marker size = %v", trace.Sizes[0])
	}
}

func TestEstimationAccuracyFigure(t *testing.T) {
	fig := EstimationAccuracy([]float64{-20, 0, 50})
	if fig.Key != "estimation_accuracy" {
		t.Errorf("key = %q", fig.Key)
	}
	if fig.XRange != [2]float64{-150, 150} {
		t.Errorf("XRange = %v", fig.XRange)
	}
	if fig.Traces[0].Bins != 20 {
		t.Errorf("bins = %d", fig.Traces[0].Bins)
	}
	if len(fig.RefLines) != 5 {
		t.Fatalf("expected 5 guide lines, got %d", len(fig.RefLines))
	}
	if fig.RefLines[0].Value != 0 || fig.RefLines[0].Label != "Perfect Estimation" {
		t.Errorf("zero guide = %+v", fig.RefLines[0])
	}
}

func TestEstimationAccuracyEmptyPlaceholder(t *testing.T) {
	fig := EstimationAccuracy(nil)
	if fig.Key != "estimation_accuracy" {
		t.Errorf("placeholder should keep the figure key, got %q", fig.Key)
	}
	if len(fig.Traces) != 0 {
		t.Errorf("placeholder should carry no traces")
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h 0m"},
		{90, "1h 30m"},
		{90.4, "1h 30m"},
		{135, "2h 15m"},
	}
	for _, tt := range tests {
		if got := FormatMinutes(tt.minutes); got != tt.want {
			t.Errorf("FormatMinutes(%v) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
