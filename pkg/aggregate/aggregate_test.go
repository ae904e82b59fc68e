package aggregate

import (
	"testing"
	"time"

	"github.com/vanderheijden86/spdash/pkg/model"
	"github.com/vanderheijden86/spdash/pkg/normalize"
	"github.com/vanderheijden86/spdash/pkg/testutil"
)

func normalizedRows(snap *model.Snapshot) []normalize.TaskRow {
	return normalize.JoinProjects(normalize.NormalizeTasks(snap), normalize.NormalizeProjects(snap))
}

func projectRows(snap *model.Snapshot) []normalize.ProjectRow {
	return normalize.NormalizeProjects(snap)
}

func TestBuildTimeByDayLeafOnly(t *testing.T) {
	// Parent time is the rollup of its children; counting both doubles it.
	snap := testutil.NewSnapshot().
		Project("p1", "Work", "", "").
		Task("parent", "Parent", "p1", 7_200_000,
			testutil.SubTasks("child"),
			testutil.SpentOn("2024-03-01", 7_200_000)).
		Task("child", "Child", "p1", 7_200_000,
			testutil.SpentOn("2024-03-01", 7_200_000)).
		Build()

	records := BuildTimeByDay(normalizedRows(snap), snap)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	testutil.AssertClose(t, records[0].Minutes, 120, "leaf-only minutes")
}

func TestBuildTimeByDayBuckets(t *testing.T) {
	snap := testutil.NewSnapshot().
		Project("p1", "Work", "", "").
		Project("p2", "Home", "", "").
		Task("t1", "A", "p1", 0,
			testutil.SpentOn("2024-03-01", 1_800_000),
			testutil.SpentOn("2024-03-02", 3_600_000)).
		Task("t2", "B", "p1", 0,
			testutil.SpentOn("2024-03-01", 1_800_000)).
		Task("t3", "C", "p2", 0,
			testutil.SpentOn("2024-03-01", 600_000)).
		Build()

	records := BuildTimeByDay(normalizedRows(snap), snap)
	if len(records) != 3 {
		t.Fatalf("expected 3 (day, project) buckets, got %d", len(records))
	}

	// Sorted by date then project id.
	testutil.AssertClose(t, records[0].Minutes, 60, "2024-03-01 p1")
	if records[0].ProjectID != "p1" || records[0].Project != "Work" {
		t.Errorf("record 0 = %+v", records[0])
	}
	testutil.AssertClose(t, records[1].Minutes, 10, "2024-03-01 p2")
	testutil.AssertClose(t, records[2].Minutes, 60, "2024-03-02 p1")
	if records[2].Date.Format(DayFormat) != "2024-03-02" {
		t.Errorf("record 2 date = %v", records[2].Date)
	}
}

func TestBuildTimeByDaySkipsBadDayKeys(t *testing.T) {
	snap := testutil.NewSnapshot().
		Project("p1", "Work", "", "").
		Task("t1", "A", "p1", 0,
			testutil.SpentOn("2024-03-01", 600_000),
			testutil.SpentOn("not-a-date", 600_000)).
		Build()

	records := BuildTimeByDay(normalizedRows(snap), snap)
	if len(records) != 1 {
		t.Fatalf("expected malformed day key to be skipped, got %d records", len(records))
	}
	testutil.AssertClose(t, records[0].Minutes, 10, "valid day minutes")
}

func TestTotalsByDayAndCumulative(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	records := []DayRecord{
		{Date: day1, ProjectID: "p1", Minutes: 30},
		{Date: day1, ProjectID: "p2", Minutes: 15},
		{Date: day2, ProjectID: "p1", Minutes: 45},
	}

	totals := TotalsByDay(records)
	if len(totals) != 2 {
		t.Fatalf("expected 2 day totals, got %d", len(totals))
	}
	testutil.AssertClose(t, totals[0].Minutes, 45, "day1 total")
	testutil.AssertClose(t, totals[1].Minutes, 45, "day2 total")

	cum := Cumulative(totals)
	testutil.AssertClose(t, cum[0].Minutes, 45, "cumulative day1")
	testutil.AssertClose(t, cum[1].Minutes, 90, "cumulative day2")
	if len(cum) != len(totals) {
		t.Error("cumulative changed series length")
	}
}

func TestTotalsByProject(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	records := []DayRecord{
		{Date: day1, ProjectID: "p1", Project: "Work", Minutes: 30},
		{Date: day2, ProjectID: "p1", Project: "Work", Minutes: 45},
		{Date: day1, ProjectID: "p2", Project: "Home", Minutes: 15},
	}

	totals := TotalsByProject(records)
	if len(totals) != 2 {
		t.Fatalf("expected 2 project totals, got %d", len(totals))
	}
	testutil.AssertClose(t, totals[0].Minutes, 75, "p1 total")
	if totals[0].Project != "Work" {
		t.Errorf("p1 title = %q", totals[0].Project)
	}
	testutil.AssertClose(t, totals[1].Minutes, 15, "p2 total")
}

func TestWeekdayAveragesDenseGrid(t *testing.T) {
	// Two Fridays for p1 (60 and 30 min) and one Saturday for p2.
	fri1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	fri2 := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	sat := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	records := []DayRecord{
		{Date: fri1, ProjectID: "p1", Project: "Work", Minutes: 60},
		{Date: fri2, ProjectID: "p1", Project: "Work", Minutes: 30},
		{Date: sat, ProjectID: "p2", Project: "Home", Minutes: 20},
	}

	averages := WeekdayAverages(records)
	if len(averages) != len(WeekdayOrder)*2 {
		t.Fatalf("expected dense %dx2 grid, got %d cells", len(WeekdayOrder), len(averages))
	}
	if averages[0].Weekday != "Monday" {
		t.Errorf("grid should start on Monday, got %s", averages[0].Weekday)
	}

	cells := make(map[string]map[string]float64)
	for _, avg := range averages {
		if cells[avg.Weekday] == nil {
			cells[avg.Weekday] = make(map[string]float64)
		}
		cells[avg.Weekday][avg.ProjectID] = avg.Minutes
	}
	testutil.AssertClose(t, cells["Friday"]["p1"], 45, "Friday p1 mean")
	testutil.AssertClose(t, cells["Friday"]["p2"], 0, "Friday p2 zero fill")
	testutil.AssertClose(t, cells["Saturday"]["p2"], 20, "Saturday p2")
	testutil.AssertClose(t, cells["Monday"]["p1"], 0, "Monday zero fill")
}

func TestBuildTimeByDayEmptySnapshot(t *testing.T) {
	snap := testutil.NewSnapshot().Build()
	records := BuildTimeByDay(normalizedRows(snap), snap)
	if len(records) != 0 {
		t.Errorf("empty snapshot should produce no records, got %d", len(records))
	}
	if len(TotalsByDay(records)) != 0 || len(TotalsByProject(records)) != 0 {
		t.Error("empty grid should produce empty totals")
	}
	if len(WeekdayAverages(records)) != 0 {
		t.Error("empty grid should produce an empty weekday grid")
	}
}
