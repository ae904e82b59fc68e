package aggregate

import (
	"testing"

	"github.com/vanderheijden86/spdash/pkg/testutil"
)

func TestProjectStats(t *testing.T) {
	snap := testutil.NewSnapshot().
		Project("p1", "Work", "", "").
		Project("p2", "Empty", "", "").
		Task("t1", "Done", "p1", 3_600_000, testutil.Done(1_709_290_800_000)).
		Task("t2", "Open", "p1", 1_800_000).
		Build()

	stats := ProjectStats(normalizedRows(snap), projectRows(snap))
	if len(stats) != 1 {
		t.Fatalf("projects without tasks should be dropped, got %d stats", len(stats))
	}
	s := stats[0]
	if s.ProjectID != "p1" || s.Project != "Work" {
		t.Errorf("stat identity = %+v", s)
	}
	if s.TotalTasks != 2 || s.CompletedTasks != 1 {
		t.Errorf("task counts = %d/%d, want 1/2", s.CompletedTasks, s.TotalTasks)
	}
	testutil.AssertClose(t, s.TotalMinutes, 90, "total minutes")
	testutil.AssertClose(t, s.CompletionRate, 0.5, "completion rate")
	testutil.AssertClose(t, s.AvgPerTask, 45, "avg per task")
}

func TestEstimationAccuracy(t *testing.T) {
	snap := testutil.NewSnapshot().
		Project("p1", "Work", "", "").
		// Spent 90 min against a 60 min estimate: +50% overrun.
		Task("t1", "Over", "p1", 5_400_000, testutil.Estimate(3_600_000)).
		// Spent 30 min against a 60 min estimate: -50%.
		Task("t2", "Under", "p1", 1_800_000, testutil.Estimate(3_600_000)).
		// Perfect estimate.
		Task("t3", "Exact", "p1", 3_600_000, testutil.Estimate(3_600_000)).
		// No estimate: excluded.
		Task("t4", "None", "p1", 3_600_000).
		// Estimated but never worked on: excluded.
		Task("t5", "Idle", "p1", 0, testutil.Estimate(3_600_000)).
		Build()

	deviations := EstimationAccuracy(normalizedRows(snap))
	if len(deviations) != 3 {
		t.Fatalf("expected 3 deviations, got %d", len(deviations))
	}
	testutil.AssertClose(t, deviations[0], 50, "overrun")
	testutil.AssertClose(t, deviations[1], -50, "underrun")
	testutil.AssertClose(t, deviations[2], 0, "perfect")
}

func TestEstimationAccuracyEmpty(t *testing.T) {
	snap := testutil.NewSnapshot().Project("p1", "Work", "", "").Build()
	if got := EstimationAccuracy(normalizedRows(snap)); len(got) != 0 {
		t.Errorf("expected no deviations, got %v", got)
	}
}
