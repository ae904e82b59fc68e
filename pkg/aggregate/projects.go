package aggregate

import (
	"sort"

	"github.com/vanderheijden86/spdash/pkg/normalize"
)

// ProjectStat is the per-project efficiency summary behind the time vs.
// completion-rate scatter.
type ProjectStat struct {
	ProjectID      string
	Project        string
	TotalMinutes   float64
	CompletedTasks int
	TotalTasks     int
	CompletionRate float64 // 0..1
	AvgPerTask     float64 // minutes
}

// ProjectStats summarizes each project that owns at least one task:
// total recorded minutes, completed vs. total task counts, completion rate,
// and average minutes per task. Sorted by project id.
func ProjectStats(tasks []normalize.TaskRow, projects []normalize.ProjectRow) []ProjectStat {
	byProject := make(map[string]*ProjectStat, len(projects))
	for _, p := range projects {
		byProject[p.ID] = &ProjectStat{ProjectID: p.ID, Project: p.Title}
	}

	for _, task := range tasks {
		stat, ok := byProject[task.ProjectID]
		if !ok {
			continue
		}
		stat.TotalTasks++
		stat.TotalMinutes += task.TimeSpent
		if task.IsDone {
			stat.CompletedTasks++
		}
	}

	stats := make([]ProjectStat, 0, len(byProject))
	for _, stat := range byProject {
		if stat.TotalTasks == 0 {
			continue
		}
		stat.CompletionRate = float64(stat.CompletedTasks) / float64(stat.TotalTasks)
		stat.AvgPerTask = stat.TotalMinutes / float64(stat.TotalTasks)
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].ProjectID < stats[j].ProjectID })
	return stats
}

// EstimationAccuracy returns the estimation deviation, in percent, of every
// task that has both a positive estimate and positive recorded time:
// (spent/estimate - 1) * 100. Zero means a perfect estimate, positive means
// the task overran.
func EstimationAccuracy(tasks []normalize.TaskRow) []float64 {
	var deviations []float64
	for _, task := range tasks {
		if task.TimeEstimate == nil || *task.TimeEstimate <= 0 || task.TimeSpent <= 0 {
			continue
		}
		ratio := task.TimeSpent / *task.TimeEstimate
		deviations = append(deviations, (ratio-1)*100)
	}
	return deviations
}
