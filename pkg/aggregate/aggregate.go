// Package aggregate builds the derived time tables the chart layer consumes.
//
// The central table is the day x project time grid produced by
// BuildTimeByDay from each leaf task's per-day time map. Parent tasks carry
// rolled-up child time, so only leaf tasks are counted; including both would
// double every subtree. All tables key projects and tags by id internally
// and resolve titles only for presentation.
package aggregate

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/spdash/pkg/debug"
	"github.com/vanderheijden86/spdash/pkg/metrics"
	"github.com/vanderheijden86/spdash/pkg/model"
	"github.com/vanderheijden86/spdash/pkg/normalize"
)

// DayFormat is the date layout used by timeSpentOnDay and countOnDay keys.
const DayFormat = "2006-01-02"

// WeekdayOrder is the presentation order for weekday groupings.
var WeekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DayRecord is one (date, project, minutes) cell of the time grid.
type DayRecord struct {
	Date      time.Time
	ProjectID string
	Project   string // joined title, presentation only
	Minutes   float64
}

// BuildTimeByDay explodes each leaf task's timeSpentOnDay map into
// (date, project) buckets. Output is sorted by date then project id so runs
// are reproducible, but consumers must not rely on any particular order.
func BuildTimeByDay(tasks []normalize.TaskRow, snap *model.Snapshot) []DayRecord {
	defer metrics.Timer(metrics.Aggregate)()

	entities := snap.Tasks()

	type bucket struct {
		day       string
		projectID string
	}
	minutes := make(map[bucket]float64)
	titles := make(map[string]string)

	for _, task := range tasks {
		if !task.IsLeaf {
			continue
		}
		raw, ok := entities[task.ID]
		if !ok || raw.TimeSpentOnDay == nil {
			continue
		}
		titles[task.ProjectID] = task.ProjectTitle
		for day, ms := range raw.TimeSpentOnDay {
			minutes[bucket{day: day, projectID: task.ProjectID}] += ms / model.MillisPerMinute
		}
	}

	records := make([]DayRecord, 0, len(minutes))
	for b, mins := range minutes {
		date, err := time.Parse(DayFormat, b.day)
		if err != nil {
			debug.Log("skipping unparseable day key %q: %v", b.day, err)
			continue
		}
		records = append(records, DayRecord{
			Date:      date,
			ProjectID: b.projectID,
			Project:   titles[b.projectID],
			Minutes:   mins,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].ProjectID < records[j].ProjectID
	})
	return records
}

// DayTotal is the summed minutes of one calendar day.
type DayTotal struct {
	Date    time.Time
	Minutes float64
}

// TotalsByDay sums the grid over projects, sorted by date.
func TotalsByDay(records []DayRecord) []DayTotal {
	byDay := make(map[time.Time]float64)
	for _, r := range records {
		byDay[r.Date] += r.Minutes
	}
	totals := make([]DayTotal, 0, len(byDay))
	for date, mins := range byDay {
		totals = append(totals, DayTotal{Date: date, Minutes: mins})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Date.Before(totals[j].Date) })
	return totals
}

// Cumulative turns date-sorted per-day totals into a running sum.
func Cumulative(totals []DayTotal) []DayTotal {
	out := make([]DayTotal, len(totals))
	var sum float64
	for i, t := range totals {
		sum += t.Minutes
		out[i] = DayTotal{Date: t.Date, Minutes: sum}
	}
	return out
}

// ProjectTotal is the summed minutes of one project across all days.
type ProjectTotal struct {
	ProjectID string
	Project   string
	Minutes   float64
}

// TotalsByProject sums the grid over days, sorted by project id.
func TotalsByProject(records []DayRecord) []ProjectTotal {
	byProject := make(map[string]*ProjectTotal)
	for _, r := range records {
		t, ok := byProject[r.ProjectID]
		if !ok {
			t = &ProjectTotal{ProjectID: r.ProjectID, Project: r.Project}
			byProject[r.ProjectID] = t
		}
		t.Minutes += r.Minutes
	}
	totals := make([]ProjectTotal, 0, len(byProject))
	for _, t := range byProject {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].ProjectID < totals[j].ProjectID })
	return totals
}

// WeekdayAverage is the mean minutes for one (weekday, project) cell. The
// mean is taken across the calendar instances of that weekday on which the
// project has recorded time.
type WeekdayAverage struct {
	Weekday   string
	ProjectID string
	Project   string
	Minutes   float64
}

// WeekdayAverages groups the day x project grid by weekday name and
// averages each project across that weekday's occurrences. The result is a
// dense weekday x project grid in Monday..Sunday order with zero fill, so
// stacked weekday charts always carry every project in every column.
func WeekdayAverages(records []DayRecord) []WeekdayAverage {
	samples := make(map[string]map[string][]float64) // weekday -> projectID -> minutes per date
	titles := make(map[string]string)
	projectIDs := make(map[string]bool)

	for _, r := range records {
		weekday := r.Date.Weekday().String()
		if samples[weekday] == nil {
			samples[weekday] = make(map[string][]float64)
		}
		samples[weekday][r.ProjectID] = append(samples[weekday][r.ProjectID], r.Minutes)
		titles[r.ProjectID] = r.Project
		projectIDs[r.ProjectID] = true
	}

	ids := make([]string, 0, len(projectIDs))
	for id := range projectIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]WeekdayAverage, 0, len(WeekdayOrder)*len(ids))
	for _, weekday := range WeekdayOrder {
		for _, id := range ids {
			var mean float64
			if vals := samples[weekday][id]; len(vals) > 0 {
				mean = stat.Mean(vals, nil)
			}
			out = append(out, WeekdayAverage{
				Weekday:   weekday,
				ProjectID: id,
				Project:   titles[id],
				Minutes:   mean,
			})
		}
	}
	return out
}
