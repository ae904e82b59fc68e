package aggregate

import (
	"sort"
	"time"

	"github.com/vanderheijden86/spdash/pkg/debug"
	"github.com/vanderheijden86/spdash/pkg/model"
	"github.com/vanderheijden86/spdash/pkg/normalize"
)

// TagTotal is the summed task minutes attributed to one tag.
type TagTotal struct {
	TagID   string
	Tag     string
	Minutes float64
}

// TagBreakdown is the tag-time aggregation over tasks with recorded time.
// A task carrying N tags contributes its full TimeSpent to every one of
// them (duplication, not a 1/N split), so summing ByTag can exceed the sum
// over tasks. Tasks with no tags land in Untagged.
type TagBreakdown struct {
	ByTag    []TagTotal
	Untagged float64
}

// TagTime aggregates each task's total minutes onto its tag set. Only tasks
// with TimeSpent > 0 participate. Tag ids without a known tag entity are
// skipped; every known tag appears in ByTag even at zero minutes, so pie
// charts can show the full tag universe.
func TagTime(tasks []normalize.TaskRow, snap *model.Snapshot) TagBreakdown {
	tags := snap.Tags()
	minutes := make(map[string]float64, len(tags))
	for id := range tags {
		minutes[id] = 0
	}

	var untagged float64
	for _, task := range tasks {
		if task.TimeSpent <= 0 {
			continue
		}
		tagged := false
		for _, tagID := range task.TagIDs {
			if tagID == "" {
				continue
			}
			if _, known := tags[tagID]; !known {
				debug.Log("task %s references unknown tag %s", task.ID, tagID)
				continue
			}
			minutes[tagID] += task.TimeSpent
			tagged = true
		}
		if !tagged {
			untagged += task.TimeSpent
		}
	}

	byTag := make([]TagTotal, 0, len(minutes))
	for id, mins := range minutes {
		byTag = append(byTag, TagTotal{TagID: id, Tag: tags[id].Title, Minutes: mins})
	}
	sort.Slice(byTag, func(i, j int) bool { return byTag[i].TagID < byTag[j].TagID })
	return TagBreakdown{ByTag: byTag, Untagged: untagged}
}

// TrendPoint is one (date, minutes) sample of a tag trend line.
type TrendPoint struct {
	Date    time.Time
	Minutes float64
}

// TagTrend is the per-day minutes series of one tag.
type TagTrend struct {
	TagID  string
	Tag    string
	Total  float64
	Points []TrendPoint
}

// TagTrends builds per-tag daily time series from every task's
// timeSpentOnDay map and returns the topN tags by total minutes,
// descending. Unlike BuildTimeByDay this walks all tasks, parents included,
// mirroring how tag usage was tracked upstream.
func TagTrends(tasks []normalize.TaskRow, snap *model.Snapshot, topN int) []TagTrend {
	tags := snap.Tags()
	entities := snap.Tasks()

	series := make(map[string]map[string]float64) // tagID -> day -> minutes
	for _, task := range tasks {
		raw, ok := entities[task.ID]
		if !ok || raw.TimeSpentOnDay == nil {
			continue
		}
		for _, tagID := range task.TagIDs {
			if _, known := tags[tagID]; !known {
				continue
			}
			if series[tagID] == nil {
				series[tagID] = make(map[string]float64)
			}
			for day, ms := range raw.TimeSpentOnDay {
				series[tagID][day] += ms / model.MillisPerMinute
			}
		}
	}

	trends := make([]TagTrend, 0, len(series))
	for tagID, days := range series {
		trend := TagTrend{TagID: tagID, Tag: tags[tagID].Title}
		dayKeys := make([]string, 0, len(days))
		for day := range days {
			dayKeys = append(dayKeys, day)
		}
		sort.Strings(dayKeys)
		for _, day := range dayKeys {
			date, err := time.Parse(DayFormat, day)
			if err != nil {
				continue
			}
			trend.Points = append(trend.Points, TrendPoint{Date: date, Minutes: days[day]})
			trend.Total += days[day]
		}
		trends = append(trends, trend)
	}

	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Total != trends[j].Total {
			return trends[i].Total > trends[j].Total
		}
		return trends[i].TagID < trends[j].TagID
	})
	if topN > 0 && len(trends) > topN {
		trends = trends[:topN]
	}
	return trends
}
