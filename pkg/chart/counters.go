package chart

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vanderheijden86/spdash/pkg/model"
)

// Logical counter names the dashboard knows how to plot.
const (
	CounterWater   = "water"
	CounterMedia   = "media"
	CounterWorkout = "workout"
)

// Threshold colors for counter bars.
const (
	counterGood = "#2ca02c"
	counterBad  = "#d62728"
)

// ErrCounterMissing is returned when a configured counter id is absent from
// the snapshot. It fails only that widget; the rest of the render proceeds.
var ErrCounterMissing = errors.New("simple counter not found in snapshot")

// DefaultCounterIDs maps the logical counter names to the upstream entity
// ids they historically used. Override via configuration.
func DefaultCounterIDs() map[string]string {
	return map[string]string{
		CounterWater:   "wQuxogx-iByRYzzw9_LdZ",
		CounterMedia:   "a53564Qzc3w2LHXE6c-1_",
		CounterWorkout: "dD4T3Ulg16FpTqlkwTtpq",
	}
}

// CounterFigures builds the water/media/workout widgets from the counter id
// mapping. Each missing counter contributes a placeholder figure and an
// ErrCounterMissing-wrapped error; it never aborts the other widgets.
func CounterFigures(snap *model.Snapshot, counterIDs map[string]string) (map[string]Figure, []error) {
	if counterIDs == nil {
		counterIDs = DefaultCounterIDs()
	}

	figures := make(map[string]Figure, 3)
	var errs []error

	build := func(name string, builder func(model.SimpleCounter) Figure) {
		id := counterIDs[name]
		counter, ok := snap.Counters()[id]
		if !ok {
			figures[name] = Placeholder(name)
			errs = append(errs, fmt.Errorf("%s (id %q): %w", name, id, ErrCounterMissing))
			return
		}
		figures[name] = builder(counter)
	}

	build(CounterWater, waterFigure)
	build(CounterMedia, mediaFigure)
	build(CounterWorkout, workoutFigure)
	return figures, errs
}

// sortedDays returns the countOnDay keys in date order.
func sortedDays(counts map[string]float64) []string {
	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

// waterFigure plots daily water intake in liters (one counter unit = 1L),
// green at or above the 2L recommendation, red below.
func waterFigure(counter model.SimpleCounter) Figure {
	trace := Trace{Type: TraceBar}
	for _, day := range sortedDays(counter.CountOnDay) {
		liters := counter.CountOnDay[day]
		color := counterBad
		if liters >= 2 {
			color = counterGood
		}
		trace.X = append(trace.X, day)
		trace.Y = append(trace.Y, liters)
		trace.Colors = append(trace.Colors, color)
		trace.Hover = append(trace.Hover, fmt.Sprintf("%s: %.1f L", day, liters))
	}
	return Figure{
		Key:    CounterWater,
		Title:  "Daily Water Intake (L)",
		Height: DefaultHeight,
		Traces: []Trace{trace},
		RefLines: []RefLine{
			{Axis: "y", Value: 2, Style: "dash", Color: GuideColor, Label: "2L Recommended"},
		},
	}
}

// mediaFigure plots daily media time in hours (counter stores milliseconds),
// green under the 4h limit, red at or above it.
func mediaFigure(counter model.SimpleCounter) Figure {
	trace := Trace{Type: TraceBar}
	for _, day := range sortedDays(counter.CountOnDay) {
		hours := counter.CountOnDay[day] / model.MillisPerHour
		color := counterGood
		if hours >= 4 {
			color = counterBad
		}
		trace.X = append(trace.X, day)
		trace.Y = append(trace.Y, hours)
		trace.Colors = append(trace.Colors, color)
		trace.Hover = append(trace.Hover, fmt.Sprintf("%s: %s", day, FormatMinutes(hours*60)))
	}
	return Figure{
		Key:        CounterMedia,
		Title:      "Daily Media Watching (Hours)",
		Height:     DefaultHeight,
		YAxisTitle: "Time Watched",
		Traces:     []Trace{trace},
		RefLines: []RefLine{
			{Axis: "y", Value: 4, Style: "dash", Color: GuideColor, Label: "4h Limit"},
		},
	}
}

// workoutFigure plots daily workout time in hours (counter stores
// milliseconds), always green.
func workoutFigure(counter model.SimpleCounter) Figure {
	trace := Trace{Type: TraceBar, Color: counterGood}
	for _, day := range sortedDays(counter.CountOnDay) {
		hours := counter.CountOnDay[day] / model.MillisPerHour
		trace.X = append(trace.X, day)
		trace.Y = append(trace.Y, hours)
		trace.Hover = append(trace.Hover, fmt.Sprintf("%s: %s", day, FormatMinutes(hours*60)))
	}
	return Figure{
		Key:        CounterWorkout,
		Title:      "Daily Workout Time (Hours)",
		Height:     DefaultHeight,
		YAxisTitle: "Workout Time",
		Traces:     []Trace{trace},
	}
}
