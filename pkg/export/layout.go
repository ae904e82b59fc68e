// Package export renders figure specs to static artifacts: SVG and PNG
// images, a SQLite database of the aggregate tables, and JSON dumps for
// automation. Rendering shares one computed layout so the SVG and PNG
// outputs of a figure agree pixel-for-pixel on geometry.
package export

import (
	"math"
	"sort"
	"strconv"

	"github.com/vanderheijden86/spdash/pkg/chart"
)

// Canvas defaults. Figure.Height overrides the height when set.
const (
	defaultWidth  = 960
	defaultHeight = 500

	marginLeft   = 64.0
	marginRight  = 24.0
	marginTop    = 72.0
	marginBottom = 56.0
)

// yDivisions is the number of horizontal gridlines drawn on cartesian plots.
const yDivisions = 4

// plotArea is the pixel region traces are drawn into.
type plotArea struct {
	X, Y, W, H float64
}

// barGroup is one x-category with its (possibly stacked) segments.
type barGroup struct {
	Label    string
	Segments []barSegment
}

// barSegment is one colored piece of a bar.
type barSegment struct {
	Y0, Y1 float64 // value space; Y1 > Y0
	Color  string
	Name   string
}

// pieSlice is one wedge of a pie trace.
type pieSlice struct {
	Label      string
	Value      float64
	Color      string
	StartAngle float64 // radians, clockwise from 12 o'clock
	EndAngle   float64
}

// linePoint is one sample of a scatter trace in value space.
type linePoint struct {
	XIndex int // index into the category axis
	Y      float64
	Size   float64 // marker radius override, 0 means default
}

// lineSeries is one scatter trace resolved against the shared x axis.
type lineSeries struct {
	Name   string
	Color  string
	Mode   string
	Points []linePoint
}

// layout is the resolved geometry of one figure.
type layout struct {
	Width  int
	Height int
	Plot   plotArea

	Categories []string // shared x axis for bar/scatter figures
	YMax       float64

	Bars   []barGroup
	Lines  []lineSeries
	Slices []pieSlice
}

// computeLayout resolves a figure spec into drawable geometry.
func computeLayout(fig chart.Figure) layout {
	height := fig.Height
	if height <= 0 {
		height = defaultHeight
	}
	l := layout{
		Width:  defaultWidth,
		Height: height,
		Plot: plotArea{
			X: marginLeft,
			Y: marginTop,
			W: float64(defaultWidth) - marginLeft - marginRight,
			H: float64(height) - marginTop - marginBottom,
		},
	}

	switch {
	case isPie(fig):
		l.Slices = pieSlices(fig)
	case isHistogram(fig):
		bars, categories, yMax := histogramBars(fig)
		l.Bars = bars
		l.Categories = categories
		l.YMax = yMax
	default:
		l.Categories = categoryAxis(fig)
		l.Bars, l.Lines, l.YMax = cartesianSeries(fig, l.Categories)
	}

	// Guide lines can exceed the data range.
	for _, ref := range fig.RefLines {
		if ref.Axis == "y" && ref.Value > l.YMax {
			l.YMax = ref.Value
		}
	}
	if l.YMax <= 0 {
		l.YMax = 1
	}
	return l
}

func isPie(fig chart.Figure) bool {
	return len(fig.Traces) > 0 && fig.Traces[0].Type == chart.TracePie
}

func isHistogram(fig chart.Figure) bool {
	return len(fig.Traces) > 0 && fig.Traces[0].Type == chart.TraceHistogram
}

// categoryAxis merges every trace's x values into one sorted axis.
func categoryAxis(fig chart.Figure) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, trace := range fig.Traces {
		for _, x := range trace.X {
			if !seen[x] {
				seen[x] = true
				categories = append(categories, x)
			}
		}
	}
	// Weekday axes keep their builder order; everything else (dates,
	// numeric labels) sorts lexically, which is chronological for day keys.
	if !isWeekdayAxis(categories) {
		sort.Strings(categories)
	}
	return categories
}

func isWeekdayAxis(categories []string) bool {
	if len(categories) == 0 {
		return false
	}
	weekdays := map[string]bool{
		"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
		"Friday": true, "Saturday": true, "Sunday": true,
	}
	for _, c := range categories {
		if !weekdays[c] {
			return false
		}
	}
	return true
}

// cartesianSeries resolves bar and scatter traces against the shared axis.
// Bar traces stack when the figure says so; YMax covers the tallest stack
// and the highest line point.
func cartesianSeries(fig chart.Figure, categories []string) ([]barGroup, []lineSeries, float64) {
	index := make(map[string]int, len(categories))
	for i, c := range categories {
		index[c] = i
	}

	groups := make([]barGroup, len(categories))
	for i, c := range categories {
		groups[i].Label = c
	}
	stackTop := make([]float64, len(categories))

	var lines []lineSeries
	var yMax float64

	for _, trace := range fig.Traces {
		switch trace.Type {
		case chart.TraceBar:
			for i, x := range trace.X {
				if i >= len(trace.Y) {
					break
				}
				idx := index[x]
				y := trace.Y[i]
				if y < 0 {
					y = 0
				}
				base := 0.0
				if fig.Stacked {
					base = stackTop[idx]
					stackTop[idx] += y
				} else if y > stackTop[idx] {
					stackTop[idx] = y
				}
				groups[idx].Segments = append(groups[idx].Segments, barSegment{
					Y0:    base,
					Y1:    base + y,
					Color: pointColor(trace, i),
					Name:  trace.Name,
				})
			}

		case chart.TraceScatter:
			series := lineSeries{Name: trace.Name, Color: traceColor(trace), Mode: trace.Mode}
			for i, x := range trace.X {
				if i >= len(trace.Y) {
					break
				}
				point := linePoint{XIndex: index[x], Y: trace.Y[i]}
				if i < len(trace.Sizes) {
					point.Size = trace.Sizes[i]
				}
				series.Points = append(series.Points, point)
				if trace.Y[i] > yMax {
					yMax = trace.Y[i]
				}
			}
			lines = append(lines, series)
		}
	}

	for _, top := range stackTop {
		if top > yMax {
			yMax = top
		}
	}
	return groups, lines, yMax
}

// histogramBars bins the samples of a histogram trace into bar groups.
func histogramBars(fig chart.Figure) ([]barGroup, []string, float64) {
	trace := fig.Traces[0]
	bins := trace.Bins
	if bins <= 0 {
		bins = 20
	}

	lo, hi := fig.XRange[0], fig.XRange[1]
	if lo == 0 && hi == 0 && len(trace.Samples) > 0 {
		lo, hi = trace.Samples[0], trace.Samples[0]
		for _, s := range trace.Samples {
			lo = math.Min(lo, s)
			hi = math.Max(hi, s)
		}
	}
	if hi <= lo {
		hi = lo + 1
	}
	width := (hi - lo) / float64(bins)

	counts := make([]float64, bins)
	for _, s := range trace.Samples {
		if s < lo || s > hi {
			continue
		}
		idx := int((s - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	color := traceColor(trace)
	groups := make([]barGroup, bins)
	categories := make([]string, bins)
	var yMax float64
	for i, count := range counts {
		label := formatBinLabel(lo + width*float64(i))
		categories[i] = label
		groups[i] = barGroup{
			Label:    label,
			Segments: []barSegment{{Y0: 0, Y1: count, Color: color}},
		}
		if count > yMax {
			yMax = count
		}
	}
	return groups, categories, yMax
}

func formatBinLabel(edge float64) string {
	return trimFloat(edge)
}

// pieSlices converts a pie trace into wedge angles. Zero or negative values
// still occupy a slot in the legend but span no arc.
func pieSlices(fig chart.Figure) []pieSlice {
	trace := fig.Traces[0]

	var total float64
	for _, v := range trace.Values {
		if v > 0 {
			total += v
		}
	}

	slices := make([]pieSlice, 0, len(trace.Values))
	angle := 0.0
	for i, v := range trace.Values {
		slice := pieSlice{
			Value:      v,
			Color:      pointColor(trace, i),
			StartAngle: angle,
			EndAngle:   angle,
		}
		if i < len(trace.Labels) {
			slice.Label = trace.Labels[i]
		}
		if v > 0 && total > 0 {
			slice.EndAngle = angle + 2*math.Pi*v/total
			angle = slice.EndAngle
		}
		slices = append(slices, slice)
	}
	return slices
}

// traceColor is the uniform color of a trace, defaulting to the dashboard
// blue.
func traceColor(t chart.Trace) string {
	if t.Color != "" {
		return t.Color
	}
	return "#636efa"
}

// pointColor is the per-point color when present, else the trace color.
func pointColor(t chart.Trace, i int) string {
	if i < len(t.Colors) && t.Colors[i] != "" {
		return t.Colors[i]
	}
	return traceColor(t)
}

// yToPixel maps a value to the plot's pixel space, origin at the top.
func (l layout) yToPixel(v float64) float64 {
	return l.Plot.Y + l.Plot.H*(1-v/l.YMax)
}

// slotWidth is the pixel width of one x category slot.
func (l layout) slotWidth() float64 {
	if len(l.Categories) == 0 {
		return l.Plot.W
	}
	return l.Plot.W / float64(len(l.Categories))
}

// xToPixel maps a category index to the center of its slot.
func (l layout) xToPixel(idx int) float64 {
	return l.Plot.X + l.slotWidth()*(float64(idx)+0.5)
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
