package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/spdash/pkg/chart"
	"github.com/vanderheijden86/spdash/pkg/metrics"
)

// SaveSVG renders a figure to an SVG file.
func SaveSVG(fig chart.Figure, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSVG(fig, f)
}

// WriteSVG renders a figure as SVG to the writer.
func WriteSVG(fig chart.Figure, w io.Writer) error {
	defer metrics.Timer(metrics.SVGRender)()

	l := computeLayout(fig)
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)

	canvas.Rect(0, 0, l.Width, l.Height, fill(chart.PaperBackground))
	canvas.Rect(int(l.Plot.X), int(l.Plot.Y), int(l.Plot.W), int(l.Plot.H), fill(chart.PlotBackground))

	canvas.Text(l.Width/2, int(marginTop)/2, fig.Title,
		"text-anchor:middle;font-size:16px;fill:#fff;font-family:sans-serif")

	if len(l.Slices) > 0 {
		svgPie(canvas, l)
	} else {
		svgGrid(canvas, l)
		svgBars(canvas, l)
		svgLines(canvas, l)
		svgRefLines(canvas, fig, l)
		svgAxes(canvas, fig, l)
	}

	canvas.End()
	return nil
}

func fill(color string) string {
	return "fill:" + color
}

// svgGrid draws the horizontal gridlines and their value labels.
func svgGrid(canvas *svg.SVG, l layout) {
	for i := 0; i <= yDivisions; i++ {
		v := l.YMax * float64(i) / yDivisions
		y := int(l.yToPixel(v))
		canvas.Line(int(l.Plot.X), y, int(l.Plot.X+l.Plot.W), y,
			"stroke:"+chart.GridColor+";stroke-width:1")
		canvas.Text(int(l.Plot.X)-6, y+4, trimFloat(v),
			"text-anchor:end;font-size:10px;fill:#aaa;font-family:sans-serif")
	}
}

// svgBars draws every bar group, stacked segments bottom-up.
func svgBars(canvas *svg.SVG, l layout) {
	slot := l.slotWidth()
	barWidth := slot * 0.8
	for i, group := range l.Bars {
		x := l.xToPixel(i) - barWidth/2
		for _, seg := range group.Segments {
			top := l.yToPixel(seg.Y1)
			bottom := l.yToPixel(seg.Y0)
			if bottom-top < 0.5 && seg.Y1 > seg.Y0 {
				top = bottom - 1 // keep tiny values visible
			}
			canvas.Rect(int(x), int(top), int(barWidth), int(bottom-top), fill(seg.Color))
		}
	}
}

// svgLines draws scatter traces as polylines with circular markers.
func svgLines(canvas *svg.SVG, l layout) {
	for _, series := range l.Lines {
		if series.Mode != "markers" && len(series.Points) > 1 {
			xs := make([]int, len(series.Points))
			ys := make([]int, len(series.Points))
			for i, p := range series.Points {
				xs[i] = int(l.xToPixel(p.XIndex))
				ys[i] = int(l.yToPixel(p.Y))
			}
			canvas.Polyline(xs, ys,
				"fill:none;stroke:"+series.Color+";stroke-width:2")
		}
		for _, p := range series.Points {
			r := 4.0
			if p.Size > 0 {
				r = p.Size / 2
			}
			canvas.Circle(int(l.xToPixel(p.XIndex)), int(l.yToPixel(p.Y)), int(r),
				fill(series.Color)+";stroke:#fff;stroke-width:1")
		}
	}
}

// svgRefLines draws the dashed guide lines with optional labels.
func svgRefLines(canvas *svg.SVG, fig chart.Figure, l layout) {
	for _, ref := range fig.RefLines {
		dash := "4,4"
		if ref.Style == "dot" {
			dash = "1,3"
		}
		style := fmt.Sprintf("stroke:%s;stroke-width:1;stroke-dasharray:%s", ref.Color, dash)

		if ref.Axis == "y" {
			y := int(l.yToPixel(ref.Value))
			canvas.Line(int(l.Plot.X), y, int(l.Plot.X+l.Plot.W), y, style)
			if ref.Label != "" {
				canvas.Text(int(l.Plot.X)+6, y-4, ref.Label,
					"font-size:10px;fill:"+ref.Color+";font-family:sans-serif")
			}
			continue
		}

		// Vertical guides only apply to histograms, whose x axis is the
		// binned value range.
		x, ok := l.valueToX(fig, ref.Value)
		if !ok {
			continue
		}
		canvas.Line(int(x), int(l.Plot.Y), int(x), int(l.Plot.Y+l.Plot.H), style)
		if ref.Label != "" {
			canvas.Text(int(x)+4, int(l.Plot.Y)+12, ref.Label,
				"font-size:10px;fill:"+ref.Color+";font-family:sans-serif")
		}
	}
}

// valueToX maps a raw x value onto the pixel axis of a histogram figure.
func (l layout) valueToX(fig chart.Figure, v float64) (float64, bool) {
	lo, hi := fig.XRange[0], fig.XRange[1]
	if hi <= lo {
		return 0, false
	}
	frac := (v - lo) / (hi - lo)
	if frac < 0 || frac > 1 {
		return 0, false
	}
	return l.Plot.X + l.Plot.W*frac, true
}

// svgAxes draws x tick labels (thinned when crowded) and axis titles.
func svgAxes(canvas *svg.SVG, fig chart.Figure, l layout) {
	step := 1
	if len(l.Categories) > 0 {
		// Keep labels roughly 60px apart.
		step = int(math.Ceil(float64(len(l.Categories)) / (l.Plot.W / 60)))
		if step < 1 {
			step = 1
		}
	}
	for i, c := range l.Categories {
		if i%step != 0 {
			continue
		}
		canvas.Text(int(l.xToPixel(i)), int(l.Plot.Y+l.Plot.H)+16, c,
			"text-anchor:middle;font-size:10px;fill:#aaa;font-family:sans-serif")
	}

	if fig.XAxisTitle != "" {
		canvas.Text(l.Width/2, l.Height-8, fig.XAxisTitle,
			"text-anchor:middle;font-size:11px;fill:#ccc;font-family:sans-serif")
	}
	if fig.YAxisTitle != "" {
		canvas.TranslateRotate(14, l.Height/2, -90)
		canvas.Text(0, 0, fig.YAxisTitle,
			"text-anchor:middle;font-size:11px;fill:#ccc;font-family:sans-serif")
		canvas.Gend()
	}
}

// svgPie draws pie slices with an outside legend column.
func svgPie(canvas *svg.SVG, l layout) {
	cx := l.Plot.X + l.Plot.W*0.35
	cy := l.Plot.Y + l.Plot.H/2
	r := math.Min(l.Plot.W*0.3, l.Plot.H/2) * 0.9

	for _, slice := range l.Slices {
		if slice.EndAngle <= slice.StartAngle {
			continue
		}
		canvas.Path(pieWedgePath(cx, cy, r, slice.StartAngle, slice.EndAngle), fill(slice.Color))
	}

	// Legend, one entry per slice, zero-value slices included.
	lx := int(l.Plot.X + l.Plot.W*0.72)
	ly := int(l.Plot.Y) + 10
	for i, slice := range l.Slices {
		y := ly + i*18
		canvas.Rect(lx, y-9, 10, 10, fill(slice.Color))
		canvas.Text(lx+16, y, fmt.Sprintf("%s (%s)", slice.Label, chart.FormatMinutes(slice.Value)),
			"font-size:11px;fill:#fff;font-family:sans-serif")
	}
}

// pieWedgePath builds an SVG arc path for one wedge. Angles are clockwise
// from 12 o'clock.
func pieWedgePath(cx, cy, r, start, end float64) string {
	x0 := cx + r*math.Sin(start)
	y0 := cy - r*math.Cos(start)
	x1 := cx + r*math.Sin(end)
	y1 := cy - r*math.Cos(end)

	largeArc := 0
	if end-start > math.Pi {
		largeArc = 1
	}
	return fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d 1 %.2f,%.2f Z",
		cx, cy, x0, y0, r, r, largeArc, x1, y1)
}
