package export

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/spdash/pkg/chart"
	"github.com/vanderheijden86/spdash/pkg/metrics"
)

// SavePNG renders a figure to a PNG file.
func SavePNG(fig chart.Figure, path string) error {
	defer metrics.Timer(metrics.PNGRender)()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	l := computeLayout(fig)
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetFontFace(basicfont.Face7x13)

	setHex(dc, chart.PaperBackground)
	dc.Clear()
	setHex(dc, chart.PlotBackground)
	dc.DrawRectangle(l.Plot.X, l.Plot.Y, l.Plot.W, l.Plot.H)
	dc.Fill()

	dc.SetColor(color.White)
	dc.DrawStringAnchored(fig.Title, float64(l.Width)/2, marginTop/2, 0.5, 0.5)

	if len(l.Slices) > 0 {
		pngPie(dc, l)
	} else {
		pngGrid(dc, l)
		pngBars(dc, l)
		pngLines(dc, l)
		pngRefLines(dc, fig, l)
		pngAxes(dc, fig, l)
	}

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save png %s: %w", path, err)
	}
	return nil
}

// setHex sets the context color from a #rrggbb string, tolerating the few
// named colors figures use.
func setHex(dc *gg.Context, hex string) {
	switch hex {
	case "grey", "gray":
		dc.SetRGB(0.5, 0.5, 0.5)
		return
	}
	if len(hex) == 4 && hex[0] == '#' {
		// Short form #rgb.
		var r, g, b int
		fmt.Sscanf(hex, "#%1x%1x%1x", &r, &g, &b)
		dc.SetRGB255(r*17, g*17, b*17)
		return
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		dc.SetRGB(0.39, 0.43, 0.98) // default dashboard blue
		return
	}
	dc.SetRGB255(r, g, b)
}

func pngGrid(dc *gg.Context, l layout) {
	for i := 0; i <= yDivisions; i++ {
		v := l.YMax * float64(i) / yDivisions
		y := l.yToPixel(v)
		setHex(dc, chart.GridColor)
		dc.DrawLine(l.Plot.X, y, l.Plot.X+l.Plot.W, y)
		dc.Stroke()
		dc.SetRGB(0.67, 0.67, 0.67)
		dc.DrawStringAnchored(trimFloat(v), l.Plot.X-6, y, 1, 0.5)
	}
}

func pngBars(dc *gg.Context, l layout) {
	slot := l.slotWidth()
	barWidth := slot * 0.8
	for i, group := range l.Bars {
		x := l.xToPixel(i) - barWidth/2
		for _, seg := range group.Segments {
			top := l.yToPixel(seg.Y1)
			bottom := l.yToPixel(seg.Y0)
			if bottom-top < 0.5 && seg.Y1 > seg.Y0 {
				top = bottom - 1
			}
			setHex(dc, seg.Color)
			dc.DrawRectangle(x, top, barWidth, bottom-top)
			dc.Fill()
		}
	}
}

func pngLines(dc *gg.Context, l layout) {
	for _, series := range l.Lines {
		setHex(dc, series.Color)
		if series.Mode != "markers" && len(series.Points) > 1 {
			dc.SetLineWidth(2)
			for i := 1; i < len(series.Points); i++ {
				p0, p1 := series.Points[i-1], series.Points[i]
				dc.DrawLine(l.xToPixel(p0.XIndex), l.yToPixel(p0.Y),
					l.xToPixel(p1.XIndex), l.yToPixel(p1.Y))
			}
			dc.Stroke()
			dc.SetLineWidth(1)
		}
		for _, p := range series.Points {
			r := 4.0
			if p.Size > 0 {
				r = p.Size / 2
			}
			dc.DrawCircle(l.xToPixel(p.XIndex), l.yToPixel(p.Y), r)
			dc.Fill()
		}
	}
}

func pngRefLines(dc *gg.Context, fig chart.Figure, l layout) {
	for _, ref := range fig.RefLines {
		setHex(dc, ref.Color)
		if ref.Style == "dot" {
			dc.SetDash(1, 3)
		} else {
			dc.SetDash(4, 4)
		}

		if ref.Axis == "y" {
			y := l.yToPixel(ref.Value)
			dc.DrawLine(l.Plot.X, y, l.Plot.X+l.Plot.W, y)
			dc.Stroke()
			if ref.Label != "" {
				dc.SetDash()
				dc.DrawString(ref.Label, l.Plot.X+6, y-4)
			}
		} else if x, ok := l.valueToX(fig, ref.Value); ok {
			dc.DrawLine(x, l.Plot.Y, x, l.Plot.Y+l.Plot.H)
			dc.Stroke()
			if ref.Label != "" {
				dc.SetDash()
				dc.DrawString(ref.Label, x+4, l.Plot.Y+12)
			}
		}
		dc.SetDash()
	}
}

func pngAxes(dc *gg.Context, fig chart.Figure, l layout) {
	dc.SetRGB(0.67, 0.67, 0.67)
	step := 1
	if len(l.Categories) > 0 {
		step = int(math.Ceil(float64(len(l.Categories)) / (l.Plot.W / 60)))
		if step < 1 {
			step = 1
		}
	}
	for i, c := range l.Categories {
		if i%step != 0 {
			continue
		}
		dc.DrawStringAnchored(c, l.xToPixel(i), l.Plot.Y+l.Plot.H+14, 0.5, 0.5)
	}

	dc.SetRGB(0.8, 0.8, 0.8)
	if fig.XAxisTitle != "" {
		dc.DrawStringAnchored(fig.XAxisTitle, float64(l.Width)/2, float64(l.Height)-10, 0.5, 0.5)
	}
	if fig.YAxisTitle != "" {
		dc.Push()
		dc.RotateAbout(-math.Pi/2, 14, float64(l.Height)/2)
		dc.DrawStringAnchored(fig.YAxisTitle, 14, float64(l.Height)/2, 0.5, 0.5)
		dc.Pop()
	}
}

func pngPie(dc *gg.Context, l layout) {
	cx := l.Plot.X + l.Plot.W*0.35
	cy := l.Plot.Y + l.Plot.H/2
	r := math.Min(l.Plot.W*0.3, l.Plot.H/2) * 0.9

	for _, slice := range l.Slices {
		if slice.EndAngle <= slice.StartAngle {
			continue
		}
		setHex(dc, slice.Color)
		// gg measures angles counterclockwise from 3 o'clock; wedge
		// angles are clockwise from 12 o'clock.
		a0 := slice.StartAngle - math.Pi/2
		a1 := slice.EndAngle - math.Pi/2
		dc.MoveTo(cx, cy)
		dc.DrawArc(cx, cy, r, a0, a1)
		dc.LineTo(cx, cy)
		dc.ClosePath()
		dc.Fill()
	}

	lx := l.Plot.X + l.Plot.W*0.72
	ly := l.Plot.Y + 10
	for i, slice := range l.Slices {
		y := ly + float64(i)*18
		setHex(dc, slice.Color)
		dc.DrawRectangle(lx, y-9, 10, 10)
		dc.Fill()
		dc.SetColor(color.White)
		dc.DrawString(fmt.Sprintf("%s (%s)", slice.Label, chart.FormatMinutes(slice.Value)), lx+16, y)
	}
}
