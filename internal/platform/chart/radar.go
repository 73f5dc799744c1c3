package chart

import (
	"fmt"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
)

type RadarSeries struct {
	Name string
	// Values are normalised to [0, 1].
	Values []float64
	// Raw values are shown on hover.
	Raw []float64
}

// RadarChart draws one closed polygon per series around shared axes.
type RadarChart struct {
	Title  string
	Axes   []string
	Series []RadarSeries
	Width  int
	Height int
}

func (c RadarChart) Size() (int, int) {
	w, h := size(c.Width, c.Height)
	if c.Height <= 0 {
		h = 560
	}
	return w, h
}

func (c RadarChart) Draw(canvas *svg.SVG) {
	width, height := c.Size()
	drawTitle(canvas, width, c.Title)
	n := len(c.Axes)
	if n < 3 || len(c.Series) == 0 {
		drawEmpty(canvas, width, height)
		return
	}

	f := newFrame(width, height)
	names := make([]string, len(c.Series))
	for i, s := range c.Series {
		names[i] = s.Name
	}
	drawLegend(canvas, f, names)

	cx, cy := width/2, (f.top+f.bottom)/2+8
	radius := float64(min(f.right-f.left, f.bottom-f.top)) / 2 * 0.78
	vertex := func(axis int, r float64) (int, int) {
		angle := -math.Pi/2 + 2*math.Pi*float64(axis)/float64(n)
		return cx + int(math.Round(r*radius*math.Cos(angle))), cy + int(math.Round(r*radius*math.Sin(angle)))
	}

	for _, ring := range []float64{0.25, 0.5, 0.75, 1} {
		xs, ys := make([]int, n), make([]int, n)
		for a := 0; a < n; a++ {
			xs[a], ys[a] = vertex(a, ring)
		}
		canvas.Polygon(xs, ys, "fill:none;"+gridStyle)
	}
	for a, axis := range c.Axes {
		ex, ey := vertex(a, 1)
		canvas.Line(cx, cy, ex, ey, axisStyle)
		lx, ly := vertex(a, 1.12)
		anchor := "middle"
		if lx < cx-4 {
			anchor = "end"
		} else if lx > cx+4 {
			anchor = "start"
		}
		canvas.Text(lx, ly+4, axis, "font-size:11px;text-anchor:"+anchor)
	}

	for i, s := range c.Series {
		color := Color(i)
		xs, ys := make([]int, n), make([]int, n)
		for a := 0; a < n; a++ {
			xs[a], ys[a] = vertex(a, clamp01(valueAt(s.Values, a)))
		}
		tooltip(canvas, radarSummary(s, c.Axes))
		canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;fill-opacity:0.18;stroke:%s;stroke-width:2", color, color))
		canvas.Gend()
		for a, axis := range c.Axes {
			tooltip(canvas, fmt.Sprintf("%s · %s: %s", s.Name, axis, FormatValue(rawAt(s, a))))
			canvas.Circle(xs[a], ys[a], 3, "fill:"+color)
			canvas.Gend()
		}
	}
}

func rawAt(s RadarSeries, i int) float64 {
	if i < len(s.Raw) {
		return s.Raw[i]
	}
	return valueAt(s.Values, i)
}

func radarSummary(s RadarSeries, axes []string) string {
	var b strings.Builder
	b.WriteString(s.Name)
	for a, axis := range axes {
		fmt.Fprintf(&b, "\n%s: %s", axis, FormatValue(rawAt(s, a)))
	}
	return b.String()
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
