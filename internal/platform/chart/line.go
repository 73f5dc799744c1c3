package chart

import (
	"fmt"

	svg "github.com/ajstarks/svgo"
)

type Point struct {
	X     float64
	Y     float64
	Label string
}

type Series struct {
	Name   string
	Points []Point
}

// LineChart plots one polyline per series over a numeric x axis.
type LineChart struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
	Width  int
	Height int
}

func (c LineChart) Size() (int, int) { return size(c.Width, c.Height) }

func (c LineChart) Draw(canvas *svg.SVG) {
	width, height := c.Size()
	drawTitle(canvas, width, c.Title)

	var xs, ys []float64
	names := make([]string, len(c.Series))
	for i, s := range c.Series {
		names[i] = s.Name
		for _, p := range s.Points {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}
	}
	if len(xs) == 0 {
		drawEmpty(canvas, width, height)
		return
	}

	f := newFrame(width, height)
	xlo, xhi := extent(xs)
	ylo, yhi := extent(ys)
	if ylo > 0 {
		ylo = 0
	}
	yticks := niceTicks(ylo, yhi, 5)
	x := linear{d0: xlo, d1: xhi, r0: float64(f.left), r1: float64(f.right)}
	y := linear{d0: yticks[0], d1: yticks[len(yticks)-1], r0: float64(f.bottom), r1: float64(f.top)}

	drawLegend(canvas, f, names)
	drawYAxis(canvas, f, y, yticks, c.YLabel, "")
	drawXLabel(canvas, f, c.XLabel)
	for _, t := range niceTicks(xlo, xhi, 8) {
		if t < xlo || t > xhi {
			continue
		}
		canvas.Text(x.at(t), f.bottom+16, FormatValue(t), "text-anchor:middle")
	}

	for i, s := range c.Series {
		color := Color(i)
		px := make([]int, len(s.Points))
		py := make([]int, len(s.Points))
		for j, p := range s.Points {
			px[j], py[j] = x.at(p.X), y.at(p.Y)
		}
		canvas.Polyline(px, py, "fill:none;stroke-width:2;stroke:"+color)
		for j, p := range s.Points {
			tooltip(canvas, pointLabel(s.Name, p))
			canvas.Circle(px[j], py[j], 3, "fill:"+color)
			canvas.Gend()
		}
	}
}

func pointLabel(series string, p Point) string {
	if p.Label != "" {
		return p.Label
	}
	return fmt.Sprintf("%s: (%s, %s)", series, FormatValue(p.X), FormatValue(p.Y))
}
