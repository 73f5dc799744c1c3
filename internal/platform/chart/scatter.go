package chart

import (
	svg "github.com/ajstarks/svgo"
)

// ScatterChart plots every group in its own colour.
type ScatterChart struct {
	Title  string
	XLabel string
	YLabel string
	Groups []Series
	Width  int
	Height int
}

func (c ScatterChart) Size() (int, int) { return size(c.Width, c.Height) }

func (c ScatterChart) Draw(canvas *svg.SVG) {
	width, height := c.Size()
	drawTitle(canvas, width, c.Title)

	var xs, ys []float64
	names := make([]string, len(c.Groups))
	for i, g := range c.Groups {
		names[i] = g.Name
		for _, p := range g.Points {
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
	xticks := niceTicks(xlo, xhi, 6)
	yticks := niceTicks(ylo, yhi, 6)
	x := linear{d0: xticks[0], d1: xticks[len(xticks)-1], r0: float64(f.left), r1: float64(f.right)}
	y := linear{d0: yticks[0], d1: yticks[len(yticks)-1], r0: float64(f.bottom), r1: float64(f.top)}

	drawLegend(canvas, f, names)
	drawYAxis(canvas, f, y, yticks, c.YLabel, "")
	drawXLabel(canvas, f, c.XLabel)
	for _, t := range xticks {
		canvas.Text(x.at(t), f.bottom+16, FormatValue(t), "text-anchor:middle")
	}

	for i, g := range c.Groups {
		color := Color(i)
		for _, p := range g.Points {
			tooltip(canvas, pointLabel(g.Name, p))
			canvas.Circle(x.at(p.X), y.at(p.Y), 5, "fill-opacity:0.8;stroke:#111;stroke-width:0.5;fill:"+color)
			canvas.Gend()
		}
	}
}
