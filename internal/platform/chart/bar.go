package chart

import (
	"fmt"

	svg "github.com/ajstarks/svgo"
)

type BarSeries struct {
	Name   string
	Values []float64
}

// BarChart draws one group of bars per category, side by side or stacked.
type BarChart struct {
	Title      string
	XLabel     string
	YLabel     string
	Categories []string
	Series     []BarSeries
	Stacked    bool
	// ValueSuffix is appended to value labels, e.g. "%".
	ValueSuffix string
	ShowValues  bool
	Width       int
	Height      int
}

func (c BarChart) Size() (int, int) { return size(c.Width, c.Height) }

func (c BarChart) Draw(canvas *svg.SVG) {
	width, height := c.Size()
	drawTitle(canvas, width, c.Title)
	if len(c.Categories) == 0 || len(c.Series) == 0 {
		drawEmpty(canvas, width, height)
		return
	}

	f := newFrame(width, height)
	hi := 0.0
	for ci := range c.Categories {
		total := 0.0
		for _, s := range c.Series {
			v := valueAt(s.Values, ci)
			if c.Stacked {
				total += v
			} else if v > hi {
				hi = v
			}
		}
		if c.Stacked && total > hi {
			hi = total
		}
	}
	yticks := niceTicks(0, hi, 5)
	y := linear{d0: 0, d1: yticks[len(yticks)-1], r0: float64(f.bottom), r1: float64(f.top)}

	if len(c.Series) > 1 {
		names := make([]string, len(c.Series))
		for i, s := range c.Series {
			names[i] = s.Name
		}
		drawLegend(canvas, f, names)
	}
	drawYAxis(canvas, f, y, yticks, c.YLabel, c.ValueSuffix)
	drawXLabel(canvas, f, c.XLabel)

	slot := (f.right - f.left) / len(c.Categories)
	pad := slot / 8
	for ci, category := range c.Categories {
		x0 := f.left + ci*slot + pad
		inner := slot - 2*pad
		canvas.Text(x0+inner/2, f.bottom+16, category, "text-anchor:middle")

		base := 0.0
		barWidth := inner
		if !c.Stacked {
			barWidth = inner / len(c.Series)
		}
		for si, s := range c.Series {
			v := valueAt(s.Values, ci)
			bx := x0
			if !c.Stacked {
				bx = x0 + si*barWidth
			}
			top, bottom := y.at(base+v), y.at(base)
			label := fmt.Sprintf("%s: %s%s", category, FormatValue(v), c.ValueSuffix)
			if s.Name != "" {
				label = fmt.Sprintf("%s · %s", s.Name, label)
			}
			tooltip(canvas, label)
			canvas.Rect(bx, top, max(barWidth-1, 1), max(bottom-top, 0), "fill:"+Color(si))
			canvas.Gend()
			if c.ShowValues && v > 0 {
				ty := top - 4
				if c.Stacked {
					ty = (top + bottom) / 2
				}
				canvas.Text(bx+barWidth/2, ty, FormatValue(v)+c.ValueSuffix, "text-anchor:middle;font-size:11px")
			}
			if c.Stacked {
				base += v
			}
		}
	}
}

func valueAt(values []float64, i int) float64 {
	if i < 0 || i >= len(values) {
		return 0
	}
	return values[i]
}

type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// HistogramChart draws contiguous bars over numeric bins.
type HistogramChart struct {
	Title  string
	XLabel string
	YLabel string
	Bins   []Bin
	Width  int
	Height int
}

func (c HistogramChart) Size() (int, int) { return size(c.Width, c.Height) }

func (c HistogramChart) Draw(canvas *svg.SVG) {
	width, height := c.Size()
	drawTitle(canvas, width, c.Title)
	if len(c.Bins) == 0 {
		drawEmpty(canvas, width, height)
		return
	}

	f := newFrame(width, height)
	hi := 0
	for _, b := range c.Bins {
		hi = max(hi, b.Count)
	}
	yticks := niceTicks(0, float64(hi), 5)
	y := linear{d0: 0, d1: yticks[len(yticks)-1], r0: float64(f.bottom), r1: float64(f.top)}
	x := linear{d0: c.Bins[0].Lower, d1: c.Bins[len(c.Bins)-1].Upper, r0: float64(f.left), r1: float64(f.right)}
	slot := (f.right - f.left) / len(c.Bins)

	drawYAxis(canvas, f, y, yticks, c.YLabel, "")
	drawXLabel(canvas, f, c.XLabel)
	for i, b := range c.Bins {
		bx := f.left + i*slot
		if x.d1 != x.d0 {
			bx = x.at(b.Lower)
		}
		top := y.at(float64(b.Count))
		tooltip(canvas, fmt.Sprintf("[%s, %s]: %d", FormatValue(b.Lower), FormatValue(b.Upper), b.Count))
		canvas.Rect(bx, top, max(slot-1, 1), f.bottom-top, "fill:"+Color(0))
		canvas.Gend()
	}
	for _, t := range niceTicks(x.d0, x.d1, 6) {
		if t < x.d0 || t > x.d1 {
			continue
		}
		canvas.Text(x.at(t), f.bottom+16, FormatValue(t), "text-anchor:middle")
	}
}
