package chart

import (
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"
)

// Heatmap draws a square matrix on a diverging red/blue scale over [-1, 1].
type Heatmap struct {
	Title  string
	Labels []string
	Values [][]float64
	// LowerTriangle hides cells above the diagonal.
	LowerTriangle bool
	Width         int
	Height        int
}

func (c Heatmap) Size() (int, int) {
	w, h := size(c.Width, c.Height)
	if c.Height <= 0 {
		h = 640
	}
	return w, h
}

func (c Heatmap) Draw(canvas *svg.SVG) {
	width, height := c.Size()
	drawTitle(canvas, width, c.Title)
	n := len(c.Labels)
	if n == 0 || len(c.Values) < n {
		drawEmpty(canvas, width, height)
		return
	}

	left, top := 220, 48
	cell := min((width-left-16)/n, (height-top-160)/n)
	if cell < 8 {
		cell = 8
	}

	for i := 0; i < n; i++ {
		canvas.Text(left-6, top+i*cell+cell/2+4, c.Labels[i], "text-anchor:end;font-size:11px")
		for j := 0; j < n; j++ {
			if c.LowerTriangle && j > i {
				continue
			}
			v := math.NaN()
			if j < len(c.Values[i]) {
				v = c.Values[i][j]
			}
			x, y := left+j*cell, top+i*cell
			tooltip(canvas, fmt.Sprintf("%s × %s: %s", c.Labels[i], c.Labels[j], formatCorrelation(v)))
			canvas.Rect(x, y, cell-1, cell-1, "fill:"+Diverging(v))
			canvas.Gend()
			if cell >= 28 {
				canvas.Text(x+cell/2, y+cell/2+4, formatCorrelation(v), "text-anchor:middle;font-size:10px;fill:#111")
			}
		}
	}
	for j := 0; j < n; j++ {
		x, y := left+j*cell+cell/2, top+n*cell+8
		canvas.Text(x, y, c.Labels[j], fmt.Sprintf(`transform="rotate(-45 %d %d)"`, x, y), "text-anchor:end;font-size:11px")
	}
}

func formatCorrelation(v float64) string {
	if math.IsNaN(v) {
		return "–"
	}
	return fmt.Sprintf("%.2f", v)
}

// Diverging maps v in [-1, 1] to red (negative) through white to blue
// (positive). NaN renders grey.
func Diverging(v float64) string {
	if math.IsNaN(v) {
		return "#555555"
	}
	v = math.Max(-1, math.Min(1, v))
	mid := [3]float64{247, 247, 247}
	end := [3]float64{178, 24, 43}
	if v > 0 {
		end = [3]float64{33, 102, 172}
	}
	t := math.Abs(v)
	var rgb [3]int
	for i := range rgb {
		rgb[i] = int(math.Round(mid[i] + (end[i]-mid[i])*t))
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}
