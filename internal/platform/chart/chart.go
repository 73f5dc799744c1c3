// Package chart draws the dashboard figures as standalone SVG documents.
// Every mark carries a <title> child so browsers show the value on hover.
package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
)

const (
	DefaultWidth  = 720
	DefaultHeight = 360

	marginLeft   = 64
	marginRight  = 24
	marginTop    = 64
	marginBottom = 56

	fontStyle = "font-family:Inter,Helvetica,Arial,sans-serif;font-size:12px;fill:#e6e6e6"
	axisStyle = "stroke:#8a8f98;stroke-width:1"
	gridStyle = "stroke:#3a3f47;stroke-width:1;stroke-dasharray:2,3"
)

// Palette cycles through series colours.
var Palette = []string{
	"#4c9be8", "#e8704c", "#5fc48f", "#d6336c", "#f2c14e", "#9b6ee8", "#4cd3e8", "#a3a3a3",
}

func Color(i int) string {
	return Palette[((i%len(Palette))+len(Palette))%len(Palette)]
}

// Chart is anything that can draw itself on an SVG canvas.
type Chart interface {
	Size() (width, height int)
	Draw(canvas *svg.SVG)
}

// Render writes c as a complete SVG document and reports the first write error.
func Render(w io.Writer, c Chart) error {
	ew := &errWriter{w: w}
	width, height := c.Size()
	canvas := svg.New(ew)
	canvas.Start(width, height, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height), `role="img"`)
	canvas.Gstyle(fontStyle)
	c.Draw(canvas)
	canvas.Gend()
	canvas.End()
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, nil
}

func size(w, h int) (int, int) {
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// linear maps a data domain onto a pixel range.
type linear struct {
	d0, d1 float64
	r0, r1 float64
}

func (s linear) at(v float64) int {
	if s.d1 == s.d0 {
		return int(math.Round((s.r0 + s.r1) / 2))
	}
	return int(math.Round(s.r0 + (v-s.d0)*(s.r1-s.r0)/(s.d1-s.d0)))
}

// niceTicks returns evenly spaced round values covering [lo, hi].
func niceTicks(lo, hi float64, count int) []float64 {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}
	if hi == lo {
		hi = lo + 1
	}
	if count < 2 {
		count = 2
	}
	raw := (hi - lo) / float64(count-1)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := mag
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if m*mag >= raw {
			step = m * mag
			break
		}
	}
	first := math.Floor(lo / step)
	last := math.Ceil(hi/step - 1e-9)
	out := make([]float64, 0, int(last-first)+1)
	for i := first; i <= last; i++ {
		out = append(out, i*step)
	}
	return out
}

func extent(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	return lo, hi
}

// FormatValue prints integers without decimals and everything else with two.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "–"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e12 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// frame is the plotting rectangle inside the margins.
type frame struct {
	left, top, right, bottom int
}

func newFrame(width, height int) frame {
	return frame{
		left:   marginLeft,
		top:    marginTop,
		right:  width - marginRight,
		bottom: height - marginBottom,
	}
}

func drawTitle(canvas *svg.SVG, width int, title string) {
	if title == "" {
		return
	}
	canvas.Text(width/2, 22, title, "text-anchor:middle;font-size:16px;font-weight:600")
}

func drawLegend(canvas *svg.SVG, f frame, names []string) {
	x := f.left
	for i, name := range names {
		if name == "" {
			continue
		}
		canvas.Rect(x, 34, 12, 12, "fill:"+Color(i))
		canvas.Text(x+16, 44, name)
		x += 28 + 7*len([]rune(name))
	}
}

func drawYAxis(canvas *svg.SVG, f frame, y linear, ticks []float64, label, suffix string) {
	canvas.Line(f.left, f.top, f.left, f.bottom, axisStyle)
	for _, t := range ticks {
		py := y.at(t)
		if py < f.top-1 || py > f.bottom+1 {
			continue
		}
		canvas.Line(f.left, py, f.right, py, gridStyle)
		canvas.Text(f.left-6, py+4, FormatValue(t)+suffix, "text-anchor:end")
	}
	if label != "" {
		cx, cy := 16, (f.top+f.bottom)/2
		canvas.Text(cx, cy, label, fmt.Sprintf(`transform="rotate(-90 %d %d)"`, cx, cy), "text-anchor:middle")
	}
}

func drawXLabel(canvas *svg.SVG, f frame, label string) {
	canvas.Line(f.left, f.bottom, f.right, f.bottom, axisStyle)
	if label != "" {
		canvas.Text((f.left+f.right)/2, f.bottom+42, label, "text-anchor:middle")
	}
}

func drawEmpty(canvas *svg.SVG, width, height int) {
	canvas.Text(width/2, height/2, "Sem dados", "text-anchor:middle;fill:#8a8f98")
}

// tooltip opens a group whose <title> is shown on hover. Close it with Gend.
func tooltip(canvas *svg.SVG, text string) {
	canvas.Group(`class="mark"`)
	canvas.Title(text)
}
