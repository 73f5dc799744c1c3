package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix returns the Pearson correlation between every pair of
// columns. Pairs involving a constant column are NaN.
func CorrelationMatrix(x [][]float64) ([][]float64, error) {
	rows, cols, err := dims(x)
	if err != nil {
		return nil, err
	}

	data := mat.NewDense(rows, cols, nil)
	for i, row := range x {
		data.SetRow(i, row)
	}
	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, data, nil)
	return denseRows(&corr), nil
}

type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// Histogram splits the range of values into equal-width bins. The last bin is
// closed on both ends. A constant input yields a single full bin.
func Histogram(values []float64, bins int) []Bin {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 || bins < 1 {
		return nil
	}
	sort.Float64s(clean)

	lo, hi := clean[0], clean[len(clean)-1]
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(clean)}}
	}

	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	edges := append([]float64(nil), dividers...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, clean, nil)
	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: edges[i], Upper: edges[i+1], Count: int(counts[i])}
	}
	return out
}
