// Package analytics wraps gonum and muesli/kmeans for the profile
// clustering pipeline. Matrices are row-major [][]float64, one row per
// observation.
package analytics

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrEmptyInput = errors.New("analytics: empty input")

// Column copies column j out of x.
func Column(x [][]float64, j int) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i][j]
	}
	return out
}

func dims(x [][]float64) (rows, cols int, err error) {
	if len(x) == 0 || len(x[0]) == 0 {
		return 0, 0, ErrEmptyInput
	}
	cols = len(x[0])
	for i, row := range x {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("analytics: row %d has %d columns, want %d", i, len(row), cols)
		}
	}
	return len(x), cols, nil
}

// Standardize centres every column and divides by its population standard
// deviation. Columns with zero variance become all zeros.
func Standardize(x [][]float64) ([][]float64, error) {
	rows, cols, err := dims(x)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	for j := 0; j < cols; j++ {
		col := Column(x, j)
		mean, std := stat.PopMeanStdDev(col, nil)
		for i := range col {
			if std == 0 {
				continue
			}
			out[i][j] = (col[i] - mean) / std
		}
	}
	return out, nil
}

// MinMax rescales every column to [0, 1]. Constant columns become zeros.
func MinMax(x [][]float64) ([][]float64, error) {
	rows, cols, err := dims(x)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	for j := 0; j < cols; j++ {
		col := Column(x, j)
		lo, hi := floats.Min(col), floats.Max(col)
		if hi == lo {
			continue
		}
		for i := range col {
			out[i][j] = (col[i] - lo) / (hi - lo)
		}
	}
	return out, nil
}

func ColumnMeans(x [][]float64) ([]float64, error) {
	_, cols, err := dims(x)
	if err != nil {
		return nil, err
	}
	out := make([]float64, cols)
	for j := range out {
		out[j] = stat.Mean(Column(x, j), nil)
	}
	return out, nil
}

// GroupMeans averages the rows of x per label. Empty groups yield zero vectors.
func GroupMeans(x [][]float64, labels []int, k int) ([][]float64, error) {
	rows, cols, err := dims(x)
	if err != nil {
		return nil, err
	}
	if len(labels) != rows {
		return nil, fmt.Errorf("analytics: %d labels for %d rows", len(labels), rows)
	}

	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, cols)
	}
	for i, label := range labels {
		if label < 0 || label >= k {
			return nil, fmt.Errorf("analytics: label %d out of range [0,%d)", label, k)
		}
		floats.Add(sums[label], x[i])
		counts[label]++
	}
	for c := range sums {
		if counts[c] > 0 {
			floats.Scale(1/float64(counts[c]), sums[c])
		}
	}
	return sums, nil
}
