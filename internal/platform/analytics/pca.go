package analytics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type PCAResult struct {
	// Projections holds one row per observation, one column per component.
	Projections [][]float64
	// Loadings holds one row per input feature, one column per component.
	Loadings          [][]float64
	ExplainedVariance []float64
	// ExplainedRatio is each component's share of the total variance.
	ExplainedRatio []float64
}

// PCA projects x onto its first components principal axes. Component signs
// are fixed so the largest absolute loading of each axis is positive.
func PCA(x [][]float64, components int) (PCAResult, error) {
	rows, cols, err := dims(x)
	if err != nil {
		return PCAResult{}, err
	}
	if components < 1 || components > cols || components > rows {
		return PCAResult{}, fmt.Errorf("analytics: %d components out of range for %dx%d input", components, rows, cols)
	}

	data := mat.NewDense(rows, cols, nil)
	for i, row := range x {
		data.SetRow(i, row)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return PCAResult{}, errors.New("analytics: principal component decomposition failed")
	}

	var vectors mat.Dense
	pc.VectorsTo(&vectors)
	vars := pc.VarsTo(nil)

	basis := mat.DenseCopyOf(vectors.Slice(0, cols, 0, components))
	for c := 0; c < components; c++ {
		maxAbs, sign := 0.0, 1.0
		for f := 0; f < cols; f++ {
			if v := basis.At(f, c); math.Abs(v) > maxAbs {
				maxAbs = math.Abs(v)
				sign = math.Copysign(1, v)
			}
		}
		if sign < 0 {
			for f := 0; f < cols; f++ {
				basis.Set(f, c, -basis.At(f, c))
			}
		}
	}

	centered := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		col := Column(x, j)
		mean := stat.Mean(col, nil)
		for i := range col {
			centered.Set(i, j, col[i]-mean)
		}
	}

	var proj mat.Dense
	proj.Mul(centered, basis)

	total := 0.0
	for _, v := range vars {
		total += v
	}

	result := PCAResult{
		Projections:       denseRows(&proj),
		Loadings:          denseRows(basis),
		ExplainedVariance: append([]float64(nil), vars[:components]...),
		ExplainedRatio:    make([]float64, components),
	}
	for c := 0; c < components; c++ {
		if total > 0 {
			result.ExplainedRatio[c] = vars[c] / total
		}
	}
	return result, nil
}

func denseRows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		out[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}
