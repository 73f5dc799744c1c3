package analytics

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

const DefaultRestarts = 10

type KMeansResult struct {
	K int
	// Labels holds the cluster of each observation. Cluster 0 is the largest.
	Labels    []int
	Centroids [][]float64
	Sizes     []int
	// Inertia is the sum of squared distances to the assigned centroid.
	Inertia float64
}

// KMeans partitions x into k clusters. Clusters are relabelled by descending
// size (ties by first member) and the partition with the lowest inertia over
// restarts runs wins; equal-inertia partitions resolve to the smallest label
// vector. kmeans reseeds math/rand from the clock on every run, so this is
// what keeps repeated calls on the same data in agreement.
func KMeans(x [][]float64, k, restarts int) (KMeansResult, error) {
	rows, _, err := dims(x)
	if err != nil {
		return KMeansResult{}, err
	}
	if k < 1 || k > rows {
		return KMeansResult{}, fmt.Errorf("analytics: k=%d out of range for %d observations", k, rows)
	}
	if restarts < 1 {
		restarts = 1
	}

	dataset := unitBox(x)

	km := kmeans.New()
	var (
		best     []int
		bestCost = math.Inf(1)
		lastErr  error
	)
	for run := 0; run < restarts; run++ {
		cc, err := km.Partition(dataset, k)
		if err != nil {
			lastErr = err
			continue
		}
		labels := make([]int, rows)
		for i, obs := range dataset {
			labels[i] = cc.Nearest(obs)
		}
		labels = relabel(labels, k)
		cost := inertia(x, labels, k)
		switch {
		case cost < bestCost-costTolerance(bestCost):
			best, bestCost = labels, cost
		case cost <= bestCost+costTolerance(bestCost) && slices.Compare(labels, best) < 0:
			best = labels
		}
	}
	if best == nil {
		if lastErr == nil {
			lastErr = errors.New("no partition produced")
		}
		return KMeansResult{}, fmt.Errorf("analytics: k-means: %w", lastErr)
	}

	labels := best
	centroids, err := GroupMeans(x, labels, k)
	if err != nil {
		return KMeansResult{}, err
	}
	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}
	return KMeansResult{
		K:         k,
		Labels:    labels,
		Centroids: centroids,
		Sizes:     sizes,
		Inertia:   inertia(x, labels, k),
	}, nil
}

// unitBox maps x into [0,1] with one shared offset and scale, which keeps
// the partition unchanged while matching the range kmeans seeds centres in.
func unitBox(x [][]float64) clusters.Observations {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range x {
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	out := make(clusters.Observations, len(x))
	for i, row := range x {
		coords := make(clusters.Coordinates, len(row))
		for j, v := range row {
			coords[j] = (v - lo) / span
		}
		out[i] = coords
	}
	return out
}

func costTolerance(cost float64) float64 {
	if math.IsInf(cost, 0) {
		return 0
	}
	return 1e-9 * math.Max(1, cost)
}

func inertia(x [][]float64, labels []int, k int) float64 {
	centroids, err := GroupMeans(x, labels, k)
	if err != nil {
		return math.Inf(1)
	}
	total := 0.0
	for i, row := range x {
		total += squaredDistance(row, centroids[labels[i]])
	}
	return total
}

func relabel(labels []int, k int) []int {
	type group struct {
		old   int
		size  int
		first int
	}
	stats := make([]group, k)
	for c := range stats {
		stats[c] = group{old: c, first: len(labels)}
	}
	for i, l := range labels {
		stats[l].size++
		if i < stats[l].first {
			stats[l].first = i
		}
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].size != stats[j].size {
			return stats[i].size > stats[j].size
		}
		return stats[i].first < stats[j].first
	})

	mapping := make([]int, k)
	for newLabel, s := range stats {
		mapping[s.old] = newLabel
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		out[i] = mapping[l]
	}
	return out
}

func squaredDistance(a, b []float64) float64 {
	total := 0.0
	for i := range a {
		d := a[i] - b[i]
		total += d * d
	}
	return total
}

// ElbowPoint is the inertia of the best partition for one k.
type ElbowPoint struct {
	K       int
	Inertia float64
}

// Elbow runs KMeans for every k in [kMin, kMax], skipping values larger than
// the number of observations.
func Elbow(x [][]float64, kMin, kMax, restarts int) ([]ElbowPoint, error) {
	if kMin < 1 || kMax < kMin {
		return nil, fmt.Errorf("analytics: invalid elbow range [%d,%d]", kMin, kMax)
	}
	out := make([]ElbowPoint, 0, kMax-kMin+1)
	for k := kMin; k <= kMax && k <= len(x); k++ {
		res, err := KMeans(x, k, restarts)
		if err != nil {
			return nil, err
		}
		out = append(out, ElbowPoint{K: k, Inertia: res.Inertia})
	}
	return out, nil
}

// Silhouette is the mean silhouette coefficient over every observation, using
// Euclidean distance. Observations in singleton clusters score 0. It returns 0
// when fewer than two clusters are populated.
func Silhouette(x [][]float64, labels []int) (float64, error) {
	rows, _, err := dims(x)
	if err != nil {
		return 0, err
	}
	if len(labels) != rows {
		return 0, fmt.Errorf("analytics: %d labels for %d rows", len(labels), rows)
	}

	k := 0
	for _, l := range labels {
		if l+1 > k {
			k = l + 1
		}
	}
	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}
	populated := 0
	for _, s := range sizes {
		if s > 0 {
			populated++
		}
	}
	if populated < 2 {
		return 0, nil
	}

	total := 0.0
	sums := make([]float64, k)
	for i := range x {
		for c := range sums {
			sums[c] = 0
		}
		for j := range x {
			if i == j {
				continue
			}
			sums[labels[j]] += math.Sqrt(squaredDistance(x[i], x[j]))
		}

		own := labels[i]
		if sizes[own] <= 1 {
			continue
		}
		a := sums[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for c := range sums {
			if c == own || sizes[c] == 0 {
				continue
			}
			b = math.Min(b, sums[c]/float64(sizes[c]))
		}
		if denom := math.Max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(rows), nil
}
