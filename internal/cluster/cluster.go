// Package cluster partitions voiceprint vectors into speaker clusters using
// agglomerative hierarchical clustering with a cosine-distance cutoff. The
// cluster count is derived from the data, never supplied.
package cluster

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DefaultThreshold is the default cosine-distance cutoff. Merges stop once
// the closest pair of clusters is at least this far apart. Too low splits
// one speaker into several labels; too high collapses distinct speakers.
const DefaultThreshold = 0.7

// CosineDistance returns 1 - cosine similarity of a and b. It is
// scale-invariant: embedding magnitude carries no speaker information.
func CosineDistance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}

	normA := math.Sqrt(floats.Dot(a, a))
	normB := math.Sqrt(floats.Dot(b, b))
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("cosine distance undefined for zero-norm vector")
	}

	return 1 - floats.Dot(a, b)/(normA*normB), nil
}

// Agglomerative clusters the voiceprints bottom-up with average linkage and
// returns one label per input, in {0 .. K-1}. Labels are numbered by each
// cluster's lowest member index, so identical input always produces
// identical output. The numbering itself is arbitrary and not stable across
// different inputs; only the partition is meaningful.
func Agglomerative(prints [][]float64, threshold float64) ([]int, error) {
	n := len(prints)
	if n == 0 {
		return nil, fmt.Errorf("no voiceprints to cluster")
	}
	if n == 1 {
		return []int{0}, nil
	}

	dist, err := distanceMatrix(prints)
	if err != nil {
		return nil, err
	}

	active := make([]bool, n)
	size := make([]int, n)
	members := make([][]int, n)
	for i := 0; i < n; i++ {
		active[i] = true
		size[i] = 1
		members[i] = []int{i}
	}

	for {
		// Closest active pair; ties go to the lowest index pair so runs
		// are deterministic.
		minDist := math.Inf(1)
		mi, mj := -1, -1
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if dist[i][j] < minDist {
					minDist = dist[i][j]
					mi, mj = i, j
				}
			}
		}

		// Pairs at exactly the threshold stay apart.
		if mi < 0 || minDist >= threshold {
			break
		}

		// Merge mj into mi, keeping the lower index as representative.
		// Average linkage via the Lance-Williams update: the distance from
		// the merged cluster to any other is the size-weighted mean.
		for k := 0; k < n; k++ {
			if !active[k] || k == mi || k == mj {
				continue
			}
			d := (float64(size[mi])*dist[mi][k] + float64(size[mj])*dist[mj][k]) /
				float64(size[mi]+size[mj])
			dist[mi][k] = d
			dist[k][mi] = d
		}
		size[mi] += size[mj]
		members[mi] = append(members[mi], members[mj]...)
		active[mj] = false
	}

	// Representatives are each cluster's lowest member index; number them
	// in ascending order.
	var reps []int
	for i := 0; i < n; i++ {
		if active[i] {
			reps = append(reps, i)
		}
	}
	sort.Ints(reps)

	labels := make([]int, n)
	for label, rep := range reps {
		for _, m := range members[rep] {
			labels[m] = label
		}
	}
	return labels, nil
}

// distanceMatrix computes the symmetric pairwise cosine distance matrix.
func distanceMatrix(prints [][]float64) ([][]float64, error) {
	n := len(prints)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d, err := CosineDistance(prints[i], prints[j])
			if err != nil {
				return nil, fmt.Errorf("voiceprints %d and %d: %w", i, j, err)
			}
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist, nil
}
