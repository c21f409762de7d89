package retrieval

import (
	"cmp"
	"slices"
)

// Neighbor is one k-NN hit: the position of the stored vector and its squared L2 distance.
type Neighbor struct {
	Position int
	Distance float32
}

// FlatIndex is an exact nearest-neighbour index over fixed-length vectors.
// It is populated once by newFlatIndex and never mutated afterwards, so Search
// is safe for concurrent use without locking.
type FlatIndex struct {
	dim     int
	vectors [][]float32
	norms   []float64
}

func newFlatIndex(dim int, vectors [][]float32) (*FlatIndex, error) {
	if dim <= 0 {
		return nil, &IndexBuildError{Reason: "vector dimension must be positive"}
	}
	idx := &FlatIndex{
		dim:     dim,
		vectors: make([][]float32, len(vectors)),
		norms:   make([]float64, len(vectors)),
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, &IndexBuildError{Reason: "vector dimension mismatch"}
		}
		idx.vectors[i] = slices.Clone(v)
		idx.norms[i] = dot(v, v)
	}
	return idx, nil
}

// Len returns the number of stored vectors.
func (f *FlatIndex) Len() int { return len(f.vectors) }

// Dimension returns the vector length accepted by Search.
func (f *FlatIndex) Dimension() int { return f.dim }

// Search returns the k nearest stored vectors by squared Euclidean distance,
// nearest first. Equal distances keep ascending position order. k is clamped
// to [0, Len()].
func (f *FlatIndex) Search(query []float32, k int) []Neighbor {
	if k > len(f.vectors) {
		k = len(f.vectors)
	}
	if k <= 0 {
		return nil
	}

	qn := dot(query, query)
	all := make([]Neighbor, len(f.vectors))
	for i, v := range f.vectors {
		// ||q-v||^2 expanded; clamp tiny negatives from rounding.
		d := qn + f.norms[i] - 2*dot(query, v)
		if d < 0 {
			d = 0
		}
		all[i] = Neighbor{Position: i, Distance: float32(d)}
	}

	slices.SortStableFunc(all, func(a, b Neighbor) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})
	return all[:k]
}

func dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
