package balltree

import (
	"fmt"
	"math"
)

// Neighbor is a single query result.
type Neighbor struct {
	// Index is the row of the point in the batch the index was built from.
	Index int
	// Point is a view into the index's backing data, not a copy.
	Point []float64
	// Distance is the real (not reduced) distance to the query point.
	Distance float64
}

// NodeData describes a single node in a spatial tree.
type NodeData struct {
	IdxStart, IdxEnd int
	IsLeaf           bool
	Radius           float64   // ball tree radius; 0 for KD-tree
	Center           []float64 // ball tree center; nil for KD-tree
	Left, Right      int       // child node ids; -1 for leaves
}

// NearestNeighbour is the query interface shared by BallTree, KDTree and
// LinearSearch. Results are ordered by ascending distance; the order of
// equidistant points is unspecified.
type NearestNeighbour interface {
	// KNearest returns up to k points closest to point.
	KNearest(point []float64, k int) ([][]float64, error)

	// WithinRange returns every point whose distance to point is <= radius.
	WithinRange(point []float64, radius float64) ([][]float64, error)

	// KNearestNeighbors is KNearest with row indices and distances.
	KNearestNeighbors(point []float64, k int) ([]Neighbor, error)

	// WithinRangeNeighbors is WithinRange with row indices and distances.
	WithinRangeNeighbors(point []float64, radius float64) ([]Neighbor, error)

	// Len returns the number of indexed points.
	Len() int

	// Dims returns the dimensionality of the indexed points.
	Dims() int
}

// checkShape validates flat row-major data holding n points of dims
// coordinates each.
func checkShape(data []float64, n, dims int) error {
	if dims == 0 {
		return ErrZeroDimension
	}
	if dims < 0 || n < 0 {
		return fmt.Errorf("%w: n=%d dims=%d", ErrShape, n, dims)
	}
	if len(data) != n*dims {
		return fmt.Errorf("%w: len(data)=%d, want n*dims=%d", ErrShape, len(data), n*dims)
	}
	return nil
}

func checkQuery(point []float64, dims int) error {
	if len(point) != dims {
		return fmt.Errorf("%w: query has %d dimensions, index has %d", ErrDimensionMismatch, len(point), dims)
	}
	return nil
}

func rowView(data []float64, dims, i int) []float64 {
	return data[i*dims : (i+1)*dims : (i+1)*dims]
}

func identityPermutation(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func neighborPoints(nbrs []Neighbor) [][]float64 {
	pts := make([][]float64, len(nbrs))
	for i, nb := range nbrs {
		pts[i] = nb.Point
	}
	return pts
}

// rangeCutoff converts radius into the reduced-distance bound used while
// searching. The bound is widened by a few ulps so a point whose reported
// distance equals radius is not lost to the conversion round trip;
// withinRadius trims anything the slack lets through. A negative or NaN
// radius gives -Inf, which matches nothing.
func rangeCutoff(m DistanceMetric, radius float64) float64 {
	if !(radius >= 0) {
		return math.Inf(-1)
	}
	r := m.DistToRdist(radius)
	return r + math.Abs(r)*4*0x1p-52
}

// withinRadius truncates ascending neighbors to those reported at most
// radius away.
func withinRadius(nbrs []Neighbor, radius float64) []Neighbor {
	for i, nb := range nbrs {
		if nb.Distance > radius {
			return nbrs[:i]
		}
	}
	return nbrs
}
