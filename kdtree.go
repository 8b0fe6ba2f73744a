package balltree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// KDTree is a KD-tree spatial index for nearest-neighbor and range queries.
// Points are stored in a flat row-major array and reordered internally via
// an index permutation array; each node keeps the axis-aligned bounding box
// of its points.
//
// KD-trees need a metric that decomposes along coordinate axes, see
// KDTreeValidMetric.
type KDTree struct {
	data     []float64 // flat row-major point data (n * dims), caller-owned
	n        int       // number of points
	dims     int       // dimensionality
	leafSize int
	metric   DistanceMetric
	idxArray []int      // permutation: tree-order position → original index
	nodes    []NodeData // one entry per tree node; node 0 is the root
	// nodeBoundsMin[node*dims + j] = min value of feature j in node
	nodeBoundsMin []float64
	// nodeBoundsMax[node*dims + j] = max value of feature j in node
	nodeBoundsMax []float64
}

// KDTreeValidMetric reports whether the metric supports KD-tree acceleration.
// KD-trees require metrics that decompose along coordinate axes:
// Euclidean, Manhattan, Chebyshev, Minkowski.
func KDTreeValidMetric(m DistanceMetric) bool {
	switch m.(type) {
	case EuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	default:
		return false
	}
}

// NewKDTree builds a KD-tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node; a nil
// metric means EuclideanMetric. Like NewBallTree it views data without
// copying and panics on NaN coordinates.
func NewKDTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) (*KDTree, error) {
	if err := checkShape(data, n, dims); err != nil {
		return nil, err
	}
	if metric == nil {
		metric = EuclideanMetric{}
	}
	if !KDTreeValidMetric(metric) {
		return nil, fmt.Errorf("%w: %T is not supported by KD-trees", ErrUnsupportedMetric, metric)
	}
	if leafSize < 1 {
		leafSize = 1
	}

	t := &KDTree{
		data:     data,
		n:        n,
		dims:     dims,
		leafSize: leafSize,
		metric:   metric,
		idxArray: identityPermutation(n),
	}
	if n > 0 {
		t.buildNode(0, n)
	}
	return t, nil
}

// buildNode recursively builds the tree for points in idxArray[start:end]
// and returns the node id.
func (t *KDTree) buildNode(start, end int) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, NodeData{IdxStart: start, IdxEnd: end, IsLeaf: true, Left: -1, Right: -1})
	t.nodeBoundsMin = append(t.nodeBoundsMin, make([]float64, t.dims)...)
	t.nodeBoundsMax = append(t.nodeBoundsMax, make([]float64, t.dims)...)
	t.computeNodeBounds(id, start, end)

	count := end - start
	if count <= t.leafSize {
		return id
	}

	// Find dimension with greatest spread.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		spread := t.nodeBoundsMax[id*t.dims+d] - t.nodeBoundsMin[id*t.dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	// Place the median at mid; everything before it is <= and after it >=.
	mid := count / 2
	kdtree.Select(dimPlane{idx: t.idxArray[start:end], data: t.data, dims: t.dims, dim: splitDim}, mid)

	left := t.buildNode(start, start+mid)
	right := t.buildNode(start+mid, end)
	t.nodes[id].IsLeaf = false
	t.nodes[id].Left = left
	t.nodes[id].Right = right
	return id
}

// computeNodeBounds computes min/max per dimension for points idxArray[start:end].
func (t *KDTree) computeNodeBounds(id, start, end int) {
	base := id * t.dims
	for d := 0; d < t.dims; d++ {
		t.nodeBoundsMin[base+d] = math.Inf(1)
		t.nodeBoundsMax[base+d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		ptIdx := t.idxArray[i]
		for d := 0; d < t.dims; d++ {
			v := t.data[ptIdx*t.dims+d]
			if math.IsNaN(v) {
				panic(fmt.Sprintf("balltree: NaN in coordinate %d of point %d", d, ptIdx))
			}
			t.nodeBoundsMin[base+d] = min(t.nodeBoundsMin[base+d], v)
			t.nodeBoundsMax[base+d] = max(t.nodeBoundsMax[base+d], v)
		}
	}
}

func (t *KDTree) point(i int) []float64 { return rowView(t.data, t.dims, i) }

// Len returns the number of indexed points.
func (t *KDTree) Len() int { return t.n }

// Dims returns the dimensionality of the indexed points.
func (t *KDTree) Dims() int { return t.dims }

// NumNodes returns the total number of nodes (internal + leaf) in the tree.
func (t *KDTree) NumNodes() int { return len(t.nodes) }

// IdxArray returns the permutation array mapping tree-order positions back
// to original point indices.
func (t *KDTree) IdxArray() []int { return t.idxArray }

// NodeDataArray returns the metadata for every node in the tree.
func (t *KDTree) NodeDataArray() []NodeData { return t.nodes }

// KNearest returns up to k points closest to point, nearest first.
func (t *KDTree) KNearest(point []float64, k int) ([][]float64, error) {
	nbrs, err := t.KNearestNeighbors(point, k)
	if err != nil {
		return nil, err
	}
	return neighborPoints(nbrs), nil
}

// KNearestNeighbors returns up to k neighbors of point, nearest first.
func (t *KDTree) KNearestNeighbors(point []float64, k int) ([]Neighbor, error) {
	return t.search(point, k, math.Inf(1))
}

// WithinRange returns every point whose distance to point is at most
// radius, nearest first.
func (t *KDTree) WithinRange(point []float64, radius float64) ([][]float64, error) {
	nbrs, err := t.WithinRangeNeighbors(point, radius)
	if err != nil {
		return nil, err
	}
	return neighborPoints(nbrs), nil
}

// WithinRangeNeighbors returns every neighbor within radius of point,
// nearest first. The bound is inclusive and applies to the distance
// reported in Neighbor.Distance, so a radius taken from an earlier result
// includes that neighbor. A negative or NaN radius matches nothing.
func (t *KDTree) WithinRangeNeighbors(point []float64, radius float64) ([]Neighbor, error) {
	nbrs, err := t.search(point, t.n, rangeCutoff(t.metric, radius))
	if err != nil {
		return nil, err
	}
	return withinRadius(nbrs, radius), nil
}

func (t *KDTree) search(query []float64, k int, maxRdist float64) ([]Neighbor, error) {
	if err := checkQuery(query, t.dims); err != nil {
		return nil, err
	}
	if t.n == 0 || k <= 0 || !(maxRdist >= 0) {
		return []Neighbor{}, nil
	}

	h := &knnHeap{}
	t.knnSearch(0, query, k, maxRdist, h)

	items := h.drain()
	nbrs := make([]Neighbor, len(items))
	for i, it := range items {
		nbrs[i] = Neighbor{Index: it.index, Point: t.point(it.index), Distance: t.metric.RdistToDist(it.dist)}
	}
	return nbrs, nil
}

// knnSearch performs a depth-first traversal using a max-heap of size k,
// visiting the nearer child first.
func (t *KDTree) knnSearch(id int, query []float64, k int, maxRdist float64, h *knnHeap) {
	node := t.nodes[id]
	if node.IsLeaf {
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			ptIdx := t.idxArray[i]
			d := t.metric.ReducedDistance(query, t.point(ptIdx))
			if d <= maxRdist {
				h.offer(knnItem{index: ptIdx, dist: d}, k)
			}
		}
		return
	}

	leftRdist := t.minRdistPoint(node.Left, query)
	rightRdist := t.minRdistPoint(node.Right, query)

	nearChild, farChild := node.Left, node.Right
	nearRdist, farRdist := leftRdist, rightRdist
	if rightRdist < leftRdist {
		nearChild, farChild = node.Right, node.Left
		nearRdist, farRdist = rightRdist, leftRdist
	}

	if t.worthVisiting(nearRdist, k, maxRdist, h) {
		t.knnSearch(nearChild, query, k, maxRdist, h)
	}
	// Prune far child if its lower bound cannot improve the result.
	if t.worthVisiting(farRdist, k, maxRdist, h) {
		t.knnSearch(farChild, query, k, maxRdist, h)
	}
}

func (t *KDTree) worthVisiting(rdist float64, k int, maxRdist float64, h *knnHeap) bool {
	if rdist > maxRdist {
		return false
	}
	return !h.full(k) || rdist < h.worst()
}

// minRdistPoint returns a lower bound in reduced-distance space on the
// distance between a point and any point in the node's bounding box.
func (t *KDTree) minRdistPoint(id int, point []float64) float64 {
	base := id * t.dims
	gap := func(j int) float64 {
		if lo := t.nodeBoundsMin[base+j]; point[j] < lo {
			return lo - point[j]
		}
		if hi := t.nodeBoundsMax[base+j]; point[j] > hi {
			return point[j] - hi
		}
		return 0
	}

	var rdist float64
	switch m := t.metric.(type) {
	case ChebyshevMetric:
		for j := 0; j < t.dims; j++ {
			rdist = max(rdist, gap(j))
		}
	case ManhattanMetric:
		for j := 0; j < t.dims; j++ {
			rdist += gap(j)
		}
	case MinkowskiMetric:
		for j := 0; j < t.dims; j++ {
			rdist += math.Pow(gap(j), m.P)
		}
	default:
		// Euclidean: sum of squared per-dim gaps (reduced distance).
		for j := 0; j < t.dims; j++ {
			d := gap(j)
			rdist += d * d
		}
	}
	return rdist
}

var _ NearestNeighbour = (*KDTree)(nil)
