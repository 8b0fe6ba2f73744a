package balltree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type nodeKind uint8

const (
	leafNode nodeKind = iota
	branchNode
)

// node is one entry of the ball tree's node table.
type node struct {
	kind   nodeKind
	center []float64 // leaf: owned centroid; branch: view of the split median
	radius float64
	// point range in idxArray
	start, end int
	// child node ids, branch only
	left, right int
}

// BallTree is a ball tree spatial index for k-nearest-neighbor and range
// queries. Each node stores a center and a radius defining a ball that
// contains all of its points.
//
// Leaves are centered on the centroid of their points. Branches are centered
// on the median point chosen when the node was split, and their radius
// covers every point under both children.
//
// The tree is immutable after construction and safe for concurrent queries.
type BallTree struct {
	data     []float64 // flat row-major point data (n * dims), caller-owned
	n        int       // number of points
	dims     int       // dimensionality
	leafSize int
	metric   DistanceMetric
	idxArray []int  // permutation: tree-order position → original index
	nodes    []node // node 0 is the root
}

// NewBallTree builds a ball tree over flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node and is
// clamped to at least 1; a nil metric means EuclideanMetric.
//
// The tree keeps views into data rather than copying it, so data must not
// be modified while the tree is in use.
//
// Returns ErrZeroDimension if dims is 0 and ErrShape if data does not hold
// n*dims values. An empty batch (n == 0) yields an empty tree. Panics if a
// coordinate compared while splitting is NaN.
func NewBallTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) (*BallTree, error) {
	if err := checkShape(data, n, dims); err != nil {
		return nil, err
	}
	if metric == nil {
		metric = EuclideanMetric{}
	}
	if leafSize < 1 {
		leafSize = 1
	}

	t := &BallTree{
		data:     data,
		n:        n,
		dims:     dims,
		leafSize: leafSize,
		metric:   metric,
		idxArray: identityPermutation(n),
		nodes:    make([]node, 0, 2*(n/leafSize)+1),
	}
	t.buildNode(0, n)
	return t, nil
}

// NewBallTreeDense builds a ball tree over the rows of m. When m is
// contiguous the tree views m's backing array; otherwise the rows are
// copied once.
func NewBallTreeDense(m *mat.Dense, metric DistanceMetric, leafSize int) (*BallTree, error) {
	raw := m.RawMatrix()
	var data []float64
	if raw.Stride == raw.Cols {
		data = raw.Data[:raw.Rows*raw.Cols]
	} else {
		data = make([]float64, raw.Rows*raw.Cols)
		for i := 0; i < raw.Rows; i++ {
			copy(data[i*raw.Cols:], raw.Data[i*raw.Stride:i*raw.Stride+raw.Cols])
		}
	}
	return NewBallTree(data, raw.Rows, raw.Cols, metric, leafSize)
}

// buildNode recursively builds the subtree for points in idxArray[start:end]
// and returns its node id.
func (t *BallTree) buildNode(start, end int) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, node{start: start, end: end, left: -1, right: -1})

	if end-start <= t.leafSize {
		center := t.centroid(start, end)
		t.nodes[id].kind = leafNode
		t.nodes[id].center = center
		t.nodes[id].radius = t.maxDistance(center, start, end)
		return id
	}

	split, median := partition(t.data, t.dims, t.idxArray[start:end])
	center := t.point(median)
	radius := t.maxDistance(center, start, end)

	left := t.buildNode(start, start+split)
	right := t.buildNode(start+split, end)

	t.nodes[id] = node{
		kind:   branchNode,
		center: center,
		radius: radius,
		start:  start,
		end:    end,
		left:   left,
		right:  right,
	}
	return id
}

// centroid returns the mean of points idxArray[start:end], or the zero
// vector for an empty range.
func (t *BallTree) centroid(start, end int) []float64 {
	c := make([]float64, t.dims)
	if end == start {
		return c
	}
	for i := start; i < end; i++ {
		floats.Add(c, t.point(t.idxArray[i]))
	}
	floats.Scale(1/float64(end-start), c)
	return c
}

// maxDistance returns the largest distance from center to any point in
// idxArray[start:end], or 0 for an empty range.
func (t *BallTree) maxDistance(center []float64, start, end int) float64 {
	var radius float64
	for i := start; i < end; i++ {
		if d := t.metric.Distance(center, t.point(t.idxArray[i])); d > radius {
			radius = d
		}
	}
	return radius
}

func (t *BallTree) point(i int) []float64 { return rowView(t.data, t.dims, i) }

// --- accessors ---

// Len returns the number of indexed points.
func (t *BallTree) Len() int { return t.n }

// Dims returns the dimensionality of the indexed points.
func (t *BallTree) Dims() int { return t.dims }

// LeafSize returns the effective leaf size used during construction.
func (t *BallTree) LeafSize() int { return t.leafSize }

// Metric returns the distance metric of the tree.
func (t *BallTree) Metric() DistanceMetric { return t.metric }

// Point returns a view of the i-th point of the batch.
func (t *BallTree) Point(i int) []float64 { return t.point(i) }

// IdxArray returns the permutation array mapping tree-order positions back
// to original point indices.
func (t *BallTree) IdxArray() []int { return t.idxArray }

// NumNodes returns the total number of nodes (internal + leaf) in the tree.
func (t *BallTree) NumNodes() int { return len(t.nodes) }

// Depth returns the number of levels in the tree; a single leaf has depth 1.
func (t *BallTree) Depth() int { return t.depth(0) }

func (t *BallTree) depth(id int) int {
	nd := &t.nodes[id]
	if nd.kind == leafNode {
		return 1
	}
	return 1 + max(t.depth(nd.left), t.depth(nd.right))
}

// NodeDataArray returns the metadata for every node in the tree, indexed by
// node id. Node 0 is the root.
func (t *BallTree) NodeDataArray() []NodeData {
	out := make([]NodeData, len(t.nodes))
	for i, nd := range t.nodes {
		out[i] = NodeData{
			IdxStart: nd.start,
			IdxEnd:   nd.end,
			IsLeaf:   nd.kind == leafNode,
			Radius:   nd.radius,
			Center:   nd.center,
			Left:     nd.left,
			Right:    nd.right,
		}
	}
	return out
}

// --- queries ---

// KNearest returns up to k points closest to point, nearest first.
func (t *BallTree) KNearest(point []float64, k int) ([][]float64, error) {
	nbrs, err := t.KNearestNeighbors(point, k)
	if err != nil {
		return nil, err
	}
	return neighborPoints(nbrs), nil
}

// KNearestNeighbors returns up to k neighbors of point, nearest first.
func (t *BallTree) KNearestNeighbors(point []float64, k int) ([]Neighbor, error) {
	return t.search(point, k, math.Inf(1))
}

// WithinRange returns every point whose distance to point is at most
// radius, nearest first.
func (t *BallTree) WithinRange(point []float64, radius float64) ([][]float64, error) {
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
func (t *BallTree) WithinRangeNeighbors(point []float64, radius float64) ([]Neighbor, error) {
	nbrs, err := t.search(point, t.n, rangeCutoff(t.metric, radius))
	if err != nil {
		return nil, err
	}
	return withinRadius(nbrs, radius), nil
}

// QueryKNN finds the k nearest neighbors for each row in queryData.
// queryData is flat row-major with queryRows rows. Returns per-query neighbor
// indices and real distances, both sorted by distance.
func (t *BallTree) QueryKNN(queryData []float64, queryRows, k int) ([][]int, [][]float64, error) {
	if len(queryData) != queryRows*t.dims {
		return nil, nil, fmt.Errorf("%w: len(queryData)=%d, want %d*%d", ErrShape, len(queryData), queryRows, t.dims)
	}

	indices := make([][]int, queryRows)
	distances := make([][]float64, queryRows)
	for q := 0; q < queryRows; q++ {
		nbrs, err := t.KNearestNeighbors(rowView(queryData, t.dims, q), k)
		if err != nil {
			return nil, nil, err
		}
		idx := make([]int, len(nbrs))
		dist := make([]float64, len(nbrs))
		for i, nb := range nbrs {
			idx[i] = nb.Index
			dist[i] = nb.Distance
		}
		indices[q] = idx
		distances[q] = dist
	}
	return indices, distances, nil
}

var _ NearestNeighbour = (*BallTree)(nil)
