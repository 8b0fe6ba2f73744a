package balltree

import (
	"math"
	"sort"
)

// LinearSearch answers queries by scanning every point. It has no build
// cost and serves as the reference the tree indexes are checked against.
type LinearSearch struct {
	data   []float64
	n      int
	dims   int
	metric DistanceMetric
}

// NewLinearSearch wraps flat row-major data with n points of dimensionality
// dims. The data is viewed, not copied; a nil metric means EuclideanMetric.
func NewLinearSearch(data []float64, n, dims int, metric DistanceMetric) (*LinearSearch, error) {
	if err := checkShape(data, n, dims); err != nil {
		return nil, err
	}
	if metric == nil {
		metric = EuclideanMetric{}
	}
	return &LinearSearch{data: data, n: n, dims: dims, metric: metric}, nil
}

// Len returns the number of indexed points.
func (s *LinearSearch) Len() int { return s.n }

// Dims returns the dimensionality of the indexed points.
func (s *LinearSearch) Dims() int { return s.dims }

// KNearest returns up to k points closest to point, nearest first.
func (s *LinearSearch) KNearest(point []float64, k int) ([][]float64, error) {
	nbrs, err := s.KNearestNeighbors(point, k)
	if err != nil {
		return nil, err
	}
	return neighborPoints(nbrs), nil
}

// KNearestNeighbors returns up to k neighbors of point, nearest first.
// Equidistant points keep their batch order.
func (s *LinearSearch) KNearestNeighbors(point []float64, k int) ([]Neighbor, error) {
	return s.scan(point, k, math.Inf(1))
}

// WithinRange returns every point whose distance to point is at most
// radius, nearest first.
func (s *LinearSearch) WithinRange(point []float64, radius float64) ([][]float64, error) {
	nbrs, err := s.WithinRangeNeighbors(point, radius)
	if err != nil {
		return nil, err
	}
	return neighborPoints(nbrs), nil
}

// WithinRangeNeighbors returns every neighbor within radius of point,
// nearest first. The bound is inclusive and applies to the distance
// reported in Neighbor.Distance, so a radius taken from an earlier result
// includes that neighbor. A negative or NaN radius matches nothing.
func (s *LinearSearch) WithinRangeNeighbors(point []float64, radius float64) ([]Neighbor, error) {
	nbrs, err := s.scan(point, s.n, rangeCutoff(s.metric, radius))
	if err != nil {
		return nil, err
	}
	return withinRadius(nbrs, radius), nil
}

func (s *LinearSearch) scan(query []float64, k int, maxRdist float64) ([]Neighbor, error) {
	if err := checkQuery(query, s.dims); err != nil {
		return nil, err
	}
	if s.n == 0 || k <= 0 || !(maxRdist >= 0) {
		return []Neighbor{}, nil
	}

	all := make([]knnItem, 0, s.n)
	for i := 0; i < s.n; i++ {
		if d := s.metric.ReducedDistance(query, rowView(s.data, s.dims, i)); d <= maxRdist {
			all = append(all, knnItem{index: i, dist: d})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].dist < all[j].dist })
	if k < len(all) {
		all = all[:k]
	}

	nbrs := make([]Neighbor, len(all))
	for i, it := range all {
		nbrs[i] = Neighbor{Index: it.index, Point: rowView(s.data, s.dims, it.index), Distance: s.metric.RdistToDist(it.dist)}
	}
	return nbrs, nil
}

var _ NearestNeighbour = (*LinearSearch)(nil)
