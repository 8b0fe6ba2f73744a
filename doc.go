// Package balltree implements spatial indexes that answer k-nearest-neighbor
// and fixed-radius queries over batches of fixed-dimension points.
//
// A ball tree partitions the batch recursively along the dimension of
// greatest spread, splitting at the median found by linear-time selection,
// and wraps every subtree in a bounding ball. Queries run a best-first
// branch-and-bound search: subtrees are visited in order of the distance to
// their ball, and any subtree that cannot beat the candidates already found
// is skipped. Distances are compared in a metric-specific reduced form
// (squared Euclidean distance, for example) and converted back to real
// distances only when results are reported.
//
// Basic usage:
//
//	data := []float64{
//		0, 1,
//		2, 3,
//	}
//	tree, err := balltree.NewBallTree(data, 2, 2, balltree.EuclideanMetric{}, 16)
//	// handle err
//	nearest, err := tree.KNearest([]float64{0, 1}, 1)
//	// nearest[0] is a view of data[0:2]
//	nearby, err := tree.WithinRange([]float64{0, 0}, 5)
//
// Trees hold views into the caller's data rather than copies; the data must
// not change while a tree built over it is in use. A built tree is immutable
// and may be queried from multiple goroutines.
//
// # Index selection
//
// KDTree and LinearSearch implement the same NearestNeighbour interface.
// Build picks one from a Config:
//
//	cfg := balltree.DefaultConfig()
//	cfg.Algorithm = balltree.AlgorithmKDTree
//	index, err := balltree.Build(data, n, dims, cfg)
package balltree
