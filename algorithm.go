package balltree

import "fmt"

// Algorithm selects the index structure built by Build.
type Algorithm string

const (
	AlgorithmBallTree Algorithm = "balltree"
	AlgorithmKDTree   Algorithm = "kdtree"
	AlgorithmLinear   Algorithm = "linear"
)

// ParseAlgorithm converts a name such as "kdtree" into an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(name); a {
	case AlgorithmBallTree, AlgorithmKDTree, AlgorithmLinear:
		return a, nil
	default:
		return "", fmt.Errorf("balltree: invalid Algorithm %q", name)
	}
}

// checkAlgorithm validates that the metric can drive the chosen algorithm.
// Ball trees and linear scans accept any metric; ball tree pruning is only
// exact when the metric satisfies the triangle inequality.
func checkAlgorithm(algo Algorithm, m DistanceMetric) error {
	switch algo {
	case AlgorithmKDTree:
		if !KDTreeValidMetric(m) {
			return fmt.Errorf("%w: %T is not supported by KD-tree algorithms", ErrUnsupportedMetric, m)
		}
	case AlgorithmBallTree, AlgorithmLinear:
	default:
		return fmt.Errorf("balltree: invalid Algorithm %q", algo)
	}
	return nil
}
