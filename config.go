package balltree

import (
	"fmt"
	"log/slog"
)

// DefaultLeafSize is the leaf size used when Config.LeafSize is zero.
const DefaultLeafSize = 16

// Config controls which index Build constructs.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Algorithm selects the index structure. Default: AlgorithmBallTree.
	Algorithm Algorithm

	// LeafSize controls the maximum number of points in a tree leaf node.
	// Smaller leaves mean deeper trees and tighter bounds; larger leaves
	// mean more brute-force work per visited leaf. Ignored by
	// AlgorithmLinear. Must be >= 1. Default: 16.
	LeafSize int

	// Metric is the distance function used to measure point similarity.
	// Built-in: EuclideanMetric, ManhattanMetric, ChebyshevMetric,
	// MinkowskiMetric. Use DistanceFunc to wrap a custom function.
	// Default: EuclideanMetric.
	Metric DistanceMetric

	// Logger receives a debug record for each built index.
	// Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Algorithm: AlgorithmBallTree,
		LeafSize:  DefaultLeafSize,
		Metric:    EuclideanMetric{},
		Logger:    slog.Default(),
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmBallTree
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = DefaultLeafSize
	}
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.LeafSize < 1 {
		return fmt.Errorf("balltree: LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	if mm, ok := cfg.Metric.(MinkowskiMetric); ok && !(mm.P >= 1) {
		return fmt.Errorf("balltree: MinkowskiMetric P must be >= 1, got %v", mm.P)
	}
	return checkAlgorithm(cfg.Algorithm, cfg.Metric)
}

// Build constructs the index selected by cfg over flat row-major data with
// n points of dimensionality dims.
func Build(data []float64, n, dims int, cfg Config) (NearestNeighbour, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	var (
		index NearestNeighbour
		nodes int
		err   error
	)
	switch cfg.Algorithm {
	case AlgorithmKDTree:
		var t *KDTree
		if t, err = NewKDTree(data, n, dims, cfg.Metric, cfg.LeafSize); err == nil {
			index, nodes = t, t.NumNodes()
		}
	case AlgorithmLinear:
		var s *LinearSearch
		if s, err = NewLinearSearch(data, n, dims, cfg.Metric); err == nil {
			index = s
		}
	default:
		var t *BallTree
		if t, err = NewBallTree(data, n, dims, cfg.Metric, cfg.LeafSize); err == nil {
			index, nodes = t, t.NumNodes()
		}
	}
	if err != nil {
		return nil, err
	}

	cfg.Logger.Debug("built nearest-neighbour index",
		slog.String("algorithm", string(cfg.Algorithm)),
		slog.String("metric", fmt.Sprintf("%T", cfg.Metric)),
		slog.Int("points", n),
		slog.Int("dims", dims),
		slog.Int("leaf_size", cfg.LeafSize),
		slog.Int("nodes", nodes))
	return index, nil
}
