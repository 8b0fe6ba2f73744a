package balltree

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Algorithm != AlgorithmBallTree {
		t.Errorf("Algorithm = %q, want %q", cfg.Algorithm, AlgorithmBallTree)
	}
	if cfg.LeafSize != DefaultLeafSize {
		t.Errorf("LeafSize = %d, want %d", cfg.LeafSize, DefaultLeafSize)
	}
	if _, ok := cfg.Metric.(EuclideanMetric); !ok {
		t.Errorf("Metric = %T, want EuclideanMetric", cfg.Metric)
	}
	if cfg.Logger == nil {
		t.Error("Logger is nil")
	}
}

func TestApplyDefaults_ZeroConfig(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)
	if cfg.Algorithm != AlgorithmBallTree || cfg.LeafSize != DefaultLeafSize || cfg.Metric == nil || cfg.Logger == nil {
		t.Errorf("zero config not fully defaulted: %+v", cfg)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative leaf size", func(c *Config) { c.LeafSize = -2 }, "LeafSize must be >= 1"},
		{"minkowski p below one", func(c *Config) { c.Metric = MinkowskiMetric{P: 0.5} }, "P must be >= 1"},
		{"unknown algorithm", func(c *Config) { c.Algorithm = "vptree" }, "invalid Algorithm"},
		{
			"kdtree custom metric",
			func(c *Config) {
				c.Algorithm = AlgorithmKDTree
				c.Metric = DistanceFunc(func(a, b []float64) float64 { return 0 })
			},
			"unsupported metric",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := validateConfig(&cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestBuild_EachAlgorithm(t *testing.T) {
	n, dims := 120, 2
	data := randomData(n, dims, 17)
	query := []float64{0.25, 0.75}

	want, err := mustLinear(t, data, n, dims).KNearestNeighbors(query, 5)
	if err != nil {
		t.Fatalf("KNearestNeighbors: %v", err)
	}

	for _, algo := range []Algorithm{AlgorithmBallTree, AlgorithmKDTree, AlgorithmLinear} {
		t.Run(string(algo), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Algorithm = algo
			cfg.LeafSize = 4
			index, err := Build(data, n, dims, cfg)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if index.Len() != n || index.Dims() != dims {
				t.Errorf("index shape = %dx%d, want %dx%d", index.Len(), index.Dims(), n, dims)
			}
			got, err := index.KNearestNeighbors(query, 5)
			if err != nil {
				t.Fatalf("KNearestNeighbors: %v", err)
			}
			if !knnResultsMatch(nil, neighborDistances(got), nil, neighborDistances(want), floatTol) {
				t.Errorf("got %v, want %v", neighborDistances(got), neighborDistances(want))
			}
		})
	}
}

func TestBuild_ConcreteTypes(t *testing.T) {
	data := []float64{0, 0, 1, 1}
	tests := []struct {
		algo Algorithm
		want string
	}{
		{AlgorithmBallTree, "*balltree.BallTree"},
		{AlgorithmKDTree, "*balltree.KDTree"},
		{AlgorithmLinear, "*balltree.LinearSearch"},
	}
	for _, tc := range tests {
		index, err := Build(data, 2, 2, Config{Algorithm: tc.algo})
		if err != nil {
			t.Fatalf("Build(%s): %v", tc.algo, err)
		}
		switch index.(type) {
		case *BallTree:
			if tc.algo != AlgorithmBallTree {
				t.Errorf("Build(%s) returned %T", tc.algo, index)
			}
		case *KDTree:
			if tc.algo != AlgorithmKDTree {
				t.Errorf("Build(%s) returned %T", tc.algo, index)
			}
		case *LinearSearch:
			if tc.algo != AlgorithmLinear {
				t.Errorf("Build(%s) returned %T", tc.algo, index)
			}
		default:
			t.Errorf("Build(%s) returned %T, want %s", tc.algo, index, tc.want)
		}
	}
}

func TestBuild_Errors(t *testing.T) {
	if _, err := Build(nil, 3, 0, DefaultConfig()); !errors.Is(err, ErrZeroDimension) {
		t.Errorf("expected ErrZeroDimension, got %v", err)
	}
	if _, err := Build([]float64{1, 2, 3}, 2, 2, DefaultConfig()); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
	cfg := DefaultConfig()
	cfg.Algorithm = AlgorithmKDTree
	cfg.Metric = DistanceFunc(func(a, b []float64) float64 { return 0 })
	if _, err := Build([]float64{1, 2}, 1, 2, cfg); !errors.Is(err, ErrUnsupportedMetric) {
		t.Errorf("expected ErrUnsupportedMetric, got %v", err)
	}
}

func TestBuild_LogsDebugRecord(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LeafSize = 2
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if _, err := Build(gridData(4), 16, 2, cfg); err != nil {
		t.Fatalf("Build: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"built nearest-neighbour index",
		"algorithm=balltree",
		"points=16",
		"dims=2",
		"leaf_size=2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestBuild_QuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if _, err := Build(gridData(3), 9, 2, cfg); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %q", buf.String())
	}
}

func mustLinear(t *testing.T, data []float64, n, dims int) *LinearSearch {
	t.Helper()
	s, err := NewLinearSearch(data, n, dims, EuclideanMetric{})
	if err != nil {
		t.Fatalf("NewLinearSearch: %v", err)
	}
	return s
}
