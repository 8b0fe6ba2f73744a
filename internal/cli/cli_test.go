package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrevorS/balltree"
	"github.com/TrevorS/balltree/internal/dataset"
)

const twoClusters = `x,y
0,0
1,0
0,1
100,100
101,100
100,101
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func outputLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

// =============================================================================
// Command definitions
// =============================================================================

func TestRootCmd_Definition(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "balltree", cmd.Use)

	for _, name := range []string{"config", "leaf-size", "metric", "p", "algorithm", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "16", cmd.PersistentFlags().Lookup("leaf-size").DefValue)
	assert.Equal(t, "euclidean", cmd.PersistentFlags().Lookup("metric").DefValue)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"knn", "within", "stats"}, names)
}

// =============================================================================
// knn
// =============================================================================

func TestKNNCmd(t *testing.T) {
	path := writeFile(t, "points.csv", twoClusters)

	t.Run("nearest first", func(t *testing.T) {
		out, _, err := run(t, "knn", path, "--query", "0.1,0.1", "--k", "2")
		require.NoError(t, err)
		lines := outputLines(out)
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "0\t"), lines[0])
		assert.Contains(t, lines[0], "\t0,0")
	})

	t.Run("k larger than dataset", func(t *testing.T) {
		out, _, err := run(t, "knn", path, "-q", "50,50", "--k", "100")
		require.NoError(t, err)
		assert.Len(t, outputLines(out), 6)
	})

	for _, algo := range []string{"balltree", "kdtree", "linear"} {
		t.Run("algorithm "+algo, func(t *testing.T) {
			out, _, err := run(t, "knn", path, "--query", "100,100", "--algorithm", algo, "--leaf-size", "1")
			require.NoError(t, err)
			assert.Equal(t, "3\t0\t100,100\n", out)
		})
	}

	t.Run("manhattan distance", func(t *testing.T) {
		out, _, err := run(t, "knn", path, "--query", "2,2", "--metric", "manhattan")
		require.NoError(t, err)
		// (1,0) and (0,1) are both 3 away; either may come first.
		assert.Contains(t, out, "\t3\t")
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, _, err := run(t, "knn", path, "--query", "1,2,3")
		require.Error(t, err)
		assert.ErrorIs(t, err, balltree.ErrDimensionMismatch)
	})

	t.Run("bad k", func(t *testing.T) {
		_, _, err := run(t, "knn", path, "--query", "1,2", "--k", "0")
		assert.Error(t, err)
	})

	t.Run("missing query", func(t *testing.T) {
		_, _, err := run(t, "knn", path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := run(t, "knn", filepath.Join(t.TempDir(), "nope.csv"), "--query", "1,2")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("non-finite coordinate in data", func(t *testing.T) {
		bad := writeFile(t, "bad.csv", "x,y\n1,2\nNaN,3\n4,5\n")
		for _, leafSize := range []string{"1", "16"} {
			var err error
			require.NotPanics(t, func() {
				_, _, err = run(t, "knn", bad, "--query", "1,2", "--leaf-size", leafSize)
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, dataset.ErrNonFinite)
			assert.Contains(t, err.Error(), "line 3")
		}
	})

	t.Run("non-finite query", func(t *testing.T) {
		_, _, err := run(t, "knn", path, "--query", "Inf,0")
		assert.ErrorIs(t, err, dataset.ErrNonFinite)
	})
}

// =============================================================================
// within
// =============================================================================

func TestWithinCmd(t *testing.T) {
	path := writeFile(t, "points.csv", twoClusters)

	t.Run("first cluster only", func(t *testing.T) {
		out, _, err := run(t, "within", path, "--query", "0,0", "--radius", "5", "--leaf-size", "1")
		require.NoError(t, err)
		lines := outputLines(out)
		require.Len(t, lines, 3)
		for _, l := range lines {
			idx := strings.SplitN(l, "\t", 2)[0]
			assert.Contains(t, []string{"0", "1", "2"}, idx)
		}
		assert.True(t, strings.HasPrefix(lines[0], "0\t0\t"))
	})

	t.Run("inclusive boundary", func(t *testing.T) {
		out, _, err := run(t, "within", path, "-q", "0,0", "-r", "1")
		require.NoError(t, err)
		assert.Len(t, outputLines(out), 3)
	})

	t.Run("nothing in range", func(t *testing.T) {
		out, _, err := run(t, "within", path, "--query", "50,50", "--radius", "1")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("negative radius", func(t *testing.T) {
		_, _, err := run(t, "within", path, "--query", "0,0", "--radius", "-1")
		assert.Error(t, err)
	})

	t.Run("radius required", func(t *testing.T) {
		_, _, err := run(t, "within", path, "--query", "0,0")
		assert.Error(t, err)
	})
}

// =============================================================================
// stats
// =============================================================================

func TestStatsCmd(t *testing.T) {
	path := writeFile(t, "points.csv", twoClusters)

	t.Run("ball tree", func(t *testing.T) {
		out, _, err := run(t, "stats", path, "--leaf-size", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "algorithm:  balltree")
		assert.Contains(t, out, "points:     6")
		assert.Contains(t, out, "dims:       2")
		assert.Contains(t, out, "leaves:     6")
		assert.Contains(t, out, "leaf size:  mean 1.000 stddev 0.000")
		assert.Contains(t, out, "radius:")
	})

	t.Run("single leaf", func(t *testing.T) {
		out, _, err := run(t, "stats", path)
		require.NoError(t, err)
		assert.Contains(t, out, "nodes:      1")
		assert.Contains(t, out, "depth:      1")
		assert.Contains(t, out, "leaf size:  mean 6.000 stddev 0.000")
	})

	t.Run("linear has no nodes", func(t *testing.T) {
		out, _, err := run(t, "stats", path, "--algorithm", "linear")
		require.NoError(t, err)
		assert.Contains(t, out, "nodes:      0")
		assert.NotContains(t, out, "depth:")
	})

	t.Run("kdtree has no radii", func(t *testing.T) {
		out, _, err := run(t, "stats", path, "--algorithm", "kdtree", "--leaf-size", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "algorithm:  kdtree")
		assert.NotContains(t, out, "radius:")
	})
}

// =============================================================================
// configuration and logging
// =============================================================================

func TestConfigFile(t *testing.T) {
	path := writeFile(t, "points.csv", twoClusters)

	t.Run("file settings apply", func(t *testing.T) {
		cfgPath := writeFile(t, "balltree.yaml", "algorithm: kdtree\nleaf_size: 2\n")
		out, _, err := run(t, "stats", path, "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, out, "algorithm:  kdtree")
	})

	t.Run("explicit flags override file", func(t *testing.T) {
		cfgPath := writeFile(t, "balltree.yaml", "algorithm: kdtree\n")
		out, _, err := run(t, "stats", path, "--config", cfgPath, "--algorithm", "linear")
		require.NoError(t, err)
		assert.Contains(t, out, "algorithm:  linear")
	})

	t.Run("invalid file", func(t *testing.T) {
		cfgPath := writeFile(t, "balltree.yaml", "metric: cosine\n")
		_, _, err := run(t, "stats", path, "--config", cfgPath)
		assert.Error(t, err)
	})

	t.Run("invalid flag value", func(t *testing.T) {
		_, _, err := run(t, "stats", path, "--metric", "minkowski", "--p", "0.5")
		assert.Error(t, err)
	})
}

func TestLogging(t *testing.T) {
	path := writeFile(t, "points.csv", twoClusters)

	t.Run("debug shows build record", func(t *testing.T) {
		_, stderr, err := run(t, "stats", path, "--log-level", "debug")
		require.NoError(t, err)
		assert.Contains(t, stderr, "loaded dataset")
		assert.Contains(t, stderr, "built nearest-neighbour index")
	})

	t.Run("info hides build record", func(t *testing.T) {
		_, stderr, err := run(t, "stats", path)
		require.NoError(t, err)
		assert.Contains(t, stderr, "loaded dataset")
		assert.NotContains(t, stderr, "built nearest-neighbour index")
	})

	t.Run("error level is quiet", func(t *testing.T) {
		_, stderr, err := run(t, "stats", path, "--log-level", "error")
		require.NoError(t, err)
		assert.Empty(t, stderr)
	})
}
