package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/TrevorS/balltree"
)

// treeIndex is implemented by the indexes that expose their node table.
type treeIndex interface {
	NodeDataArray() []balltree.NodeData
}

type indexStats struct {
	Algorithm      string
	Points         int
	Dims           int
	Nodes          int
	Depth          int
	Leaves         int
	LeafMean       float64
	LeafStdDev     float64
	RadiusMean     float64
	RadiusStdDev   float64
	HasLeafStats   bool
	HasRadiusStats bool
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <points.csv>",
		Short: "Summarize the index built over a CSV file",
		Long: `Build the configured index and print its shape: point count,
dimensions, node count, depth, leaf occupancy and (for ball trees) the
distribution of leaf radii.

Example:
  balltree stats points.csv --leaf-size 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, cfg, err := loadIndex(cmd, opts, args[0])
			if err != nil {
				return err
			}
			s := computeStats(index)
			s.Algorithm = cfg.Algorithm
			return writeStats(cmd.OutOrStdout(), s)
		},
	}
}

func computeStats(index balltree.NearestNeighbour) indexStats {
	s := indexStats{Points: index.Len(), Dims: index.Dims()}
	ti, ok := index.(treeIndex)
	if !ok {
		return s
	}
	nodes := ti.NodeDataArray()
	s.Nodes = len(nodes)
	if len(nodes) == 0 {
		return s
	}
	s.Depth = nodeDepth(nodes, 0)

	var occupancy, radii []float64
	for _, nd := range nodes {
		if !nd.IsLeaf {
			continue
		}
		occupancy = append(occupancy, float64(nd.IdxEnd-nd.IdxStart))
		radii = append(radii, nd.Radius)
	}
	s.Leaves = len(occupancy)
	s.LeafMean, s.LeafStdDev = meanStdDev(occupancy)
	s.HasLeafStats = true

	if _, isBall := index.(*balltree.BallTree); isBall {
		s.RadiusMean, s.RadiusStdDev = meanStdDev(radii)
		s.HasRadiusStats = true
	}
	return s
}

func nodeDepth(nodes []balltree.NodeData, id int) int {
	nd := nodes[id]
	if nd.IsLeaf {
		return 1
	}
	return 1 + max(nodeDepth(nodes, nd.Left), nodeDepth(nodes, nd.Right))
}

// meanStdDev is stat.MeanStdDev with a zero deviation for a single sample.
func meanStdDev(x []float64) (mean, std float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

func writeStats(w io.Writer, s indexStats) error {
	lines := []string{
		fmt.Sprintf("algorithm:  %s", s.Algorithm),
		fmt.Sprintf("points:     %d", s.Points),
		fmt.Sprintf("dims:       %d", s.Dims),
		fmt.Sprintf("nodes:      %d", s.Nodes),
	}
	if s.HasLeafStats {
		lines = append(lines,
			fmt.Sprintf("depth:      %d", s.Depth),
			fmt.Sprintf("leaves:     %d", s.Leaves),
			fmt.Sprintf("leaf size:  mean %.3f stddev %.3f", s.LeafMean, s.LeafStdDev))
	}
	if s.HasRadiusStats {
		lines = append(lines, fmt.Sprintf("radius:     mean %.4g stddev %.4g", s.RadiusMean, s.RadiusStdDev))
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
