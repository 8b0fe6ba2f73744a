package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TrevorS/balltree/internal/dataset"
)

func newWithinCmd(opts *options) *cobra.Command {
	var (
		query  string
		radius float64
	)

	cmd := &cobra.Command{
		Use:   "within <points.csv>",
		Short: "Print every point within a radius of a query",
		Long: `Print every point whose distance to --query is at most --radius,
nearest first.

Example:
  balltree within points.csv --query 0,0 --radius 2.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !(radius >= 0) {
				return fmt.Errorf("--radius must be >= 0, got %v", radius)
			}
			point, err := dataset.ParsePoint(query)
			if err != nil {
				return err
			}
			index, _, err := loadIndex(cmd, opts, args[0])
			if err != nil {
				return err
			}
			nbrs, err := index.WithinRangeNeighbors(point, radius)
			if err != nil {
				return err
			}
			return writeNeighbors(cmd.OutOrStdout(), nbrs)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Query point as comma-separated coordinates")
	cmd.Flags().Float64VarP(&radius, "radius", "r", 0, "Search radius")
	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("radius")
	return cmd
}
