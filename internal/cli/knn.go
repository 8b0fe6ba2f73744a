package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TrevorS/balltree/internal/dataset"
)

func newKNNCmd(opts *options) *cobra.Command {
	var (
		query string
		k     int
	)

	cmd := &cobra.Command{
		Use:   "knn <points.csv>",
		Short: "Print the k nearest points to a query",
		Long: `Print the k points closest to --query, nearest first.

Each output line is: index, distance, coordinates.

Example:
  balltree knn points.csv --query 0.5,0.5 --k 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if k < 1 {
				return fmt.Errorf("--k must be >= 1, got %d", k)
			}
			point, err := dataset.ParsePoint(query)
			if err != nil {
				return err
			}
			index, _, err := loadIndex(cmd, opts, args[0])
			if err != nil {
				return err
			}
			nbrs, err := index.KNearestNeighbors(point, k)
			if err != nil {
				return err
			}
			return writeNeighbors(cmd.OutOrStdout(), nbrs)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Query point as comma-separated coordinates")
	cmd.Flags().IntVar(&k, "k", 1, "Number of neighbours to return")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}
