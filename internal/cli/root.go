// Package cli implements the balltree command line tool.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/TrevorS/balltree"
	"github.com/TrevorS/balltree/internal/config"
	"github.com/TrevorS/balltree/internal/dataset"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	leafSize   int
	metric     string
	p          float64
	algorithm  string
	logLevel   string
}

// NewRootCmd builds the command tree. Each call returns fresh commands and
// flag state.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	def := config.Default()

	root := &cobra.Command{
		Use:   "balltree",
		Short: "Nearest-neighbour queries over CSV point sets",
		Long: `balltree builds a spatial index over the points in a CSV file and answers
k-nearest-neighbour and fixed-radius queries against it.

Each CSV row is one point; an optional first row of column names is skipped.

Example usage:
  balltree knn points.csv --query 0.5,0.5 --k 3
  balltree within points.csv --query 0,0 --radius 2.5
  balltree stats points.csv --leaf-size 8
  balltree knn points.csv --query 1,2 --metric minkowski --p 3`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	pf.IntVar(&opts.leafSize, "leaf-size", def.LeafSize, "Maximum points per tree leaf")
	pf.StringVar(&opts.metric, "metric", def.Metric, "Distance metric: euclidean, manhattan, chebyshev, minkowski")
	pf.Float64Var(&opts.p, "p", def.P, "Exponent for the minkowski metric (>= 1)")
	pf.StringVar(&opts.algorithm, "algorithm", def.Algorithm, "Index structure: balltree, kdtree, linear")
	pf.StringVar(&opts.logLevel, "log-level", def.LogLevel, "Log level: debug, info, warn, error")

	root.AddCommand(newKNNCmd(opts), newWithinCmd(opts), newStatsCmd(opts))
	return root
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// resolveConfig layers the config file, if any, under the flags the user
// set explicitly.
func resolveConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("leaf-size") {
		cfg.LeafSize = opts.leafSize
	}
	if flags.Changed("metric") {
		cfg.Metric = opts.metric
	}
	if flags.Changed("p") {
		cfg.P = opts.p
	}
	if flags.Changed("algorithm") {
		cfg.Algorithm = opts.algorithm
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadIndex reads the CSV at path and builds the configured index over it.
func loadIndex(cmd *cobra.Command, opts *options, path string) (balltree.NearestNeighbour, *config.Config, error) {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return nil, nil, err
	}
	lvl, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))

	ds, err := dataset.LoadCSV(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("loaded dataset", slog.String("path", path), slog.Int("points", ds.N), slog.Int("dims", ds.Dims))

	libCfg, err := cfg.Library(logger)
	if err != nil {
		return nil, nil, err
	}
	index, err := balltree.Build(ds.Data, ds.N, ds.Dims, libCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("building index: %w", err)
	}
	return index, cfg, nil
}
