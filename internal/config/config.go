// Package config holds the CLI's index settings, read from a YAML file and
// converted into a balltree.Config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TrevorS/balltree"
)

// Config mirrors the YAML file layout:
//
//	algorithm: balltree
//	leaf_size: 16
//	metric: minkowski
//	p: 3
//	log_level: debug
type Config struct {
	Algorithm string  `yaml:"algorithm"`
	LeafSize  int     `yaml:"leaf_size"`
	Metric    string  `yaml:"metric"`
	P         float64 `yaml:"p,omitempty"`
	LogLevel  string  `yaml:"log_level"`
}

// Default returns the settings used when no file or flag overrides them.
func Default() *Config {
	return &Config{
		Algorithm: string(balltree.AlgorithmBallTree),
		LeafSize:  balltree.DefaultLeafSize,
		Metric:    "euclidean",
		P:         2,
		LogLevel:  "info",
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks every field without building anything.
func (c *Config) Validate() error {
	if _, err := balltree.ParseAlgorithm(c.Algorithm); err != nil {
		return err
	}
	if c.LeafSize < 1 {
		return fmt.Errorf("leaf_size must be >= 1, got %d", c.LeafSize)
	}
	if _, err := c.DistanceMetric(); err != nil {
		return err
	}
	_, err := c.Level()
	return err
}

// DistanceMetric resolves the metric name. Minkowski uses P, which must be
// at least 1.
func (c *Config) DistanceMetric() (balltree.DistanceMetric, error) {
	switch strings.ToLower(c.Metric) {
	case "euclidean", "l2":
		return balltree.EuclideanMetric{}, nil
	case "manhattan", "l1":
		return balltree.ManhattanMetric{}, nil
	case "chebyshev", "linf":
		return balltree.ChebyshevMetric{}, nil
	case "minkowski", "lp":
		if !(c.P >= 1) {
			return nil, fmt.Errorf("minkowski p must be >= 1, got %v", c.P)
		}
		return balltree.MinkowskiMetric{P: c.P}, nil
	default:
		return nil, fmt.Errorf("%w: %q", balltree.ErrUnsupportedMetric, c.Metric)
	}
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return lvl, nil
}

// Library converts the settings into a balltree.Config that logs to logger.
func (c *Config) Library(logger *slog.Logger) (balltree.Config, error) {
	if err := c.Validate(); err != nil {
		return balltree.Config{}, err
	}
	algo, _ := balltree.ParseAlgorithm(c.Algorithm)
	metric, _ := c.DistanceMetric()
	return balltree.Config{
		Algorithm: algo,
		LeafSize:  c.LeafSize,
		Metric:    metric,
		Logger:    logger,
	}, nil
}
