package balltree

import "errors"

var (
	// ErrZeroDimension is returned when an index is built over points with
	// no coordinates.
	ErrZeroDimension = errors.New("balltree: points have zero dimensions")

	// ErrDimensionMismatch is returned when a query point's length differs
	// from the dimensionality of the index. The index remains usable.
	ErrDimensionMismatch = errors.New("balltree: dimension mismatch")

	// ErrShape is returned when the flat data length does not match n*dims.
	ErrShape = errors.New("balltree: data shape mismatch")

	// ErrUnsupportedMetric is returned when a metric cannot bound the
	// requested index type.
	ErrUnsupportedMetric = errors.New("balltree: unsupported metric")
)
