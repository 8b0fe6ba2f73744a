package balltree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// dimPlane orders a slice of point indices by a single coordinate so that
// kdtree.Select can reorder it in place.
type dimPlane struct {
	idx  []int
	data []float64
	dims int
	dim  int
}

func (p dimPlane) Len() int           { return len(p.idx) }
func (p dimPlane) Less(i, j int) bool { return p.coord(i) < p.coord(j) }
func (p dimPlane) Swap(i, j int)      { p.idx[i], p.idx[j] = p.idx[j], p.idx[i] }
func (p dimPlane) Slice(start, end int) kdtree.SortSlicer {
	p.idx = p.idx[start:end]
	return p
}

func (p dimPlane) coord(i int) float64 { return p.data[p.idx[i]*p.dims+p.dim] }

// findSpreadDim returns the dimension with the greatest range (max - min)
// among the given points. Ties go to the lowest dimension.
// Panics if any coordinate is NaN.
func findSpreadDim(data []float64, dims int, idx []int) int {
	bestDim := 0
	bestSpread := -1.0
	for d := 0; d < dims; d++ {
		minVal := math.Inf(1)
		maxVal := math.Inf(-1)
		for _, p := range idx {
			v := data[p*dims+d]
			if math.IsNaN(v) {
				panic(fmt.Sprintf("balltree: NaN in coordinate %d of point %d", d, p))
			}
			minVal = min(minVal, v)
			maxVal = max(maxVal, v)
		}
		if spread := maxVal - minVal; spread > bestSpread {
			bestSpread = spread
			bestDim = d
		}
	}
	return bestDim
}

// partition splits idx (at least two point indices) around the median of
// the dimension with the greatest spread. On return idx[:split] holds the
// points strictly below the median on that dimension and idx[split:] the
// rest, both in their original relative order. median is the index of the
// median point, which is always one of idx[split:].
//
// Both halves are non-empty: when every point ties with or exceeds the
// median, the last non-median point of the right half is moved to the left.
func partition(data []float64, dims int, idx []int) (split, median int) {
	dim := findSpreadDim(data, dims, idx)
	mid := len(idx) / 2

	scratch := make([]int, len(idx))
	copy(scratch, idx)
	kdtree.Select(dimPlane{idx: scratch, data: data, dims: dims, dim: dim}, mid)
	median = scratch[mid]
	medianVal := data[median*dims+dim]

	// Writes into left never overtake the range cursor.
	left := idx[:0]
	right := scratch[:0]
	for _, p := range idx {
		if data[p*dims+dim] < medianVal {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}

	if len(left) == 0 {
		j := len(right) - 1
		if right[j] == median {
			j--
		}
		moved := right[j]
		right = append(right[:j], right[j+1:]...)
		idx[0] = moved
		copy(idx[1:], right)
		return 1, median
	}
	copy(idx[len(left):], right)
	return len(left), median
}
