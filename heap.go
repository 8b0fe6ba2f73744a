package balltree

import "container/heap"

// --- max-heap for KNN queries ---

type knnItem struct {
	index int
	dist  float64 // reduced distance
}

// knnHeap is a max-heap of knnItem (largest distance on top) used as a
// bounded priority queue for KNN queries.
type knnHeap []knnItem

func (h knnHeap) Len() int           { return len(h) }
func (h knnHeap) Less(i, j int) bool { return h[i].dist > h[j].dist } // max-heap
func (h knnHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *knnHeap) Push(x any)        { *h = append(*h, x.(knnItem)) }
func (h *knnHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// offer adds a candidate if the heap holds fewer than k items or the
// candidate beats the current worst, evicting the worst when full.
func (h *knnHeap) offer(item knnItem, k int) {
	if h.Len() < k {
		heap.Push(h, item)
	} else if item.dist < (*h)[0].dist {
		(*h)[0] = item
		heap.Fix(h, 0)
	}
}

// full reports whether the heap holds k items.
func (h knnHeap) full(k int) bool { return len(h) >= k }

// worst returns the largest distance held. Only valid on a non-empty heap.
func (h knnHeap) worst() float64 { return h[0].dist }

// drain empties the heap into ascending order of distance.
func (h *knnHeap) drain() []knnItem {
	out := make([]knnItem, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(knnItem)
	}
	return out
}

// --- min-heap of subtrees for best-first search ---

type nodeItem struct {
	rdist float64 // lower bound on the reduced distance to any point in node
	node  int
}

// nodeQueue is a min-heap of nodeItem ordered by lower bound.
type nodeQueue []nodeItem

func (q nodeQueue) Len() int           { return len(q) }
func (q nodeQueue) Less(i, j int) bool { return q[i].rdist < q[j].rdist }
func (q nodeQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)        { *q = append(*q, x.(nodeItem)) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
