package balltree

import "container/heap"

// minRdistPoint returns a lower bound in reduced-distance space on the
// distance between point and any point in the given node: the distance to
// the surface of the node's ball, or 0 from inside it.
func (t *BallTree) minRdistPoint(id int, point []float64) float64 {
	nd := &t.nodes[id]
	dist := t.metric.Distance(point, nd.center) - nd.radius
	if dist < 0 {
		dist = 0
	}
	return t.metric.DistToRdist(dist)
}

// search is the best-first branch-and-bound traversal behind every query.
// It returns up to k points whose reduced distance to query is at most
// maxRdist, nearest first.
//
// Subtrees are popped from a min-queue ordered by their lower bound. The
// search stops once the smallest remaining bound exceeds maxRdist or, with
// k candidates already held, cannot beat the worst of them.
func (t *BallTree) search(query []float64, k int, maxRdist float64) ([]Neighbor, error) {
	if err := checkQuery(query, t.dims); err != nil {
		return nil, err
	}
	if t.n == 0 || k <= 0 || !(maxRdist >= 0) {
		return []Neighbor{}, nil
	}

	out := &knnHeap{}
	queue := &nodeQueue{{rdist: t.minRdistPoint(0, query), node: 0}}

	for queue.Len() > 0 {
		item := heap.Pop(queue).(nodeItem)
		if item.rdist > maxRdist || (out.full(k) && item.rdist >= out.worst()) {
			break
		}

		nd := &t.nodes[item.node]
		switch nd.kind {
		case leafNode:
			for i := nd.start; i < nd.end; i++ {
				ptIdx := t.idxArray[i]
				d := t.metric.ReducedDistance(query, t.point(ptIdx))
				if d <= maxRdist {
					out.offer(knnItem{index: ptIdx, dist: d}, k)
				}
			}
		case branchNode:
			if d := t.minRdistPoint(nd.left, query); d <= maxRdist {
				heap.Push(queue, nodeItem{rdist: d, node: nd.left})
			}
			if d := t.minRdistPoint(nd.right, query); d <= maxRdist {
				heap.Push(queue, nodeItem{rdist: d, node: nd.right})
			}
		}
	}

	items := out.drain()
	nbrs := make([]Neighbor, len(items))
	for i, it := range items {
		nbrs[i] = Neighbor{
			Index:    it.index,
			Point:    t.point(it.index),
			Distance: t.metric.RdistToDist(it.dist),
		}
	}
	return nbrs, nil
}
