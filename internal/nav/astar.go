// Package nav implements pathfinding over the water graph and the
// time-based navigation plans boats follow.
package nav

import (
	"container/heap"

	"github.com/zyedidia/generic/mapset"

	"hexwake/server/internal/hexgrid"
)

type pathNode struct {
	coord  hexgrid.Axial
	g      int
	f      int
	seq    int
	index  int
	parent *pathNode
}

// pathQueue orders nodes by f-cost; equal costs pop in insertion order
// so identical searches always yield identical paths.
type pathQueue []*pathNode

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq < pq[j].seq
}

func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *pathQueue) Push(x any) {
	n := len(*pq)
	item := x.(*pathNode)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// FindPath runs A* from start toward target across water tiles, treating
// land and every coordinate in occupied as impassable. Edge cost is
// uniform, the heuristic is hex distance. When the target cannot be
// reached the result leads to the expanded tile closest to it, so a
// click on a blocked tile still produces a sensible approach. The
// returned path excludes start and includes the final tile; an empty
// path means there is nowhere to go.
func FindPath(m *hexgrid.Map, start, target hexgrid.Axial, occupied mapset.Set[hexgrid.Axial]) []hexgrid.Axial {
	if start == target {
		return nil
	}

	open := &pathQueue{}
	heap.Init(open)
	startNode := &pathNode{coord: start, f: hexgrid.Distance(start, target)}
	heap.Push(open, startNode)
	gScore := map[hexgrid.Axial]int{start: 0}
	closed := make(map[hexgrid.Axial]struct{})

	best := startNode
	bestDist := hexgrid.Distance(start, target)
	seq := 0

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if _, seen := closed[current.coord]; seen {
			continue
		}
		closed[current.coord] = struct{}{}
		if current.coord == target {
			return reconstructPath(current)
		}
		if d := hexgrid.Distance(current.coord, target); d < bestDist {
			best = current
			bestDist = d
		}

		for _, next := range current.coord.Neighbors() {
			if !m.IsWater(next) || occupied.Has(next) {
				continue
			}
			if _, seen := closed[next]; seen {
				continue
			}
			tentative := current.g + 1
			if prev, ok := gScore[next]; ok && tentative >= prev {
				continue
			}
			gScore[next] = tentative
			seq++
			heap.Push(open, &pathNode{
				coord:  next,
				g:      tentative,
				f:      tentative + hexgrid.Distance(next, target),
				seq:    seq,
				parent: current,
			})
		}
	}

	if best.coord == start {
		return nil
	}
	return reconstructPath(best)
}

// reconstructPath walks parent pointers back to (and excluding) the
// start node, then reverses into travel order.
func reconstructPath(end *pathNode) []hexgrid.Axial {
	path := make([]hexgrid.Axial, 0, end.g)
	for node := end; node.parent != nil; node = node.parent {
		path = append(path, node.coord)
	}
	for i := 0; i < len(path)/2; i++ {
		j := len(path) - 1 - i
		path[i], path[j] = path[j], path[i]
	}
	return path
}
