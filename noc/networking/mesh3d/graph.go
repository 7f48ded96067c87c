package mesh3d

import (
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/sarchlab/icnt3d/noc/networking/routing"
)

// Graph returns the router adjacency of the mesh. A bus links every pair of
// routers in a column, since a flit crosses any number of layers in one hop.
func (m *Mesh3D) Graph() *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()

	for node := 0; node < m.NumNodes(); node++ {
		g.AddNode(simple.Node(node))
	}

	for node := 0; node < m.NumNodes(); node++ {
		for _, dir := range []routing.Direction{routing.Right, routing.Front} {
			adj := m.AdjacentNode(node, dir)
			if adj == NetworkEdge {
				continue
			}

			g.SetEdge(g.NewEdge(simple.Node(node), simple.Node(adj)))
		}

		x, y, z := m.FindCoordinate(node)
		for upper := z + 1; upper < m.s; upper++ {
			other := m.NodeIndex(x, y, upper)
			g.SetEdge(g.NewEdge(simple.Node(node), simple.Node(other)))
		}
	}

	return g
}

// MinHops returns the number of router-to-router hops on a shortest path.
func (m *Mesh3D) MinHops(src, dst int) int {
	m.nodeMustBeInRange(src)
	m.nodeMustBeInRange(dst)

	g := m.Graph()
	shortest := path.DijkstraFrom(g.Node(int64(src)), g)

	return int(shortest.WeightTo(int64(dst)))
}

// AverageDistance returns the mean shortest-path hop count over all ordered
// pairs of distinct nodes.
func (m *Mesh3D) AverageDistance() float64 {
	num := m.NumNodes()
	if num < 2 {
		return 0
	}

	all := path.DijkstraAllPaths(m.Graph())

	sum := 0.0
	for u := 0; u < num; u++ {
		for v := 0; v < num; v++ {
			if u != v {
				sum += all.Weight(int64(u), int64(v))
			}
		}
	}

	return sum / float64(num*(num-1))
}
