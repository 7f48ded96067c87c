// Package mesh3d builds k x n x s stacked meshes. Routers in one layer are
// linked by planar channels, and the routers of each (x, y) column share an
// up bus and a down bus.
package mesh3d

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/icnt3d/noc/networking/routing"
)

// NetworkEdge is returned when a neighbor lies outside the mesh.
const NetworkEdge = -1

// ErrInvalidDimension is returned when a mesh dimension is not positive.
var ErrInvalidDimension = errors.New("invalid mesh dimension")

// Mesh3D is the addressing of a k x n x s mesh. Nodes are numbered with x
// varying fastest, then y, then z.
type Mesh3D struct {
	k, n, s int
}

// New creates the addressing of a mesh.
func New(k, n, s int) (*Mesh3D, error) {
	if k < 1 || n < 1 || s < 1 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimension, k, n, s)
	}

	return &Mesh3D{k: k, n: n, s: s}, nil
}

// K returns the x extent.
func (m *Mesh3D) K() int { return m.k }

// N returns the y extent.
func (m *Mesh3D) N() int { return m.n }

// S returns the number of layers.
func (m *Mesh3D) S() int { return m.s }

// LayerSize returns the number of nodes in one layer.
func (m *Mesh3D) LayerSize() int {
	return m.k * m.n
}

// NumNodes returns the number of nodes.
func (m *Mesh3D) NumNodes() int {
	return m.k * m.n * m.s
}

// NumChannels returns the number of planar channels.
func (m *Mesh3D) NumChannels() int {
	return 2 * ((m.k-1)*m.n + (m.n-1)*m.k) * m.s
}

// NumVerticalChannels returns the number of vertical buses, one up and one
// down bus per column.
func (m *Mesh3D) NumVerticalChannels() int {
	return 2 * m.LayerSize()
}

// NodeIndex encodes a coordinate.
func (m *Mesh3D) NodeIndex(x, y, z int) int {
	return z*m.LayerSize() + y*m.k + x
}

// FindCoordinate decodes a node index.
func (m *Mesh3D) FindCoordinate(node int) (x, y, z int) {
	m.nodeMustBeInRange(node)

	x = node % m.k
	y = (node % m.LayerSize()) / m.k
	z = node / m.LayerSize()

	return x, y, z
}

// Coordinate is FindCoordinate, so that the mesh can drive routing tables.
func (m *Mesh3D) Coordinate(node int) (x, y, z int) {
	return m.FindCoordinate(node)
}

// AdjacentNode returns the planar neighbor in a direction, or NetworkEdge.
func (m *Mesh3D) AdjacentNode(node int, dir routing.Direction) int {
	x, y, _ := m.FindCoordinate(node)

	switch dir {
	case routing.Left:
		if x != 0 {
			return node - 1
		}
	case routing.Right:
		if x != m.k-1 {
			return node + 1
		}
	case routing.Front:
		if y != m.n-1 {
			return node + m.k
		}
	case routing.Back:
		if y != 0 {
			return node - m.k
		}
	default:
		log.Panicf("%s is not a planar direction", dir)
	}

	return NetworkEdge
}

// AdjacentChannel returns the index of the planar channel that leaves node
// in a direction, or NetworkEdge if there is no neighbor.
//
// Each row but the last owns 4k-2 channels: for every x a right, a left, a
// front, and a back channel, except that the last column has no right and
// left pair. The last row has no front and back channels, so it only owns
// 2k-2.
func (m *Mesh3D) AdjacentChannel(node int, dir routing.Direction) int {
	if m.AdjacentNode(node, dir) == NetworkEdge {
		return NetworkEdge
	}

	x, y, z := m.FindCoordinate(node)

	perRow := 4*m.k - 2
	perLayer := 2 * ((m.k-1)*m.n + (m.n-1)*m.k) * z
	offset := perRow*y + perLayer
	lastRow := y == m.n-1
	lastCol := x == m.k-1

	switch dir {
	case routing.Left:
		if lastRow {
			return 2*(x-1) + 1 + offset
		}

		return 4*(x-1) + 1 + offset
	case routing.Right:
		if lastRow {
			return 2*x + offset
		}

		return 4*x + offset
	case routing.Front:
		if lastCol {
			return 4*x + offset
		}

		return 4*x + 2 + offset
	default:
		below := perRow*(y-1) + perLayer
		if lastCol {
			return 4*x + 1 + below
		}

		return 4*x + 3 + below
	}
}

// VerticalChannel returns the index of the bus of the column of node. Up
// buses come first, then down buses.
func (m *Mesh3D) VerticalChannel(node int, dir routing.Direction) int {
	column := node % m.LayerSize()

	switch dir {
	case routing.Up:
		return column
	case routing.Down:
		return column + m.LayerSize()
	default:
		log.Panicf("%s is not a vertical direction", dir)
	}

	return NetworkEdge
}

// PortCount returns the number of ports of the router at node: the planar
// neighbors, the two buses, and the local port. On meshes with k, n >= 2,
// corners get 5, edges 6, and interior routers 7.
func (m *Mesh3D) PortCount(node int) int {
	count := 3

	for _, dir := range routing.PlanarDirections {
		if m.AdjacentNode(node, dir) != NetworkEdge {
			count++
		}
	}

	return count
}

func (m *Mesh3D) nodeMustBeInRange(node int) {
	if node < 0 || node >= m.NumNodes() {
		log.Panicf("node %d out of range [0, %d)", node, m.NumNodes())
	}
}
