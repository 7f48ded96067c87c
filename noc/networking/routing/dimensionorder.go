package routing

import "log"

// Coordinator converts node indices into mesh coordinates.
type Coordinator interface {
	Coordinate(node int) (x, y, z int)
}

// dimensionOrderTable routes along x first, then y, then z.
type dimensionOrderTable struct {
	coord      Coordinator
	x, y, z    int
	overrides  map[int]Direction
	defaultDir Direction
}

// NewDimensionOrderTable creates a table for the router at node.
func NewDimensionOrderTable(coord Coordinator, node int) Table {
	t := &dimensionOrderTable{
		coord:      coord,
		overrides:  make(map[int]Direction),
		defaultDir: Local,
	}
	t.x, t.y, t.z = coord.Coordinate(node)

	return t
}

// FindPort finds the next-hop direction according to the coordinate of the
// final destination.
func (t *dimensionOrderTable) FindPort(dest int) Direction {
	if dir, found := t.overrides[dest]; found {
		return dir
	}

	dstX, dstY, dstZ := t.coord.Coordinate(dest)

	switch {
	case dstX < t.x:
		return Left
	case dstX > t.x:
		return Right
	case dstY > t.y:
		return Front
	case dstY < t.y:
		return Back
	case dstZ > t.z:
		return Up
	case dstZ < t.z:
		return Down
	case dstX == t.x && dstY == t.y && dstZ == t.z:
		return t.defaultDir
	default:
		log.Panic("unreachable")
	}

	return Local
}

// DefineRoute pins the route to a destination, bypassing dimension order.
func (t *dimensionOrderTable) DefineRoute(dest int, dir Direction) {
	t.overrides[dest] = dir
}

// DefineDefaultRoute sets the direction of flits that have arrived.
func (t *dimensionOrderTable) DefineDefaultRoute(dir Direction) {
	t.defaultDir = dir
}
