// Package routing decides the output direction of a flit at a router.
package routing

// Table is a routing table that can find the next-hop direction according
// to the final destination node.
type Table interface {
	FindPort(dest int) Direction
	DefineRoute(dest int, dir Direction)
	DefineDefaultRoute(dir Direction)
}

// NewTable creates a new explicit Table.
func NewTable() Table {
	t := &table{}
	t.t = make(map[int]Direction)
	t.defaultDir = Local

	return t
}

type table struct {
	t          map[int]Direction
	defaultDir Direction
}

func (t table) FindPort(dest int) Direction {
	out, found := t.t[dest]
	if found {
		return out
	}

	return t.defaultDir
}

func (t *table) DefineRoute(dest int, dir Direction) {
	t.t[dest] = dir
}

func (t *table) DefineDefaultRoute(dir Direction) {
	t.defaultDir = dir
}
