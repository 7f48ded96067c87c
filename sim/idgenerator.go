package sim

import (
	"strconv"
	"sync/atomic"
)

// IDGenerator can generate IDs
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// NewSequentialIDGenerator returns an ID generator that produces
// deterministic, increasing IDs. Each simulation owns its own generator.
func NewSequentialIDGenerator(prefix string) IDGenerator {
	return &sequentialIDGenerator{prefix: prefix}
}

type sequentialIDGenerator struct {
	prefix string
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return g.prefix + strconv.FormatUint(idNumber, 10)
}
