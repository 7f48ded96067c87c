package sim

import (
	"log"

	"github.com/iti/rngstream"
)

// The seed vector of a stream must stay below the second modulus of the
// generator.
const rngSeedModulus = 4294944443 - 7

// NewRngStream returns a random stream that depends only on the seed and
// the substream index. Two streams created with the same arguments produce
// the same numbers regardless of how many streams the process created
// before. Different substreams of the same seed do not overlap.
func NewRngStream(name string, seed uint64, substream int) *rngstream.RngStream {
	if substream < 0 {
		log.Panicf("rng stream %s: negative substream %d", name, substream)
	}

	base := seed % rngSeedModulus
	vector := make([]uint64, 6)
	for i := range vector {
		vector[i] = base + uint64(i) + 1
	}

	rng := rngstream.New(name)
	if !rng.SetSeed(vector) {
		log.Panicf("rng stream %s: invalid seed %d", name, seed)
	}

	for i := 0; i < substream; i++ {
		rng.ResetNextSubstream()
	}

	return rng
}
