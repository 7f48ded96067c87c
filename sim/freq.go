package sim

import (
	"log"
)

// VTimeInCycle is the simulated time measured in clock cycles.
type VTimeInCycle uint64

// VTimeInSec is the simulated time measured in seconds.
type VTimeInSec float64

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive ticks
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}

// Time converts a cycle count into the time that the cycles take.
func (f Freq) Time(cycles VTimeInCycle) VTimeInSec {
	return VTimeInSec(float64(cycles) * float64(f.Period()))
}
