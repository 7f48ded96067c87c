package messaging

import (
	"github.com/sarchlab/icnt3d/sim"
)

// A TrafficCounter counts the flits and packets that pass a hook position.
type TrafficCounter struct {
	Pos          *sim.HookPos
	FlitBitWidth int

	TotalFlits   uint64
	TotalPackets uint64
	TotalBits    uint64
}

// NewTrafficCounter creates a counter that listens at pos.
func NewTrafficCounter(pos *sim.HookPos, flitBitWidth int) *TrafficCounter {
	return &TrafficCounter{Pos: pos, FlitBitWidth: flitBitWidth}
}

// Func adds the delivered traffic to the counter
func (c *TrafficCounter) Func(ctx sim.HookCtx) {
	if ctx.Pos != c.Pos {
		return
	}

	flit, ok := ctx.Item.(*Flit)
	if !ok {
		return
	}

	c.TotalFlits++
	c.TotalBits += uint64(c.FlitBitWidth)

	if flit.Tail {
		c.TotalPackets++
	}
}
