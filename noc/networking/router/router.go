// Package router provides the input-queued virtual-channel routers of the
// mesh networks.
package router

import (
	"io"

	"github.com/sarchlab/icnt3d/noc/networking/channel"
	"github.com/sarchlab/icnt3d/noc/networking/routing"
	"github.com/sarchlab/icnt3d/power"
	"github.com/sarchlab/icnt3d/sim"
)

// HookPosFlitArrive marks a flit written into an input buffer.
var HookPosFlitArrive = &sim.HookPos{Name: "Router Flit Arrive"}

// HookPosFlitForward marks a flit crossing the crossbar.
var HookPosFlitForward = &sim.HookPos{Name: "Router Flit Forward"}

// A Router moves flits from its input channels to its output channels one
// cycle at a time.
//
// A network evaluates a cycle in phases. First every router runs Evaluate.
// Then every router runs EvaluateAfterSwitchAllocation, which can rely on
// all routers having posted their vertical bus requests. Finally every
// router runs ClearVerticalArbiters.
type Router interface {
	sim.Named
	sim.Hookable

	// ID returns the index of the router in the network.
	ID() int

	// NumPorts returns the number of distinct directions wired to the
	// router, including the local injection and ejection port.
	NumPorts() int

	// AddInputChannel connects a channel that brings flits into the router.
	// Credits for freed buffer slots are sent back over credits.
	AddInputChannel(
		dir routing.Direction,
		flits *channel.FlitChannel,
		credits *channel.CreditChannel,
	)

	// AddOutputChannel connects a channel that takes flits out of the
	// router. Credits arrive from the downstream buffers over credits. The
	// downstream buffers hold depth flits per VC.
	AddOutputChannel(
		dir routing.Direction,
		flits *channel.FlitChannel,
		credits *channel.CreditChannel,
		depth int,
	)

	Evaluate(now sim.VTimeInCycle)
	EvaluateAfterSwitchAllocation(now sim.VTimeInCycle)
	ClearVerticalArbiters()

	// Idle tells if the router holds no flit.
	Idle() bool

	// Activity returns the event counters of the router.
	Activity() power.RouterActivity

	// Buffers returns the input buffers, one per port and VC.
	Buffers() []sim.Buffer

	// DumpState writes the non-empty buffers of the router.
	DumpState(w io.Writer)
}
