package router

import (
	"github.com/sarchlab/icnt3d/noc/networking/arbitration"
	"github.com/sarchlab/icnt3d/noc/networking/channel"
	"github.com/sarchlab/icnt3d/noc/networking/routing"
	"github.com/sarchlab/icnt3d/sim"
)

type vcStage int

const (
	vcIdle vcStage = iota
	vcWaitingVC
	vcActive
)

func (s vcStage) String() string {
	switch s {
	case vcIdle:
		return "idle"
	case vcWaitingVC:
		return "vc_alloc"
	case vcActive:
		return "active"
	default:
		return "unknown"
	}
}

// virtualChannel is the state of one input VC.
type virtualChannel struct {
	buf   sim.Buffer
	stage vcStage

	// The routing decision of the packet at the front of the buffer.
	outPort int
	target  int
	outVC   int

	// expectHead is true when the next arriving flit must start a packet.
	expectHead bool
}

// An inputPort is the infrastructure related to one input direction.
type inputPort struct {
	dir routing.Direction

	// Exactly one of flits and bus is set.
	flits *channel.FlitChannel
	bus   *channel.VerticalChannel

	// credits carries the credits of freed slots to the upstream sender.
	credits *channel.CreditChannel

	vcs []*virtualChannel

	// arb picks one VC of the port to compete for the crossbar.
	arb       arbitration.Arbiter
	candidate int

	// freed lists the VCs that released a slot in the current cycle.
	freed []int
}

// An outputPort is the infrastructure related to one output direction.
type outputPort struct {
	dir routing.Direction

	// Exactly one of flits and bus is set. Vertical ports also hold the
	// arbiter shared by all routers driving the bus.
	flits  *channel.FlitChannel
	bus    *channel.VerticalChannel
	shared *arbitration.Shared

	// credits brings credits from the downstream buffers. It is nil for
	// vertical ports, whose credits are applied by the bus.
	credits *channel.CreditChannel
	tracker *channel.CreditTracker

	// vcArbs resolves the input VCs asking for the same downstream VC,
	// indexed by target and VC.
	vcArbs [][]arbitration.Arbiter

	// swArb resolves the input ports asking for the crossbar output.
	swArb arbitration.Arbiter
}

type vaRequest struct {
	out, target, outVC int
}

type verticalGrant struct {
	in, vc, out int
}
