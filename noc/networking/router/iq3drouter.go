package router

import (
	"log"

	"github.com/sarchlab/icnt3d/noc/networking/arbitration"
	"github.com/sarchlab/icnt3d/noc/networking/channel"
	"github.com/sarchlab/icnt3d/noc/networking/routing"
	"github.com/sarchlab/icnt3d/sim"
)

// IQ3DRouter is an input-queued router of a stacked mesh. Besides the planar
// ports, it drives and listens to the up and down buses of its column.
type IQ3DRouter struct {
	*pipeline

	shared []*arbitration.Shared
}

// Layer returns the z coordinate of the router.
func (r *IQ3DRouter) Layer() int {
	return r.layer
}

// AddVerticalChannel connects the router to the bus that carries flits in
// direction dir. The router becomes both a source and a sink of the bus. The
// arbiter is shared by all routers of the column.
func (r *IQ3DRouter) AddVerticalChannel(
	dir routing.Direction,
	bus *channel.VerticalChannel,
	arb *arbitration.Shared,
) {
	if !dir.IsVertical() {
		log.Panicf("%s: %s is not a vertical direction", r.name, dir)
	}

	r.addOutput(&outputPort{
		dir:     dir,
		bus:     bus,
		shared:  arb,
		tracker: bus.Tracker(),
	})
	r.addInput(&inputPort{
		dir:     dir,
		bus:     bus,
		credits: bus.CreditChannel(),
	})

	port := r.ports[dir]
	bus.RegisterSource(r.id, port)
	bus.RegisterSink(r.id, port)

	r.shared = append(r.shared, arb)
}

// EvaluateAfterSwitchAllocation sends the flits that won their vertical bus
// and then issues the credits of the cycle.
func (r *IQ3DRouter) EvaluateAfterSwitchAllocation(now sim.VTimeInCycle) {
	r.resolveVertical(now)
	r.issueCredits(now)
}

// ClearVerticalArbiters prepares the shared arbiters for the next cycle.
func (r *IQ3DRouter) ClearVerticalArbiters() {
	for _, arb := range r.shared {
		arb.Clear()
	}
}
