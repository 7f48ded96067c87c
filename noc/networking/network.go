package networking

import (
	"fmt"
	"io"

	"github.com/sarchlab/icnt3d/noc/networking/channel"
	"github.com/sarchlab/icnt3d/noc/networking/router"
	"github.com/sarchlab/icnt3d/noc/networking/routing"
	"github.com/sarchlab/icnt3d/power"
	"github.com/sarchlab/icnt3d/sim"
)

// A Topology builds the routers and channels of one subnet.
type Topology interface {
	Name() string
	NumNodes() int

	// AverageDistance is the mean number of hops on a minimal path between
	// two distinct nodes.
	AverageDistance() float64

	Build(ctx *Context, subnet int, p Params) (*Network, error)
}

// Endpoint holds the channels between a network node and the interface.
type Endpoint struct {
	Inject       *channel.FlitChannel
	InjectCredit *channel.CreditChannel
	Eject        *channel.FlitChannel
	EjectCredit  *channel.CreditChannel
}

// Network owns the routers and channels of one subnet.
type Network struct {
	name   string
	subnet int
	ctx    *Context

	routers        []router.Router
	channels       []*channel.FlitChannel
	creditChannels []*channel.CreditChannel
	buses          []*channel.VerticalChannel
	endpoints      []Endpoint

	cycles uint64
}

// NewNetwork creates an empty network with numChannels planar channel slots.
func NewNetwork(name string, subnet int, ctx *Context, numChannels int) *Network {
	return &Network{
		name:           name,
		subnet:         subnet,
		ctx:            ctx,
		channels:       make([]*channel.FlitChannel, numChannels),
		creditChannels: make([]*channel.CreditChannel, numChannels),
	}
}

// Name returns the name of the network.
func (n *Network) Name() string {
	return n.name
}

// Subnet returns the index of the subnet that the network models.
func (n *Network) Subnet() int {
	return n.subnet
}

// Context returns the context the network is built under.
func (n *Network) Context() *Context {
	return n.ctx
}

// AddRouter appends a router. Routers are evaluated in the order they are
// added.
func (n *Network) AddRouter(r router.Router) {
	n.ctx.Attach(r)
	n.routers = append(n.routers, r)
}

// Routers returns all the routers.
func (n *Network) Routers() []router.Router {
	return n.routers
}

// Router returns the router with the given index.
func (n *Network) Router(i int) router.Router {
	return n.routers[i]
}

// Channel returns the planar channel at index i and its credit channel,
// creating them if needed.
func (n *Network) Channel(i, latency int) (
	*channel.FlitChannel,
	*channel.CreditChannel,
) {
	if n.channels[i] == nil {
		name := fmt.Sprintf("%s.Chan[%d]", n.name, i)
		n.channels[i] = channel.NewFlitChannel(name, latency)
		n.creditChannels[i] = channel.NewCreditChannel(name+".Credit", latency)
		n.ctx.Attach(n.channels[i])
	}

	return n.channels[i], n.creditChannels[i]
}

// Channels returns the planar channels. Slots of missing links are nil.
func (n *Network) Channels() []*channel.FlitChannel {
	return n.channels
}

// AddVerticalChannel appends a vertical bus.
func (n *Network) AddVerticalChannel(bus *channel.VerticalChannel) {
	n.ctx.Attach(bus)
	n.buses = append(n.buses, bus)
}

// VerticalChannels returns the vertical buses.
func (n *Network) VerticalChannels() []*channel.VerticalChannel {
	return n.buses
}

// ConnectEndpoint creates the injection and ejection channels of a node and
// wires them to the local port of r. Nodes must be connected in index order.
func (n *Network) ConnectEndpoint(node int, r router.Router, p Params) {
	if node != len(n.endpoints) {
		panic(fmt.Sprintf("endpoint %d connected out of order", node))
	}

	name := fmt.Sprintf("%s.Node[%d]", n.name, node)
	ep := Endpoint{
		Inject:       channel.NewFlitChannel(name+".Inject", p.ChannelLatency),
		InjectCredit: channel.NewCreditChannel(name+".InjectCredit", p.ChannelLatency),
		Eject:        channel.NewFlitChannel(name+".Eject", p.ChannelLatency),
		EjectCredit:  channel.NewCreditChannel(name+".EjectCredit", p.ChannelLatency),
	}

	r.AddInputChannel(routing.Local, ep.Inject, ep.InjectCredit)
	r.AddOutputChannel(routing.Local, ep.Eject, ep.EjectCredit, p.EjectBufSize)

	n.endpoints = append(n.endpoints, ep)
}

// NumNodes returns the number of connected endpoints.
func (n *Network) NumNodes() int {
	return len(n.endpoints)
}

// Endpoint returns the channels of a node.
func (n *Network) Endpoint(node int) Endpoint {
	return n.endpoints[node]
}

// Advance evaluates one cycle. All routers run their main pipeline first.
// Vertical bus arbitration is resolved only after every router has posted
// its requests. Vertical credits are applied last.
func (n *Network) Advance(now sim.VTimeInCycle) {
	for _, r := range n.routers {
		r.Evaluate(now)
	}

	for _, r := range n.routers {
		r.EvaluateAfterSwitchAllocation(now)
	}

	for _, r := range n.routers {
		r.ClearVerticalArbiters()
	}

	for _, bus := range n.buses {
		bus.ApplyCredits(now, n.ctx.CreditPool)
	}

	n.cycles++
}

// Cycles returns the number of evaluated cycles.
func (n *Network) Cycles() uint64 {
	return n.cycles
}

// FlitsInFlight counts the flits on the channels of the network.
func (n *Network) FlitsInFlight() int {
	count := 0

	for _, ch := range n.channels {
		if ch != nil {
			count += ch.InFlight()
		}
	}

	for _, bus := range n.buses {
		count += bus.InFlight()
	}

	for _, ep := range n.endpoints {
		count += ep.Inject.InFlight() + ep.Eject.InFlight()
	}

	return count
}

// Idle tells if no flit is inside the routers or on the channels.
func (n *Network) Idle() bool {
	for _, r := range n.routers {
		if !r.Idle() {
			return false
		}
	}

	return n.FlitsInFlight() == 0
}

// ActivityReport collects the activity of the routers and channels.
func (n *Network) ActivityReport(flitWidth int, freqGHz float64) power.ActivityReport {
	report := power.ActivityReport{
		Subnet:       n.subnet,
		Cycles:       n.cycles,
		FlitWidth:    flitWidth,
		FrequencyGHz: freqGHz,
	}

	for _, r := range n.routers {
		report.Routers = append(report.Routers, r.Activity())
	}

	for _, ch := range n.channels {
		if ch == nil {
			continue
		}

		report.Channels = append(report.Channels, power.ChannelActivity{
			Name:         ch.Name(),
			Flits:        ch.TotalItems(),
			ActiveCycles: ch.ActiveCycles(),
		})
	}

	for _, bus := range n.buses {
		report.Channels = append(report.Channels, power.ChannelActivity{
			Name:         bus.Name(),
			Vertical:     true,
			Flits:        bus.TotalItems(),
			ActiveCycles: bus.ActiveCycles(),
		})
	}

	return report
}

// DumpState writes the routers and channels that hold flits.
func (n *Network) DumpState(w io.Writer) {
	fmt.Fprintf(w, "%s (subnet %d) at cycle %d\n", n.name, n.subnet, n.cycles)

	for _, r := range n.routers {
		r.DumpState(w)
	}

	for _, ch := range n.channels {
		if ch != nil && ch.InFlight() > 0 {
			fmt.Fprintf(w, "  %s: %d flits in flight\n", ch.Name(), ch.InFlight())
		}
	}

	for _, bus := range n.buses {
		if bus.InFlight() > 0 {
			fmt.Fprintf(w, "  %s: %d flits in flight\n", bus.Name(), bus.InFlight())
		}
	}
}
