package channel

import (
	"fmt"
	"log"

	"github.com/sarchlab/icnt3d/noc/messaging"
	"github.com/sarchlab/icnt3d/sim"
)

// Endpoint identifies the router and port attached to a vertical bus.
type Endpoint struct {
	Router int
	Port   int
}

// VerticalChannel is a bus shared by all the routers in one vertical column.
// Every router of the column may drive it, and the flit is delivered to the
// router on the destination layer. The shared credit tracker holds one set of
// VCs per layer.
type VerticalChannel struct {
	*FlitChannel

	credits   *CreditChannel
	tracker   *CreditTracker
	layerSize int
	x, y      int
	up        bool

	sources []int
	sinks   []int

	sourcePort int
	sinkPort   int

	classActive []uint64
}

// VerticalChannelBuilder builds vertical channels.
type VerticalChannelBuilder struct {
	latency   int
	layers    int
	layerSize int
	numVCs    int
	vcBufSize int
	classes   int
}

// MakeVerticalChannelBuilder returns a builder with default parameters.
func MakeVerticalChannelBuilder() VerticalChannelBuilder {
	return VerticalChannelBuilder{
		latency:   1,
		layers:    1,
		layerSize: 1,
		numVCs:    1,
		vcBufSize: 1,
		classes:   1,
	}
}

// WithLatency sets the latency of the bus and its credit channel.
func (b VerticalChannelBuilder) WithLatency(n int) VerticalChannelBuilder {
	b.latency = n
	return b
}

// WithLayers sets the number of layers the bus spans and the number of
// routers in one layer.
func (b VerticalChannelBuilder) WithLayers(
	layers, layerSize int,
) VerticalChannelBuilder {
	b.layers = layers
	b.layerSize = layerSize

	return b
}

// WithVCs sets the number of VCs per router and their depth.
func (b VerticalChannelBuilder) WithVCs(
	numVCs, vcBufSize int,
) VerticalChannelBuilder {
	b.numVCs = numVCs
	b.vcBufSize = vcBufSize

	return b
}

// WithClasses sets the number of traffic classes counted for activity.
func (b VerticalChannelBuilder) WithClasses(n int) VerticalChannelBuilder {
	b.classes = n
	return b
}

// Build creates the bus of column (x, y) in one direction.
func (b VerticalChannelBuilder) Build(x, y int, up bool) *VerticalChannel {
	dir := "down"
	if up {
		dir = "up"
	}

	name := fmt.Sprintf("VBus[%d][%d].%s", x, y, dir)

	return &VerticalChannel{
		FlitChannel: NewFlitChannel(name, b.latency),
		credits:     NewCreditChannel(name+".Credit", b.latency),
		tracker:     NewCreditTracker(b.layers, b.numVCs, b.vcBufSize),
		layerSize:   b.layerSize,
		x:           x,
		y:           y,
		up:          up,
		sourcePort:  -1,
		sinkPort:    -1,
		classActive: make([]uint64, b.classes),
	}
}

// X returns the column x coordinate.
func (v *VerticalChannel) X() int { return v.x }

// Y returns the column y coordinate.
func (v *VerticalChannel) Y() int { return v.y }

// IsUp tells if the bus carries flits towards higher layers.
func (v *VerticalChannel) IsUp() bool { return v.up }

// CreditChannel returns the channel that carries credits back to the
// sources.
func (v *VerticalChannel) CreditChannel() *CreditChannel {
	return v.credits
}

// Tracker returns the credit tracker shared by all sources.
func (v *VerticalChannel) Tracker() *CreditTracker {
	return v.tracker
}

// Layer returns the layer of a router or node.
func (v *VerticalChannel) Layer(id int) int {
	return id / v.layerSize
}

// RegisterSource attaches a router as a driver of the bus. The port of the
// first registered source becomes the canonical source port.
func (v *VerticalChannel) RegisterSource(router, port int) {
	v.sources = append(v.sources, router)
	if v.sourcePort < 0 {
		v.sourcePort = port
	}
}

// RegisterSink attaches a router as a receiver of the bus. The port of the
// first registered sink becomes the canonical sink port.
func (v *VerticalChannel) RegisterSink(router, port int) {
	v.sinks = append(v.sinks, router)
	if v.sinkPort < 0 {
		v.sinkPort = port
	}
}

// Sources returns the registered source routers.
func (v *VerticalChannel) Sources() []int { return v.sources }

// Sinks returns the registered sink routers.
func (v *VerticalChannel) Sinks() []int { return v.sinks }

// Source returns the canonical port of a registered source router.
func (v *VerticalChannel) Source(router int) Endpoint {
	for _, s := range v.sources {
		if s == router {
			return Endpoint{Router: s, Port: v.sourcePort}
		}
	}

	log.Panicf("%s: router %d is not a source", v.Name(), router)

	return Endpoint{}
}

// Sink returns the sink router located on the same layer as id.
func (v *VerticalChannel) Sink(id int) Endpoint {
	layer := v.Layer(id)
	for _, s := range v.sinks {
		if v.Layer(s) == layer {
			return Endpoint{Router: s, Port: v.sinkPort}
		}
	}

	log.Panicf("%s: no sink on layer %d", v.Name(), layer)

	return Endpoint{}
}

// Send puts a flit on the bus and counts it for its traffic class.
func (v *VerticalChannel) Send(f *messaging.Flit, now sim.VTimeInCycle) {
	if f.Class >= 0 && f.Class < len(v.classActive) {
		v.classActive[f.Class]++
	}

	v.FlitChannel.Send(f, now)
}

// ClassActivity returns the number of flits sent for a class.
func (v *VerticalChannel) ClassActivity(class int) uint64 {
	return v.classActive[class]
}

// ReceiveFor returns the arrived flit if it is addressed to the layer of the
// given router.
func (v *VerticalChannel) ReceiveFor(
	router int,
	now sim.VTimeInCycle,
) (*messaging.Flit, bool) {
	f, ok := v.Peek(now)
	if !ok {
		return nil, false
	}

	if v.Sink(f.Dest).Router != router {
		return nil, false
	}

	return v.Receive(now)
}

// ApplyCredits returns the arrived credits to the shared tracker and releases
// them into the pool.
func (v *VerticalChannel) ApplyCredits(
	now sim.VTimeInCycle,
	pool *messaging.CreditPool,
) {
	for {
		c, ok := v.credits.Receive(now)
		if !ok {
			return
		}

		layer := v.Layer(c.PrevRouter)
		for _, vc := range c.VCs {
			v.tracker.Return(layer, vc)
		}

		pool.Release(c)
	}
}
