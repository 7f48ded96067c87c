package router

import (
	"fmt"

	"github.com/sarchlab/icnt3d/noc/messaging"
	"github.com/sarchlab/icnt3d/noc/networking/arbitration"
	"github.com/sarchlab/icnt3d/noc/networking/routing"
)

// Builder can build routers.
type Builder struct {
	id         int
	layer      int
	numVCs     int
	vcBufSize  int
	table      routing.Table
	vcArbKind  string
	swArbKind  string
	creditPool *messaging.CreditPool
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numVCs:    1,
		vcBufSize: 4,
		vcArbKind: arbitration.KindRoundRobin,
		swArbKind: arbitration.KindRoundRobin,
	}
}

// WithID sets the index of the router in the network.
func (b Builder) WithID(id int) Builder {
	b.id = id
	return b
}

// WithLayer sets the z coordinate of a 3D router.
func (b Builder) WithLayer(layer int) Builder {
	b.layer = layer
	return b
}

// WithNumVCs sets the number of virtual channels per port.
func (b Builder) WithNumVCs(n int) Builder {
	b.numVCs = n
	return b
}

// WithVCBufSize sets the number of flits each input VC can hold.
func (b Builder) WithVCBufSize(n int) Builder {
	b.vcBufSize = n
	return b
}

// WithRoutingTable sets the table that decides the output of each packet.
func (b Builder) WithRoutingTable(t routing.Table) Builder {
	b.table = t
	return b
}

// WithVCArbiter sets the kind of the VC allocation arbiters.
func (b Builder) WithVCArbiter(kind string) Builder {
	b.vcArbKind = kind
	return b
}

// WithSwitchArbiter sets the kind of the switch allocation arbiters.
func (b Builder) WithSwitchArbiter(kind string) Builder {
	b.swArbKind = kind
	return b
}

// WithCreditPool sets the pool that credits are allocated from.
func (b Builder) WithCreditPool(p *messaging.CreditPool) Builder {
	b.creditPool = p
	return b
}

// Build creates a planar router.
func (b Builder) Build(name string) *IQRouter {
	return &IQRouter{pipeline: b.buildPipeline(name)}
}

// Build3D creates a router with vertical bus support.
func (b Builder) Build3D(name string) *IQ3DRouter {
	return &IQ3DRouter{pipeline: b.buildPipeline(name)}
}

func (b Builder) buildPipeline(name string) *pipeline {
	b.routingTableMustBeGiven()
	b.creditPoolMustBeGiven()
	b.parametersMustBeValid()

	return &pipeline{
		name:       name,
		id:         b.id,
		layer:      b.layer,
		numVCs:     b.numVCs,
		vcBufSize:  b.vcBufSize,
		table:      b.table,
		vcArbKind:  b.vcArbKind,
		swArbKind:  b.swArbKind,
		creditPool: b.creditPool,
		ports:      make(map[routing.Direction]int),
		outIdx:     make(map[routing.Direction]int),
		inIdx:      make(map[routing.Direction]int),
	}
}

func (b Builder) routingTableMustBeGiven() {
	if b.table == nil {
		panic("router requires a routing table to operate")
	}
}

func (b Builder) creditPoolMustBeGiven() {
	if b.creditPool == nil {
		panic("router requires a credit pool to operate")
	}
}

func (b Builder) parametersMustBeValid() {
	if b.numVCs < 1 || b.vcBufSize < 1 {
		panic(fmt.Sprintf("router requires positive vc parameters, "+
			"got %d vcs of %d flits", b.numVCs, b.vcBufSize))
	}

	if !arbitration.ValidKind(b.vcArbKind) ||
		!arbitration.ValidKind(b.swArbKind) {
		panic(fmt.Sprintf("unknown arbiter %q or %q",
			b.vcArbKind, b.swArbKind))
	}
}
