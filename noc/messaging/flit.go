package messaging

import (
	"fmt"

	"github.com/sarchlab/icnt3d/sim"
)

// Flit is the smallest trasferring unit on a network.
type Flit struct {
	Handle Handle

	ID       uint64
	PacketID string
	Type     PacketType
	Head     bool
	Tail     bool

	// Src and Dest are network node indices.
	Src  int
	Dest int

	VC        int
	Class     int
	SrcRouter int
	Subnet    int

	// Payload is only set on the tail flit.
	Payload interface{}

	InjectCycle  sim.VTimeInCycle
	NetworkCycle sim.VTimeInCycle
	Hops         int
}

func (f *Flit) String() string {
	kind := "body"
	switch {
	case f.Head && f.Tail:
		kind = "single"
	case f.Head:
		kind = "head"
	case f.Tail:
		kind = "tail"
	}

	return fmt.Sprintf("flit-%d[%s,%s,%d->%d,vc%d]",
		f.ID, f.PacketID, kind, f.Src, f.Dest, f.VC)
}

// FlitBuilder can build flits
type FlitBuilder struct {
	pool       *FlitPool
	packetID   string
	packetType PacketType
	src, dest  int
	subnet     int
	class      int
	now        sim.VTimeInCycle
}

// MakeFlitBuilder creates a FlitBuilder that allocates flits from the pool.
func MakeFlitBuilder(pool *FlitPool) FlitBuilder {
	return FlitBuilder{pool: pool}
}

// WithPacketID sets the ID of the packet that the flits belong to.
func (b FlitBuilder) WithPacketID(id string) FlitBuilder {
	b.packetID = id
	return b
}

// WithType sets the packet type.
func (b FlitBuilder) WithType(t PacketType) FlitBuilder {
	b.packetType = t
	return b
}

// WithSrc sets the source node.
func (b FlitBuilder) WithSrc(src int) FlitBuilder {
	b.src = src
	return b
}

// WithDest sets the destination node.
func (b FlitBuilder) WithDest(dest int) FlitBuilder {
	b.dest = dest
	return b
}

// WithSubnet sets the subnet that the flits travel on.
func (b FlitBuilder) WithSubnet(subnet int) FlitBuilder {
	b.subnet = subnet
	return b
}

// WithClass sets the traffic class.
func (b FlitBuilder) WithClass(class int) FlitBuilder {
	b.class = class
	return b
}

// WithInjectCycle sets the cycle at which the packet is generated.
func (b FlitBuilder) WithInjectCycle(now sim.VTimeInCycle) FlitBuilder {
	b.now = now
	return b
}

// Build fragments a packet into numFlit flits. The first flit is the head,
// the last is the tail, and only the tail carries the payload.
func (b FlitBuilder) Build(numFlit int, payload interface{}) []*Flit {
	if numFlit <= 0 {
		panic("a packet must have at least one flit")
	}

	if b.pool == nil {
		panic("flit builder requires a pool")
	}

	flits := make([]*Flit, numFlit)
	for i := 0; i < numFlit; i++ {
		f := b.pool.Allocate()
		f.PacketID = b.packetID
		f.Type = b.packetType
		f.Src = b.src
		f.Dest = b.dest
		f.Subnet = b.subnet
		f.Class = b.class
		f.InjectCycle = b.now
		f.SrcRouter = -1
		f.VC = -1
		f.Head = i == 0
		f.Tail = i == numFlit-1

		if f.Tail {
			f.Payload = payload
		}

		flits[i] = f
	}

	return flits
}
