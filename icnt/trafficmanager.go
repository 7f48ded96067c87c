package icnt

import (
	"fmt"
	"io"
	"log"

	"github.com/sarchlab/icnt3d/noc/messaging"
	"github.com/sarchlab/icnt3d/noc/networking"
	"github.com/sarchlab/icnt3d/noc/networking/channel"
	"github.com/sarchlab/icnt3d/sim"
)

// nodePort is the interface side of one network node on one subnet.
type nodePort struct {
	node int

	injectQueue sim.Buffer
	injectVCs   *channel.CreditTracker
	injectVC    int
	vcCursor    int

	eject    []sim.Buffer
	boundary []*BoundaryBuffer
	ejected  []*messaging.Flit

	popTurn int
}

// subnet drives the injection and ejection of one network.
type subnet struct {
	index    int
	net      *networking.Network
	flitBits int
	nodes    []*nodePort
	stats    *Stats
}

func newSubnet(
	index int,
	net *networking.Network,
	flitBits, numVCs, vcBufSize int,
	injectCap, ejectCap int,
) *subnet {
	s := &subnet{
		index:    index,
		net:      net,
		flitBits: flitBits,
		stats:    newStats(index),
	}

	s.nodes = make([]*nodePort, net.NumNodes())
	for node := range s.nodes {
		name := fmt.Sprintf("%s.Node[%d]", net.Name(), node)
		p := &nodePort{
			node:        node,
			injectQueue: sim.NewBuffer(name+".InjectQueue", injectCap),
			injectVCs:   channel.NewCreditTracker(1, numVCs, vcBufSize),
			injectVC:    -1,
			eject:       make([]sim.Buffer, numVCs),
			boundary:    make([]*BoundaryBuffer, numVCs),
		}

		for vc := 0; vc < numVCs; vc++ {
			p.eject[vc] = sim.NewBuffer(
				fmt.Sprintf("%s.EjectBuf[%d]", name, vc), ejectCap)
			p.boundary[vc] = &BoundaryBuffer{}
		}

		s.nodes[node] = p
	}

	return s
}

func (s *subnet) hasRoom(node, numFlits int) bool {
	q := s.nodes[node].injectQueue
	return q.Size()+numFlits <= q.Capacity()
}

func (s *subnet) enqueue(node int, flits []*messaging.Flit) {
	q := s.nodes[node].injectQueue
	for _, f := range flits {
		q.Push(f)
	}
}

// step moves flits between the interface buffers and the network channels
// of every node. The network itself is advanced by the caller.
func (ic *Interconnect) step(s *subnet, now sim.VTimeInCycle) {
	for _, p := range s.nodes {
		ep := s.net.Endpoint(p.node)

		ic.receiveInjectCredits(p, ep, now)

		for {
			f, ok := ep.Eject.Receive(now)
			if !ok {
				break
			}

			ic.WriteOutBuffer(s.index, p.node, f)
		}

		ic.Transfer2BoundaryBuffer(s.index, p.node)
		ic.returnEjectCredits(s, p, ep, now)
		ic.inject(s, p, ep, now)
	}
}

func (ic *Interconnect) receiveInjectCredits(
	p *nodePort,
	ep networking.Endpoint,
	now sim.VTimeInCycle,
) {
	for {
		c, ok := ep.InjectCredit.Receive(now)
		if !ok {
			return
		}

		for _, vc := range c.VCs {
			p.injectVCs.Return(0, vc)
		}

		ic.ctx.CreditPool.Release(c)
	}
}

// WriteOutBuffer puts a flit that left the network into the ejection buffer
// of its VC. Overflowing the buffer means credits were lost upstream.
func (ic *Interconnect) WriteOutBuffer(subnet, node int, f *messaging.Flit) {
	buf := ic.subnets[subnet].nodes[node].eject[f.VC]
	if !buf.CanPush() {
		log.Panicf("%s: ejection overflow, capacity %d, flit %s",
			buf.Name(), buf.Capacity(), f)
	}

	buf.Push(f)
}

// Transfer2BoundaryBuffer moves at most one flit per VC from the ejection
// buffers into the boundary buffers. The moved flits wait in the ejected
// queue until their credits are returned.
func (ic *Interconnect) Transfer2BoundaryBuffer(subnet, node int) {
	p := ic.subnets[subnet].nodes[node]

	for vc, buf := range p.eject {
		if buf.Size() == 0 || p.boundary[vc].Size() >= ic.cfg.BoundaryBufferSize {
			continue
		}

		f := buf.Pop().(*messaging.Flit)
		if f.Head && f.Dest != node {
			log.Panicf("flit %s ejected at node %d", f, node)
		}

		p.boundary[vc].PushFlitData(f.PacketID, f.Payload, f.Tail)
		p.ejected = append(p.ejected, f)
	}
}

// GetEjectedFlit removes the oldest flit that has been moved to the
// boundary buffer and still owes a credit. It returns nil if there is none.
func (ic *Interconnect) GetEjectedFlit(subnet, node int) *messaging.Flit {
	p := ic.subnets[subnet].nodes[node]
	if len(p.ejected) == 0 {
		return nil
	}

	f := p.ejected[0]
	p.ejected[0] = nil
	p.ejected = p.ejected[1:]

	return f
}

func (ic *Interconnect) returnEjectCredits(
	s *subnet,
	p *nodePort,
	ep networking.Endpoint,
	now sim.VTimeInCycle,
) {
	var c *messaging.Credit

	for f := ic.GetEjectedFlit(s.index, p.node); f != nil; f = ic.GetEjectedFlit(s.index, p.node) {
		if c == nil {
			c = ic.ctx.CreditPool.Allocate()
			c.PrevRouter = p.node
			c.Head = f.Head
		}

		c.AddVC(f.VC)
		c.Tail = f.Tail
		s.stats.CreditsReturned++
		s.stats.EjectedFlits++

		if f.Tail {
			ic.retire(s, f, now)
		}

		ic.ctx.FlitPool.Release(f)
	}

	if c != nil {
		ep.EjectCredit.Send(c, now)
	}
}

func (ic *Interconnect) retire(s *subnet, f *messaging.Flit, now sim.VTimeInCycle) {
	rec := PacketRecord{
		PacketID:       f.PacketID,
		Subnet:         s.index,
		Type:           f.Type.String(),
		SrcNode:        f.Src,
		DestNode:       f.Dest,
		SrcDevice:      ic.nodeMap.Device(f.Src),
		DestDevice:     ic.nodeMap.Device(f.Dest),
		CreateCycle:    uint64(f.InjectCycle),
		NetworkCycle:   uint64(f.NetworkCycle),
		EjectCycle:     uint64(now),
		PacketLatency:  uint64(now - f.InjectCycle),
		NetworkLatency: uint64(now - f.NetworkCycle),
		Hops:           f.Hops,
	}

	s.stats.record(rec)

	if ic.recorder != nil {
		ic.recorder.InsertData(packetTable, rec)
	}

	ic.invoke(HookPosPacketEjected, now, rec)
}

// inject sends at most one flit of the node into the network. A head flit
// first claims a free VC of the local router port.
func (ic *Interconnect) inject(
	s *subnet,
	p *nodePort,
	ep networking.Endpoint,
	now sim.VTimeInCycle,
) {
	item := p.injectQueue.Peek()
	if item == nil {
		return
	}

	f := item.(*messaging.Flit)

	if p.injectVC < 0 {
		if !f.Head {
			log.Panicf("flit %s injected without a head", f)
		}

		vc, ok := p.injectVCs.FirstFree(0, p.vcCursor)
		if !ok {
			return
		}

		p.injectVCs.Acquire(0, vc)
		p.injectVC = vc
		p.vcCursor = (vc + 1) % p.injectVCs.NumVCs()
	}

	if p.injectVCs.Available(0, p.injectVC) == 0 {
		return
	}

	p.injectQueue.Pop()
	p.injectVCs.Consume(0, p.injectVC)

	f.VC = p.injectVC
	f.NetworkCycle = now
	ep.Inject.Send(f, now)
	s.stats.InjectedFlits++

	if f.Tail {
		p.injectVCs.Release(0, p.injectVC)
		p.injectVC = -1
	}
}

func (s *subnet) busy() bool {
	for _, p := range s.nodes {
		if p.injectQueue.Size() > 0 || len(p.ejected) > 0 {
			return true
		}

		for vc := range p.eject {
			if p.eject[vc].Size() > 0 || p.boundary[vc].HasPacket() {
				return true
			}
		}
	}

	return false
}

func (s *subnet) dumpState(w io.Writer) {
	for _, p := range s.nodes {
		if n := p.injectQueue.Size(); n > 0 {
			fmt.Fprintf(w, "  %s: %d flits\n", p.injectQueue.Name(), n)
		}

		for vc := range p.eject {
			if n := p.eject[vc].Size(); n > 0 {
				fmt.Fprintf(w, "  %s: %d flits\n", p.eject[vc].Name(), n)
			}

			b := p.boundary[vc]
			if b.Size() > 0 {
				fmt.Fprintf(w, "  %s.Node[%d].Boundary[%d]: %d flits, %d packets\n",
					s.net.Name(), p.node, vc, b.Size(), b.packets)
			}
		}
	}

	s.net.DumpState(w)
}
