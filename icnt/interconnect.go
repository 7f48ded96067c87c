// Package icnt connects a host (shader cores and memory partitions) to one
// or more cycle-accurate networks.
package icnt

import (
	"fmt"
	"io"
	"log"

	"github.com/sarchlab/icnt3d/config"
	"github.com/sarchlab/icnt3d/datarecording"
	"github.com/sarchlab/icnt3d/noc/messaging"
	"github.com/sarchlab/icnt3d/noc/networking"
	"github.com/sarchlab/icnt3d/power"
	"github.com/sarchlab/icnt3d/sim"
)

// Hook positions of the interconnect.
var (
	HookPosPacketPushed  = &sim.HookPos{Name: "ICNT Push"}
	HookPosPacketPopped  = &sim.HookPos{Name: "ICNT Pop"}
	HookPosPacketEjected = &sim.HookPos{Name: "ICNT Eject"}
)

// Interconnect is the host-facing side of the networks. All devices push
// packets into it and pop delivered packets from it.
type Interconnect struct {
	sim.HookableBase

	name     string
	cfg      *config.Config
	ctx      *networking.Context
	topology networking.Topology
	nodeMap  *NodeMap
	selector *selector
	subnets  []*subnet

	popSubnetTurn []int
	statsStart    sim.VTimeInCycle
	minHopsMean   float64

	recorder  datarecording.DataRecorder
	estimator power.Estimator
}

// CreateInterconnect builds an interconnect for nShader shader cores and
// nMem memory partitions.
func CreateInterconnect(
	cfg *config.Config,
	nShader, nMem int,
) (*Interconnect, error) {
	return MakeBuilder().
		WithConfig(cfg).
		WithShaders(nShader).
		WithMemories(nMem).
		Build("ICNT")
}

// Name returns the name of the interconnect.
func (ic *Interconnect) Name() string {
	return ic.name
}

// Config returns the configuration that the interconnect is built with.
func (ic *Interconnect) Config() *config.Config {
	return ic.cfg
}

// Context returns the simulation context shared by the subnets.
func (ic *Interconnect) Context() *networking.Context {
	return ic.ctx
}

// Topology returns the topology of every subnet.
func (ic *Interconnect) Topology() networking.Topology {
	return ic.topology
}

// NodeMap returns the device placement.
func (ic *Interconnect) NodeMap() *NodeMap {
	return ic.nodeMap
}

// Now returns the current cycle.
func (ic *Interconnect) Now() sim.VTimeInCycle {
	return ic.ctx.Now()
}

// NumSubnets returns the number of parallel networks.
func (ic *Interconnect) NumSubnets() int {
	return len(ic.subnets)
}

// Network returns the network of a subnet.
func (ic *Interconnect) Network(subnet int) *networking.Network {
	return ic.subnets[subnet].net
}

// Stats returns the traffic statistics of a subnet.
func (ic *Interconnect) Stats(subnet int) *Stats {
	return ic.subnets[subnet].stats
}

// Init starts a new measurement. The statistics are cleared while the
// packets in flight are kept.
func (ic *Interconnect) Init() {
	for _, s := range ic.subnets {
		s.stats.reset()
	}

	ic.statsStart = ic.ctx.Now()
}

// GetFlitSize returns the flit width of the default subnet in bits.
func (ic *Interconnect) GetFlitSize() int {
	return ic.cfg.FlitSize
}

// HasBuffer tells if a packet of size bytes from the device fits into the
// injection queue that the selection policy would use.
func (ic *Interconnect) HasBuffer(device, size int) bool {
	_, ok := ic.selectSubnet(device, size*8, false)
	return ok
}

// Push injects a packet of size bytes from device src to device dst. The
// caller must check HasBuffer first.
func (ic *Interconnect) Push(src, dst int, payload interface{}, size int) {
	if !ic.HasBuffer(src, size) {
		log.Panicf("%s: push from device %d without buffer space", ic.name, src)
	}

	c, ok := ic.selectSubnet(src, size*8, true)
	if !ok {
		log.Panicf("%s: no subnet can take the packet from device %d",
			ic.name, src)
	}

	if c.numFlits > ic.cfg.BoundaryBufferSize {
		log.Panicf("%s: packet of %d flits does not fit the boundary buffer "+
			"of %d flits", ic.name, c.numFlits, ic.cfg.BoundaryBufferSize)
	}

	t := ic.packetType(src, payload)
	class := 1
	if t.IsRequest() {
		class = 0
	}

	srcNode := ic.nodeMap.Node(src)
	now := ic.ctx.Now()
	flits := messaging.MakeFlitBuilder(ic.ctx.FlitPool).
		WithPacketID(ic.ctx.IDGen.Generate()).
		WithType(t).
		WithSrc(srcNode).
		WithDest(ic.nodeMap.Node(dst)).
		WithSubnet(c.subnet).
		WithClass(class).
		WithInjectCycle(now).
		Build(c.numFlits, payload)

	s := ic.subnets[c.subnet]
	s.enqueue(srcNode, flits)
	s.stats.InjectedPackets++

	ic.invoke(HookPosPacketPushed, now, flits[0])
}

func (ic *Interconnect) packetType(
	src int,
	payload interface{},
) messaging.PacketType {
	if typed, ok := payload.(messaging.Typed); ok {
		return typed.PacketType()
	}

	if ic.nodeMap.IsShader(src) {
		return messaging.ReadRequest
	}

	return messaging.ReadReply
}

// Pop returns the payload of one delivered packet for the device, or nil.
// The subnets and their VCs are visited round-robin, starting after the
// last one served.
func (ic *Interconnect) Pop(device int) interface{} {
	node := ic.nodeMap.Node(device)
	numSubnets := len(ic.subnets)
	start := ic.popSubnetTurn[node]

	for i := 0; i < numSubnets; i++ {
		sn := (start + i) % numSubnets
		p := ic.subnets[sn].nodes[node]
		numVCs := len(p.boundary)

		for j := 0; j < numVCs; j++ {
			vc := (p.popTurn + j) % numVCs
			if !p.boundary[vc].HasPacket() {
				continue
			}

			data := p.boundary[vc].PopPacket()
			p.popTurn = (vc + 1) % numVCs
			ic.popSubnetTurn[node] = (sn + 1) % numSubnets

			ic.invoke(HookPosPacketPopped, ic.ctx.Now(), data)

			return data
		}
	}

	return nil
}

// Advance clocks every subnet by one cycle.
func (ic *Interconnect) Advance() {
	now := ic.ctx.Now()

	for _, s := range ic.subnets {
		ic.step(s, now)
		s.net.Advance(now)
	}

	ic.ctx.Tick()
}

// Busy tells if any packet is still queued, in the network, or waiting to be
// popped.
func (ic *Interconnect) Busy() bool {
	if ic.ctx.FlitPool.Outstanding() > 0 {
		return true
	}

	for _, s := range ic.subnets {
		if s.busy() {
			return true
		}
	}

	return false
}

// Buffers returns the interface queues and the router buffers of every
// subnet.
func (ic *Interconnect) Buffers() []sim.Buffer {
	var bufs []sim.Buffer

	for _, s := range ic.subnets {
		for _, p := range s.nodes {
			bufs = append(bufs, p.injectQueue)
			bufs = append(bufs, p.eject...)
		}

		for _, r := range s.net.Routers() {
			bufs = append(bufs, r.Buffers()...)
		}
	}

	return bufs
}

// ActivityReports returns the activity of every subnet.
func (ic *Interconnect) ActivityReports() []power.ActivityReport {
	reports := make([]power.ActivityReport, 0, len(ic.subnets))
	for _, s := range ic.subnets {
		reports = append(reports,
			s.net.ActivityReport(s.flitBits, ic.cfg.FrequencyGHz))
	}

	return reports
}

// Summaries returns the statistics of every subnet since the last Init.
func (ic *Interconnect) Summaries() []Summary {
	cycles := uint64(ic.ctx.Now() - ic.statsStart)

	sums := make([]Summary, 0, len(ic.subnets))
	for _, s := range ic.subnets {
		sum := s.stats.Summarize(cycles, len(s.nodes))
		sum.MinHopsMean = ic.minHopsMean
		sums = append(sums, sum)
	}

	return sums
}

// DisplayStats writes the statistics of every subnet.
func (ic *Interconnect) DisplayStats(w io.Writer) {
	for _, sum := range ic.Summaries() {
		sum.write(w)
	}
}

// DisplayOverallStats writes the statistics, the channel utilization, and,
// if enabled, the activity and power of the whole run. Records go to the
// data recorder if one is attached.
func (ic *Interconnect) DisplayOverallStats(w io.Writer) error {
	sums := ic.Summaries()
	reports := ic.ActivityReports()

	fmt.Fprintf(w, "%s: %s, %d subnets, cycle %d\n",
		ic.name, ic.topology.Name(), len(ic.subnets), ic.ctx.Now())

	freq := sim.Freq(ic.cfg.FrequencyGHz) * sim.GHz
	fmt.Fprintf(w, "simulated time %.4e s at %.2f GHz\n",
		float64(freq.Time(ic.ctx.Now())), ic.cfg.FrequencyGHz)

	for i, sum := range sums {
		sum.write(w)
		writeUtilization(w, reports[i])
	}

	if ic.cfg.PrintActivity {
		for _, r := range reports {
			writeActivity(w, r)
		}
	}

	if ic.recorder != nil {
		ic.record(sums, reports)
	}

	if !ic.cfg.SimPower {
		return nil
	}

	if ic.estimator == nil {
		fmt.Fprintln(w, "power: no estimator attached")
		return nil
	}

	res, err := power.Collect(ic.estimator, reports)
	if err != nil {
		return fmt.Errorf("%s: %w", ic.name, err)
	}

	fmt.Fprintf(w, "power: dynamic energy %.4e J, leakage %.4e W, total %.4e W\n",
		res.DynamicEnergy, res.LeakagePower, res.TotalPower)

	return nil
}

func (ic *Interconnect) record(sums []Summary, reports []power.ActivityReport) {
	for _, sum := range sums {
		ic.recorder.InsertData(summaryTable, sum)
	}

	for _, r := range reports {
		for _, ch := range r.Channels {
			ic.recorder.InsertData(channelTable, channelRecord(r, ch))
		}

		for _, a := range r.Routers {
			ic.recorder.InsertData(activityTable, a)
		}
	}

	ic.recorder.Flush()
}

func channelRecord(r power.ActivityReport, ch power.ChannelActivity) ChannelRecord {
	rec := ChannelRecord{
		Subnet:       r.Subnet,
		Name:         ch.Name,
		Vertical:     ch.Vertical,
		Flits:        ch.Flits,
		ActiveCycles: ch.ActiveCycles,
	}

	if r.Cycles > 0 {
		rec.Utilization = float64(ch.ActiveCycles) / float64(r.Cycles)
	}

	return rec
}

func writeUtilization(w io.Writer, r power.ActivityReport) {
	var planar, vertical float64
	var numPlanar, numVertical int

	for _, ch := range r.Channels {
		u := channelRecord(r, ch).Utilization
		if ch.Vertical {
			vertical += u
			numVertical++
		} else {
			planar += u
			numPlanar++
		}
	}

	if numPlanar > 0 {
		fmt.Fprintf(w, "  planar channel utilization %.4f (%d channels)\n",
			planar/float64(numPlanar), numPlanar)
	}

	if numVertical > 0 {
		fmt.Fprintf(w, "  vertical channel utilization %.4f (%d buses)\n",
			vertical/float64(numVertical), numVertical)
	}
}

func writeActivity(w io.Writer, r power.ActivityReport) {
	for _, a := range r.Routers {
		fmt.Fprintf(w, "  %s: writes %d, reads %d, xbar %d, va %d, sa %d, "+
			"vreq %d, vgrant %d, credits %d\n",
			a.Name, a.BufferWrites, a.BufferReads, a.CrossbarTraversals,
			a.VCArbitrations, a.SwitchArbitrations,
			a.VerticalRequests, a.VerticalGrants, a.CreditsSent)
	}
}

// DisplayState writes every buffer that still holds flits. It is used to
// find out why a run does not drain.
func (ic *Interconnect) DisplayState(w io.Writer) {
	fmt.Fprintf(w, "%s state at cycle %d, %d flits outstanding\n",
		ic.name, ic.ctx.Now(), ic.ctx.FlitPool.Outstanding())

	for _, s := range ic.subnets {
		s.dumpState(w)
	}
}

func (ic *Interconnect) invoke(
	pos *sim.HookPos,
	now sim.VTimeInCycle,
	item interface{},
) {
	if ic.NumHooks() == 0 {
		return
	}

	ic.InvokeHook(sim.HookCtx{
		Domain: ic,
		Now:    now,
		Pos:    pos,
		Item:   item,
	})
}
