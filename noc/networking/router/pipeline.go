package router

import (
	"fmt"
	"io"
	"log"

	"github.com/sarchlab/icnt3d/noc/messaging"
	"github.com/sarchlab/icnt3d/noc/networking/arbitration"
	"github.com/sarchlab/icnt3d/noc/networking/channel"
	"github.com/sarchlab/icnt3d/noc/networking/routing"
	"github.com/sarchlab/icnt3d/power"
	"github.com/sarchlab/icnt3d/sim"
)

// pipeline holds the stages that both router variants share.
type pipeline struct {
	sim.HookableBase

	name      string
	id        int
	layer     int
	numVCs    int
	vcBufSize int

	table      routing.Table
	vcArbKind  string
	swArbKind  string
	creditPool *messaging.CreditPool

	ports   map[routing.Direction]int
	inputs  []*inputPort
	outputs []*outputPort
	outIdx  map[routing.Direction]int
	inIdx   map[routing.Direction]int

	vaRequests []vaRequest
	pending    []verticalGrant

	activity power.RouterActivity
}

// Name returns the name of the router.
func (r *pipeline) Name() string {
	return r.name
}

// ID returns the index of the router.
func (r *pipeline) ID() int {
	return r.id
}

// NumPorts returns the number of wired directions.
func (r *pipeline) NumPorts() int {
	return len(r.ports)
}

func (r *pipeline) portOf(dir routing.Direction) int {
	p, found := r.ports[dir]
	if !found {
		p = len(r.ports)
		r.ports[dir] = p
	}

	return p
}

// AddInputChannel connects an input channel.
func (r *pipeline) AddInputChannel(
	dir routing.Direction,
	flits *channel.FlitChannel,
	credits *channel.CreditChannel,
) {
	r.addInput(&inputPort{dir: dir, flits: flits, credits: credits})
}

// AddOutputChannel connects an output channel.
func (r *pipeline) AddOutputChannel(
	dir routing.Direction,
	flits *channel.FlitChannel,
	credits *channel.CreditChannel,
	depth int,
) {
	r.addOutput(&outputPort{
		dir:     dir,
		flits:   flits,
		credits: credits,
		tracker: channel.NewCreditTracker(1, r.numVCs, depth),
	})
}

func (r *pipeline) addInput(in *inputPort) int {
	if _, found := r.inIdx[in.dir]; found {
		log.Panicf("%s: input %s connected twice", r.name, in.dir)
	}

	r.portOf(in.dir)

	in.vcs = make([]*virtualChannel, r.numVCs)
	for i := range in.vcs {
		in.vcs[i] = &virtualChannel{
			buf: sim.NewBuffer(
				fmt.Sprintf("%s.In%s.VC%d", r.name, in.dir, i),
				r.vcBufSize),
			expectHead: true,
		}
	}

	in.arb = arbitration.New(r.swArbKind, r.numVCs)
	in.candidate = -1

	r.inIdx[in.dir] = len(r.inputs)
	r.inputs = append(r.inputs, in)

	return r.inIdx[in.dir]
}

func (r *pipeline) addOutput(out *outputPort) int {
	if _, found := r.outIdx[out.dir]; found {
		log.Panicf("%s: output %s connected twice", r.name, out.dir)
	}

	if out.tracker.NumVCs() != r.numVCs {
		log.Panicf("%s: output %s has %d vcs, router has %d",
			r.name, out.dir, out.tracker.NumVCs(), r.numVCs)
	}

	r.portOf(out.dir)

	maxClients := int(routing.NumDirections) * r.numVCs
	out.vcArbs = make([][]arbitration.Arbiter, out.tracker.NumTargets())
	for t := range out.vcArbs {
		out.vcArbs[t] = make([]arbitration.Arbiter, r.numVCs)
		for v := range out.vcArbs[t] {
			out.vcArbs[t][v] = arbitration.New(r.vcArbKind, maxClients)
		}
	}

	out.swArb = arbitration.New(r.swArbKind, int(routing.NumDirections))

	r.outIdx[out.dir] = len(r.outputs)
	r.outputs = append(r.outputs, out)

	return r.outIdx[out.dir]
}

// Evaluate runs receive, route compute, VC allocation, switch allocation, and
// the crossbar traversal of the planar winners.
func (r *pipeline) Evaluate(now sim.VTimeInCycle) {
	r.receiveFlits(now)
	r.receiveCredits(now)
	r.computeRoutes()
	r.allocateVCs()
	r.allocateSwitch(now)
}

func (r *pipeline) receiveFlits(now sim.VTimeInCycle) {
	for _, in := range r.inputs {
		for {
			var (
				f  *messaging.Flit
				ok bool
			)

			if in.bus != nil {
				f, ok = in.bus.ReceiveFor(r.id, now)
			} else {
				f, ok = in.flits.Receive(now)
			}

			if !ok {
				break
			}

			r.acceptFlit(in, f, now)
		}
	}
}

func (r *pipeline) acceptFlit(
	in *inputPort,
	f *messaging.Flit,
	now sim.VTimeInCycle,
) {
	if f.VC < 0 || f.VC >= r.numVCs {
		log.Panicf("%s: %s arrived on invalid vc", r.name, f)
	}

	vc := in.vcs[f.VC]
	if !vc.buf.CanPush() {
		log.Panicf("%s: %s overflows input %s, sent without credit",
			r.name, f, in.dir)
	}

	if f.Head != vc.expectHead {
		log.Panicf("%s: %s interleaves packets on input %s vc %d",
			r.name, f, in.dir, f.VC)
	}

	vc.expectHead = f.Tail
	f.Hops++
	vc.buf.Push(f)

	r.activity.BufferWrites++
	if in.dir == routing.Local {
		r.activity.InjectedFlits++
	}

	r.invoke(HookPosFlitArrive, f, now)
}

func (r *pipeline) receiveCredits(now sim.VTimeInCycle) {
	for _, out := range r.outputs {
		if out.credits == nil {
			continue
		}

		for {
			c, ok := out.credits.Receive(now)
			if !ok {
				break
			}

			for _, vc := range c.VCs {
				out.tracker.Return(0, vc)
			}

			r.creditPool.Release(c)
		}
	}
}

func (r *pipeline) computeRoutes() {
	for _, in := range r.inputs {
		for _, vc := range in.vcs {
			if vc.stage != vcIdle || vc.buf.Size() == 0 {
				continue
			}

			f := vc.buf.Peek().(*messaging.Flit)
			if !f.Head {
				log.Panicf("%s: %s at the front of an idle vc", r.name, f)
			}

			dir := r.table.FindPort(f.Dest)

			outIdx, found := r.outIdx[dir]
			if !found {
				log.Panicf("%s: no output towards %s for %s",
					r.name, dir, f)
			}

			vc.outPort = outIdx
			vc.target = 0

			if bus := r.outputs[outIdx].bus; bus != nil {
				vc.target = bus.Layer(f.Dest)
			}

			vc.stage = vcWaitingVC
		}
	}
}

func (r *pipeline) allocateVCs() {
	r.vaRequests = r.vaRequests[:0]

	for pi, in := range r.inputs {
		for vi, vc := range in.vcs {
			if vc.stage != vcWaitingVC {
				continue
			}

			out := r.outputs[vc.outPort]

			outVC, ok := r.pickOutputVC(out, vc.target, vi)
			if !ok {
				continue
			}

			arb := out.vcArbs[vc.target][outVC]
			if arb.NumRequests() == 0 {
				r.vaRequests = append(r.vaRequests,
					vaRequest{out: vc.outPort, target: vc.target, outVC: outVC})
			}

			arb.Request(pi*r.numVCs+vi, 0)
		}
	}

	for _, req := range r.vaRequests {
		out := r.outputs[req.out]
		arb := out.vcArbs[req.target][req.outVC]

		winner, ok := arb.Arbitrate()
		arb.Clear()
		r.activity.VCArbitrations++

		if !ok {
			continue
		}

		vc := r.inputs[winner/r.numVCs].vcs[winner%r.numVCs]
		out.tracker.Acquire(req.target, req.outVC)
		vc.outVC = req.outVC
		vc.stage = vcActive
	}
}

// pickOutputVC prefers the downstream VC with the same index as the input
// VC, and otherwise takes the lowest free one.
func (r *pipeline) pickOutputVC(out *outputPort, target, own int) (int, bool) {
	if out.tracker.IsFree(target, own) {
		return own, true
	}

	return out.tracker.FirstFree(target, 0)
}

func (r *pipeline) canTraverse(vc *virtualChannel) bool {
	if vc.stage != vcActive || vc.buf.Size() == 0 {
		return false
	}

	out := r.outputs[vc.outPort]

	return out.tracker.Available(vc.target, vc.outVC) > 0
}

// allocateSwitch is a separable input-first allocator. Each input port
// nominates one VC, then each output port grants one input port.
func (r *pipeline) allocateSwitch(now sim.VTimeInCycle) {
	for pi, in := range r.inputs {
		in.candidate = -1

		for vi, vc := range in.vcs {
			if r.canTraverse(vc) {
				in.arb.Request(vi, 0)
			}
		}

		vi, ok := in.arb.Arbitrate()
		in.arb.Clear()

		if !ok {
			continue
		}

		in.candidate = vi
		r.outputs[in.vcs[vi].outPort].swArb.Request(pi, 0)
	}

	for oi, out := range r.outputs {
		if out.swArb.NumRequests() == 0 {
			continue
		}

		pi, _ := out.swArb.Arbitrate()
		out.swArb.Clear()
		r.activity.SwitchArbitrations++

		vi := r.inputs[pi].candidate

		if out.bus != nil {
			out.shared.Request(r.layer, 0)
			r.pending = append(r.pending, verticalGrant{in: pi, vc: vi, out: oi})
			r.activity.VerticalRequests++

			continue
		}

		r.traverse(now, pi, vi)
	}
}

func (r *pipeline) traverse(now sim.VTimeInCycle, pi, vi int) {
	in := r.inputs[pi]
	vc := in.vcs[vi]
	out := r.outputs[vc.outPort]

	f := vc.buf.Pop().(*messaging.Flit)
	out.tracker.Consume(vc.target, vc.outVC)

	f.VC = vc.outVC
	f.SrcRouter = r.id

	r.activity.BufferReads++
	r.activity.CrossbarTraversals++

	switch {
	case out.bus != nil:
		out.bus.Send(f, now)
		r.activity.VerticalTraversals++
	default:
		out.flits.Send(f, now)
		if out.dir == routing.Local {
			r.activity.EjectedFlits++
		}
	}

	in.freed = append(in.freed, vi)

	if f.Tail {
		out.tracker.Release(vc.target, vc.outVC)
		vc.stage = vcIdle
	}

	r.invoke(HookPosFlitForward, f, now)
}

// resolveVertical sends the flits whose vertical bus request won.
func (r *pipeline) resolveVertical(now sim.VTimeInCycle) {
	for _, g := range r.pending {
		out := r.outputs[g.out]

		winner, ok := out.shared.Winner()
		if ok && winner == r.layer {
			r.activity.VerticalGrants++
			r.traverse(now, g.in, g.vc)
		}
	}

	r.pending = r.pending[:0]
}

// issueCredits sends one credit per input port that freed slots this cycle.
func (r *pipeline) issueCredits(now sim.VTimeInCycle) {
	for _, in := range r.inputs {
		if len(in.freed) == 0 {
			continue
		}

		c := r.creditPool.Allocate()
		c.PrevRouter = r.id

		for _, vc := range in.freed {
			c.AddVC(vc)
		}

		in.credits.Send(c, now)
		r.activity.CreditsSent++

		in.freed = in.freed[:0]
	}
}

// Idle tells if no flit is buffered in the router.
func (r *pipeline) Idle() bool {
	for _, in := range r.inputs {
		for _, vc := range in.vcs {
			if vc.buf.Size() > 0 || vc.stage != vcIdle {
				return false
			}
		}
	}

	return true
}

// Buffers returns the input VC buffers.
func (r *pipeline) Buffers() []sim.Buffer {
	bufs := make([]sim.Buffer, 0, len(r.inputs)*r.numVCs)
	for _, in := range r.inputs {
		for _, vc := range in.vcs {
			bufs = append(bufs, vc.buf)
		}
	}

	return bufs
}

// Activity returns the event counters of the router.
func (r *pipeline) Activity() power.RouterActivity {
	a := r.activity
	a.Router = r.id
	a.Name = r.name
	a.Ports = r.NumPorts()
	a.NumVCs = r.numVCs

	return a
}

// DumpState writes the non-empty VCs of the router.
func (r *pipeline) DumpState(w io.Writer) {
	for _, in := range r.inputs {
		for vi, vc := range in.vcs {
			if vc.buf.Size() == 0 && vc.stage == vcIdle {
				continue
			}

			front := "-"
			if f := vc.buf.Peek(); f != nil {
				front = f.(*messaging.Flit).String()
			}

			fmt.Fprintf(w, "  %s in %s vc %d: %d flits, %s, front %s\n",
				r.name, in.dir, vi, vc.buf.Size(), vc.stage, front)
		}
	}
}

func (r *pipeline) invoke(pos *sim.HookPos, f *messaging.Flit, now sim.VTimeInCycle) {
	if r.NumHooks() == 0 {
		return
	}

	r.InvokeHook(sim.HookCtx{
		Domain: r,
		Now:    now,
		Pos:    pos,
		Item:   f,
	})
}
