// Package acceptance drives an interconnect with shader to memory traffic
// and checks that every packet arrives exactly once at its destination.
package acceptance

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/iti/rngstream"

	"github.com/sarchlab/icnt3d/noc/messaging"
	"github.com/sarchlab/icnt3d/sim"
)

// ErrNotDrained is returned when the traffic does not drain within the
// cycle limit.
var ErrNotDrained = errors.New("traffic not drained")

// Default sizes of the generated packets, in bytes.
const (
	ControlSize = 8
	DataSize    = 64
)

type trafficMsg struct {
	ID   string
	Type messaging.PacketType
	Src  int
	Dst  int
	Size int
}

func (m *trafficMsg) PacketType() messaging.PacketType {
	return m.Type
}

func (m *trafficMsg) String() string {
	return fmt.Sprintf("%s %s %d->%d", m.ID, m.Type, m.Src, m.Dst)
}

// Test is a test case. Shaders send read and write requests to memories.
// Every request is answered with a reply once it reaches its memory.
type Test struct {
	ic      Interconnect
	nShader int
	agents  []*Agent
	rng     *rngstream.RngStream
	idGen   sim.IDGenerator
	stepper func(step func())
	cycles  uint64

	controlSize int
	dataSize    int

	msgs              []*trafficMsg
	receivedMsgs      []*trafficMsg
	receivedMsgsTable map[*trafficMsg]bool
}

// NewTest creates a new test. Devices [0, nShader) are shaders and the
// following nMem devices are memories.
func NewTest(ic Interconnect, nShader, nMem int, rate float64) *Test {
	if nShader <= 0 || nMem <= 0 {
		panic("the test needs at least one shader and one memory")
	}

	t := &Test{
		ic:                ic,
		nShader:           nShader,
		rng:               sim.NewRngStream("acceptance", 1, 0),
		idGen:             sim.NewSequentialIDGenerator("Msg"),
		stepper:           func(step func()) { step() },
		controlSize:       ControlSize,
		dataSize:          DataSize,
		receivedMsgsTable: make(map[*trafficMsg]bool),
	}

	for d := 0; d < nShader+nMem; d++ {
		t.agents = append(t.agents, NewAgent(d, rate, t))
	}

	return t
}

// WithSeed reseeds the traffic generator and every agent. Tests with the
// same seed generate the same traffic.
func (t *Test) WithSeed(seed uint64) *Test {
	t.rng = sim.NewRngStream("acceptance", seed, 0)

	for _, a := range t.agents {
		a.rng = agentRng(a.name, seed, a.device)
	}

	return t
}

// WithStepper wraps every simulated cycle, for example to let a monitor
// pause the run.
func (t *Test) WithStepper(stepper func(step func())) *Test {
	t.stepper = stepper
	return t
}

// WithPacketSizes sets the sizes, in bytes, of the packets without and with
// a data payload.
func (t *Test) WithPacketSizes(control, data int) *Test {
	t.controlSize = control
	t.dataSize = data

	return t
}

// Agents returns the agents, indexed by device.
func (t *Test) Agents() []*Agent {
	return t.agents
}

// Cycles returns the number of cycles the test has run.
func (t *Test) Cycles() uint64 {
	return t.cycles
}

// NumSent returns the number of messages created so far, replies included.
func (t *Test) NumSent() int {
	return len(t.msgs)
}

// NumReceived returns the number of messages delivered so far.
func (t *Test) NumReceived() int {
	return len(t.receivedMsgs)
}

// GenerateMsgs generates n requests from random shaders to random memories.
func (t *Test) GenerateMsgs(n uint64) {
	nMem := len(t.agents) - t.nShader

	for i := uint64(0); i < n; i++ {
		src := t.rng.RandInt(0, t.nShader-1)
		dst := t.nShader + t.rng.RandInt(0, nMem-1)

		msg := &trafficMsg{
			ID:   t.idGen.Generate(),
			Type: messaging.ReadRequest,
			Src:  src,
			Dst:  dst,
			Size: t.controlSize,
		}

		if t.rng.RandU01() < 0.5 {
			msg.Type = messaging.WriteRequest
			msg.Size = t.dataSize
		}

		t.enqueue(msg)
	}
}

func (t *Test) enqueue(msg *trafficMsg) {
	agent := t.agents[msg.Src]
	agent.MsgsToSend = append(agent.MsgsToSend, msg)
	t.msgs = append(t.msgs, msg)
}

// Step runs one cycle: agents inject, the interconnect advances, and agents
// consume what was delivered.
func (t *Test) Step() {
	for _, a := range t.agents {
		a.send(t.ic)
	}

	t.ic.Advance()
	t.cycles++

	for _, a := range t.agents {
		a.recv(t.ic)
	}
}

// Done tells if every message has been sent and delivered.
func (t *Test) Done() bool {
	for _, a := range t.agents {
		if !a.idle() {
			return false
		}
	}

	return !t.ic.Busy()
}

// Run steps until the traffic drains. It fails if that takes more than
// maxCycles cycles.
func (t *Test) Run(maxCycles uint64) error {
	for !t.Done() {
		if t.cycles >= maxCycles {
			return fmt.Errorf("%w: %d of %d messages received after %d cycles",
				ErrNotDrained, len(t.receivedMsgs), len(t.msgs), t.cycles)
		}

		t.stepper(t.Step)
	}

	return nil
}

func (t *Test) receiveMsg(msg *trafficMsg, recv *Agent) {
	t.msgMustBeReceivedAtItsDestination(msg, recv)
	t.msgMustNotBeReceivedBefore(msg)

	t.receivedMsgs = append(t.receivedMsgs, msg)

	if msg.Type.IsRequest() {
		t.reply(msg)
	}
}

func (t *Test) reply(req *trafficMsg) {
	rsp := &trafficMsg{
		ID:   t.idGen.Generate(),
		Type: messaging.ReadReply,
		Src:  req.Dst,
		Dst:  req.Src,
		Size: t.dataSize,
	}

	if req.Type == messaging.WriteRequest {
		rsp.Type = messaging.WriteReply
		rsp.Size = t.controlSize
	}

	t.enqueue(rsp)
}

func (t *Test) msgMustBeReceivedAtItsDestination(
	msg *trafficMsg,
	recv *Agent,
) {
	if msg.Dst != recv.device {
		panic(fmt.Sprintf("msg %s delivered to device %d", msg, recv.device))
	}
}

func (t *Test) msgMustNotBeReceivedBefore(msg *trafficMsg) {
	if _, found := t.receivedMsgsTable[msg]; found {
		panic(fmt.Sprintf("msg %s is double delivered", msg))
	}

	t.receivedMsgsTable[msg] = true
}

// MustHaveReceivedAllMsgs asserts that all the messages sent are received.
func (t *Test) MustHaveReceivedAllMsgs() {
	if len(t.msgs) == len(t.receivedMsgs) {
		return
	}

	for _, sentMsg := range t.msgs {
		if _, found := t.receivedMsgsTable[sentMsg]; !found {
			log.Printf("msg %s expected, but not received\n", sentMsg)
		}
	}

	panic("some messages are dropped")
}

// ReportBandwidthAchieved dumps the bandwidth observed by each agent, in
// bytes per cycle.
func (t *Test) ReportBandwidthAchieved(w io.Writer) {
	if t.cycles == 0 {
		return
	}

	for _, a := range t.agents {
		fmt.Fprintf(w,
			"agent %s, send bandwidth %.2f B/cycle, recv bandwidth %.2f B/cycle\n",
			a.Name(),
			float64(a.sendBytes)/float64(t.cycles),
			float64(a.recvBytes)/float64(t.cycles))
	}
}
