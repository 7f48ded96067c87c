package acceptance

import (
	"fmt"

	"github.com/iti/rngstream"

	"github.com/sarchlab/icnt3d/sim"
)

// Interconnect is the host-facing surface the acceptance test drives.
type Interconnect interface {
	HasBuffer(device, size int) bool
	Push(src, dst int, payload interface{}, size int)
	Pop(device int) interface{}
	Advance()
	Busy() bool
}

// Agent stands for one device attached to the interconnect. It injects the
// messages queued on it and consumes what the interconnect delivers.
type Agent struct {
	name       string
	device     int
	test       *Test
	rate       float64
	rng        *rngstream.RngStream
	MsgsToSend []*trafficMsg
	sendBytes  uint64
	recvBytes  uint64
}

// NewAgent creates a new agent for a device. The agent tries to inject with
// the given probability every cycle.
func NewAgent(device int, rate float64, test *Test) *Agent {
	name := fmt.Sprintf("Agent[%d]", device)

	return &Agent{
		name:   name,
		device: device,
		test:   test,
		rate:   rate,
		rng:    agentRng(name, 1, device),
	}
}

func agentRng(name string, seed uint64, device int) *rngstream.RngStream {
	return sim.NewRngStream(name, seed, device+1)
}

// Name returns the name of the agent.
func (a *Agent) Name() string {
	return a.name
}

// Device returns the device number of the agent.
func (a *Agent) Device() int {
	return a.device
}

func (a *Agent) send(ic Interconnect) bool {
	if len(a.MsgsToSend) == 0 {
		return false
	}

	if a.rate < 1 && a.rng.RandU01() >= a.rate {
		return false
	}

	msg := a.MsgsToSend[0]
	if !ic.HasBuffer(msg.Src, msg.Size) {
		return false
	}

	ic.Push(msg.Src, msg.Dst, msg, msg.Size)
	a.MsgsToSend = a.MsgsToSend[1:]
	a.sendBytes += uint64(msg.Size)

	return true
}

func (a *Agent) recv(ic Interconnect) bool {
	madeProgress := false

	for {
		data := ic.Pop(a.device)
		if data == nil {
			return madeProgress
		}

		msg, ok := data.(*trafficMsg)
		if !ok {
			panic(fmt.Sprintf("%s received a foreign payload %v", a.name, data))
		}

		a.test.receiveMsg(msg, a)
		a.recvBytes += uint64(msg.Size)
		madeProgress = true
	}
}

func (a *Agent) idle() bool {
	return len(a.MsgsToSend) == 0
}
