package icnt

import (
	"fmt"

	"github.com/iti/rngstream"

	"github.com/sarchlab/icnt3d/config"
	"github.com/sarchlab/icnt3d/sim"
)

// selector decides which subnet carries a packet.
type selector struct {
	policy  string
	subnets int

	// cursor is shared by all devices under the round_robin policy.
	cursor int
	rng    *rngstream.RngStream
}

func newSelector(cfg *config.Config) *selector {
	s := &selector{
		policy:  cfg.SubnetSelection,
		subnets: cfg.Subnets,
	}

	if s.policy == config.SelectRandom {
		s.rng = sim.NewRngStream("subnet-selection", cfg.Seed, 0)
	}

	return s
}

// choice is the outcome of a subnet selection.
type choice struct {
	subnet   int
	numFlits int
}

// selectSubnet returns the subnet that can take a packet of sizeBits from
// the device. When commit is false, the selector state is left untouched.
func (ic *Interconnect) selectSubnet(
	device, sizeBits int,
	commit bool,
) (choice, bool) {
	node := ic.nodeMap.Node(device)
	sel := ic.selector

	switch sel.policy {
	case config.SelectPacketType:
		subnet := 1
		if ic.nodeMap.IsShader(device) {
			subnet = 0
		}

		return ic.fixedSubnet(subnet, node, sizeBits)
	case config.SelectPacketSize:
		subnet := 1
		if sizeBits <= ic.cfg.FlitSize {
			subnet = 0
		}

		return ic.fixedSubnet(subnet, node, sizeBits)
	case config.SelectRoundRobin:
		c, ok := ic.firstWithRoom(sel.cursor, node, sizeBits)
		if ok && commit {
			sel.cursor = (c.subnet + 1) % sel.subnets
		}

		return c, ok
	case config.SelectRandom:
		start := 0
		if commit {
			start = sel.rng.RandInt(0, sel.subnets-1)
		}

		return ic.firstWithRoom(start, node, sizeBits)
	default:
		panic(fmt.Sprintf("unknown subnet selection %q", sel.policy))
	}
}

func (ic *Interconnect) fixedSubnet(subnet, node, sizeBits int) (choice, bool) {
	c := choice{subnet: subnet, numFlits: ic.numFlits(subnet, sizeBits)}
	return c, ic.subnets[subnet].hasRoom(node, c.numFlits)
}

func (ic *Interconnect) firstWithRoom(start, node, sizeBits int) (choice, bool) {
	n := len(ic.subnets)
	for i := 0; i < n; i++ {
		subnet := (start + i) % n
		c := choice{subnet: subnet, numFlits: ic.numFlits(subnet, sizeBits)}

		if ic.subnets[subnet].hasRoom(node, c.numFlits) {
			return c, true
		}
	}

	return choice{subnet: -1}, false
}

func (ic *Interconnect) numFlits(subnet, sizeBits int) int {
	width := ic.cfg.FlitSizeOf(subnet)
	n := (sizeBits + width - 1) / width

	if n == 0 {
		n = 1
	}

	return n
}
