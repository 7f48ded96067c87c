// Package channel provides the timed links that connect routers and network
// endpoints.
package channel

import (
	"log"

	"github.com/sarchlab/icnt3d/noc/messaging"
	"github.com/sarchlab/icnt3d/sim"
)

// HookPosSend marks an item entering a channel.
var HookPosSend = &sim.HookPos{Name: "Channel Send"}

// HookPosReceive marks an item leaving a channel.
var HookPosReceive = &sim.HookPos{Name: "Channel Receive"}

type inFlight[T any] struct {
	item    T
	arrival sim.VTimeInCycle
}

// Channel is a point-to-point link with a fixed propagation latency. Items
// leave the channel in the order they entered it.
type Channel[T any] struct {
	sim.HookableBase

	name            string
	latency         int
	maxSendPerCycle int
	queue           []inFlight[T]

	lastSendCycle sim.VTimeInCycle
	sentInCycle   int

	activeCycles uint64
	totalItems   uint64
}

// FlitChannel carries at most one flit per cycle.
type FlitChannel = Channel[*messaging.Flit]

// CreditChannel carries credits.
type CreditChannel = Channel[*messaging.Credit]

// New creates a channel. A maxSendPerCycle of 0 means unlimited.
func New[T any](name string, latency, maxSendPerCycle int) *Channel[T] {
	c := &Channel[T]{
		name:            name,
		maxSendPerCycle: maxSendPerCycle,
	}
	c.SetLatency(latency)

	return c
}

// NewFlitChannel creates a channel that carries one flit per cycle.
func NewFlitChannel(name string, latency int) *FlitChannel {
	return New[*messaging.Flit](name, latency, 1)
}

// NewCreditChannel creates a channel for credits.
func NewCreditChannel(name string, latency int) *CreditChannel {
	return New[*messaging.Credit](name, latency, 0)
}

// Name returns the name of the channel.
func (c *Channel[T]) Name() string {
	return c.name
}

// SetLatency sets the number of cycles an item takes to cross the channel.
func (c *Channel[T]) SetLatency(n int) {
	if n < 1 {
		log.Panicf("channel %s: latency must be at least 1, got %d",
			c.name, n)
	}

	c.latency = n
}

// Latency returns the latency of the channel.
func (c *Channel[T]) Latency() int {
	return c.latency
}

// Send puts an item into the channel. It arrives latency cycles later.
func (c *Channel[T]) Send(item T, now sim.VTimeInCycle) {
	if c.totalItems > 0 && now < c.lastSendCycle {
		log.Panicf("channel %s: send at cycle %d after cycle %d",
			c.name, now, c.lastSendCycle)
	}

	if c.totalItems == 0 || now != c.lastSendCycle {
		c.activeCycles++
		c.sentInCycle = 0
	}

	if c.maxSendPerCycle > 0 && c.sentInCycle >= c.maxSendPerCycle {
		log.Panicf("channel %s: more than %d sends in cycle %d",
			c.name, c.maxSendPerCycle, now)
	}

	c.lastSendCycle = now
	c.sentInCycle++
	c.totalItems++

	c.queue = append(c.queue, inFlight[T]{
		item:    item,
		arrival: now + sim.VTimeInCycle(c.latency),
	})

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Now:    now,
			Pos:    HookPosSend,
			Item:   item,
		})
	}
}

// Peek returns the oldest item if it has arrived, without removing it.
func (c *Channel[T]) Peek(now sim.VTimeInCycle) (T, bool) {
	var zero T

	if len(c.queue) == 0 || c.queue[0].arrival > now {
		return zero, false
	}

	return c.queue[0].item, true
}

// Receive removes and returns the oldest item if it has arrived.
func (c *Channel[T]) Receive(now sim.VTimeInCycle) (T, bool) {
	item, ok := c.Peek(now)
	if !ok {
		return item, false
	}

	var zero T
	c.queue[0].item = zero
	c.queue = c.queue[1:]

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Now:    now,
			Pos:    HookPosReceive,
			Item:   item,
		})
	}

	return item, true
}

// InFlight returns the number of items inside the channel.
func (c *Channel[T]) InFlight() int {
	return len(c.queue)
}

// ActiveCycles returns the number of cycles in which something was sent.
func (c *Channel[T]) ActiveCycles() uint64 {
	return c.activeCycles
}

// TotalItems returns the number of items ever sent.
func (c *Channel[T]) TotalItems() uint64 {
	return c.totalItems
}

// Utilization returns the fraction of the elapsed cycles in which the
// channel was used.
func (c *Channel[T]) Utilization(elapsed sim.VTimeInCycle) float64 {
	if elapsed == 0 {
		return 0
	}

	return float64(c.activeCycles) / float64(elapsed)
}
