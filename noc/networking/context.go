// Package networking assembles routers and channels into networks and
// evaluates them cycle by cycle.
package networking

import (
	"github.com/sarchlab/icnt3d/noc/messaging"
	"github.com/sarchlab/icnt3d/sim"
)

// Context is the state shared by all subnets of one simulation run.
type Context struct {
	FlitPool   *messaging.FlitPool
	CreditPool *messaging.CreditPool
	IDGen      sim.IDGenerator

	// Hooks are attached to every router and channel built under the
	// context.
	Hooks []sim.Hook

	cycle sim.VTimeInCycle
}

// NewContext creates a context with empty pools.
func NewContext(idGen sim.IDGenerator) *Context {
	return &Context{
		FlitPool:   messaging.NewFlitPool(),
		CreditPool: messaging.NewCreditPool(),
		IDGen:      idGen,
	}
}

// Now returns the current cycle.
func (c *Context) Now() sim.VTimeInCycle {
	return c.cycle
}

// Tick moves to the next cycle.
func (c *Context) Tick() {
	c.cycle++
}

// Attach registers the context hooks on a hookable element.
func (c *Context) Attach(h sim.Hookable) {
	for _, hook := range c.Hooks {
		h.AcceptHook(hook)
	}
}
