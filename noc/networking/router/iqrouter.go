package router

import (
	"github.com/sarchlab/icnt3d/sim"
)

// IQRouter is an input-queued router of a planar mesh.
type IQRouter struct {
	*pipeline
}

// EvaluateAfterSwitchAllocation issues the credits of the cycle.
func (r *IQRouter) EvaluateAfterSwitchAllocation(now sim.VTimeInCycle) {
	r.issueCredits(now)
}

// ClearVerticalArbiters does nothing since a planar router has no vertical
// port.
func (r *IQRouter) ClearVerticalArbiters() {}

var (
	_ Router = (*IQRouter)(nil)
	_ Router = (*IQ3DRouter)(nil)
)
