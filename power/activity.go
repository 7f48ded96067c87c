// Package power defines the activity counters that the network exposes to a
// power and energy estimator.
package power

// RouterActivity counts the events that consume energy in a router.
type RouterActivity struct {
	Router int
	Name   string
	Ports  int
	NumVCs int

	BufferWrites       uint64
	BufferReads        uint64
	CrossbarTraversals uint64
	VCArbitrations     uint64
	SwitchArbitrations uint64
	VerticalRequests   uint64
	VerticalGrants     uint64
	CreditsSent        uint64
	VerticalTraversals uint64
	InjectedFlits      uint64
	EjectedFlits       uint64
}

// Add accumulates the counters of another activity record.
func (a *RouterActivity) Add(o RouterActivity) {
	a.BufferWrites += o.BufferWrites
	a.BufferReads += o.BufferReads
	a.CrossbarTraversals += o.CrossbarTraversals
	a.VCArbitrations += o.VCArbitrations
	a.SwitchArbitrations += o.SwitchArbitrations
	a.VerticalRequests += o.VerticalRequests
	a.VerticalGrants += o.VerticalGrants
	a.CreditsSent += o.CreditsSent
	a.VerticalTraversals += o.VerticalTraversals
	a.InjectedFlits += o.InjectedFlits
	a.EjectedFlits += o.EjectedFlits
}

// ChannelActivity counts the flits that crossed one channel.
type ChannelActivity struct {
	Name         string
	Vertical     bool
	Flits        uint64
	ActiveCycles uint64
}

// ActivityReport is everything an estimator needs to know about one subnet.
type ActivityReport struct {
	Subnet       int
	Cycles       uint64
	FlitWidth    int
	FrequencyGHz float64
	Routers      []RouterActivity
	Channels     []ChannelActivity
}

// Total sums the activity of all routers.
func (r ActivityReport) Total() RouterActivity {
	total := RouterActivity{Router: -1, Name: "total"}
	for _, a := range r.Routers {
		total.Add(a)
	}

	return total
}

// VerticalFlits returns the number of flits carried by vertical buses.
func (r ActivityReport) VerticalFlits() uint64 {
	var n uint64

	for _, c := range r.Channels {
		if c.Vertical {
			n += c.Flits
		}
	}

	return n
}
