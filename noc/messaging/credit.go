package messaging

import "fmt"

// Credit signals that buffer slots have been freed downstream.
type Credit struct {
	Handle Handle

	// VCs lists the virtual channels that each have one slot freed.
	VCs []int

	// Head and Tail mirror the markers of the flits that the credit
	// acknowledges.
	Head bool
	Tail bool

	// PrevRouter is the router (or node) that freed the slots.
	PrevRouter int
}

// AddVC records one freed slot on vc.
func (c *Credit) AddVC(vc int) {
	c.VCs = append(c.VCs, vc)
}

func (c *Credit) String() string {
	return fmt.Sprintf("credit[%v,from %d]", c.VCs, c.PrevRouter)
}
