package channel

import "log"

// OutputVC is the sender-side view of one downstream virtual channel.
type OutputVC struct {
	Credits int
	Owned   bool
}

// CreditTracker keeps the credit count and ownership of each downstream VC.
// A target selects one downstream buffer set, which lets a vertical bus keep
// one set per layer.
type CreditTracker struct {
	depth int
	vcs   [][]OutputVC
}

// NewCreditTracker creates a tracker with numTargets sets of numVCs VCs, each
// starting with depth credits.
func NewCreditTracker(numTargets, numVCs, depth int) *CreditTracker {
	if numTargets < 1 || numVCs < 1 || depth < 1 {
		log.Panicf("invalid credit tracker %d targets, %d vcs, depth %d",
			numTargets, numVCs, depth)
	}

	t := &CreditTracker{
		depth: depth,
		vcs:   make([][]OutputVC, numTargets),
	}

	for i := range t.vcs {
		t.vcs[i] = make([]OutputVC, numVCs)
		for v := range t.vcs[i] {
			t.vcs[i][v].Credits = depth
		}
	}

	return t
}

// NumTargets returns the number of downstream buffer sets.
func (t *CreditTracker) NumTargets() int {
	return len(t.vcs)
}

// NumVCs returns the number of VCs per target.
func (t *CreditTracker) NumVCs() int {
	return len(t.vcs[0])
}

// Depth returns the buffer depth of each downstream VC.
func (t *CreditTracker) Depth() int {
	return t.depth
}

func (t *CreditTracker) vc(target, vc int) *OutputVC {
	if target < 0 || target >= len(t.vcs) {
		log.Panicf("credit target %d out of range", target)
	}

	if vc < 0 || vc >= len(t.vcs[target]) {
		log.Panicf("credit vc %d out of range", vc)
	}

	return &t.vcs[target][vc]
}

// Available returns the credits left on a downstream VC.
func (t *CreditTracker) Available(target, vc int) int {
	return t.vc(target, vc).Credits
}

// IsFree tells if a downstream VC can be allocated to a new packet.
func (t *CreditTracker) IsFree(target, vc int) bool {
	return !t.vc(target, vc).Owned
}

// FirstFree returns the first free VC at or after start, wrapping around.
func (t *CreditTracker) FirstFree(target, start int) (int, bool) {
	n := t.NumVCs()
	for i := 0; i < n; i++ {
		vc := (start + i) % n
		if t.IsFree(target, vc) {
			return vc, true
		}
	}

	return 0, false
}

// Acquire marks a downstream VC as owned by a packet.
func (t *CreditTracker) Acquire(target, vc int) {
	o := t.vc(target, vc)
	if o.Owned {
		log.Panicf("vc %d of target %d is already owned", vc, target)
	}

	o.Owned = true
}

// Release frees a downstream VC after the tail flit is forwarded.
func (t *CreditTracker) Release(target, vc int) {
	t.vc(target, vc).Owned = false
}

// Consume takes one credit when a flit is sent.
func (t *CreditTracker) Consume(target, vc int) {
	o := t.vc(target, vc)
	if o.Credits <= 0 {
		log.Panicf("no credit left on vc %d of target %d", vc, target)
	}

	o.Credits--
}

// Return gives one credit back when the downstream buffer frees a slot.
func (t *CreditTracker) Return(target, vc int) {
	o := t.vc(target, vc)
	if o.Credits >= t.depth {
		log.Panicf("credit overflow on vc %d of target %d", vc, target)
	}

	o.Credits++
}

// Idle tells if all downstream VCs have all their credits and no owner.
func (t *CreditTracker) Idle() bool {
	for _, set := range t.vcs {
		for _, o := range set {
			if o.Owned || o.Credits != t.depth {
				return false
			}
		}
	}

	return true
}
