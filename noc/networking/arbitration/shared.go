package arbitration

import "log"

// Shared wraps an arbiter used by several routers at once, such as the
// arbiter of a vertical bus. All routers post requests first; the first
// router that asks for the winner triggers the arbitration and every other
// router observes the same result until Clear is called.
type Shared struct {
	name    string
	arbiter Arbiter
	decided bool
	winner  int
	granted bool
}

// NewShared creates a shared arbiter.
func NewShared(name string, arbiter Arbiter) *Shared {
	return &Shared{name: name, arbiter: arbiter, winner: -1}
}

// Name returns the name of the arbiter.
func (s *Shared) Name() string {
	return s.name
}

// Request registers a request. Requests after the winner is decided panic.
func (s *Shared) Request(client, priority int) {
	if s.decided {
		log.Panicf("%s: request after arbitration in the same cycle", s.name)
	}

	s.arbiter.Request(client, priority)
}

// Winner returns the winner of the current cycle.
func (s *Shared) Winner() (int, bool) {
	if !s.decided {
		s.winner, s.granted = s.arbiter.Arbitrate()
		s.decided = true
	}

	return s.winner, s.granted
}

// NumRequests returns the requests posted in the current cycle.
func (s *Shared) NumRequests() int {
	return s.arbiter.NumRequests()
}

// Clear prepares the arbiter for the next cycle. Clearing twice is harmless.
func (s *Shared) Clear() {
	s.arbiter.Clear()
	s.decided = false
	s.winner = -1
	s.granted = false
}
