package arbitration

// RoundRobin grants the requesting client that comes first after the
// previous winner. Among clients of different priorities, the highest
// priority wins.
type RoundRobin struct {
	requestTable

	pointer int
}

// NewRoundRobin creates a round-robin arbiter with n clients.
func NewRoundRobin(n int) *RoundRobin {
	return &RoundRobin{requestTable: newRequestTable(n)}
}

// Arbitrate selects the winner and moves the pointer to one past it.
func (a *RoundRobin) Arbitrate() (int, bool) {
	if a.numRequests == 0 {
		return -1, false
	}

	n := len(a.requested)
	top := a.highestPriority()

	for i := 0; i < n; i++ {
		c := (a.pointer + i) % n
		if a.requested[c] && a.priority[c] == top {
			a.pointer = (c + 1) % n
			a.lastWinner = c

			return c, true
		}
	}

	panic("unreachable")
}
