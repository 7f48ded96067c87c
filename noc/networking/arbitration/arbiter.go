// Package arbitration provides arbiters that resolve contention for shared
// resources such as output ports, virtual channels, and vertical buses.
package arbitration

import (
	"log"
)

// Arbiter kinds that can be selected by name.
const (
	KindRoundRobin = "round_robin"
	KindMatrix     = "matrix"
)

// An Arbiter selects one winner among the clients that request a resource
// in a cycle.
type Arbiter interface {
	// Request registers a request from a client. A client can request at
	// most once before the arbiter is cleared.
	Request(client, priority int)

	// Arbitrate returns the winner. If no client requests, ok is false.
	Arbitrate() (winner int, ok bool)

	// Clear wipes all the requests.
	Clear()

	// NumClients returns the number of clients.
	NumClients() int

	// NumRequests returns the number of requests since the last Clear.
	NumRequests() int

	// LastWinner returns the latest winner, or -1 if there is none.
	LastWinner() int
}

// ValidKind returns true if kind names a known arbiter.
func ValidKind(kind string) bool {
	return kind == KindRoundRobin || kind == KindMatrix
}

// New creates an arbiter of the given kind with n clients.
func New(kind string, n int) Arbiter {
	switch kind {
	case KindRoundRobin:
		return NewRoundRobin(n)
	case KindMatrix:
		return NewMatrix(n)
	default:
		log.Panicf("unknown arbiter type %q", kind)
	}

	return nil
}

// requestTable holds the per-cycle requests shared by all arbiter kinds.
type requestTable struct {
	requested   []bool
	priority    []int
	numRequests int
	lastWinner  int
}

func newRequestTable(n int) requestTable {
	if n <= 0 {
		log.Panicf("arbiter must have at least one client, got %d", n)
	}

	return requestTable{
		requested:  make([]bool, n),
		priority:   make([]int, n),
		lastWinner: -1,
	}
}

func (t *requestTable) NumClients() int {
	return len(t.requested)
}

func (t *requestTable) NumRequests() int {
	return t.numRequests
}

func (t *requestTable) LastWinner() int {
	return t.lastWinner
}

func (t *requestTable) Request(client, priority int) {
	if client < 0 || client >= len(t.requested) {
		log.Panicf("arbiter client %d out of range [0, %d)",
			client, len(t.requested))
	}

	if t.requested[client] {
		log.Panicf("arbiter client %d requested twice in a cycle", client)
	}

	t.requested[client] = true
	t.priority[client] = priority
	t.numRequests++
}

func (t *requestTable) Clear() {
	if t.numRequests == 0 {
		return
	}

	for i := range t.requested {
		t.requested[i] = false
		t.priority[i] = 0
	}

	t.numRequests = 0
}

func (t *requestTable) highestPriority() int {
	best := 0
	found := false

	for i, r := range t.requested {
		if !r {
			continue
		}

		if !found || t.priority[i] > best {
			best = t.priority[i]
			found = true
		}
	}

	return best
}
