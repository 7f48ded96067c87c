package arbitration

// Matrix is a least-recently-served arbiter. precedence[i][j] is true if
// client i beats client j. The winner drops below every other client.
type Matrix struct {
	requestTable

	precedence [][]bool
}

// NewMatrix creates a matrix arbiter with n clients. Initially lower
// indices have precedence.
func NewMatrix(n int) *Matrix {
	a := &Matrix{requestTable: newRequestTable(n)}

	a.precedence = make([][]bool, n)
	for i := range a.precedence {
		a.precedence[i] = make([]bool, n)
		for j := range a.precedence[i] {
			a.precedence[i][j] = i < j
		}
	}

	return a
}

// Arbitrate selects the requester with the highest priority that beats all
// the other requesters of that priority.
func (a *Matrix) Arbitrate() (int, bool) {
	if a.numRequests == 0 {
		return -1, false
	}

	top := a.highestPriority()

	for i, r := range a.requested {
		if !r || a.priority[i] != top {
			continue
		}

		if a.beatsAll(i, top) {
			a.demote(i)
			a.lastWinner = i

			return i, true
		}
	}

	panic("precedence matrix is not a total order")
}

func (a *Matrix) beatsAll(i, top int) bool {
	for j, r := range a.requested {
		if j == i || !r || a.priority[j] != top {
			continue
		}

		if !a.precedence[i][j] {
			return false
		}
	}

	return true
}

func (a *Matrix) demote(w int) {
	for j := range a.precedence {
		if j == w {
			continue
		}

		a.precedence[w][j] = false
		a.precedence[j][w] = true
	}
}
