package arbitration

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func runCycles(a Arbiter, cycles int, requesters []int) []int {
	winners := make([]int, 0, cycles)

	for c := 0; c < cycles; c++ {
		for _, r := range requesters {
			a.Request(r, 0)
		}

		w, ok := a.Arbitrate()
		Expect(ok).To(BeTrue())
		winners = append(winners, w)

		a.Clear()
	}

	return winners
}

var _ = DescribeTable("fairness",
	func(kind string) {
		const n = 4
		a := New(kind, n)

		By("serving a single persistent requester every cycle")
		winners := runCycles(a, n, []int{2})
		Expect(winners).To(Equal([]int{2, 2, 2, 2}))

		By("serving each of N persistent requesters once per N cycles")
		winners = runCycles(a, 3*n, []int{0, 1, 2, 3})
		for w := 0; w+n <= len(winners); w += n {
			Expect(winners[w : w+n]).To(ConsistOf(0, 1, 2, 3))
		}
	},
	Entry("round robin", KindRoundRobin),
	Entry("matrix", KindMatrix),
)

var _ = Describe("RoundRobin", func() {
	var a *RoundRobin

	BeforeEach(func() {
		a = NewRoundRobin(4)
	})

	It("should report no winner without requests", func() {
		_, ok := a.Arbitrate()

		Expect(ok).To(BeFalse())
		Expect(a.LastWinner()).To(Equal(-1))
	})

	It("should advance the pointer past the winner", func() {
		a.Request(1, 0)
		a.Request(3, 0)
		w, _ := a.Arbitrate()
		Expect(w).To(Equal(1))
		a.Clear()

		a.Request(1, 0)
		a.Request(3, 0)
		w, _ = a.Arbitrate()
		Expect(w).To(Equal(3))
		a.Clear()

		a.Request(1, 0)
		a.Request(3, 0)
		w, _ = a.Arbitrate()
		Expect(w).To(Equal(1))
	})

	It("should prefer higher priority", func() {
		a.Request(0, 0)
		a.Request(2, 5)

		w, _ := a.Arbitrate()

		Expect(w).To(Equal(2))
	})

	It("should panic if a client requests twice", func() {
		a.Request(0, 0)

		Expect(func() { a.Request(0, 0) }).To(Panic())
	})

	It("should panic for an out-of-range client", func() {
		Expect(func() { a.Request(4, 0) }).To(Panic())
	})
})

var _ = Describe("Matrix", func() {
	It("should demote the winner below everyone else", func() {
		a := NewMatrix(3)

		a.Request(0, 0)
		a.Request(1, 0)
		w, _ := a.Arbitrate()
		Expect(w).To(Equal(0))
		a.Clear()

		a.Request(0, 0)
		a.Request(2, 0)
		w, _ = a.Arbitrate()
		Expect(w).To(Equal(2))
		a.Clear()

		a.Request(0, 0)
		a.Request(1, 0)
		a.Request(2, 0)
		w, _ = a.Arbitrate()
		Expect(w).To(Equal(1))
	})
})

var _ = Describe("Shared", func() {
	It("should give every observer the same winner in a cycle", func() {
		s := NewShared("VerticalArbiter", NewRoundRobin(3))

		s.Request(0, 0)
		s.Request(2, 0)

		w1, ok1 := s.Winner()
		w2, ok2 := s.Winner()

		Expect(ok1).To(BeTrue())
		Expect(ok2).To(BeTrue())
		Expect(w1).To(Equal(w2))
		Expect(func() { s.Request(1, 0) }).To(Panic())

		s.Clear()
		s.Clear()

		_, ok := s.Winner()
		Expect(ok).To(BeFalse())
	})
})
