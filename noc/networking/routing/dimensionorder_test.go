package routing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// cube is a 3x3x2 coordinate system with x varying fastest.
type cube struct{}

func (cube) Coordinate(node int) (int, int, int) {
	return node % 3, (node % 9) / 3, node / 9
}

var _ = Describe("DimensionOrderTable", func() {
	var t Table

	BeforeEach(func() {
		// Router at (1,1,0).
		t = NewDimensionOrderTable(cube{}, 4)
	})

	It("should resolve x first", func() {
		Expect(t.FindPort(3)).To(Equal(Left))
		Expect(t.FindPort(8)).To(Equal(Right))
		Expect(t.FindPort(9 + 5)).To(Equal(Right))
	})

	It("should resolve y after x", func() {
		Expect(t.FindPort(7)).To(Equal(Front))
		Expect(t.FindPort(1)).To(Equal(Back))
	})

	It("should resolve z last", func() {
		Expect(t.FindPort(13)).To(Equal(Up))
	})

	It("should deliver locally", func() {
		Expect(t.FindPort(4)).To(Equal(Local))
	})

	It("should honor explicit routes", func() {
		t.DefineRoute(8, Front)

		Expect(t.FindPort(8)).To(Equal(Front))
	})
})

var _ = Describe("Table", func() {
	It("should fall back to the default route", func() {
		t := NewTable()
		t.DefineRoute(1, Right)
		t.DefineDefaultRoute(Left)

		Expect(t.FindPort(1)).To(Equal(Right))
		Expect(t.FindPort(2)).To(Equal(Left))
	})
})
