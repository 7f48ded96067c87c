package mesh3d

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/icnt3d/noc/networking/routing"
)

func mustNew(k, n, s int) *Mesh3D {
	m, err := New(k, n, s)
	Expect(err).NotTo(HaveOccurred())

	return m
}

var _ = Describe("Mesh3D addressing", func() {
	It("should reject non-positive dimensions", func() {
		_, err := New(2, 0, 1)
		Expect(err).To(MatchError(ErrInvalidDimension))
	})

	It("should encode and decode coordinates as a bijection", func() {
		m := mustNew(3, 2, 4)

		for node := 0; node < m.NumNodes(); node++ {
			x, y, z := m.FindCoordinate(node)
			Expect(x).To(BeNumerically("<", 3))
			Expect(y).To(BeNumerically("<", 2))
			Expect(z).To(BeNumerically("<", 4))
			Expect(m.NodeIndex(x, y, z)).To(Equal(node))
		}
	})

	It("should panic on nodes out of range", func() {
		m := mustNew(2, 2, 1)
		Expect(func() { m.FindCoordinate(4) }).To(Panic())
	})

	It("should return the edge sentinel outside the mesh", func() {
		m := mustNew(3, 3, 2)

		Expect(m.AdjacentNode(0, routing.Left)).To(Equal(NetworkEdge))
		Expect(m.AdjacentNode(0, routing.Back)).To(Equal(NetworkEdge))
		Expect(m.AdjacentNode(0, routing.Right)).To(Equal(1))
		Expect(m.AdjacentNode(0, routing.Front)).To(Equal(3))
		Expect(m.AdjacentNode(8, routing.Right)).To(Equal(NetworkEdge))
		Expect(m.AdjacentNode(8, routing.Front)).To(Equal(NetworkEdge))
		Expect(m.AdjacentNode(13, routing.Back)).To(Equal(10))
		Expect(m.AdjacentChannel(0, routing.Left)).To(Equal(NetworkEdge))
	})

	DescribeTable("planar channel indices",
		func(k, n, s int) {
			m := mustNew(k, n, s)
			seen := make(map[int]bool)

			for node := 0; node < m.NumNodes(); node++ {
				for _, dir := range routing.PlanarDirections {
					ch := m.AdjacentChannel(node, dir)
					if ch == NetworkEdge {
						continue
					}

					Expect(ch).To(BeNumerically(">=", 0))
					Expect(ch).To(BeNumerically("<", m.NumChannels()))
					Expect(seen).NotTo(HaveKey(ch))
					seen[ch] = true
				}
			}

			Expect(seen).To(HaveLen(m.NumChannels()))
		},
		Entry("2x2x1", 2, 2, 1),
		Entry("3x3x2", 3, 3, 2),
		Entry("4x2x3", 4, 2, 3),
		Entry("1x4x2", 1, 4, 2),
		Entry("5x1x1", 5, 1, 1),
	)

	It("should count planar and vertical channels", func() {
		m := mustNew(2, 2, 1)
		Expect(m.NumChannels()).To(Equal(8))
		Expect(m.NumVerticalChannels()).To(Equal(8))
	})

	It("should index the buses of a column", func() {
		m := mustNew(3, 3, 2)

		Expect(m.VerticalChannel(13, routing.Up)).To(Equal(4))
		Expect(m.VerticalChannel(13, routing.Down)).To(Equal(13))
		Expect(m.VerticalChannel(4, routing.Up)).To(Equal(4))
		Expect(func() { m.VerticalChannel(4, routing.Left) }).To(Panic())
	})

	It("should give corner, edge, and interior routers 5, 6, and 7 ports", func() {
		m := mustNew(3, 3, 2)

		Expect(m.PortCount(0)).To(Equal(5))
		Expect(m.PortCount(1)).To(Equal(6))
		Expect(m.PortCount(4)).To(Equal(7))
		Expect(m.PortCount(17)).To(Equal(5))
	})

	It("should find shortest hop counts", func() {
		m := mustNew(2, 2, 1)
		Expect(m.MinHops(0, 3)).To(Equal(2))
		Expect(m.MinHops(2, 2)).To(Equal(0))
		Expect(m.AverageDistance()).To(BeNumerically("~", 4.0/3.0, 1e-9))

		column := mustNew(1, 1, 3)
		Expect(column.MinHops(0, 2)).To(Equal(1))
		Expect(column.AverageDistance()).To(BeNumerically("~", 1.0, 1e-9))
	})
})
