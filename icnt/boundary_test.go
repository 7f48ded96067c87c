package icnt

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoundaryBuffer", func() {
	var b *BoundaryBuffer

	BeforeEach(func() {
		b = &BoundaryBuffer{}
	})

	It("should hold a packet only after its tail", func() {
		b.PushFlitData("p1", nil, false)

		Expect(b.HasPacket()).To(BeFalse())
		Expect(b.Size()).To(Equal(1))
		Expect(func() { b.PopPacket() }).To(Panic())

		b.PushFlitData("p1", "data", true)

		Expect(b.HasPacket()).To(BeTrue())
		Expect(b.TopPacket()).To(Equal("data"))
		Expect(b.Size()).To(Equal(2))
	})

	It("should pop packets in order", func() {
		b.PushFlitData("p1", nil, false)
		b.PushFlitData("p1", "first", true)
		b.PushFlitData("p2", "second", true)
		b.PushFlitData("p3", nil, false)

		Expect(b.PopPacket()).To(Equal("first"))
		Expect(b.PopPacket()).To(Equal("second"))
		Expect(b.HasPacket()).To(BeFalse())
		Expect(b.Size()).To(Equal(1))
	})

	It("should panic on interleaved packets", func() {
		b.PushFlitData("p1", nil, false)
		b.PushFlitData("p2", "other", true)

		Expect(func() { b.PopPacket() }).To(Panic())
	})
})
