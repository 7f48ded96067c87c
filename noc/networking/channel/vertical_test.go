package channel

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/icnt3d/noc/messaging"
)

var _ = Describe("VerticalChannel", func() {
	var (
		pool  *messaging.FlitPool
		cpool *messaging.CreditPool
		bus   *VerticalChannel
	)

	// A 2x2 mesh with 3 layers. Column (1, 0) holds routers 1, 5 and 9.
	BeforeEach(func() {
		pool = messaging.NewFlitPool()
		cpool = messaging.NewCreditPool()
		bus = MakeVerticalChannelBuilder().
			WithLatency(1).
			WithLayers(3, 4).
			WithVCs(2, 4).
			WithClasses(2).
			Build(1, 0, true)

		bus.RegisterSource(1, 5)
		bus.RegisterSource(5, 4)
		bus.RegisterSink(5, 6)
		bus.RegisterSink(9, 5)
	})

	It("should be named after its column", func() {
		Expect(bus.Name()).To(Equal("VBus[1][0].up"))
		Expect(bus.CreditChannel().Name()).To(Equal("VBus[1][0].up.Credit"))
		Expect(bus.Tracker().NumTargets()).To(Equal(3))
	})

	It("should use the port of the first registration", func() {
		Expect(bus.Source(5)).To(Equal(Endpoint{Router: 5, Port: 5}))
		Expect(bus.Sink(9)).To(Equal(Endpoint{Router: 9, Port: 6}))
	})

	It("should find the sink on the layer of a node", func() {
		Expect(bus.Sink(10).Router).To(Equal(9))
		Expect(bus.Sink(4).Router).To(Equal(5))
	})

	It("should panic on unregistered routers", func() {
		Expect(func() { bus.Source(9) }).To(Panic())
		Expect(func() { bus.Sink(0) }).To(Panic())
	})

	It("should deliver only to the router on the destination layer", func() {
		f := pool.Allocate()
		f.Dest = 11
		f.Class = 1
		bus.Send(f, 0)

		_, ok := bus.ReceiveFor(5, 1)
		Expect(ok).To(BeFalse())

		got, ok := bus.ReceiveFor(9, 1)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(f))
		Expect(bus.ClassActivity(1)).To(Equal(uint64(1)))
	})

	It("should return credits to the layer of the sender", func() {
		bus.Tracker().Consume(2, 1)

		c := cpool.Allocate()
		c.PrevRouter = 9
		c.AddVC(1)
		bus.CreditChannel().Send(c, 0)

		bus.ApplyCredits(1, cpool)

		Expect(bus.Tracker().Idle()).To(BeTrue())
		Expect(cpool.Outstanding()).To(Equal(0))
	})
})
