package router

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/icnt3d/noc/messaging"
	"github.com/sarchlab/icnt3d/noc/networking/arbitration"
	"github.com/sarchlab/icnt3d/noc/networking/channel"
	"github.com/sarchlab/icnt3d/noc/networking/routing"
	"github.com/sarchlab/icnt3d/sim"
)

var _ = Describe("IQ3DRouter", func() {
	var (
		pool    *messaging.FlitPool
		cpool   *messaging.CreditPool
		bus     *channel.VerticalChannel
		arb     *arbitration.Shared
		routers []*IQ3DRouter
		injects []*channel.FlitChannel
		eject   *channel.FlitChannel
	)

	// A single column of three layers. Node i is on layer i.
	BeforeEach(func() {
		pool = messaging.NewFlitPool()
		cpool = messaging.NewCreditPool()
		bus = channel.MakeVerticalChannelBuilder().
			WithLatency(1).
			WithLayers(3, 1).
			WithVCs(2, 4).
			Build(0, 0, true)
		arb = arbitration.NewShared("UpArb", arbitration.NewRoundRobin(3))

		routers = nil
		injects = nil

		for z := 0; z < 3; z++ {
			table := routing.NewTable()
			if z < 2 {
				table.DefineRoute(2, routing.Up)
			}

			r := MakeBuilder().
				WithID(z).
				WithLayer(z).
				WithNumVCs(2).
				WithVCBufSize(4).
				WithRoutingTable(table).
				WithCreditPool(cpool).
				Build3D(fmt.Sprintf("R%d", z))

			inject := channel.NewFlitChannel(fmt.Sprintf("Inject%d", z), 1)
			r.AddInputChannel(routing.Local, inject,
				channel.NewCreditChannel(fmt.Sprintf("InjectCredit%d", z), 1))
			r.AddVerticalChannel(routing.Up, bus, arb)

			routers = append(routers, r)
			injects = append(injects, inject)
		}

		eject = channel.NewFlitChannel("Eject2", 1)
		routers[2].AddOutputChannel(routing.Local, eject,
			channel.NewCreditChannel("EjectCredit2", 1), 4)
	})

	cycle := func(now sim.VTimeInCycle) {
		for _, r := range routers {
			r.Evaluate(now)
		}

		for _, r := range routers {
			r.EvaluateAfterSwitchAllocation(now)
		}

		for _, r := range routers {
			r.ClearVerticalArbiters()
		}

		bus.ApplyCredits(now, cpool)
	}

	It("should register on the bus", func() {
		Expect(bus.Sources()).To(Equal([]int{0, 1, 2}))
		Expect(bus.Sink(2).Router).To(Equal(2))
		Expect(routers[0].Layer()).To(Equal(0))
		Expect(routers[2].NumPorts()).To(Equal(2))
	})

	It("should reject a planar direction as a vertical channel", func() {
		Expect(func() {
			routers[0].AddVerticalChannel(routing.Left, bus, arb)
		}).To(Panic())
	})

	It("should let one router use the bus per cycle", func() {
		a := buildPacket(pool, "A", 2, 1, 0)[0]
		b := buildPacket(pool, "B", 2, 1, 0)[0]
		injects[0].Send(a, 0)
		injects[1].Send(b, 0)

		var order []string
		for now := sim.VTimeInCycle(1); now <= 4; now++ {
			cycle(now)

			if f, ok := eject.Receive(now + 1); ok {
				order = append(order, f.PacketID)
			}
		}

		Expect(order).To(Equal([]string{"A", "B"}))

		Expect(routers[0].Activity().VerticalRequests).To(Equal(uint64(1)))
		Expect(routers[0].Activity().VerticalGrants).To(Equal(uint64(1)))
		Expect(routers[1].Activity().VerticalRequests).To(Equal(uint64(2)))
		Expect(routers[1].Activity().VerticalGrants).To(Equal(uint64(1)))
		Expect(bus.Tracker().Idle()).To(BeTrue())

		for _, r := range routers {
			Expect(r.Idle()).To(BeTrue())
		}
	})
})
