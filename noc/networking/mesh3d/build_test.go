package mesh3d

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/icnt3d/noc/messaging"
	"github.com/sarchlab/icnt3d/noc/networking"
	"github.com/sarchlab/icnt3d/sim"
)

var _ = Describe("Mesh3D network", func() {
	var (
		m   *Mesh3D
		ctx *networking.Context
		net *networking.Network
	)

	BeforeEach(func() {
		var err error

		m = mustNew(2, 2, 2)
		ctx = networking.NewContext(sim.NewSequentialIDGenerator("pkt"))
		net, err = m.Build(ctx, 0, networking.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject invalid parameters", func() {
		p := networking.DefaultParams()
		p.VCArbiter = "lottery"

		_, err := m.Build(ctx, 1, p)
		Expect(err).To(MatchError(networking.ErrInvalidParams))
	})

	It("should wire every router", func() {
		Expect(net.Routers()).To(HaveLen(8))
		Expect(net.NumNodes()).To(Equal(8))
		Expect(net.VerticalChannels()).To(HaveLen(8))
		Expect(net.Router(0).Name()).To(Equal("Mesh3D[0].Router[0][0][0]"))

		for node, r := range net.Routers() {
			Expect(r.NumPorts()).To(Equal(m.PortCount(node)))
		}

		for _, ch := range net.Channels() {
			Expect(ch).NotTo(BeNil())
		}
	})

	It("should deliver a packet across layers", func() {
		flits := messaging.MakeFlitBuilder(ctx.FlitPool).
			WithPacketID("P").
			WithSrc(0).
			WithDest(7).
			Build(2, "payload")

		var (
			received []*messaging.Flit
			arrival  sim.VTimeInCycle
		)

		for now := sim.VTimeInCycle(0); now < 20; now++ {
			if int(now) < len(flits) {
				flits[now].VC = 0
				net.Endpoint(0).Inject.Send(flits[now], now)
			}

			net.Advance(now)

			if f, ok := net.Endpoint(7).Eject.Receive(now); ok {
				received = append(received, f)
				arrival = now
			}
		}

		Expect(received).To(Equal(flits))
		Expect(received[1].Payload).To(Equal("payload"))
		Expect(received[0].Hops).To(Equal(4))
		Expect(arrival).To(Equal(sim.VTimeInCycle(6)))
		Expect(net.Idle()).To(BeTrue())
		Expect(net.Cycles()).To(Equal(uint64(20)))

		report := net.ActivityReport(16, 1)
		Expect(report.VerticalFlits()).To(Equal(uint64(2)))
		Expect(report.Total().EjectedFlits).To(Equal(uint64(2)))
	})
})
