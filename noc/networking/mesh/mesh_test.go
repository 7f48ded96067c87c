package mesh

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/icnt3d/noc/messaging"
	"github.com/sarchlab/icnt3d/noc/networking"
	"github.com/sarchlab/icnt3d/sim"
)

var _ = Describe("Mesh", func() {
	var (
		m   *Mesh
		ctx *networking.Context
		net *networking.Network
	)

	BeforeEach(func() {
		var err error

		m, err = New(3, 2)
		Expect(err).NotTo(HaveOccurred())

		ctx = networking.NewContext(sim.NewSequentialIDGenerator("pkt"))
		net, err = m.Build(ctx, 1, networking.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should build planar routers only", func() {
		Expect(m.Name()).To(Equal("mesh 3x2"))
		Expect(net.Subnet()).To(Equal(1))
		Expect(net.VerticalChannels()).To(BeEmpty())

		for node, r := range net.Routers() {
			Expect(r.NumPorts()).To(Equal(m.PortCount(node)))
		}

		Expect(m.PortCount(0)).To(Equal(3))
		Expect(m.PortCount(1)).To(Equal(4))
	})

	It("should deliver packets along x then y", func() {
		f := messaging.MakeFlitBuilder(ctx.FlitPool).
			WithSrc(0).
			WithDest(5).
			Build(1, "payload")[0]
		f.VC = 1

		net.Endpoint(0).Inject.Send(f, 0)

		var got *messaging.Flit
		for now := sim.VTimeInCycle(0); now < 10 && got == nil; now++ {
			net.Advance(now)

			if out, ok := net.Endpoint(5).Eject.Receive(now); ok {
				got = out
			}
		}

		Expect(got).To(BeIdenticalTo(f))
		Expect(got.Hops).To(Equal(m.MinHops(0, 5) + 1))
		Expect(net.Idle()).To(BeTrue())
	})
})
