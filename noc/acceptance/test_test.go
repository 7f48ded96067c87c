package acceptance_test

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/icnt3d/config"
	"github.com/sarchlab/icnt3d/icnt"
	"github.com/sarchlab/icnt3d/noc/acceptance"
)

// loopback delivers every packet one cycle after it is pushed, to the device
// chosen by route.
type loopback struct {
	route    func(src, dst int) int
	inFlight map[int][]interface{}
	ready    map[int][]interface{}
}

func newLoopback(route func(src, dst int) int) *loopback {
	return &loopback{
		route:    route,
		inFlight: map[int][]interface{}{},
		ready:    map[int][]interface{}{},
	}
}

func (l *loopback) HasBuffer(_, _ int) bool { return true }

func (l *loopback) Push(src, dst int, payload interface{}, _ int) {
	d := l.route(src, dst)
	l.inFlight[d] = append(l.inFlight[d], payload)
}

func (l *loopback) Pop(device int) interface{} {
	q := l.ready[device]
	if len(q) == 0 {
		return nil
	}

	l.ready[device] = q[1:]

	return q[0]
}

func (l *loopback) Advance() {
	for d, q := range l.inFlight {
		l.ready[d] = append(l.ready[d], q...)
	}

	l.inFlight = map[int][]interface{}{}
}

func (l *loopback) Busy() bool {
	for _, q := range l.inFlight {
		if len(q) > 0 {
			return true
		}
	}

	for _, q := range l.ready {
		if len(q) > 0 {
			return true
		}
	}

	return false
}

func buildInterconnect(cfg *config.Config, nShader, nMem int) *icnt.Interconnect {
	ic, err := icnt.MakeBuilder().
		WithConfig(cfg).
		WithShaders(nShader).
		WithMemories(nMem).
		Build("ICNT")
	Expect(err).ToNot(HaveOccurred())

	return ic
}

var _ = Describe("Test", func() {
	It("should answer every request through a loopback", func() {
		l := newLoopback(func(_, dst int) int { return dst })
		test := acceptance.NewTest(l, 2, 2, 1)

		test.GenerateMsgs(10)

		Expect(test.Run(100)).To(Succeed())
		Expect(test.NumSent()).To(Equal(20))
		Expect(test.NumReceived()).To(Equal(20))
		Expect(test.MustHaveReceivedAllMsgs).ToNot(Panic())
	})

	It("should detect misdelivered packets", func() {
		l := newLoopback(func(src, _ int) int { return src })
		test := acceptance.NewTest(l, 2, 2, 1)

		test.GenerateMsgs(1)

		Expect(func() { _ = test.Run(100) }).To(Panic())
	})

	It("should detect dropped packets", func() {
		l := newLoopback(func(_, dst int) int { return dst })
		test := acceptance.NewTest(l, 1, 1, 1)

		test.GenerateMsgs(1)

		Expect(test.MustHaveReceivedAllMsgs).To(Panic())
	})

	It("should report traffic that does not drain", func() {
		l := newLoopback(func(_, dst int) int { return dst })
		test := acceptance.NewTest(l, 2, 2, 1)

		test.GenerateMsgs(10)
		err := test.Run(1)

		Expect(errors.Is(err, acceptance.ErrNotDrained)).To(BeTrue())
	})

	It("should step through the stepper", func() {
		l := newLoopback(func(_, dst int) int { return dst })
		steps := 0
		test := acceptance.NewTest(l, 1, 1, 1).
			WithStepper(func(step func()) {
				steps++
				step()
			})

		test.GenerateMsgs(1)

		Expect(test.Run(100)).To(Succeed())
		Expect(uint64(steps)).To(Equal(test.Cycles()))
	})

	It("should report bandwidth per agent", func() {
		l := newLoopback(func(_, dst int) int { return dst })
		test := acceptance.NewTest(l, 1, 1, 1).WithPacketSizes(4, 32)

		test.GenerateMsgs(4)
		Expect(test.Run(100)).To(Succeed())

		buf := new(bytes.Buffer)
		test.ReportBandwidthAchieved(buf)

		Expect(buf.String()).To(ContainSubstring("agent Agent[0]"))
		Expect(buf.String()).To(ContainSubstring("agent Agent[1]"))
	})

	It("should drain a 3D mesh with separate request and reply subnets", func() {
		ic := buildInterconnect(config.Default(), 8, 4)
		test := acceptance.NewTest(ic, 8, 4, 1)

		test.GenerateMsgs(200)

		Expect(test.Run(100000)).To(Succeed())
		Expect(test.MustHaveReceivedAllMsgs).ToNot(Panic())
		Expect(test.NumReceived()).To(Equal(400))
		Expect(ic.Context().FlitPool.Outstanding()).To(BeZero())
	})

	It("should drain a 2D mesh with round robin subnets", func() {
		cfg := config.Default()
		cfg.Topology = config.TopologyMesh
		cfg.K, cfg.N, cfg.S = 3, 2, 1
		cfg.SubnetSelection = config.SelectRoundRobin

		ic := buildInterconnect(cfg, 6, 3)
		test := acceptance.NewTest(ic, 6, 3, 0.5)

		test.GenerateMsgs(100)

		Expect(test.Run(100000)).To(Succeed())
		Expect(test.MustHaveReceivedAllMsgs).ToNot(Panic())
	})

	It("should repeat a run with the same seed", func() {
		run := func() (uint64, string) {
			cfg := config.Default()
			cfg.SubnetSelection = config.SelectRandom
			cfg.Seed = 11

			ic := buildInterconnect(cfg, 8, 4)
			test := acceptance.NewTest(ic, 8, 4, 0.5).WithSeed(cfg.Seed)
			test.GenerateMsgs(100)
			Expect(test.Run(100000)).To(Succeed())

			buf := new(bytes.Buffer)
			test.ReportBandwidthAchieved(buf)

			return test.Cycles(), buf.String()
		}

		cycles1, report1 := run()
		cycles2, report2 := run()

		Expect(cycles2).To(Equal(cycles1))
		Expect(report2).To(Equal(report1))
	})
})
