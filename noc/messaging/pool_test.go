package messaging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pool", func() {
	var pool *Pool[Credit]

	BeforeEach(func() {
		pool = NewPool[Credit]("TestPool")
	})

	It("should allocate zeroed objects", func() {
		h, c := pool.Allocate()

		Expect(h.Valid()).To(BeTrue())
		Expect(c.VCs).To(BeEmpty())
		Expect(pool.Outstanding()).To(Equal(1))
		Expect(pool.Get(h)).To(BeIdenticalTo(c))
	})

	It("should reuse released objects", func() {
		h1, c1 := pool.Allocate()
		c1.AddVC(3)
		pool.Release(h1)

		h2, c2 := pool.Allocate()

		Expect(pool.Capacity()).To(Equal(1))
		Expect(c2.VCs).To(BeEmpty())
		Expect(h2).NotTo(Equal(h1))
		Expect(pool.Outstanding()).To(Equal(1))
	})

	It("should panic on double release", func() {
		h, _ := pool.Allocate()
		pool.Release(h)

		Expect(func() { pool.Release(h) }).To(Panic())
	})

	It("should reject a stale handle after the slot is reused", func() {
		h1, _ := pool.Allocate()
		pool.Release(h1)
		_, _ = pool.Allocate()

		Expect(pool.IsLive(h1)).To(BeFalse())
		Expect(func() { pool.Get(h1) }).To(Panic())
		Expect(func() { pool.Release(h1) }).To(Panic())
	})

	It("should not hand out a released object again", func() {
		h1, c1 := pool.Allocate()
		pool.Release(h1)

		h2, c2 := pool.Allocate()

		Expect(c2).NotTo(BeIdenticalTo(c1))
		Expect(pool.Get(h2)).To(BeIdenticalTo(c2))
	})

	It("should reach zero outstanding after full drain", func() {
		handles := []Handle{}
		for i := 0; i < 10; i++ {
			h, _ := pool.Allocate()
			handles = append(handles, h)
		}

		for _, h := range handles {
			pool.Release(h)
		}

		Expect(pool.Outstanding()).To(Equal(0))
	})
})

var _ = Describe("FlitBuilder", func() {
	var pool *FlitPool

	BeforeEach(func() {
		pool = NewFlitPool()
	})

	It("should fragment a packet into head, body and tail flits", func() {
		payload := "payload"

		flits := MakeFlitBuilder(pool).
			WithPacketID("pkt-1").
			WithType(ReadReply).
			WithSrc(1).
			WithDest(3).
			Build(3, payload)

		Expect(flits).To(HaveLen(3))
		Expect(flits[0].Head).To(BeTrue())
		Expect(flits[0].Tail).To(BeFalse())
		Expect(flits[1].Head).To(BeFalse())
		Expect(flits[1].Tail).To(BeFalse())
		Expect(flits[2].Tail).To(BeTrue())
		Expect(flits[0].Payload).To(BeNil())
		Expect(flits[2].Payload).To(Equal(payload))
		Expect(flits[2].Dest).To(Equal(3))
		Expect(pool.Outstanding()).To(Equal(3))
	})

	It("should mark a single-flit packet as both head and tail", func() {
		flits := MakeFlitBuilder(pool).Build(1, 42)

		Expect(flits[0].Head).To(BeTrue())
		Expect(flits[0].Tail).To(BeTrue())
		Expect(flits[0].Payload).To(Equal(42))
	})

	It("should panic when a flit is released twice", func() {
		flits := MakeFlitBuilder(pool).Build(1, nil)
		f := flits[0]
		pool.Release(f)

		Expect(func() { pool.Release(f) }).To(Panic())
	})

	It("should panic when a stale flit is released after its slot is reused",
		func() {
			f := pool.Allocate()
			pool.Release(f)
			g := pool.Allocate()

			Expect(func() { pool.Release(f) }).To(Panic())
			Expect(pool.Outstanding()).To(Equal(1))
			Expect(func() { pool.Release(g) }).NotTo(Panic())
			Expect(pool.Outstanding()).To(Equal(0))
		})
})

var _ = Describe("CreditPool", func() {
	It("should panic when a stale credit is released after its slot is reused",
		func() {
			pool := NewCreditPool()
			c := pool.Allocate()
			pool.Release(c)
			d := pool.Allocate()

			Expect(func() { pool.Release(c) }).To(Panic())
			Expect(pool.Outstanding()).To(Equal(1))
			Expect(func() { pool.Release(d) }).NotTo(Panic())
		})
})
