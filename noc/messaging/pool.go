package messaging

import "log"

// A Handle identifies one allocation from a Pool. A handle becomes stale as
// soon as the object it refers to is released.
type Handle struct {
	index      int
	generation uint32
}

// Valid returns false for the zero handle.
func (h Handle) Valid() bool {
	return h.generation != 0
}

type poolSlot[T any] struct {
	obj        *T
	generation uint32
	inUse      bool
}

// Pool is an arena of simulation objects addressed by generation-checked
// handles. Slots are reused but objects are not: a released object is never
// handed out again, so a stale pointer keeps the handle of its old
// generation and a double release or a use after release is detected even
// after the slot has a new owner.
type Pool[T any] struct {
	name        string
	slots       []*poolSlot[T]
	free        []int
	outstanding int
}

// NewPool creates an empty pool.
func NewPool[T any](name string) *Pool[T] {
	return &Pool[T]{name: name}
}

// Allocate returns a fresh zeroed object, reusing a released slot if
// possible.
func (p *Pool[T]) Allocate() (Handle, *T) {
	var index int

	if n := len(p.free); n > 0 {
		index = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		p.slots = append(p.slots, &poolSlot[T]{})
		index = len(p.slots) - 1
	}

	slot := p.slots[index]
	slot.obj = new(T)
	slot.generation++
	slot.inUse = true
	p.outstanding++

	return Handle{index: index, generation: slot.generation}, slot.obj
}

// Get returns the object that the handle refers to.
func (p *Pool[T]) Get(h Handle) *T {
	slot := p.mustBeLive(h, "get")
	return slot.obj
}

// Release returns the slot of the object to the pool. The object itself is
// left untouched for any stale reader.
func (p *Pool[T]) Release(h Handle) {
	slot := p.mustBeLive(h, "release")

	slot.obj = nil
	slot.inUse = false
	p.outstanding--
	p.free = append(p.free, h.index)
}

// IsLive returns true if the handle refers to an object not yet released.
func (p *Pool[T]) IsLive(h Handle) bool {
	if h.index < 0 || h.index >= len(p.slots) {
		return false
	}

	slot := p.slots[h.index]

	return slot.inUse && slot.generation == h.generation
}

// Outstanding returns the number of objects allocated but not released.
func (p *Pool[T]) Outstanding() int {
	return p.outstanding
}

// Capacity returns the number of slots the pool holds.
func (p *Pool[T]) Capacity() int {
	return len(p.slots)
}

func (p *Pool[T]) mustBeLive(h Handle, op string) *poolSlot[T] {
	if !h.Valid() || h.index >= len(p.slots) {
		log.Panicf("%s: %s with invalid handle %+v", p.name, op, h)
	}

	slot := p.slots[h.index]
	if !slot.inUse || slot.generation != h.generation {
		log.Panicf("%s: %s of an object that is not allocated "+
			"(handle %+v, generation %d)", p.name, op, h, slot.generation)
	}

	return slot
}

// FlitPool allocates flits.
type FlitPool struct {
	pool   *Pool[Flit]
	nextID uint64
}

// NewFlitPool creates a FlitPool.
func NewFlitPool() *FlitPool {
	return &FlitPool{pool: NewPool[Flit]("FlitPool")}
}

// Allocate returns a zeroed flit with a fresh ID.
func (p *FlitPool) Allocate() *Flit {
	h, f := p.pool.Allocate()
	f.Handle = h
	f.ID = p.nextID
	p.nextID++

	return f
}

// Release returns the flit to the pool. Releasing a flit twice panics, also
// when its slot has been handed to another flit in between.
func (p *FlitPool) Release(f *Flit) {
	p.pool.Release(f.Handle)
}

// Outstanding returns the number of live flits.
func (p *FlitPool) Outstanding() int {
	return p.pool.Outstanding()
}

// CreditPool allocates credits.
type CreditPool struct {
	pool *Pool[Credit]
}

// NewCreditPool creates a CreditPool.
func NewCreditPool() *CreditPool {
	return &CreditPool{pool: NewPool[Credit]("CreditPool")}
}

// Allocate returns a zeroed credit.
func (p *CreditPool) Allocate() *Credit {
	h, c := p.pool.Allocate()
	c.Handle = h
	c.PrevRouter = -1

	return c
}

// Release returns the credit to the pool. Releasing a credit twice panics,
// also when its slot has been handed to another credit in between.
func (p *CreditPool) Release(c *Credit) {
	p.pool.Release(c.Handle)
}

// Outstanding returns the number of live credits.
func (p *CreditPool) Outstanding() int {
	return p.pool.Outstanding()
}
