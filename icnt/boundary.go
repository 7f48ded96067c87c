package icnt

import "log"

type boundaryEntry struct {
	packetID string
	tail     bool
	payload  interface{}
}

// BoundaryBuffer holds the flits that have left the network until the host
// pops the whole packet.
type BoundaryBuffer struct {
	entries []boundaryEntry
	packets int
}

// PushFlitData appends the data of one flit. Only the tail carries the
// payload.
func (b *BoundaryBuffer) PushFlitData(
	packetID string,
	payload interface{},
	tail bool,
) {
	b.entries = append(b.entries, boundaryEntry{
		packetID: packetID,
		tail:     tail,
		payload:  payload,
	})

	if tail {
		b.packets++
	}
}

// HasPacket tells if at least one complete packet is buffered.
func (b *BoundaryBuffer) HasPacket() bool {
	return b.packets > 0
}

// Size returns the number of buffered flits.
func (b *BoundaryBuffer) Size() int {
	return len(b.entries)
}

// TopPacket returns the payload of the oldest complete packet without
// removing it.
func (b *BoundaryBuffer) TopPacket() interface{} {
	if b.packets == 0 {
		log.Panic("top of a boundary buffer without a complete packet")
	}

	id := b.entries[0].packetID
	for _, e := range b.entries {
		if e.packetID != id {
			log.Panicf("packet %s interleaved with %s", id, e.packetID)
		}

		if e.tail {
			return e.payload
		}
	}

	panic("unreachable")
}

// PopPacket removes the oldest complete packet and returns its payload.
func (b *BoundaryBuffer) PopPacket() interface{} {
	if b.packets == 0 {
		log.Panic("pop of a boundary buffer without a complete packet")
	}

	id := b.entries[0].packetID
	for {
		e := b.entries[0]
		b.entries[0] = boundaryEntry{}
		b.entries = b.entries[1:]

		if e.packetID != id {
			log.Panicf("packet %s interleaved with %s", id, e.packetID)
		}

		if e.tail {
			b.packets--
			return e.payload
		}
	}
}
