package messaging

// PacketType is the kind of memory transaction a packet carries.
type PacketType int

// The packet types that the host can inject.
const (
	ReadRequest PacketType = iota
	WriteRequest
	ReadReply
	WriteReply
)

func (t PacketType) String() string {
	switch t {
	case ReadRequest:
		return "ReadRequest"
	case WriteRequest:
		return "WriteRequest"
	case ReadReply:
		return "ReadReply"
	case WriteReply:
		return "WriteReply"
	default:
		return "Unknown"
	}
}

// IsRequest returns true for packets that travel from shaders to memory.
func (t PacketType) IsRequest() bool {
	return t == ReadRequest || t == WriteRequest
}

// Typed is implemented by host payloads that know their own packet type.
type Typed interface {
	PacketType() PacketType
}
