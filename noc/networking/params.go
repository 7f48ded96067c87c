package networking

import (
	"errors"
	"fmt"

	"github.com/sarchlab/icnt3d/noc/networking/arbitration"
)

// ErrInvalidParams is returned when network parameters cannot build a
// network.
var ErrInvalidParams = errors.New("invalid network parameters")

// Params are the router and channel parameters of a network.
type Params struct {
	NumVCs          int
	VCBufSize       int
	EjectBufSize    int
	ChannelLatency  int
	VCArbiter       string
	SwitchArbiter   string
	VerticalArbiter string
	NumClasses      int
}

// DefaultParams returns the parameters of a small network.
func DefaultParams() Params {
	return Params{
		NumVCs:          2,
		VCBufSize:       4,
		EjectBufSize:    4,
		ChannelLatency:  1,
		VCArbiter:       arbitration.KindRoundRobin,
		SwitchArbiter:   arbitration.KindRoundRobin,
		VerticalArbiter: arbitration.KindRoundRobin,
		NumClasses:      2,
	}
}

// Validate checks if the parameters can build a network.
func (p Params) Validate() error {
	switch {
	case p.NumVCs < 1:
		return fmt.Errorf("%w: %d vcs", ErrInvalidParams, p.NumVCs)
	case p.VCBufSize < 1:
		return fmt.Errorf("%w: vc buffer size %d", ErrInvalidParams, p.VCBufSize)
	case p.EjectBufSize < 1:
		return fmt.Errorf("%w: ejection buffer size %d",
			ErrInvalidParams, p.EjectBufSize)
	case p.ChannelLatency < 1:
		return fmt.Errorf("%w: channel latency %d",
			ErrInvalidParams, p.ChannelLatency)
	case p.NumClasses < 1:
		return fmt.Errorf("%w: %d classes", ErrInvalidParams, p.NumClasses)
	}

	for _, kind := range []string{p.VCArbiter, p.SwitchArbiter, p.VerticalArbiter} {
		if !arbitration.ValidKind(kind) {
			return fmt.Errorf("%w: unknown arbiter %q", ErrInvalidParams, kind)
		}
	}

	return nil
}
