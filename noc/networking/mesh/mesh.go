// Package mesh builds planar k x n meshes of input-queued routers.
package mesh

import (
	"fmt"

	"github.com/sarchlab/icnt3d/noc/networking"
	"github.com/sarchlab/icnt3d/noc/networking/mesh3d"
	"github.com/sarchlab/icnt3d/noc/networking/router"
	"github.com/sarchlab/icnt3d/noc/networking/routing"
)

// Mesh is a single-layer mesh without vertical buses.
type Mesh struct {
	*mesh3d.Mesh3D
}

// New creates a k x n mesh.
func New(k, n int) (*Mesh, error) {
	m, err := mesh3d.New(k, n, 1)
	if err != nil {
		return nil, err
	}

	return &Mesh{Mesh3D: m}, nil
}

// Name returns the name of the topology.
func (m *Mesh) Name() string {
	return fmt.Sprintf("mesh %dx%d", m.K(), m.N())
}

// PortCount returns the planar neighbors plus the local port.
func (m *Mesh) PortCount(node int) int {
	return m.Mesh3D.PortCount(node) - 2
}

// Build creates the routers and channels of one subnet.
func (m *Mesh) Build(
	ctx *networking.Context,
	subnet int,
	p networking.Params,
) (*networking.Network, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	net := networking.NewNetwork(
		fmt.Sprintf("Mesh[%d]", subnet), subnet, ctx, m.NumChannels())

	routers := make([]*router.IQRouter, m.NumNodes())
	for node := range routers {
		x, y, _ := m.FindCoordinate(node)

		routers[node] = router.MakeBuilder().
			WithID(node).
			WithNumVCs(p.NumVCs).
			WithVCBufSize(p.VCBufSize).
			WithVCArbiter(p.VCArbiter).
			WithSwitchArbiter(p.SwitchArbiter).
			WithRoutingTable(routing.NewDimensionOrderTable(m, node)).
			WithCreditPool(ctx.CreditPool).
			Build(fmt.Sprintf("%s.Router[%d][%d]", net.Name(), x, y))

		net.AddRouter(routers[node])
	}

	for node, r := range routers {
		m.ConnectPlanar(net, r, node, p)
		net.ConnectEndpoint(node, r, p)
	}

	return net, nil
}

var _ networking.Topology = (*Mesh)(nil)
