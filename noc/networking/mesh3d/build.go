package mesh3d

import (
	"fmt"

	"github.com/sarchlab/icnt3d/noc/networking"
	"github.com/sarchlab/icnt3d/noc/networking/arbitration"
	"github.com/sarchlab/icnt3d/noc/networking/channel"
	"github.com/sarchlab/icnt3d/noc/networking/router"
	"github.com/sarchlab/icnt3d/noc/networking/routing"
)

// Name returns the name of the topology.
func (m *Mesh3D) Name() string {
	return fmt.Sprintf("mesh3d %dx%dx%d", m.k, m.n, m.s)
}

// Build creates the routers, channels, and buses of one subnet.
func (m *Mesh3D) Build(
	ctx *networking.Context,
	subnet int,
	p networking.Params,
) (*networking.Network, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	net := networking.NewNetwork(
		fmt.Sprintf("Mesh3D[%d]", subnet), subnet, ctx, m.NumChannels())

	buses, arbiters := m.buildBuses(net, p)

	routers := make([]*router.IQ3DRouter, m.NumNodes())
	for node := range routers {
		x, y, z := m.FindCoordinate(node)

		routers[node] = router.MakeBuilder().
			WithID(node).
			WithLayer(z).
			WithNumVCs(p.NumVCs).
			WithVCBufSize(p.VCBufSize).
			WithVCArbiter(p.VCArbiter).
			WithSwitchArbiter(p.SwitchArbiter).
			WithRoutingTable(routing.NewDimensionOrderTable(m, node)).
			WithCreditPool(ctx.CreditPool).
			Build3D(fmt.Sprintf("%s.Router[%d][%d][%d]", net.Name(), x, y, z))

		net.AddRouter(routers[node])
	}

	for node, r := range routers {
		m.ConnectPlanar(net, r, node, p)

		for _, dir := range []routing.Direction{routing.Up, routing.Down} {
			idx := m.VerticalChannel(node, dir)
			r.AddVerticalChannel(dir, buses[idx], arbiters[idx])
		}

		net.ConnectEndpoint(node, r, p)
	}

	return net, nil
}

func (m *Mesh3D) buildBuses(
	net *networking.Network,
	p networking.Params,
) ([]*channel.VerticalChannel, []*arbitration.Shared) {
	builder := channel.MakeVerticalChannelBuilder().
		WithLatency(p.ChannelLatency).
		WithLayers(m.s, m.LayerSize()).
		WithVCs(p.NumVCs, p.VCBufSize).
		WithClasses(p.NumClasses)

	buses := make([]*channel.VerticalChannel, m.NumVerticalChannels())
	arbiters := make([]*arbitration.Shared, m.NumVerticalChannels())

	for i := range buses {
		column := i % m.LayerSize()
		up := i < m.LayerSize()

		buses[i] = builder.Build(column%m.k, column/m.k, up)
		arbiters[i] = arbitration.NewShared(
			buses[i].Name()+".Arbiter",
			arbitration.New(p.VerticalArbiter, m.s))

		net.AddVerticalChannel(buses[i])
	}

	return buses, arbiters
}

// ConnectPlanar wires the planar neighbors of a router. The input from a
// neighbor is the channel that the neighbor drives towards this node.
func (m *Mesh3D) ConnectPlanar(
	net *networking.Network,
	r router.Router,
	node int,
	p networking.Params,
) {
	for _, dir := range routing.PlanarDirections {
		adj := m.AdjacentNode(node, dir)
		if adj == NetworkEdge {
			continue
		}

		in, inCredit := net.Channel(
			m.AdjacentChannel(adj, dir.Opposite()), p.ChannelLatency)
		r.AddInputChannel(dir, in, inCredit)

		out, outCredit := net.Channel(
			m.AdjacentChannel(node, dir), p.ChannelLatency)
		r.AddOutputChannel(dir, out, outCredit, p.VCBufSize)
	}
}

var _ networking.Topology = (*Mesh3D)(nil)
