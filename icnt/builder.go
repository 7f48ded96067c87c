package icnt

import (
	"fmt"

	"github.com/sarchlab/icnt3d/config"
	"github.com/sarchlab/icnt3d/datarecording"
	"github.com/sarchlab/icnt3d/noc/networking"
	"github.com/sarchlab/icnt3d/noc/networking/mesh"
	"github.com/sarchlab/icnt3d/noc/networking/mesh3d"
	"github.com/sarchlab/icnt3d/power"
	"github.com/sarchlab/icnt3d/sim"
)

// Builder can build interconnects.
type Builder struct {
	cfg       *config.Config
	nShader   int
	nMem      int
	idGen     sim.IDGenerator
	hooks     []sim.Hook
	recorder  datarecording.DataRecorder
	estimator power.Estimator
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{}
}

// WithConfig sets the configuration.
func (b Builder) WithConfig(cfg *config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithShaders sets the number of shader cores.
func (b Builder) WithShaders(n int) Builder {
	b.nShader = n
	return b
}

// WithMemories sets the number of memory partitions.
func (b Builder) WithMemories(n int) Builder {
	b.nMem = n
	return b
}

// WithIDGenerator sets the generator that names the packets. Packets are
// numbered sequentially by default.
func (b Builder) WithIDGenerator(g sim.IDGenerator) Builder {
	b.idGen = g
	return b
}

// WithHooks sets hooks that are attached to the interconnect and to every
// router and channel.
func (b Builder) WithHooks(hooks ...sim.Hook) Builder {
	b.hooks = append([]sim.Hook(nil), hooks...)
	return b
}

// WithRecorder sets the recorder that stores the delivered packets and the
// end-of-run statistics.
func (b Builder) WithRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// WithPowerEstimator sets the collaborator that turns activity into power.
func (b Builder) WithPowerEstimator(e power.Estimator) Builder {
	b.estimator = e
	return b
}

// Build creates the interconnect.
func (b Builder) Build(name string) (*Interconnect, error) {
	b.configMustBeGiven()

	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	topo, err := newTopology(b.cfg)
	if err != nil {
		return nil, err
	}

	nodeMap, err := NewNodeMap(b.nShader, b.nMem, topo.NumNodes(),
		b.cfg.UseMap, b.cfg.MemoryNodeMap)
	if err != nil {
		return nil, err
	}

	idGen := b.idGen
	if idGen == nil {
		idGen = sim.NewSequentialIDGenerator(name + ".Pkt")
	}

	ctx := networking.NewContext(idGen)
	ctx.Hooks = b.hooks

	ic := &Interconnect{
		name:          name,
		cfg:           b.cfg,
		ctx:           ctx,
		topology:      topo,
		nodeMap:       nodeMap,
		selector:      newSelector(b.cfg),
		popSubnetTurn: make([]int, topo.NumNodes()),
		minHopsMean:   topo.AverageDistance(),
		recorder:      b.recorder,
		estimator:     b.estimator,
	}
	ctx.Attach(ic)

	params := b.cfg.NetworkParams()
	for i := 0; i < b.cfg.Subnets; i++ {
		net, err := topo.Build(ctx, i, params)
		if err != nil {
			return nil, fmt.Errorf("build subnet %d: %w", i, err)
		}

		ic.subnets = append(ic.subnets, newSubnet(i, net,
			b.cfg.FlitSizeOf(i), b.cfg.NumVCs, b.cfg.VCBufSize,
			b.cfg.InputBufferSize, b.cfg.EjectionBufferSize))
	}

	if b.recorder != nil {
		b.recorder.CreateTable(packetTable, PacketRecord{})
		b.recorder.CreateTable(summaryTable, Summary{})
		b.recorder.CreateTable(channelTable, ChannelRecord{})
		b.recorder.CreateTable(activityTable, power.RouterActivity{})
	}

	return ic, nil
}

func (b Builder) configMustBeGiven() {
	if b.cfg == nil {
		panic("config is not given")
	}
}

func newTopology(cfg *config.Config) (networking.Topology, error) {
	switch cfg.Topology {
	case config.TopologyMesh:
		m, err := mesh.New(cfg.K, cfg.N)
		if err != nil {
			return nil, err
		}

		return m, nil
	case config.TopologyMesh3D:
		m, err := mesh3d.New(cfg.K, cfg.N, cfg.S)
		if err != nil {
			return nil, err
		}

		return m, nil
	default:
		return nil, fmt.Errorf("%w: unknown topology %q",
			config.ErrInvalidConfig, cfg.Topology)
	}
}
