package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/icnt3d/config"
	"github.com/sarchlab/icnt3d/datarecording"
	"github.com/sarchlab/icnt3d/icnt"
	"github.com/sarchlab/icnt3d/monitoring"
	"github.com/sarchlab/icnt3d/noc/acceptance"
	"github.com/sarchlab/icnt3d/noc/messaging"
	"github.com/sarchlab/icnt3d/noc/networking/router"
	"github.com/sarchlab/icnt3d/power"
	"github.com/sarchlab/icnt3d/sim"
)

type runOptions struct {
	configFile  string
	energyModel string
	shaders     int
	mems        int
	packets     uint64
	rate        float64
	maxCycles   uint64
	trace       bool
	monitor     bool
	port        int
	open        bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run shader to memory traffic through the interconnect.",
	Long: "`run` sends random read and write requests from the shader " +
		"cores to the memory partitions. Every request is answered. The " +
		"statistics are printed once the traffic drains.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.OutOrStdout(), runOpts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVar(&runOpts.configFile, "config", "",
		"YAML configuration file")
	f.StringVar(&runOpts.energyModel, "energy-model", "",
		"YAML file with per-event energies")
	f.IntVar(&runOpts.shaders, "shaders", 0,
		"number of shader cores, three quarters of the nodes by default")
	f.IntVar(&runOpts.mems, "mems", 0,
		"number of memory partitions, the remaining nodes by default")
	f.Uint64Var(&runOpts.packets, "packets", 1000,
		"number of requests to send")
	f.Float64Var(&runOpts.rate, "rate", 1,
		"probability that a device injects in a cycle")
	f.Uint64Var(&runOpts.maxCycles, "max-cycles", 1000000,
		"fail if the traffic has not drained after this many cycles")
	f.BoolVar(&runOpts.trace, "trace", false,
		"log every packet pushed, ejected, and popped")
	f.BoolVar(&runOpts.monitor, "monitor", false,
		"serve the monitoring page while the simulation runs")
	f.IntVar(&runOpts.port, "port", 0,
		"port of the monitoring server, random if not given")
	f.BoolVar(&runOpts.open, "open", false,
		"open the monitoring page in a browser")
}

func run(out io.Writer, opts runOptions) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}

	nShader, nMem := deviceCounts(cfg, opts)

	crossbar := messaging.NewTrafficCounter(router.HookPosFlitForward,
		cfg.FlitSize)
	hooks := []sim.Hook{crossbar}

	if opts.trace {
		logger := log.New(os.Stderr, "", 0)
		hooks = append(hooks, sim.NewItemLogger(logger,
			icnt.HookPosPacketPushed,
			icnt.HookPosPacketEjected,
			icnt.HookPosPacketPopped))
	}

	builder := icnt.MakeBuilder().
		WithConfig(cfg).
		WithShaders(nShader).
		WithMemories(nMem).
		WithHooks(hooks...)

	var runRecorder *datarecording.RunRecorder
	if cfg.RecordDB != "" {
		recorder := datarecording.New(cfg.RecordDB)
		builder = builder.WithRecorder(recorder)

		runRecorder = datarecording.NewRunRecorder(recorder)
		runRecorder.Start()
	}

	if cfg.SimPower {
		estimator, err := energyModel(opts.energyModel)
		if err != nil {
			return err
		}

		builder = builder.WithPowerEstimator(estimator)
	}

	ic, err := builder.Build("ICNT")
	if err != nil {
		return err
	}

	test := acceptance.NewTest(ic, nShader, nMem, opts.rate).
		WithSeed(cfg.Seed)
	test.GenerateMsgs(opts.packets)

	if opts.monitor {
		startMonitor(ic, test, opts)
	}

	err = test.Run(opts.maxCycles)
	if err != nil {
		ic.DisplayState(os.Stderr)
		return err
	}

	test.MustHaveReceivedAllMsgs()

	if err := ic.DisplayOverallStats(out); err != nil {
		return err
	}

	fmt.Fprintf(out, "crossbar traversals: %d flits, %d packet tails\n",
		crossbar.TotalFlits, crossbar.TotalPackets)

	if runRecorder != nil {
		runRecorder.Set("Topology", topologyString(cfg))
		runRecorder.Set("Devices", fmt.Sprintf("%d shaders, %d memories",
			nShader, nMem))
		runRecorder.Set("Node Map", ic.NodeMap().String())
		runRecorder.Set("Cycles", fmt.Sprintf("%d", ic.Now()))
		runRecorder.End()
	}

	return nil
}

func deviceCounts(cfg *config.Config, opts runOptions) (int, int) {
	nShader, nMem := opts.shaders, opts.mems
	numNodes := cfg.NumNodes()

	if nMem == 0 {
		if nShader > 0 {
			nMem = numNodes - nShader
		} else {
			nMem = numNodes / 4
		}
	}

	if nMem < 1 {
		nMem = 1
	}

	if nShader == 0 {
		nShader = numNodes - nMem
	}

	return nShader, nMem
}

func energyModel(path string) (power.Estimator, error) {
	if path == "" {
		return power.DefaultEventEnergy(), nil
	}

	e, err := power.LoadEventEnergy(path)
	if err != nil {
		return nil, err
	}

	return e, nil
}

func startMonitor(
	ic *icnt.Interconnect,
	test *acceptance.Test,
	opts runOptions,
) {
	m := monitoring.NewMonitor().WithBrowser(opts.open)
	if opts.port != 0 {
		m.WithPortNumber(opts.port)
	}

	m.RegisterSimulation(ic)
	m.RegisterComponent(ic)

	for _, b := range ic.Buffers() {
		m.RegisterBuffer(b)
	}

	bar := m.CreateProgressBar("Packets", opts.packets*2)
	test.WithStepper(func(step func()) {
		m.Advance(step)

		sent := uint64(test.NumSent())
		delivered := uint64(test.NumReceived())
		bar.SetProgress(delivered, sent-delivered)
	})

	m.StartServer()
}

func topologyString(cfg *config.Config) string {
	dims := []string{fmt.Sprint(cfg.K), fmt.Sprint(cfg.N)}
	if cfg.Topology == config.TopologyMesh3D {
		dims = append(dims, fmt.Sprint(cfg.S))
	}

	return fmt.Sprintf("%s %s, %d subnets", cfg.Topology,
		strings.Join(dims, "x"), cfg.Subnets)
}
