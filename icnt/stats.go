package icnt

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/stat"
)

const (
	packetTable   = "packets"
	summaryTable  = "subnet_summary"
	channelTable  = "channels"
	activityTable = "router_activity"
)

// PacketRecord describes one packet that has been delivered.
type PacketRecord struct {
	PacketID       string
	Subnet         int
	Type           string
	SrcNode        int
	DestNode       int
	SrcDevice      int
	DestDevice     int
	CreateCycle    uint64
	NetworkCycle   uint64
	EjectCycle     uint64
	PacketLatency  uint64
	NetworkLatency uint64
	Hops           int
}

// ChannelRecord is the utilization of one channel over the run.
type ChannelRecord struct {
	Subnet       int
	Name         string
	Vertical     bool
	Flits        uint64
	ActiveCycles uint64
	Utilization  float64
}

// Summary condenses the statistics of one subnet.
type Summary struct {
	Subnet               int
	Cycles               uint64
	InjectedPackets      uint64
	EjectedPackets       uint64
	InjectedFlits        uint64
	EjectedFlits         uint64
	PacketLatencyMean    float64
	PacketLatencyStdDev  float64
	PacketLatencyMax     uint64
	NetworkLatencyMean   float64
	NetworkLatencyStdDev float64
	HopsMean             float64
	MinHopsMean          float64
	AcceptedRate         float64
}

// Stats accumulates the traffic of one subnet.
type Stats struct {
	Subnet int

	InjectedPackets uint64
	EjectedPackets  uint64
	InjectedFlits   uint64
	EjectedFlits    uint64
	CreditsReturned uint64

	packetLatency    []float64
	networkLatency   []float64
	hops             []float64
	maxPacketLatency uint64
}

func newStats(subnet int) *Stats {
	return &Stats{Subnet: subnet}
}

func (s *Stats) record(rec PacketRecord) {
	s.EjectedPackets++
	s.packetLatency = append(s.packetLatency, float64(rec.PacketLatency))
	s.networkLatency = append(s.networkLatency, float64(rec.NetworkLatency))
	s.hops = append(s.hops, float64(rec.Hops))

	if rec.PacketLatency > s.maxPacketLatency {
		s.maxPacketLatency = rec.PacketLatency
	}
}

func (s *Stats) reset() {
	*s = Stats{Subnet: s.Subnet}
}

// Summarize computes the latency moments and the accepted flit rate per
// node and cycle.
func (s *Stats) Summarize(cycles uint64, numNodes int) Summary {
	sum := Summary{
		Subnet:           s.Subnet,
		Cycles:           cycles,
		InjectedPackets:  s.InjectedPackets,
		EjectedPackets:   s.EjectedPackets,
		InjectedFlits:    s.InjectedFlits,
		EjectedFlits:     s.EjectedFlits,
		PacketLatencyMax: s.maxPacketLatency,
	}

	if len(s.packetLatency) > 0 {
		sum.PacketLatencyMean, sum.PacketLatencyStdDev = meanStdDev(s.packetLatency)
		sum.NetworkLatencyMean, sum.NetworkLatencyStdDev = meanStdDev(s.networkLatency)
		sum.HopsMean = stat.Mean(s.hops, nil)
	}

	if cycles > 0 && numNodes > 0 {
		sum.AcceptedRate = float64(s.EjectedFlits) /
			float64(cycles) / float64(numNodes)
	}

	return sum
}

func meanStdDev(x []float64) (float64, float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}

	return stat.MeanStdDev(x, nil)
}

func (s Summary) write(w io.Writer) {
	fmt.Fprintf(w, "subnet %d: %d cycles\n", s.Subnet, s.Cycles)
	fmt.Fprintf(w, "  packets injected %d, ejected %d\n",
		s.InjectedPackets, s.EjectedPackets)
	fmt.Fprintf(w, "  flits injected %d, ejected %d\n",
		s.InjectedFlits, s.EjectedFlits)
	fmt.Fprintf(w, "  packet latency avg %.2f, stddev %.2f, max %d\n",
		s.PacketLatencyMean, s.PacketLatencyStdDev, s.PacketLatencyMax)
	fmt.Fprintf(w, "  network latency avg %.2f, stddev %.2f\n",
		s.NetworkLatencyMean, s.NetworkLatencyStdDev)
	fmt.Fprintf(w, "  hops avg %.2f, minimal avg %.2f\n",
		s.HopsMean, s.MinHopsMean)
	fmt.Fprintf(w, "  accepted rate %.4f flits/node/cycle\n", s.AcceptedRate)
}
