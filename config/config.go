// Package config loads and validates the parameters of an interconnect
// simulation.
package config

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/icnt3d/noc/networking"
	"github.com/sarchlab/icnt3d/noc/networking/arbitration"
)

// ErrInvalidConfig is returned when a configuration cannot describe a
// simulation.
var ErrInvalidConfig = errors.New("invalid interconnect configuration")

// Topology names.
const (
	TopologyMesh   = "mesh"
	TopologyMesh3D = "mesh3d"
)

// Subnet selection policy names.
const (
	SelectPacketType = "packet_type"
	SelectRoundRobin = "round_robin"
	SelectRandom     = "random"
	SelectPacketSize = "packet_size"
)

var (
	topologies = []string{TopologyMesh, TopologyMesh3D}
	policies   = []string{
		SelectPacketType, SelectRoundRobin, SelectRandom, SelectPacketSize,
	}
	arbiters = []string{arbitration.KindRoundRobin, arbitration.KindMatrix}
)

// Config holds every parameter of an interconnect.
type Config struct {
	Topology string `yaml:"topology"`
	K        int    `yaml:"k"`
	N        int    `yaml:"n"`
	S        int    `yaml:"s"`
	Subnets  int    `yaml:"subnets"`

	NumVCs             int `yaml:"num_vcs"`
	VCBufSize          int `yaml:"vc_buf_size"`
	InputBufferSize    int `yaml:"input_buffer_size"`
	EjectionBufferSize int `yaml:"ejection_buffer_size"`
	BoundaryBufferSize int `yaml:"boundary_buffer_size"`
	ChannelLatency     int `yaml:"channel_latency"`

	// Flit sizes are in bits. AsymFlitSize is the flit size of subnet 1
	// under the packet_size policy.
	FlitSize     int `yaml:"flit_size"`
	AsymFlitSize int `yaml:"asym_flit_size"`

	VCArbiter       string `yaml:"vc_arbiter"`
	SwitchArbiter   string `yaml:"sw_arbiter"`
	VerticalArbiter string `yaml:"verc_arbiter"`
	SubnetSelection string `yaml:"subnet_selection"`

	UseMap        bool  `yaml:"use_map"`
	MemoryNodeMap []int `yaml:"memory_node_map"`

	Seed          uint64  `yaml:"seed"`
	SimPower      bool    `yaml:"sim_power"`
	RecordDB      string  `yaml:"record_db"`
	PrintActivity bool    `yaml:"print_activity"`
	FrequencyGHz  float64 `yaml:"frequency_ghz"`
}

// Default returns the configuration of a 4x4x2 mesh with two subnets.
func Default() *Config {
	return &Config{
		Topology:           TopologyMesh3D,
		K:                  4,
		N:                  4,
		S:                  2,
		Subnets:            2,
		NumVCs:             2,
		VCBufSize:          8,
		InputBufferSize:    256,
		EjectionBufferSize: 16,
		BoundaryBufferSize: 16,
		ChannelLatency:     1,
		FlitSize:           256,
		AsymFlitSize:       64,
		VCArbiter:          arbitration.KindRoundRobin,
		SwitchArbiter:      arbitration.KindRoundRobin,
		VerticalArbiter:    arbitration.KindRoundRobin,
		SubnetSelection:    SelectPacketType,
		Seed:               1,
		FrequencyGHz:       1,
	}
}

// Load reads a YAML file over the defaults, then applies environment
// overrides, and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		if err := c.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return nil
}

// Parse decodes YAML over the current values.
func (c *Config) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a valid simulation.
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"k", c.K},
		{"n", c.N},
		{"s", c.S},
		{"subnets", c.Subnets},
		{"num_vcs", c.NumVCs},
		{"vc_buf_size", c.VCBufSize},
		{"input_buffer_size", c.InputBufferSize},
		{"ejection_buffer_size", c.EjectionBufferSize},
		{"boundary_buffer_size", c.BoundaryBufferSize},
		{"channel_latency", c.ChannelLatency},
		{"flit_size", c.FlitSize},
	}

	for _, p := range positive {
		if p.value < 1 {
			return fmt.Errorf("%w: %s must be positive, got %d",
				ErrInvalidConfig, p.name, p.value)
		}
	}

	if c.FrequencyGHz <= 0 {
		return fmt.Errorf("%w: frequency_ghz must be positive, got %g",
			ErrInvalidConfig, c.FrequencyGHz)
	}

	if !slices.Contains(topologies, c.Topology) {
		return fmt.Errorf("%w: unknown topology %q", ErrInvalidConfig, c.Topology)
	}

	if c.Topology == TopologyMesh && c.S != 1 {
		return fmt.Errorf("%w: a planar mesh has one layer, got s=%d",
			ErrInvalidConfig, c.S)
	}

	for _, a := range []string{c.VCArbiter, c.SwitchArbiter, c.VerticalArbiter} {
		if !slices.Contains(arbiters, a) {
			return fmt.Errorf("%w: unknown arbiter %q", ErrInvalidConfig, a)
		}
	}

	return c.validateSelection()
}

func (c *Config) validateSelection() error {
	if !slices.Contains(policies, c.SubnetSelection) {
		return fmt.Errorf("%w: unknown subnet selection %q",
			ErrInvalidConfig, c.SubnetSelection)
	}

	switch c.SubnetSelection {
	case SelectPacketType, SelectPacketSize:
		if c.Subnets < 2 {
			return fmt.Errorf("%w: %s selection needs 2 subnets, got %d",
				ErrInvalidConfig, c.SubnetSelection, c.Subnets)
		}
	}

	if c.SubnetSelection == SelectPacketSize && c.AsymFlitSize < 1 {
		return fmt.Errorf("%w: asym_flit_size must be positive, got %d",
			ErrInvalidConfig, c.AsymFlitSize)
	}

	return nil
}

// NumNodes returns the number of network nodes of one subnet.
func (c *Config) NumNodes() int {
	return c.K * c.N * c.S
}

// FlitSizeOf returns the flit width of a subnet in bits.
func (c *Config) FlitSizeOf(subnet int) int {
	if c.SubnetSelection == SelectPacketSize && subnet == 1 {
		return c.AsymFlitSize
	}

	return c.FlitSize
}

// NetworkParams returns the router and channel parameters.
func (c *Config) NetworkParams() networking.Params {
	return networking.Params{
		NumVCs:          c.NumVCs,
		VCBufSize:       c.VCBufSize,
		EjectBufSize:    c.EjectionBufferSize,
		ChannelLatency:  c.ChannelLatency,
		VCArbiter:       c.VCArbiter,
		SwitchArbiter:   c.SwitchArbiter,
		VerticalArbiter: c.VerticalArbiter,
		NumClasses:      2,
	}
}
