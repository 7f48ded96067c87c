package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/icnt3d/config"
	"github.com/sarchlab/icnt3d/datarecording"
	"github.com/sarchlab/icnt3d/noc/acceptance"
)

var _ = Describe("Run", func() {
	var (
		dir  string
		opts runOptions
		out  *bytes.Buffer
	)

	writeConfig := func(content string) {
		opts.configFile = filepath.Join(dir, "icnt.yaml")
		Expect(os.WriteFile(opts.configFile, []byte(content), 0o644)).
			To(Succeed())
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		out = new(bytes.Buffer)
		opts = runOptions{
			packets:   20,
			rate:      1,
			maxCycles: 100000,
		}
	})

	It("should drain the traffic and print statistics", func() {
		writeConfig("topology: mesh\nk: 2\nn: 2\ns: 1\n")

		Expect(run(out, opts)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("ICNT: "))
		Expect(out.String()).To(ContainSubstring("subnet 0:"))
		Expect(out.String()).To(ContainSubstring("subnet 1:"))
		Expect(out.String()).To(ContainSubstring("crossbar traversals:"))
	})

	It("should estimate power", func() {
		writeConfig("topology: mesh\nk: 2\nn: 2\ns: 1\nsim_power: true\n")

		Expect(run(out, opts)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("power: dynamic energy"))
	})

	It("should record the run", func() {
		db := filepath.Join(dir, "run")
		writeConfig("topology: mesh3d\nk: 2\nn: 2\ns: 2\nrecord_db: " +
			db + "\n")

		Expect(run(out, opts)).To(Succeed())

		reader := datarecording.NewReader(db + ".sqlite3")
		defer reader.Close()

		Expect(reader.ListTables()).To(ContainElements(
			"packets", "subnet_summary", "run_info"))
	})

	It("should reject an invalid configuration", func() {
		writeConfig("topology: ring\n")

		err := run(out, opts)

		Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())
	})

	It("should fail when the traffic does not drain in time", func() {
		writeConfig("topology: mesh\nk: 2\nn: 2\ns: 1\n")
		opts.maxCycles = 2

		err := run(out, opts)

		Expect(errors.Is(err, acceptance.ErrNotDrained)).To(BeTrue())
	})
})

var _ = Describe("Device counts", func() {
	cfg := &config.Config{K: 4, N: 4, S: 2}

	It("should give a quarter of the nodes to memories", func() {
		nShader, nMem := deviceCounts(cfg, runOptions{})

		Expect(nShader).To(Equal(24))
		Expect(nMem).To(Equal(8))
	})

	It("should fill the nodes left by the shaders", func() {
		nShader, nMem := deviceCounts(cfg, runOptions{shaders: 30})

		Expect(nShader).To(Equal(30))
		Expect(nMem).To(Equal(2))
	})

	It("should keep explicit counts", func() {
		nShader, nMem := deviceCounts(cfg, runOptions{shaders: 4, mems: 2})

		Expect(nShader).To(Equal(4))
		Expect(nMem).To(Equal(2))
	})
})

var _ = Describe("Topology string", func() {
	It("should name 3D meshes with three dimensions", func() {
		cfg := config.Default()

		Expect(topologyString(cfg)).To(Equal("mesh3d 4x4x2, 2 subnets"))
	})

	It("should name 2D meshes with two dimensions", func() {
		cfg := config.Default()
		cfg.Topology = config.TopologyMesh
		cfg.S = 1

		Expect(topologyString(cfg)).To(Equal("mesh 4x4, 2 subnets"))
	})
})
