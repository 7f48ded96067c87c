package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/icnt3d/config"
	"github.com/sarchlab/icnt3d/icnt"
	"github.com/sarchlab/icnt3d/noc/acceptance"
)

var rate = flag.Float64("rate", 1, "injection rate, in packets per cycle")

func main() {
	flag.Parse()

	cfg := config.Default()
	cfg.Topology = config.TopologyMesh
	cfg.K, cfg.N, cfg.S = 2, 1, 1

	ic, err := icnt.MakeBuilder().
		WithConfig(cfg).
		WithShaders(1).
		WithMemories(1).
		Build("OneToOne")
	if err != nil {
		log.Fatal(err)
	}

	t := acceptance.NewTest(ic, 1, 1, *rate)
	t.GenerateMsgs(20000)

	err = t.Run(1000000)
	if err != nil {
		log.Fatal(err)
	}

	t.MustHaveReceivedAllMsgs()
	t.ReportBandwidthAchieved(os.Stdout)
	fmt.Println("passed!")
	atexit.Exit(0)
}
