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

var (
	meshWidth   = flag.Int("k", 4, "mesh width")
	meshHeight  = flag.Int("n", 4, "mesh height")
	numLayers   = flag.Int("s", 2, "number of layers")
	numMessages = flag.Uint64("msgs", 2000, "number of requests")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	cfg.K, cfg.N, cfg.S = *meshWidth, *meshHeight, *numLayers

	numNodes := cfg.NumNodes()
	nMem := numNodes / 4
	if nMem == 0 {
		nMem = 1
	}

	ic, err := icnt.MakeBuilder().
		WithConfig(cfg).
		WithShaders(numNodes - nMem).
		WithMemories(nMem).
		Build("Mesh")
	if err != nil {
		log.Fatal(err)
	}

	test := acceptance.NewTest(ic, numNodes-nMem, nMem, 1)
	test.GenerateMsgs(*numMessages)

	err = test.Run(100 * *numMessages)
	if err != nil {
		ic.DisplayState(os.Stderr)
		log.Fatal(err)
	}

	test.MustHaveReceivedAllMsgs()
	ic.DisplayStats(os.Stdout)
	fmt.Println("passed!")
	atexit.Exit(0)
}
