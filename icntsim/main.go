// Package main runs interconnect simulations from the command line.
package main

import "github.com/sarchlab/icnt3d/icntsim/cmd"

func main() {
	cmd.Execute()
}
