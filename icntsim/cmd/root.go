// Package cmd provides the command-line interface of the interconnect
// simulator.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "icntsim",
	Short: "icntsim simulates the on-chip interconnect of a GPU.",
	Long: `icntsim simulates the on-chip interconnect of a GPU at the flit ` +
		`level. Shader cores and memory partitions exchange packets over ` +
		`one or more 2D or 3D meshes.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
