package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "foamgen",
	Short: "Foamgen generates virtual closed-cell and open-cell foam morphologies",
	Long: `Foamgen creates spatially three-dimensional representations of foam
morphology from statistical descriptors: cell count, cell size
distribution, porosity and strut content. It orchestrates external
geometry tools (packing generator, Neper, gmsh, binvox, foamreconstr)
through a staged pipeline.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringP("filename", "f", "", "base filename for generated files")
	rootCmd.PersistentFlags().String("dir", ".", "working directory for generated files")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "emit JSON logs instead of text")
}
