package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foamgen/foamgen/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a configuration file without running anything",
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("config")
		if path == "" && len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			fmt.Println("Error: no config file given (use -c or pass a path)")
			os.Exit(1)
		}

		cfg, err := config.LoadConfig(path)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config is valid (filename %q)\n", cfg.Filename)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
