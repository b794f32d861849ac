package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/foamgen/foamgen/internal/pipeline"
	"github.com/foamgen/foamgen/pkg/config"
	"github.com/foamgen/foamgen/pkg/logger"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the foam generation pipeline",
	Long: `Runs the enabled pipeline stages in order: sphere packing, Laguerre
tessellation, morphology export, unstructured meshing, structured
meshing. Stage toggles on the command line override the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runGenerate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolP("pack", "p", false, "create sphere packing")
	generateCmd.Flags().BoolP("tess", "t", false, "create tessellation")
	generateCmd.Flags().BoolP("morph", "m", false, "create final morphology")
	generateCmd.Flags().BoolP("umesh", "u", false, "create unstructured mesh")
	generateCmd.Flags().BoolP("smesh", "s", false, "create structured mesh")
}

func runGenerate(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyStageToggles(cmd, cfg)
	setupLogging(cmd, cfg)

	dir, _ := cmd.Flags().GetString("dir")
	runner, err := pipeline.FromConfig(cfg, dir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx); err != nil {
		return err
	}

	run := runner.State().Snapshot()
	fmt.Printf("Foam created in %s (run %s)\n", run.Duration, run.ID)
	for _, st := range run.Stages {
		fmt.Printf("  %-6s %s (%s)\n", st.Name, st.Status, st.Duration)
	}
	return nil
}

// loadConfig reads the config file when given, stock defaults
// otherwise, and applies the filename override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if name, _ := cmd.Flags().GetString("filename"); name != "" {
		cfg.Filename = name
	}
	return cfg, nil
}

// applyStageToggles enables stages selected on the command line.
func applyStageToggles(cmd *cobra.Command, cfg *config.Config) {
	toggles := []struct {
		flag   string
		active *bool
	}{
		{"pack", &cfg.Pack.Active},
		{"tess", &cfg.Tess.Active},
		{"morph", &cfg.Morph.Active},
		{"umesh", &cfg.UMesh.Active},
		{"smesh", &cfg.SMesh.Active},
	}
	for _, t := range toggles {
		if on, _ := cmd.Flags().GetBool(t.flag); on {
			*t.active = true
		}
	}
}

func setupLogging(cmd *cobra.Command, cfg *config.Config) {
	level := cfg.LogLevel
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}
	if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
		logger.SetDefault(logger.New(level, os.Stderr))
	} else {
		logger.SetDefault(logger.NewText(level, os.Stderr))
	}
}
