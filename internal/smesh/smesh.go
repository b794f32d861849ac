package smesh

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/foamgen/foamgen/internal/toolexec"
	"github.com/foamgen/foamgen/internal/vtkconv"
	"github.com/foamgen/foamgen/pkg/config"
	"github.com/foamgen/foamgen/pkg/logger"
	"github.com/foamgen/foamgen/pkg/utils"
)

// domainSize is the physical edge length of the periodic box. The
// packing stage generates into a unit cube, so spacing is derived
// from it and the resolved voxel resolution.
const domainSize = 1.0

// Stage creates the foam discretized on a structured cartesian mesh
// with target porosity and strut content. Ultimate output is the
// <name>SMesh.vtk file in ASCII encoding.
type Stage struct {
	name   string
	dir    string
	cfg    config.SMeshConfig
	runner *toolexec.Runner
}

// NewStage builds the structured meshing stage rooted at dir.
func NewStage(name, dir string, cfg config.SMeshConfig) (*Stage, error) {
	timeout, err := cfg.GetToolTimeout()
	if err != nil {
		return nil, fmt.Errorf("smesh: invalid tool timeout: %w", err)
	}
	return &Stage{
		name:   name,
		dir:    dir,
		cfg:    cfg,
		runner: toolexec.NewRunner(dir, timeout),
	}, nil
}

// Name identifies the stage to the pipeline runner
func (s *Stage) Name() string { return "smesh" }

// Run resolves the domain size, materializes the voxel grid at the
// accepted resolution, and, for open-cell foams, resolves the strut
// size on top of it. Both searches must converge; a best-effort value
// from an exhausted iteration budget is reported but never used.
func (s *Stage) Run(ctx context.Context) error {
	voxelizer := &BinvoxOracle{Name: s.name, Dir: s.dir, Runner: s.runner}

	logger.Info("optimizing porosity", "target", s.cfg.Porosity)
	res, err := SolveDomainSize(ctx, voxelizer, DomainOptions{
		TargetPorosity: s.cfg.Porosity,
		Guess:          s.cfg.DomainGuess,
		Step:           s.cfg.DomainStep,
		Tolerance:      s.cfg.Tolerance,
		MaxIterations:  s.cfg.MaxIterations,
	})
	if err != nil {
		return fmt.Errorf("smesh: porosity search: %w", err)
	}
	if !res.Converged {
		return fmt.Errorf("%w: porosity search stopped after %d iterations (best scale %g, residual %g)",
			ErrNotConverged, res.Iterations, res.Value, res.Residual)
	}

	delta := utils.RoundToInt(res.Value)
	logger.Info("box size resolved", "voxels", delta, "iterations", res.Iterations)

	// Recreate the grid at the rounded optimum; the solver's last
	// evaluation may not match the integral resolution.
	if _, err := voxelizer.Voxelize(ctx, float64(delta)); err != nil {
		return fmt.Errorf("smesh: voxelize at resolved size: %w", err)
	}

	spacing := domainSize / float64(delta)
	vtkPath := filepath.Join(s.dir, s.name+"SMesh.vtk")
	err = vtkconv.BinToASCII(vtkPath, vtkPath,
		vtkconv.Vec3{0, 0, 0}, vtkconv.Vec3{spacing, spacing, spacing})
	if err != nil {
		return fmt.Errorf("smesh: convert voxel grid to ascii: %w", err)
	}

	if s.cfg.StrutContent > 0 {
		if err := s.solveStruts(ctx); err != nil {
			return err
		}
	}

	if s.cfg.Clean {
		s.cleanScratch()
	}
	return nil
}

// solveStruts resolves the strut size parameter on the fixed domain
// and leaves the grid reconstructed at the accepted value.
func (s *Stage) solveStruts(ctx context.Context) error {
	oracle := &FoamreconstrOracle{
		Name:               s.name,
		Dir:                s.dir,
		Runner:             s.runner,
		TargetPorosity:     s.cfg.Porosity,
		TargetStrutContent: s.cfg.StrutContent,
	}

	guess := s.cfg.StrutGuess
	if guess <= 0 {
		guess = EdgeSizeGuess(s.dir)
	}

	logger.Info("optimizing strut content",
		"target", s.cfg.StrutContent, "initial_strut_size", guess)
	res, err := SolveStrutSize(ctx, oracle, StrutOptions{
		TargetStrutContent: s.cfg.StrutContent,
		Guess:              guess,
		Step:               guess / 2,
		Tolerance:          s.cfg.Tolerance,
		MaxIterations:      s.cfg.MaxIterations,
	})
	if err != nil {
		return fmt.Errorf("smesh: strut content search: %w", err)
	}
	if !res.Converged {
		return fmt.Errorf("%w: strut search stopped after %d iterations (best size %g, residual %g)",
			ErrNotConverged, res.Iterations, res.Value, res.Residual)
	}

	// Reconstruct once more at the accepted strut size so the saved
	// grid reflects the solution, not the last probe.
	if _, err := oracle.AddStruts(ctx, res.Value); err != nil {
		return fmt.Errorf("smesh: reconstruct at resolved strut size: %w", err)
	}
	logger.Info("strut size resolved",
		"strut_size", res.Value, "iterations", res.Iterations, "porosity", oracle.LastPorosity())
	return nil
}

// cleanScratch deletes the solver's intermediate files
func (s *Stage) cleanScratch() {
	for _, name := range []string{"descriptors.txt", "parameters.txt", "foamreconstr.in"} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove scratch file", "file", name, "error", err)
		}
	}
}
