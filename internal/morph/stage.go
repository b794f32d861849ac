// Package morph turns the CAD foam geometry into the triangulated
// periodic surface the voxelization stage consumes. The CAD wall
// construction itself happens in an external kernel; this stage only
// drives the gmsh surface export and the meshconv format conversion.
package morph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/foamgen/foamgen/internal/toolexec"
	"github.com/foamgen/foamgen/pkg/config"
	"github.com/foamgen/foamgen/pkg/logger"
)

// ErrMissingGeometry indicates neither the walled morphology nor the
// raw tessellation geometry exists in the working directory.
var ErrMissingGeometry = errors.New("morph: no .geo geometry to export, run the tessellation stage first")

// Stage exports the periodic surface <name>TessellationBox.stl from
// the foam geometry, plus a .ply copy for viewers.
type Stage struct {
	name   string
	dir    string
	cfg    config.MorphConfig
	runner *toolexec.Runner
}

// NewStage builds the morphology stage rooted at dir.
func NewStage(name, dir string, cfg config.MorphConfig) *Stage {
	return &Stage{
		name:   name,
		dir:    dir,
		cfg:    cfg,
		runner: toolexec.NewRunner(dir, 0),
	}
}

// Name identifies the stage to the pipeline runner
func (s *Stage) Name() string { return "morph" }

// Run triangulates the foam geometry with gmsh and converts the
// exported surface to PLY. Prefers the walled morphology geometry
// when the external CAD step has produced one; falls back to the dry
// tessellation otherwise.
func (s *Stage) Run(ctx context.Context) error {
	input, err := s.inputGeo()
	if err != nil {
		return err
	}
	logger.Info("exporting periodic surface",
		"geometry", input, "wall_thickness", s.cfg.WallThickness)

	stl := s.name + "Morphology.stl"
	_, err = s.runner.Run(ctx, "gmsh", "-n", "-2", "-format", "stl", "-o", stl, input)
	if err != nil {
		return fmt.Errorf("morph: gmsh surface export: %w", err)
	}

	boxed := s.name + "TessellationBox.stl"
	if err := copyFile(filepath.Join(s.dir, stl), filepath.Join(s.dir, boxed)); err != nil {
		return err
	}

	// PLY copy is for viewers only; a missing meshconv is not fatal.
	if _, err := s.runner.Run(ctx, "meshconv", boxed, "-c", "ply"); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("ply conversion skipped", "error", err)
	}

	if s.cfg.Clean {
		if err := os.Remove(filepath.Join(s.dir, stl)); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove scratch file", "file", stl, "error", err)
		}
	}
	return nil
}

// inputGeo picks the geometry to export: the walled morphology when
// present, the dry tessellation otherwise.
func (s *Stage) inputGeo() (string, error) {
	for _, candidate := range []string{s.name + "Morphology.geo", s.name + "Tessellation.geo"} {
		if _, err := os.Stat(filepath.Join(s.dir, candidate)); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: looked for %sMorphology.geo and %sTessellation.geo",
		ErrMissingGeometry, s.name, s.name)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("morph: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("morph: create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("morph: copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}
