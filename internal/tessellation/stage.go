package tessellation

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/foamgen/foamgen/internal/packing"
	"github.com/foamgen/foamgen/internal/toolexec"
	"github.com/foamgen/foamgen/pkg/config"
	"github.com/foamgen/foamgen/pkg/logger"
)

// Seed files Neper reads for the Laguerre weights.
const (
	centersFile = "centers.txt"
	radiiFile   = "rads.txt"
)

// Stage computes the periodic Laguerre tessellation of the packing.
// Output is <name>Tessellation.{tess,geo} plus the .gnu edge export.
type Stage struct {
	name   string
	dir    string
	ncells int
	cfg    config.TessConfig
	runner *toolexec.Runner
}

// NewStage builds the tessellation stage rooted at dir. The cell
// count must match the packing that produced <name>Packing.csv.
func NewStage(name, dir string, ncells int, cfg config.TessConfig) *Stage {
	return &Stage{
		name:   name,
		dir:    dir,
		ncells: ncells,
		cfg:    cfg,
		runner: toolexec.NewRunner(dir, 0),
	}
}

// Name identifies the stage to the pipeline runner
func (s *Stage) Name() string { return "tess" }

// Run prepares Neper's seed files, tessellates, and exports the cell
// edges for the strut reconstruction tool.
func (s *Stage) Run(ctx context.Context) error {
	if err := s.prep(); err != nil {
		return err
	}
	if err := s.tessellate(ctx); err != nil {
		return err
	}
	if err := s.exportEdges(); err != nil {
		return err
	}
	if s.cfg.Clean {
		s.cleanScratch()
	}
	return nil
}

// prep splits the packing into the center and weight files Neper's
// morphooptiini option reads.
func (s *Stage) prep() error {
	spheres, err := packing.ReadCSV(filepath.Join(s.dir, s.name+"Packing.csv"))
	if err != nil {
		return err
	}

	centers, err := os.Create(filepath.Join(s.dir, centersFile))
	if err != nil {
		return fmt.Errorf("tessellation: create %s: %w", centersFile, err)
	}
	defer centers.Close()
	radii, err := os.Create(filepath.Join(s.dir, radiiFile))
	if err != nil {
		return fmt.Errorf("tessellation: create %s: %w", radiiFile, err)
	}
	defer radii.Close()

	cw := bufio.NewWriter(centers)
	rw := bufio.NewWriter(radii)
	for _, sp := range spheres {
		fmt.Fprintf(cw, "%g\t%g\t%g\n", sp.X, sp.Y, sp.Z)
		fmt.Fprintf(rw, "%g\n", sp.D/2)
	}
	if err := cw.Flush(); err != nil {
		return fmt.Errorf("tessellation: write %s: %w", centersFile, err)
	}
	if err := rw.Flush(); err != nil {
		return fmt.Errorf("tessellation: write %s: %w", radiiFile, err)
	}
	return nil
}

// tessellate runs Neper. Regularization is unavailable for periodic
// tessellations, so the raw morphology is kept.
func (s *Stage) tessellate(ctx context.Context) error {
	args := []string{
		"-T",
		"-n", strconv.Itoa(s.ncells),
		"-domain", "cube(1,1,1)",
		"-periodicity", "x,y,z",
		"-morpho", "voronoi",
		"-morphooptiini", fmt.Sprintf("coo:file(%s),weight:file(%s)", centersFile, radiiFile),
		"-o", s.name + "Tessellation",
		"-format", "tess,geo",
		"-statcell", "vol",
		"-statedge", "length",
		"-statface", "area",
		"-statver", "x",
	}
	logger.Info("tessellating packed spheres", "cells", s.ncells)
	if _, err := s.runner.Run(ctx, "neper", args...); err != nil {
		return fmt.Errorf("tessellation: neper: %w", err)
	}
	return nil
}

// exportEdges writes <name>Tessellation.gnu: one two-point segment
// per tessellation edge, blank-line separated.
func (s *Stage) exportEdges() error {
	geo, err := ParseGeoFile(filepath.Join(s.dir, s.name+"Tessellation.geo"))
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, s.name+"Tessellation.gnu")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tessellation: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range geo.Lines {
		a, b := geo.Points[e.A], geo.Points[e.B]
		fmt.Fprintf(w, "%g %g %g\n", a.X, a.Y, a.Z)
		fmt.Fprintf(w, "%g %g %g\n\n\n", b.X, b.Y, b.Z)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("tessellation: write %s: %w", path, err)
	}
	logger.Info("tessellation edges exported", "edges", len(geo.Lines), "file", path)
	return f.Close()
}

// cleanScratch deletes Neper's seed files
func (s *Stage) cleanScratch() {
	for _, name := range []string{centersFile, radiiFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove scratch file", "file", name, "error", err)
		}
	}
}
