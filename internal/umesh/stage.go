// Package umesh creates the unstructured tetrahedral mesh of the
// foam morphology with gmsh, with an optional conversion to the XML
// format FEniCS reads.
package umesh

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/foamgen/foamgen/internal/toolexec"
	"github.com/foamgen/foamgen/pkg/config"
	"github.com/foamgen/foamgen/pkg/logger"
)

// charLength caps the gmsh characteristic element size.
const charLength = 0.1

// Stage meshes the foam morphology. Output is <name>UMesh.msh in the
// legacy msh2 format, plus <name>UMesh.xml when conversion is on.
type Stage struct {
	name   string
	dir    string
	cfg    config.UMeshConfig
	runner *toolexec.Runner
}

// NewStage builds the unstructured meshing stage rooted at dir.
func NewStage(name, dir string, cfg config.UMeshConfig) *Stage {
	return &Stage{
		name:   name,
		dir:    dir,
		cfg:    cfg,
		runner: toolexec.NewRunner(dir, 0),
	}
}

// Name identifies the stage to the pipeline runner
func (s *Stage) Name() string { return "umesh" }

// Run writes the sizing wrapper geometry and meshes it.
func (s *Stage) Run(ctx context.Context) error {
	meshGeo := s.name + "UMesh.geo"
	if err := writeMeshConfig(
		filepath.Join(s.dir, meshGeo),
		s.name+"Morphology.geo",
		s.cfg.PointSizing, s.cfg.EdgeSizing, s.cfg.CellSizing,
	); err != nil {
		return err
	}

	logger.Info("meshing domain",
		"psize", s.cfg.PointSizing, "esize", s.cfg.EdgeSizing, "csize", s.cfg.CellSizing)
	// msh2 format for dolfin compatibility.
	if _, err := s.runner.Run(ctx, "gmsh", "-3", "-v", "3", "-format", "msh2", meshGeo); err != nil {
		return fmt.Errorf("umesh: gmsh: %w", err)
	}

	if s.cfg.Convert {
		msh := s.name + "UMesh.msh"
		xml := s.name + "UMesh.xml"
		if _, err := s.runner.Run(ctx, "dolfin-convert", msh, xml); err != nil {
			return fmt.Errorf("umesh: dolfin-convert: %w", err)
		}
		logger.Info("mesh converted", "file", xml)
	}
	return nil
}

// writeMeshConfig writes the gmsh wrapper geometry that merges the
// morphology and sets distance-threshold sizing fields at points,
// edges and cell interiors, assuming a unit bounding box.
func writeMeshConfig(path, morphGeo string, psize, esize, csize float64) error {
	const eps = 1e-6
	bbox := fmt.Sprintf("{%g, %g, %g, %g, %g, %g}", -eps, -eps, -eps, 1+eps, 1+eps, 1+eps)

	var b strings.Builder
	fmt.Fprintf(&b, "Merge \"%s\";\n", morphGeo)
	fmt.Fprintf(&b, "e1() = Line In BoundingBox %s;\n", bbox)
	fmt.Fprintf(&b, "Mesh.CharacteristicLengthMax = %g;\n", charLength)
	fmt.Fprintf(&b, "psize = %g;\n", psize)
	fmt.Fprintf(&b, "esize = %g;\n", esize)
	fmt.Fprintf(&b, "csize = %g;\n", csize)
	fmt.Fprintf(&b, "p1() = Point In BoundingBox %s;\n", bbox)
	b.WriteString("Field[1] = Distance;\n")
	b.WriteString("Field[1].NodesList = {p1()};\n")
	b.WriteString("Field[2] = Threshold;\n")
	b.WriteString("Field[2].IField = 1;\n")
	b.WriteString("Field[2].LcMin = psize;\n")
	b.WriteString("Field[2].LcMax = csize;\n")
	b.WriteString("Field[2].DistMin = 0;\n")
	b.WriteString("Field[2].DistMax = 3*csize;\n")
	b.WriteString("Field[3] = Distance;\n")
	b.WriteString("Field[3].NNodesByEdge = 10;\n")
	b.WriteString("Field[3].EdgesList = {e1()};\n")
	b.WriteString("Field[4] = Threshold;\n")
	b.WriteString("Field[4].IField = 2;\n")
	b.WriteString("Field[4].LcMin = esize;\n")
	b.WriteString("Field[4].LcMax = csize;\n")
	b.WriteString("Field[4].DistMin = 0;\n")
	b.WriteString("Field[4].DistMax = 3*csize;\n")
	b.WriteString("Field[5] = Min;\n")
	b.WriteString("Field[5].FieldsList = {2, 4};\n")
	b.WriteString("Background Field = 5;\n")
	b.WriteString("Mesh.CharacteristicLengthExtendFromBoundary = 0;\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("umesh: write %s: %w", path, err)
	}
	return nil
}
