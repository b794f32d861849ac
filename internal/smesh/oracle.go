package smesh

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/foamgen/foamgen/internal/toolexec"
	"github.com/foamgen/foamgen/pkg/logger"
	"github.com/foamgen/foamgen/pkg/utils"
)

// ErrMissingSurface indicates the periodic triangulated surface that
// should be binarized does not exist. Nothing to voxelize.
var ErrMissingSurface = errors.New("smesh: periodic surface .stl file is missing, nothing to binarize")

// defaultEdgeSize seeds the strut search when no adapted edge size
// parameter has been written by a previous reconstruction run.
const defaultEdgeSize = 2.0

// BinvoxOracle voxelizes the periodic surface with binvox at a given
// grid resolution and reads the achieved porosity from its output.
// It requires <Name>TessellationBox.stl in Dir and leaves
// <Name>SMesh.vtk behind for the downstream strut step.
type BinvoxOracle struct {
	Name   string
	Dir    string
	Runner *toolexec.Runner
}

// Voxelize implements VoxelizeOracle. The continuous scale is rounded
// to the integral grid resolution binvox accepts.
func (o *BinvoxOracle) Voxelize(ctx context.Context, scale float64) (float64, error) {
	delta := utils.RoundToInt(scale)
	if delta < 2 {
		return 0, fmt.Errorf("smesh: voxel resolution %d out of range", delta)
	}

	vtkPath := filepath.Join(o.Dir, o.Name+"SMesh.vtk")
	if err := removeIfExists(vtkPath); err != nil {
		return 0, err
	}

	surface := filepath.Join(o.Dir, o.Name+"TessellationBox.stl")
	if _, err := os.Stat(surface); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingSurface, surface)
	}

	// binvox names its output after the input, so work on a scratch copy.
	scratch := filepath.Join(o.Dir, o.Name+"SMesh.stl")
	if err := copyFile(surface, scratch); err != nil {
		return 0, err
	}
	defer os.Remove(scratch)

	out, err := o.Runner.Run(ctx, "binvox",
		"-e", "-d", strconv.Itoa(delta), "-t", "vtk", o.Name+"SMesh.stl")
	if err != nil {
		return 0, err
	}

	solid, total, err := parseVoxelCount(out)
	if err != nil {
		return 0, err
	}
	porosity := 1 - float64(solid)/float64(total)
	logger.Info("voxelized morphology", "dimension", delta, "porosity", porosity)
	return porosity, nil
}

// parseVoxelCount extracts the solid and total voxel counts from the
// binvox "counted ... voxels" report line.
func parseVoxelCount(out []byte) (solid, total int64, err error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "counted") {
			continue
		}
		var nums []int64
		for _, field := range strings.Fields(line) {
			v, convErr := strconv.ParseInt(field, 10, 64)
			if convErr == nil {
				nums = append(nums, v)
			}
		}
		if len(nums) >= 2 && nums[1] > 0 {
			return nums[0], nums[1], nil
		}
	}
	return 0, 0, fmt.Errorf("smesh: voxelizer did not report voxel counts")
}

// FoamreconstrOracle drives the foamreconstr strut reconstruction
// tool. Each call writes the tool's input deck with the candidate
// edge size, runs it on the ASCII voxel grid and tessellation edges,
// and reads the achieved porosity and strut content back from
// descriptors.txt.
type FoamreconstrOracle struct {
	Name   string
	Dir    string
	Runner *toolexec.Runner

	TargetPorosity     float64
	TargetStrutContent float64

	// lastPorosity is the porosity reported by the most recent run,
	// kept for logging and final diagnostics.
	lastPorosity float64
}

// AddStruts implements StrutOracle.
func (o *FoamreconstrOracle) AddStruts(ctx context.Context, strutSize float64) (float64, error) {
	if err := o.writeInputDeck(strutSize); err != nil {
		return 0, err
	}

	if _, err := o.Runner.Run(ctx, "foamreconstr"); err != nil {
		return 0, err
	}

	porosity, strutContent, err := o.readDescriptors()
	if err != nil {
		return 0, err
	}
	o.lastPorosity = porosity
	logger.Info("reconstructed struts",
		"strut_size", strutSize, "porosity", porosity, "strut_content", strutContent)
	return strutContent, nil
}

// LastPorosity returns the porosity achieved by the most recent run.
func (o *FoamreconstrOracle) LastPorosity() float64 {
	return o.lastPorosity
}

// writeInputDeck writes foamreconstr.in. The flag block selects strut
// creation on an existing grid; the binarization threshold encodes
// the target porosity and strut content split.
func (o *FoamreconstrOracle) writeInputDeck(strutSize float64) error {
	threshold := 1 - o.TargetStrutContent*(1-o.TargetPorosity)

	var b strings.Builder
	for _, flag := range []int{0, 1, 0, 0, 1, 0} {
		fmt.Fprintf(&b, "%d\n", flag)
	}
	fmt.Fprintf(&b, "%f\n", strutSize)
	fmt.Fprintf(&b, "%f\n", threshold)
	for _, flag := range []int{0, 1, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0} {
		fmt.Fprintf(&b, "%d\n", flag)
	}
	fmt.Fprintf(&b, "%sSMesh\n", o.Name)
	fmt.Fprintf(&b, "%sSMesh.vtk\n", o.Name)
	fmt.Fprintf(&b, "%sTessellation.gnu\n", o.Name)
	fmt.Fprintln(&b, "name")
	fmt.Fprintln(&b, "descriptors.txt")
	fmt.Fprintln(&b, "parameters.txt")

	path := filepath.Join(o.Dir, "foamreconstr.in")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("smesh: write %s: %w", path, err)
	}
	return nil
}

// readDescriptors reads the achieved porosity and strut content from
// the two-line descriptors.txt the tool writes.
func (o *FoamreconstrOracle) readDescriptors() (porosity, strutContent float64, err error) {
	path := filepath.Join(o.Dir, "descriptors.txt")
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("smesh: read %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	values := make([]float64, 0, 2)
	for sc.Scan() && len(values) < 2 {
		v, convErr := strconv.ParseFloat(strings.TrimSpace(sc.Text()), 64)
		if convErr != nil {
			return 0, 0, fmt.Errorf("smesh: malformed descriptor line %q in %s", sc.Text(), path)
		}
		values = append(values, v)
	}
	if len(values) < 2 {
		return 0, 0, fmt.Errorf("smesh: %s is missing descriptor values", path)
	}
	return values[0], values[1], nil
}

// EdgeSizeGuess returns the adapted edge size written by a previous
// reconstruction run, or the stock default when none exists.
func EdgeSizeGuess(dir string) float64 {
	f, err := os.Open(filepath.Join(dir, "parameters.txt"))
	if err != nil {
		return defaultEdgeSize
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return defaultEdgeSize
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(sc.Text()), 64)
	if err != nil || v <= 0 {
		return defaultEdgeSize
	}
	return v
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("smesh: remove %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("smesh: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("smesh: create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("smesh: copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}
