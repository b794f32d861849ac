package packing

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrPackingFailed indicates the external packing generator never
// produced a result within the attempt budget.
var ErrPackingFailed = errors.New("packing: generator produced no result, adjust particle count or size distribution")

// File names of the external generator's interface. The tool reads
// generation.conf and diameters.txt from its working directory and
// reports through packing.nfo and packing.xyzd.
const (
	generatorTool = "PackingGeneration.exe"
	confFile      = "generation.conf"
	diamFile      = "diameters.txt"
	infoFile      = "packing.nfo"
	resultFile    = "packing.xyzd"
)

// writeGeneratorConfig writes generation.conf for a periodic unit
// cube run.
func writeGeneratorConfig(dir string, nparticles int, seed int64) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Particles count: %d\n", nparticles)
	fmt.Fprintf(&b, "Packing size: 1 1 1\n")
	fmt.Fprintf(&b, "Generation start: 1\n")
	fmt.Fprintf(&b, "Seed: %d\n", seed)
	fmt.Fprintf(&b, "Steps to write: 1000\n")
	fmt.Fprintf(&b, "Boundaries mode: 1\n")
	fmt.Fprintf(&b, "Contraction rate: 1.328910e-005\n")

	path := filepath.Join(dir, confFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("packing: write %s: %w", path, err)
	}
	return nil
}

// readPorosities extracts the theoretical and final porosity lines
// from the generator's packing.nfo report.
func readPorosities(dir string) (theory, final float64, err error) {
	path := filepath.Join(dir, infoFile)
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("packing: read %s: %w", path, err)
	}
	defer f.Close()

	haveTheory, haveFinal := false, false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.ToLower(sc.Text())
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		v, convErr := strconv.ParseFloat(fields[len(fields)-1], 64)
		if convErr != nil {
			continue
		}
		switch {
		case strings.HasPrefix(line, "theoretical porosity"):
			theory, haveTheory = v, true
		case strings.HasPrefix(line, "final porosity"):
			final, haveFinal = v, true
		}
	}
	if err := sc.Err(); err != nil {
		return 0, 0, fmt.Errorf("packing: read %s: %w", path, err)
	}
	if !haveTheory || !haveFinal {
		return 0, 0, fmt.Errorf("packing: %s is missing porosity lines", path)
	}
	return theory, final, nil
}

// readSpheres reads the generator's binary packing.xyzd result:
// little-endian float64 rows of x, y, z, diameter.
func readSpheres(dir string) ([]Sphere, error) {
	path := filepath.Join(dir, resultFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("packing: read %s: %w", path, err)
	}
	const rowSize = 4 * 8
	if len(data) == 0 || len(data)%rowSize != 0 {
		return nil, fmt.Errorf("packing: %s has invalid size %d bytes", path, len(data))
	}

	spheres := make([]Sphere, len(data)/rowSize)
	for i := range spheres {
		row := data[i*rowSize:]
		spheres[i] = Sphere{
			X: math.Float64frombits(binary.LittleEndian.Uint64(row[0:])),
			Y: math.Float64frombits(binary.LittleEndian.Uint64(row[8:])),
			Z: math.Float64frombits(binary.LittleEndian.Uint64(row[16:])),
			D: math.Float64frombits(binary.LittleEndian.Uint64(row[24:])),
		}
	}
	return spheres, nil
}

// rescaleDiameters corrects the generator's diameters so the solid
// fraction matches the reported final porosity instead of the
// theoretical one.
func rescaleDiameters(spheres []Sphere, theory, final float64) {
	factor := math.Cbrt((1 - final) / (1 - theory))
	for i := range spheres {
		spheres[i].D *= factor
	}
}
