package packing

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sphere is one packed sphere. Coordinates live in the unit periodic
// cube; D is the diameter.
type Sphere struct {
	X, Y, Z float64
	D       float64
}

// SampleDiameters draws n sphere diameters from a lognormal cell size
// distribution with the given shape (sigma) and scale (median). A
// zero shape degenerates to a monodisperse distribution where every
// diameter equals the scale.
func SampleDiameters(shape, scale float64, n int, seed uint64) []float64 {
	diams := make([]float64, n)
	if shape == 0 {
		for i := range diams {
			diams[i] = scale
		}
		return diams
	}
	dist := distuv.LogNormal{
		Mu:    math.Log(scale),
		Sigma: shape,
		Src:   rand.NewSource(seed),
	}
	for i := range diams {
		diams[i] = dist.Rand()
	}
	return diams
}

// WriteDiameters writes one diameter per line, the input format the
// external packing generator expects in diameters.txt.
func WriteDiameters(path string, diams []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("packing: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, d := range diams {
		fmt.Fprintf(w, "%g\n", d)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("packing: write %s: %w", path, err)
	}
	return f.Close()
}
