package packing

import (
	"context"
	"errors"
	"math"
	"sort"

	"golang.org/x/exp/rand"
)

// ErrPlacementFailed indicates the rejection sampler could not place
// all spheres without overlap.
var ErrPlacementFailed = errors.New("packing: could not place spheres without overlap, reduce cell count or sizes")

// Placement budgets for the rejection sampler. A full restart resets
// the per-sphere budget.
const (
	maxPlacementTries = 5000
	maxRestarts       = 20
)

// SimplePacking places spheres with the given diameters into a cube
// by rejection sampling and returns them scaled to the unit cube.
// Fast, but the achieved size distribution degrades as density grows.
func SimplePacking(ctx context.Context, diams []float64, rng *rand.Rand) ([]Sphere, error) {
	rads := make([]float64, len(diams))
	for i, d := range diams {
		rads[i] = d / 2
	}
	sort.Float64s(rads)

	// Loose box: 40% over the summed diameter cubes.
	vol := 0.0
	for _, r := range rads {
		vol += (2 * r) * (2 * r) * (2 * r)
	}

	spheres := make([]Sphere, len(rads))
	for restart := 0; restart < maxRestarts; restart++ {
		// Each restart relaxes the box a little; only relative sphere
		// sizes survive the normalization below.
		lch := math.Cbrt(vol*1.40) * math.Pow(1.05, float64(restart))
		if placeAll(ctx, spheres, rads, lch, rng) {
			// Normalize to the unit periodic cube.
			for i := range spheres {
				spheres[i].X /= lch
				spheres[i].Y /= lch
				spheres[i].Z /= lch
				spheres[i].D /= lch
			}
			return spheres, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return nil, ErrPlacementFailed
}

// placeAll tries to position every sphere inside the box without
// pairwise overlap. Returns false when a sphere runs out of tries.
func placeAll(ctx context.Context, spheres []Sphere, rads []float64, lch float64, rng *rand.Rand) bool {
	for j, r := range rads {
		placed := false
		for try := 0; try < maxPlacementTries; try++ {
			if ctx.Err() != nil {
				return false
			}
			x := r + (lch-2*r)*rng.Float64()
			y := r + (lch-2*r)*rng.Float64()
			z := r + (lch-2*r)*rng.Float64()
			if overlaps(spheres[:j], rads[:j], x, y, z, r) {
				continue
			}
			spheres[j] = Sphere{X: x, Y: y, Z: z, D: 2 * r}
			placed = true
			break
		}
		if !placed {
			return false
		}
	}
	return true
}

func overlaps(placed []Sphere, rads []float64, x, y, z, r float64) bool {
	for i, s := range placed {
		dx, dy, dz := x-s.X, y-s.Y, z-s.Z
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if dist < r+rads[i] {
			return true
		}
	}
	return false
}
