package smesh

import (
	"context"
	"errors"
	"fmt"

	"github.com/foamgen/foamgen/internal/solver"
)

var (
	// ErrPorosityRange indicates a target porosity outside (0, 1).
	ErrPorosityRange = errors.New("smesh: target porosity must be in (0, 1)")
	// ErrStrutContentRange indicates a target strut content outside [0, 1).
	ErrStrutContentRange = errors.New("smesh: target strut content must be in [0, 1)")
	// ErrNotConverged indicates the search exhausted its iteration budget.
	// The best-effort value is reported for diagnostics only and must not
	// be used as a converged result.
	ErrNotConverged = errors.New("smesh: search did not converge within iteration budget")
)

// VoxelizeOracle produces a binarized voxel grid for a candidate
// domain scale and reports the resulting porosity. Implementations
// wrap an external voxelization tool; an error means the tool failed
// or timed out and the solve must abort.
type VoxelizeOracle interface {
	Voxelize(ctx context.Context, scale float64) (porosity float64, err error)
}

// DomainOptions parameterizes the domain size search.
type DomainOptions struct {
	TargetPorosity float64

	// Bracket, when set, is a caller-guaranteed sign-changing interval.
	// Otherwise the search expands outward from Guess by Step.
	Bracket       *solver.Interval
	Guess         float64
	Step          float64
	MaxExpansions int

	Tolerance     float64
	MaxIterations int
}

// SolveDomainSize finds the voxel-grid scale factor at which the
// voxelize oracle reports the target porosity. The returned value is
// a continuous relaxation; voxel grids need integral resolution, so
// the caller rounds it and accepts the rounding error as tolerance
// slack.
func SolveDomainSize(ctx context.Context, oracle VoxelizeOracle, opts DomainOptions) (*solver.Result, error) {
	if opts.TargetPorosity <= 0 || opts.TargetPorosity >= 1 {
		return nil, fmt.Errorf("%w: got %g", ErrPorosityRange, opts.TargetPorosity)
	}

	objective := func(scale float64) (float64, error) {
		porosity, err := oracle.Voxelize(ctx, scale)
		if err != nil {
			return 0, err
		}
		return porosity - opts.TargetPorosity, nil
	}

	cfg := solver.Config{
		Tolerance:     opts.Tolerance,
		MaxIterations: opts.MaxIterations,
	}
	var iv solver.Interval
	if opts.Bracket != nil {
		cfg.Mode = solver.Bounded
		iv = *opts.Bracket
	} else {
		cfg.Mode = solver.Expanding
		cfg.Guess = opts.Guess
		cfg.Step = opts.Step
		cfg.MaxExpansions = opts.MaxExpansions
	}

	return solver.FindRoot(ctx, solver.Objective(objective), iv, cfg)
}
