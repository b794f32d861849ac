package smesh

import (
	"context"
	"fmt"

	"github.com/foamgen/foamgen/internal/solver"
)

// StrutOracle adds struts of a candidate geometric size to a fixed
// voxel domain and reports the resulting strut content ratio.
// Implementations wrap an external strut reconstruction tool.
type StrutOracle interface {
	AddStruts(ctx context.Context, strutSize float64) (strutContent float64, err error)
}

// StrutOptions parameterizes the strut size search. The domain scale
// is already fixed by the time this search runs.
type StrutOptions struct {
	TargetStrutContent float64

	Bracket       *solver.Interval
	Guess         float64
	Step          float64
	MaxExpansions int

	Tolerance     float64
	MaxIterations int
}

// SolveStrutSize finds the strut size parameter at which the oracle
// reports the target strut content. A zero target short-circuits
// without invoking the oracle: a closed-cell foam needs no struts.
func SolveStrutSize(ctx context.Context, oracle StrutOracle, opts StrutOptions) (*solver.Result, error) {
	if opts.TargetStrutContent < 0 || opts.TargetStrutContent >= 1 {
		return nil, fmt.Errorf("%w: got %g", ErrStrutContentRange, opts.TargetStrutContent)
	}
	if opts.TargetStrutContent == 0 {
		return &solver.Result{Value: 0, Converged: true}, nil
	}

	objective := func(strutSize float64) (float64, error) {
		content, err := oracle.AddStruts(ctx, strutSize)
		if err != nil {
			return 0, err
		}
		return content - opts.TargetStrutContent, nil
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
