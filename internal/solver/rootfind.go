package solver

import (
	"context"
	"math"
)

// Objective maps a candidate parameter to a signed error: the achieved
// metric minus the target metric. Stateless except for the external
// tool call it wraps; an error return aborts the solve.
type Objective func(x float64) (float64, error)

// Mode selects how the initial bracket is obtained.
type Mode int

const (
	// Bounded uses the caller-supplied interval as the bracket. The
	// caller guarantees a sign change between its endpoints.
	Bounded Mode = iota
	// Expanding grows a bracket outward from Guess by doubling Step
	// until a sign change is found.
	Expanding
)

// Interval is a candidate bracket with invariant Lower < Upper.
type Interval struct {
	Lower float64
	Upper float64
}

// Width returns the bracket width
func (iv Interval) Width() float64 {
	return iv.Upper - iv.Lower
}

// Config holds the convergence policy shared by all solve calls.
type Config struct {
	Tolerance     float64
	MaxIterations int
	Mode          Mode

	// Expanding mode parameters. Guess is the starting point, Step the
	// initial outward step; MaxExpansions bounds the number of
	// doublings (defaults to defaultMaxExpansions when zero).
	Guess         float64
	Step          float64
	MaxExpansions int
}

// Result is the outcome of one solve call. Immutable once returned.
// Converged reports whether the tolerance was met; a false value with
// a nil error means the iteration budget ran out and Value is the
// best midpoint found.
type Result struct {
	Value      float64
	Residual   float64
	Iterations int
	Converged  bool
}

// state drives the root-finding loop. Keeping the phases explicit
// makes cancellation and partial-result reporting straightforward.
type state int

const (
	stateBracketing state = iota
	stateIterating
	stateConverged
	stateFailed
)

const defaultMaxExpansions = 32

// finder holds the in-flight state of a single FindRoot call. It is
// created per call and discarded at return; no state survives across
// invocations.
type finder struct {
	obj    Objective
	cfg    Config
	iv     Interval
	fLower float64
	fUpper float64

	res *Result
	err error
}

// FindRoot finds x such that objective(x) is within cfg.Tolerance of
// zero, using bisection on a sign-changing bracket. In Bounded mode
// the bracket is iv; in Expanding mode iv is ignored and the bracket
// is grown from cfg.Guess. Each candidate is evaluated exactly once;
// no memoization, since the objective wraps a fresh external process
// invocation.
//
// Context cancellation is honored between iterations and reports the
// best value found so far together with ctx.Err().
func FindRoot(ctx context.Context, objective Objective, iv Interval, cfg Config) (*Result, error) {
	if cfg.Tolerance <= 0 || cfg.MaxIterations <= 0 {
		return nil, ErrInvalidConfig
	}

	f := &finder{obj: objective, cfg: cfg, iv: iv}
	for st := stateBracketing; ; {
		switch st {
		case stateBracketing:
			st = f.bracket(ctx)
		case stateIterating:
			st = f.iterate(ctx)
		case stateConverged, stateFailed:
			return f.res, f.err
		}
	}
}

// iterate runs the bisection loop on an established bracket. Entry
// invariant: fLower and fUpper have opposite signs.
func (f *finder) iterate(ctx context.Context) state {
	fMid := math.NaN()
	for i := 1; i <= f.cfg.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			// Abort between iterations: report the bracket center as
			// the best known value, never converged.
			f.res = &Result{
				Value:      0.5 * (f.iv.Lower + f.iv.Upper),
				Residual:   fMid,
				Iterations: i - 1,
			}
			f.err = err
			return stateFailed
		}

		mid := 0.5 * (f.iv.Lower + f.iv.Upper)
		var err error
		fMid, err = f.eval(mid)
		if err != nil {
			f.err = err
			return stateFailed
		}

		// Exact root: terminate immediately.
		if fMid == 0 {
			f.res = &Result{Value: mid, Residual: 0, Iterations: i, Converged: true}
			return stateConverged
		}

		// Keep the half whose endpoints change sign.
		if sameSign(f.fLower, fMid) {
			f.iv.Lower, f.fLower = mid, fMid
		} else {
			f.iv.Upper, f.fUpper = mid, fMid
		}

		if math.Abs(fMid) < f.cfg.Tolerance || f.iv.Width() < f.cfg.Tolerance {
			f.res = &Result{Value: mid, Residual: fMid, Iterations: i, Converged: true}
			return stateConverged
		}
	}

	// Budget exhausted without meeting tolerance. Non-fatal: the
	// caller decides whether the approximate result is acceptable.
	f.res = &Result{
		Value:      0.5 * (f.iv.Lower + f.iv.Upper),
		Residual:   fMid,
		Iterations: f.cfg.MaxIterations,
	}
	return stateConverged
}

// eval invokes the objective once, wrapping failures with the
// candidate input that triggered them.
func (f *finder) eval(x float64) (float64, error) {
	v, err := f.obj(x)
	if err != nil {
		return 0, &OracleError{Input: x, Err: err}
	}
	return v, nil
}

func sameSign(a, b float64) bool {
	return (a > 0) == (b > 0)
}
