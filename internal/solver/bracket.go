package solver

import (
	"context"
	"fmt"
	"math"
)

// bracket establishes a sign-changing interval and its endpoint
// values. In Bounded mode it validates and evaluates the supplied
// interval; in Expanding mode it grows one outward from the guess.
// Terminal outcomes (exact endpoint root, missing bracket, oracle
// failure) short-circuit without entering the bisection phase.
func (f *finder) bracket(ctx context.Context) state {
	if f.cfg.Mode == Expanding {
		return f.expand(ctx)
	}

	if f.iv.Lower >= f.iv.Upper {
		f.err = ErrInvalidInterval
		return stateFailed
	}

	var err error
	f.fLower, err = f.eval(f.iv.Lower)
	if err != nil {
		f.err = err
		return stateFailed
	}
	f.fUpper, err = f.eval(f.iv.Upper)
	if err != nil {
		f.err = err
		return stateFailed
	}

	if st, done := f.endpointRoot(); done {
		return st
	}
	if sameSign(f.fLower, f.fUpper) {
		f.err = fmt.Errorf("%w: f(%g)=%g, f(%g)=%g",
			ErrNoBracket, f.iv.Lower, f.fLower, f.iv.Upper, f.fUpper)
		return stateFailed
	}
	return stateIterating
}

// endpointRoot reports whether either bracket endpoint is an exact
// root, in which case it is returned immediately with zero iterations.
func (f *finder) endpointRoot() (state, bool) {
	if f.fLower == 0 {
		f.res = &Result{Value: f.iv.Lower, Converged: true}
		return stateConverged, true
	}
	if f.fUpper == 0 {
		f.res = &Result{Value: f.iv.Upper, Converged: true}
		return stateConverged, true
	}
	return stateIterating, false
}

// expand grows a bracket outward from the guess by doubling the step.
// The search direction is chosen from the first two evaluations: for
// a monotone objective, walking toward the root must shrink the
// residual, so a growing residual on the chosen side is reported as a
// monotonicity violation rather than looping indefinitely.
func (f *finder) expand(ctx context.Context) state {
	if f.cfg.Step <= 0 {
		f.err = ErrInvalidConfig
		return stateFailed
	}
	maxExp := f.cfg.MaxExpansions
	if maxExp <= 0 {
		maxExp = defaultMaxExpansions
	}

	guess := f.cfg.Guess
	f0, err := f.eval(guess)
	if err != nil {
		f.err = err
		return stateFailed
	}
	if f0 == 0 {
		f.res = &Result{Value: guess, Converged: true}
		return stateConverged
	}

	x1 := guess + f.cfg.Step
	f1, err := f.eval(x1)
	if err != nil {
		f.err = err
		return stateFailed
	}
	if f1 == 0 {
		f.res = &Result{Value: x1, Converged: true}
		return stateConverged
	}
	if !sameSign(f0, f1) {
		f.setBracket(guess, f0, x1, f1)
		return stateIterating
	}

	// Same sign on both: pick the side where the residual shrinks.
	dir := 1.0
	prevX, prevF := x1, f1
	step := f.cfg.Step * 2
	if math.Abs(f1) >= math.Abs(f0) {
		dir = -1.0
		prevX, prevF = guess, f0
		step = f.cfg.Step
	}

	for n := 0; n < maxExp; n++ {
		if err := ctx.Err(); err != nil {
			f.res = &Result{Value: prevX, Residual: prevF}
			f.err = err
			return stateFailed
		}

		x := guess + dir*step
		fx, err := f.eval(x)
		if err != nil {
			f.err = err
			return stateFailed
		}
		if fx == 0 {
			f.res = &Result{Value: x, Converged: true}
			return stateConverged
		}
		if !sameSign(prevF, fx) {
			f.setBracket(prevX, prevF, x, fx)
			return stateIterating
		}
		if math.Abs(fx) > math.Abs(prevF) {
			f.err = fmt.Errorf("%w: |f(%g)|=%g grew to |f(%g)|=%g while expanding",
				ErrNonMonotonic, prevX, math.Abs(prevF), x, math.Abs(fx))
			return stateFailed
		}

		prevX, prevF = x, fx
		step *= 2
	}

	f.err = fmt.Errorf("%w: after %d doublings from %g (step %g)",
		ErrBracketExhausted, maxExp, guess, f.cfg.Step)
	return stateFailed
}

// setBracket stores a sign-changing interval in ascending order.
func (f *finder) setBracket(xa, fa, xb, fb float64) {
	if xa < xb {
		f.iv = Interval{Lower: xa, Upper: xb}
		f.fLower, f.fUpper = fa, fb
		return
	}
	f.iv = Interval{Lower: xb, Upper: xa}
	f.fLower, f.fUpper = fb, fa
}
