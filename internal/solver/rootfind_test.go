package solver

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pure returns an Objective that never fails and counts evaluations.
func pure(f func(float64) float64, calls *int) Objective {
	return func(x float64) (float64, error) {
		if calls != nil {
			*calls++
		}
		return f(x), nil
	}
}

func TestFindRoot_LinearBracket(t *testing.T) {
	// f(x) = x - 5 on [1, 10]: root at 5, bracket width 9.
	cfg := Config{Tolerance: 1e-6, MaxIterations: 100}
	res, err := FindRoot(context.Background(), pure(func(x float64) float64 { return x - 5.0 }, nil),
		Interval{Lower: 1.0, Upper: 10.0}, cfg)
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.InDelta(t, 5.0, res.Value, 1e-5)

	// Bisection needs at most ceil(log2(width/tol)) iterations.
	maxIter := int(math.Ceil(math.Log2(9.0 / 1e-6)))
	assert.LessOrEqual(t, res.Iterations, maxIter)
	assert.Greater(t, res.Iterations, 0)
}

func TestFindRoot_Deterministic(t *testing.T) {
	// A pure objective must give the same root on repeated calls.
	obj := pure(func(x float64) float64 { return math.Exp(x) - 3 }, nil)
	cfg := Config{Tolerance: 1e-9, MaxIterations: 100}
	iv := Interval{Lower: 0, Upper: 2}

	first, err := FindRoot(context.Background(), obj, iv, cfg)
	require.NoError(t, err)
	second, err := FindRoot(context.Background(), obj, iv, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, first.Iterations, second.Iterations)
}

func TestFindRoot_EndpointRoot(t *testing.T) {
	tests := []struct {
		name  string
		iv    Interval
		want  float64
		shift float64
	}{
		{name: "lower endpoint", iv: Interval{Lower: 5, Upper: 10}, want: 5, shift: 5},
		{name: "upper endpoint", iv: Interval{Lower: 1, Upper: 5}, want: 5, shift: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			res, err := FindRoot(context.Background(),
				pure(func(x float64) float64 { return x - tt.shift }, &calls),
				tt.iv, Config{Tolerance: 1e-6, MaxIterations: 10})
			require.NoError(t, err)
			assert.True(t, res.Converged)
			assert.Equal(t, tt.want, res.Value)
			assert.Equal(t, 0, res.Iterations)
			assert.LessOrEqual(t, calls, 2) // endpoint evaluations only
		})
	}
}

func TestFindRoot_ExactMidpoint(t *testing.T) {
	// f(x) = x on [-1, 1]: the first midpoint is the exact root.
	res, err := FindRoot(context.Background(), pure(func(x float64) float64 { return x }, nil),
		Interval{Lower: -1, Upper: 1}, Config{Tolerance: 1e-12, MaxIterations: 10})
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 0.0, res.Value)
	assert.Equal(t, 0.0, res.Residual)
	assert.Equal(t, 1, res.Iterations)
}

func TestFindRoot_NoBracket(t *testing.T) {
	// Both endpoints positive on [0, 1].
	res, err := FindRoot(context.Background(), pure(func(x float64) float64 { return x + 1 }, nil),
		Interval{Lower: 0, Upper: 1}, Config{Tolerance: 1e-6, MaxIterations: 10})
	require.ErrorIs(t, err, ErrNoBracket)
	assert.Nil(t, res)
}

func TestFindRoot_OracleFailure(t *testing.T) {
	boom := errors.New("binvox exited with status 1")
	calls := 0
	obj := func(x float64) (float64, error) {
		calls++
		if calls == 3 {
			return 0, boom
		}
		return x - 5.0, nil
	}

	res, err := FindRoot(context.Background(), obj,
		Interval{Lower: 1, Upper: 10}, Config{Tolerance: 1e-6, MaxIterations: 100})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 3, calls) // no further iterations after the failure

	var oerr *OracleError
	require.ErrorAs(t, err, &oerr)
	assert.ErrorIs(t, err, boom)
	// Third call is the first bisection midpoint of [1, 10].
	assert.Equal(t, 5.5, oerr.Input)
}

func TestFindRoot_BudgetExhausted(t *testing.T) {
	// 5 iterations cannot reach 1e-9 on a width-9 bracket.
	res, err := FindRoot(context.Background(), pure(func(x float64) float64 { return x - 5.0 }, nil),
		Interval{Lower: 1, Upper: 10}, Config{Tolerance: 1e-9, MaxIterations: 5})
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 5, res.Iterations)
	// Best midpoint is within the remaining bracket width of the root.
	assert.InDelta(t, 5.0, res.Value, 9.0/math.Pow(2, 5))
}

func TestFindRoot_InvalidConfig(t *testing.T) {
	obj := pure(func(x float64) float64 { return x }, nil)

	_, err := FindRoot(context.Background(), obj, Interval{Lower: 0, Upper: 1},
		Config{Tolerance: 0, MaxIterations: 10})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = FindRoot(context.Background(), obj, Interval{Lower: 0, Upper: 1},
		Config{Tolerance: 1e-6, MaxIterations: 0})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = FindRoot(context.Background(), obj, Interval{Lower: 2, Upper: 1},
		Config{Tolerance: 1e-6, MaxIterations: 10})
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestFindRoot_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	obj := func(x float64) (float64, error) {
		calls++
		if calls == 4 {
			cancel() // abort takes effect before the next iteration
		}
		return x - 5.0, nil
	}

	res, err := FindRoot(ctx, obj, Interval{Lower: 1, Upper: 10},
		Config{Tolerance: 1e-12, MaxIterations: 100})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.False(t, res.Converged)
	assert.Equal(t, 4, calls)
	// Best-effort value from the narrowed bracket, not garbage.
	assert.InDelta(t, 5.0, res.Value, 9.0)
}
