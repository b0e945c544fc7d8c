package solver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadratic(np, nu int) EvaluatorFuncs {
	return EvaluatorFuncs{
		NP: np,
		NU: nu,
		CostFn: func(u, p []float64) (float64, int) {
			var sum float64
			for i := range u {
				d := u[i] - p[i%np]
				sum += d * d
			}
			return sum, StatusOK
		},
		GradFn: func(u, p, grad []float64) int {
			for i := range u {
				grad[i] = 2 * (u[i] - p[i%np])
			}
			return StatusOK
		},
	}
}

func TestBindingBorrowsParameterVector(t *testing.T) {
	p := []float64{1, 2}
	b := Bind(quadratic(2, 2), p)

	cost, err := b.EvaluateCost([]float64{0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, cost, 1e-12)

	// Mutating the caller's slice must be visible through the binding:
	// the parameter vector is borrowed, not copied.
	p[0] = 3
	cost, err = b.EvaluateCost([]float64{0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 13.0, cost, 1e-12)
}

func TestBindingIdempotent(t *testing.T) {
	p := []float64{1, 2}
	u := []float64{0.5, -0.5}

	b1 := Bind(quadratic(2, 2), p)
	b2 := Bind(quadratic(2, 2), p)

	c1, err := b1.EvaluateCost(u)
	require.NoError(t, err)
	c2, err := b2.EvaluateCost(u)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)

	g1 := make([]float64, 2)
	g2 := make([]float64, 2)
	require.NoError(t, b1.EvaluateGradient(u, g1))
	require.NoError(t, b2.EvaluateGradient(u, g2))
	assert.Equal(t, g1, g2)
}

func TestBindingCostError(t *testing.T) {
	ev := EvaluatorFuncs{
		NP: 1, NU: 1,
		CostFn: func(u, p []float64) (float64, int) { return 0, 7 },
		GradFn: func(u, p, grad []float64) int { return StatusOK },
	}

	b := Bind(ev, []float64{1})
	_, err := b.EvaluateCost([]float64{0})
	require.Error(t, err)

	var costErr *CostEvaluationError
	require.True(t, errors.As(err, &costErr))
	assert.Equal(t, 7, costErr.Status)
}

func TestBindingGradientError(t *testing.T) {
	ev := EvaluatorFuncs{
		NP: 1, NU: 1,
		CostFn: func(u, p []float64) (float64, int) { return 0, StatusOK },
		GradFn: func(u, p, grad []float64) int { return 3 },
	}

	b := Bind(ev, []float64{1})
	err := b.EvaluateGradient([]float64{0}, make([]float64, 1))
	require.Error(t, err)

	var gradErr *GradientEvaluationError
	require.True(t, errors.As(err, &gradErr))
	assert.Equal(t, 3, gradErr.Status)
}
