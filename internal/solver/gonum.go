package solver

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"

	"solver-server/internal/config"
)

func init() {
	RegisterEngine("lbfgs", newGonumEngine(func() optimize.Method { return &optimize.LBFGS{} }))
	RegisterEngine("bfgs", newGonumEngine(func() optimize.Method { return &optimize.BFGS{} }))
	RegisterEngine("cg", newGonumEngine(func() optimize.Method { return &optimize.CG{} }))
	RegisterEngine("neldermead", newGonumEngine(func() optimize.Method { return &optimize.NelderMead{} }))
}

// gonumEngine adapts gonum's optimize package to the Engine interface.
// A fresh Method value is built per solve; gonum methods keep state
// across iterations and must not be shared between runs.
type gonumEngine struct {
	newMethod func() optimize.Method
	maxIters  int
	tolerance float64
}

func newGonumEngine(newMethod func() optimize.Method) EngineFactory {
	return func(cfg config.SolverConfig) (Engine, error) {
		return &gonumEngine{
			newMethod: newMethod,
			maxIters:  cfg.MaxIterations,
			tolerance: cfg.Tolerance,
		}, nil
	}
}

func (e *gonumEngine) Solve(ctx context.Context, b *Binding, u0 []float64) (*Solution, error) {
	// gonum objective functions cannot return errors, so the first
	// evaluation failure is recorded here and surfaced after the run.
	var evalErr error

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if evalErr != nil {
				return math.Inf(1)
			}
			if err := ctx.Err(); err != nil {
				evalErr = err
				return math.Inf(1)
			}
			cost, err := b.EvaluateCost(x)
			if err != nil {
				evalErr = err
				return math.Inf(1)
			}
			return cost
		},
		Grad: func(grad, x []float64) {
			if evalErr != nil {
				for i := range grad {
					grad[i] = 0
				}
				return
			}
			if err := b.EvaluateGradient(x, grad); err != nil {
				evalErr = err
			}
		},
	}

	settings := &optimize.Settings{
		MajorIterations: e.maxIters,
	}
	if e.tolerance > 0 {
		settings.GradientThreshold = e.tolerance
	}

	start := time.Now()
	result, err := optimize.Minimize(problem, u0, settings, e.newMethod())
	elapsed := time.Since(start)

	if evalErr != nil {
		return nil, evalErr
	}
	if err != nil {
		return nil, fmt.Errorf("minimize: %w", err)
	}

	return &Solution{
		X:          result.X,
		Cost:       result.F,
		Iterations: result.Stats.MajorIterations,
		Status:     result.Status.String(),
		SolveTime:  elapsed,
	}, nil
}
