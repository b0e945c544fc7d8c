package solver

import (
	"context"
	"fmt"
	"time"

	"solver-server/internal/config"
	"solver-server/internal/handler"
)

// Solution is the outcome of one solver run.
type Solution struct {
	X          []float64
	Cost       float64
	Iterations int
	Status     string
	SolveTime  time.Duration
}

// Engine drives the cost/gradient capability to convergence. The initial
// decision vector u0 is owned by the caller; engines work on their own
// copy and return the optimum in Solution.X.
type Engine interface {
	Solve(ctx context.Context, b *Binding, u0 []float64) (*Solution, error)
}

// EngineFactory builds an engine from the solver section of the config.
type EngineFactory func(cfg config.SolverConfig) (Engine, error)

var engines = handler.NewRegistry[EngineFactory]()

func RegisterEngine(method string, factory EngineFactory) {
	if err := engines.Register(method, factory); err != nil {
		panic(err)
	}
}

// NewEngine resolves the configured optimization method.
func NewEngine(cfg config.SolverConfig) (Engine, error) {
	factory, ok := engines.Get(cfg.Method)
	if !ok {
		return nil, fmt.Errorf("unknown solver method %q (have %v)", cfg.Method, engines.Names())
	}
	return factory(cfg)
}
