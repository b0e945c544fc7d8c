package solver

// Evaluator is the compiled-in function library a solver instance is built
// around. It is keyed by a fixed parameter-vector length (NP) and a fixed
// decision-vector length (NU); callers must respect both. A non-zero status
// signals evaluation failure.
type Evaluator interface {
	NumParameters() int
	NumDecisionVars() int

	// Cost evaluates the objective at decision vector u under parameters p.
	Cost(u, p []float64) (float64, int)

	// Gradient writes the objective gradient at u into grad (length NU).
	Gradient(u, p, grad []float64) int
}

const StatusOK = 0

// EvaluatorFuncs adapts plain functions to the Evaluator interface.
type EvaluatorFuncs struct {
	NP     int
	NU     int
	CostFn func(u, p []float64) (float64, int)
	GradFn func(u, p, grad []float64) int
}

func (e EvaluatorFuncs) NumParameters() int   { return e.NP }
func (e EvaluatorFuncs) NumDecisionVars() int { return e.NU }

func (e EvaluatorFuncs) Cost(u, p []float64) (float64, int) {
	return e.CostFn(u, p)
}

func (e EvaluatorFuncs) Gradient(u, p, grad []float64) int {
	return e.GradFn(u, p, grad)
}
