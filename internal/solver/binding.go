package solver

import "fmt"

// CostEvaluationError reports a non-zero status from the underlying cost
// function.
type CostEvaluationError struct {
	Status int
}

func (e *CostEvaluationError) Error() string {
	return fmt.Sprintf("cost evaluation failed (status=%d)", e.Status)
}

// GradientEvaluationError reports a non-zero status from the underlying
// gradient function.
type GradientEvaluationError struct {
	Status int
}

func (e *GradientEvaluationError) Error() string {
	return fmt.Sprintf("gradient evaluation failed (status=%d)", e.Status)
}

// Binding joins a validated parameter vector to the evaluator for the
// duration of one request. It borrows the parameter slice and never
// mutates it; the borrow must not outlive the request.
type Binding struct {
	ev Evaluator
	p  []float64
}

// Bind builds the cost/gradient capability handed to the engine. The
// parameter vector must already have passed validation.
func Bind(ev Evaluator, p []float64) *Binding {
	return &Binding{ev: ev, p: p}
}

func (b *Binding) EvaluateCost(u []float64) (float64, error) {
	cost, status := b.ev.Cost(u, b.p)
	if status != StatusOK {
		return 0, &CostEvaluationError{Status: status}
	}
	return cost, nil
}

func (b *Binding) EvaluateGradient(u, grad []float64) error {
	if status := b.ev.Gradient(u, b.p, grad); status != StatusOK {
		return &GradientEvaluationError{Status: status}
	}
	return nil
}

func (b *Binding) NumDecisionVars() int { return b.ev.NumDecisionVars() }
