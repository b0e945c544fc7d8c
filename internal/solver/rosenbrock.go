package solver

// Rosenbrock is the built-in parametric objective: the chained Rosenbrock
// function with weights p[0] and p[1], minimized over nu decision
// variables. It is the default function library compiled into the server.
//
//	f(u; p) = sum_{i<nu-1} p[0]*(u[i+1]-u[i]^2)^2 + (p[1]-u[i])^2
type Rosenbrock struct {
	nu int
}

const rosenbrockNP = 2

func NewRosenbrock(nu int) *Rosenbrock {
	return &Rosenbrock{nu: nu}
}

func (r *Rosenbrock) NumParameters() int   { return rosenbrockNP }
func (r *Rosenbrock) NumDecisionVars() int { return r.nu }

func (r *Rosenbrock) Cost(u, p []float64) (float64, int) {
	var sum float64
	for i := 0; i < r.nu-1; i++ {
		t := u[i+1] - u[i]*u[i]
		d := p[1] - u[i]
		sum += p[0]*t*t + d*d
	}
	return sum, StatusOK
}

func (r *Rosenbrock) Gradient(u, p, grad []float64) int {
	for i := range grad {
		grad[i] = 0
	}
	for i := 0; i < r.nu-1; i++ {
		t := u[i+1] - u[i]*u[i]
		grad[i] += -4*p[0]*t*u[i] - 2*(p[1]-u[i])
		grad[i+1] += 2 * p[0] * t
	}
	return StatusOK
}
