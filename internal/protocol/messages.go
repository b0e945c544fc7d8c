package protocol

// RunRequest is the structured optimization request. Over UDP only the
// parameter vector is carried; the stream interfaces accept the full
// envelope with warm-start hints.
type RunRequest struct {
	Parameter                  []float64 `json:"parameter"`
	InitialGuess               []float64 `json:"initial_guess,omitempty"`
	InitialLagrangeMultipliers []float64 `json:"initial_lagrange_multipliers,omitempty"`
	InitialPenalty             float64   `json:"initial_penalty,omitempty"`
}

// Command is the envelope of the stream (TCP / WebSocket) interface.
// Exactly one field is set per message.
type Command struct {
	Run  *RunRequest `json:"Run,omitempty"`
	Ping *int        `json:"Ping,omitempty"`
	Kill *int        `json:"Kill,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type AckResponse struct {
	Msg string `json:"msg"`
}

// PongResponse answers a Ping on the stream interface.
type PongResponse struct {
	Pong int `json:"Pong"`
}

// SolutionResponse carries the solver outcome. On failure ExitStatus holds
// the failure code and Solution is omitted.
type SolutionResponse struct {
	ExitStatus  string    `json:"exit_status"`
	NumIters    int       `json:"num_iterations"`
	Cost        float64   `json:"cost"`
	SolveTimeMS float64   `json:"solve_time_ms"`
	Solution    []float64 `json:"solution,omitempty"`
}

const (
	QuitAckMsg = "Received quit command"
	KillAckMsg = "Received kill command"
)
