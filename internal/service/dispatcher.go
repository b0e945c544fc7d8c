package service

import (
	"context"

	"go.uber.org/zap"

	"solver-server/internal/config"
	"solver-server/internal/protocol"
	"solver-server/internal/solver"
)

// WarmStartCache maps a parameter vector to the last solution computed
// for it. Implemented by cache.WarmStart.
type WarmStartCache interface {
	Load(ctx context.Context, p []float64) ([]float64, bool, error)
	Store(ctx context.Context, p, u []float64) error
}

// Dispatcher sequences one request through validation, binding and the
// solver engine. It is shared by the datagram loop and the stream
// interfaces and holds no per-request state.
type Dispatcher struct {
	cfg    *config.ServerConfig
	ev     solver.Evaluator
	engine solver.Engine
	warm   WarmStartCache // nil when warm-start caching is disabled
	logger *zap.Logger
}

func NewDispatcher(cfg *config.ServerConfig, ev solver.Evaluator, engine solver.Engine, warm WarmStartCache, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		cfg:    cfg,
		ev:     ev,
		engine: engine,
		warm:   warm,
		logger: logger,
	}
}

// HandleRun validates the request, binds the parameter vector into the
// cost/gradient capability and drives the engine. u is caller-owned
// scratch of length NU; every element is overwritten before the solve.
// The returned payload is always non-nil.
func (d *Dispatcher) HandleRun(ctx context.Context, req *protocol.RunRequest, u []float64) []byte {
	if err := protocol.ValidateParameter(req.Parameter, d.cfg.NP); err != nil {
		return protocol.EncodeError(err)
	}

	// The binding borrows req.Parameter for the scope of this call only.
	b := solver.Bind(d.ev, req.Parameter)

	d.seed(ctx, req, u)

	sol, err := d.engine.Solve(ctx, b, u)
	if err != nil {
		d.logger.Warn("solve failed",
			zap.String("reason", err.Error()),
		)
		return protocol.EncodeError(err)
	}

	if d.warm != nil {
		if err := d.warm.Store(ctx, req.Parameter, sol.X); err != nil {
			d.logger.Warn("warm-start store failed",
				zap.String("reason", err.Error()),
			)
		}
	}

	return protocol.EncodeSolution(&protocol.SolutionResponse{
		ExitStatus:  sol.Status,
		NumIters:    sol.Iterations,
		Cost:        sol.Cost,
		SolveTimeMS: float64(sol.SolveTime.Microseconds()) / 1000.0,
		Solution:    sol.X,
	})
}

// seed fills the decision vector for one request. An explicit initial
// guess in the request always wins; otherwise the warm-start cache is
// consulted when enabled; otherwise the vector is zeroed, which is also
// the fallback whenever a seed has the wrong length.
func (d *Dispatcher) seed(ctx context.Context, req *protocol.RunRequest, u []float64) {
	if len(req.InitialGuess) == len(u) {
		copy(u, req.InitialGuess)
		return
	}
	if len(req.InitialGuess) != 0 {
		d.logger.Warn("ignoring initial guess of wrong length",
			zap.Int("nu", len(u)),
			zap.Int("got", len(req.InitialGuess)),
		)
	}

	if d.cfg.WarmStart && d.warm != nil {
		cached, ok, err := d.warm.Load(ctx, req.Parameter)
		if err != nil {
			d.logger.Warn("warm-start load failed",
				zap.String("reason", err.Error()),
			)
		} else if ok && len(cached) == len(u) {
			copy(u, cached)
			return
		}
	}

	for i := range u {
		u[i] = 0
	}
}

// HandleCommand serves one stream-interface message. kill reports that the
// caller asked for whole-process shutdown.
func (d *Dispatcher) HandleCommand(ctx context.Context, payload []byte) (rsp []byte, kill bool) {
	cmd, err := protocol.DecodeCommand(payload)
	if err != nil {
		return protocol.EncodeError(err), false
	}

	switch {
	case cmd.Ping != nil:
		return protocol.EncodePong(), false
	case cmd.Kill != nil:
		return protocol.EncodeAck(protocol.KillAckMsg), true
	default:
		u := make([]float64, d.cfg.NU)
		return d.HandleRun(ctx, cmd.Run, u), false
	}
}
