package service

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"

	"solver-server/internal/config"
	"solver-server/internal/protocol"
)

// LoopState is the datagram loop's position in its state machine.
type LoopState int

const (
	StateListening LoopState = iota
	StateDispatching
	StateTerminated
)

// Loop is the single-threaded datagram request loop. One datagram is
// processed fully, through solve and response send, before the next is
// read. The receive buffer and decision vector are allocated once and
// reused for the life of the loop.
type Loop struct {
	conn   net.PacketConn
	disp   *Dispatcher
	logger *zap.Logger

	buf   []byte
	u     []float64
	state LoopState
}

func NewLoop(conn net.PacketConn, disp *Dispatcher, cfg *config.ServerConfig, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		conn:   conn,
		disp:   disp,
		logger: logger,
		buf:    make([]byte, cfg.MaxDatagramSize),
		u:      make([]float64, cfg.NU),
		state:  StateListening,
	}
}

func (l *Loop) State() LoopState { return l.state }

// Run blocks serving datagrams until the quit token arrives, ctx is
// cancelled, or the transport fails. Receive errors are fatal; send
// errors are logged and swallowed.
func (l *Loop) Run(ctx context.Context) error {
	defer l.conn.Close()

	go func() {
		<-ctx.Done()
		_ = l.conn.Close()
	}()

	for l.state != StateTerminated {
		n, addr, err := l.conn.ReadFrom(l.buf)
		if err != nil {
			l.state = StateTerminated
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}

		l.state = StateDispatching
		rsp, quit := l.Dispatch(ctx, l.buf[:n])
		if rsp != nil {
			if _, err := l.conn.WriteTo(rsp, addr); err != nil {
				l.logger.Warn("send response failed",
					zap.String("addr", addr.String()),
					zap.String("reason", err.Error()),
				)
			}
		}

		if quit {
			l.state = StateTerminated
			l.logger.Info("quit command received, stopping loop")
			return nil
		}
		l.state = StateListening
	}
	return nil
}

// Dispatch classifies one payload and produces the response to send, if
// any. A nil response means silent drop.
func (l *Loop) Dispatch(ctx context.Context, payload []byte) (rsp []byte, quit bool) {
	kind, req := protocol.ClassifyDatagram(payload)
	switch kind {
	case protocol.KindQuit:
		return protocol.EncodeAck(protocol.QuitAckMsg), true
	case protocol.KindRun:
		return l.disp.HandleRun(ctx, req, l.u), false
	default:
		l.logger.Debug("dropping unrecognized datagram",
			zap.Int("size", len(payload)),
		)
		return nil, false
	}
}
