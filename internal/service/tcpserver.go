package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"
)

const (
	maxStreamRequest = 1 << 20
	streamTimeout    = 30 * time.Second
	acceptRetryDelay = 100 * time.Millisecond
)

// StreamServer serves the command envelope (Run / Ping / Kill) over TCP.
// One request per connection: the client sends the message, half-closes,
// and reads the single response.
type StreamServer struct {
	disp     *Dispatcher
	logger   *zap.Logger
	shutdown context.CancelFunc
}

func NewStreamServer(disp *Dispatcher, logger *zap.Logger, shutdown context.CancelFunc) *StreamServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamServer{disp: disp, logger: logger, shutdown: shutdown}
}

func (s *StreamServer) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *StreamServer) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("accept: %w", err)
			}
			s.logger.Warn("accept failed",
				zap.String("reason", err.Error()),
			)
			time.Sleep(acceptRetryDelay)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *StreamServer) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(streamTimeout))

	payload, err := io.ReadAll(io.LimitReader(conn, maxStreamRequest))
	if err != nil {
		s.logger.Warn("stream read failed",
			zap.String("addr", conn.RemoteAddr().String()),
			zap.String("reason", err.Error()),
		)
		return
	}

	rsp, kill := s.disp.HandleCommand(ctx, payload)
	if _, err := conn.Write(rsp); err != nil {
		s.logger.Warn("stream write failed",
			zap.String("addr", conn.RemoteAddr().String()),
			zap.String("reason", err.Error()),
		)
	}

	if kill && s.shutdown != nil {
		s.logger.Info("kill command received, shutting down")
		s.shutdown()
	}
}
