package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSServer serves the same command envelope as StreamServer over
// WebSocket, one request per text frame. Connections stay open across
// requests, unlike the TCP interface.
type WSServer struct {
	disp     *Dispatcher
	logger   *zap.Logger
	shutdown context.CancelFunc
	upgrader websocket.Upgrader
}

func NewWSServer(disp *Dispatcher, logger *zap.Logger, shutdown context.CancelFunc) *WSServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSServer{
		disp:     disp,
		logger:   logger,
		shutdown: shutdown,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  32 * 1024,
			WriteBufferSize: 32 * 1024,
		},
	}
}

func (s *WSServer) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.handle(ctx, w, r)
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *WSServer) handle(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed",
			zap.String("addr", r.RemoteAddr),
			zap.String("reason", err.Error()),
		)
		return
	}
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		rsp, kill := s.disp.HandleCommand(ctx, payload)
		if err := conn.WriteMessage(websocket.TextMessage, rsp); err != nil {
			s.logger.Warn("websocket write failed",
				zap.String("addr", r.RemoteAddr),
				zap.String("reason", err.Error()),
			)
			return
		}

		if kill && s.shutdown != nil {
			s.logger.Info("kill command received, shutting down")
			s.shutdown()
			return
		}
	}
}
