package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"solver-server/internal/cache"
	"solver-server/internal/common/logging"
	"solver-server/internal/config"
	"solver-server/internal/service"
	"solver-server/internal/solver"
)

func main() {
	var (
		configPath string
		debug      bool
	)
	flag.StringVar(&configPath, "config", "configs/solver.json", "server config path")
	flag.BoolVar(&debug, "debug", false, "log classification of dropped datagrams")
	flag.Parse()

	var cfg config.ServerConfig
	if err := config.Load(configPath, &cfg); err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	newLogger := logging.NewLogger
	if debug {
		newLogger = logging.NewDebugLogger
	}
	logger, err := newLogger("solver-server")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ev := solver.NewRosenbrock(cfg.NU)
	if cfg.NP != ev.NumParameters() {
		log.Fatalf("config np=%d does not match evaluator np=%d", cfg.NP, ev.NumParameters())
	}

	engine, err := solver.NewEngine(cfg.Solver)
	if err != nil {
		log.Fatal(err)
	}

	var warm service.WarmStartCache
	if cfg.Redis != nil {
		ws, err := cache.New(*cfg.Redis)
		if err != nil {
			log.Fatal(err)
		}
		defer ws.Close()
		warm = ws
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The Kill command and the quit token share one cancellation path
	// with SIGINT/SIGTERM.
	ctx, shutdown := context.WithCancel(sigCtx)
	defer shutdown()

	disp := service.NewDispatcher(&cfg, ev, engine, warm, logger)

	if cfg.TCPAddr != "" {
		srv := service.NewStreamServer(disp, logger, shutdown)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.TCPAddr); err != nil {
				logger.Error("tcp server failed", zap.String("reason", err.Error()))
				shutdown()
			}
		}()
		logger.Info("tcp interface listening", zap.String("addr", cfg.TCPAddr))
	}

	if cfg.WSAddr != "" {
		srv := service.NewWSServer(disp, logger, shutdown)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.WSAddr); err != nil {
				logger.Error("websocket server failed", zap.String("reason", err.Error()))
				shutdown()
			}
		}()
		logger.Info("websocket interface listening", zap.String("addr", cfg.WSAddr))
	}

	conn, err := net.ListenPacket("udp", cfg.UDPAddr)
	if err != nil {
		log.Fatal(err)
	}

	logger.Info("udp interface listening",
		zap.String("addr", cfg.UDPAddr),
		zap.Int("np", cfg.NP),
		zap.Int("nu", cfg.NU),
		zap.String("method", cfg.Solver.Method),
	)

	loop := service.NewLoop(conn, disp, &cfg, logger)
	if err := loop.Run(ctx); err != nil {
		logger.Error("service loop failed", zap.String("reason", err.Error()))
	}
	shutdown()
}
