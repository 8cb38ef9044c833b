package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talal02/inference-autoscaler/config"
	"github.com/talal02/inference-autoscaler/internal/httpserver"
	"github.com/talal02/inference-autoscaler/internal/monitor"
	"github.com/talal02/inference-autoscaler/internal/window"
	"github.com/talal02/inference-autoscaler/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment, "monitor")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	win := window.New(cfg.Monitor.WindowCapacity)
	server := monitor.NewServer(log, win)

	srv, err := httpserver.New(cfg.Monitor.Address, server.Routes())
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Monitor listening",
		slog.String("address", cfg.Monitor.Address),
		slog.Int("window_capacity", cfg.Monitor.WindowCapacity))

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting monitor", slog.Any("err", err))
			os.Exit(1)
		}
	}
}
