package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talal02/inference-autoscaler/config"
	"github.com/talal02/inference-autoscaler/internal/cluster"
	"github.com/talal02/inference-autoscaler/internal/dispatcher"
	"github.com/talal02/inference-autoscaler/internal/httpserver"
	"github.com/talal02/inference-autoscaler/internal/monitor"
	"github.com/talal02/inference-autoscaler/internal/pool"
	"github.com/talal02/inference-autoscaler/internal/strategy"
	"github.com/talal02/inference-autoscaler/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment, "dispatcher")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	clientset, err := cluster.NewClientset(log)
	if err != nil {
		log.Error("Failed to create Kubernetes client", slog.Any("err", err))
		os.Exit(1)
	}

	controller := cluster.NewKubernetesController(
		clientset,
		log,
		cfg.Kubernetes.Namespace,
		cfg.Kubernetes.Deployment,
		cfg.Kubernetes.LabelSelector,
		cfg.Dispatcher.BackendPort,
	)

	backendPool := pool.New(log, controller, cfg.Dispatcher.RequestTimeoutDuration())
	go backendPool.Run(ctx, cfg.Dispatcher.RefreshEvery())

	monitorClient := monitor.NewClient(cfg.Monitor.BaseURL, cfg.Dispatcher.ReportTimeoutDuration())
	reporter := dispatcher.NewReporter(cfg.Dispatcher.ReportBuffer, monitorClient, log)
	reporter.Start(ctx)

	handler := dispatcher.NewHandler(
		log,
		backendPool,
		createStrategy(log, cfg.Dispatcher.Strategy),
		reporter,
		cfg.Dispatcher.RequestTimeoutDuration(),
		cfg.Dispatcher.BackendPath,
	)

	srv, err := httpserver.New(cfg.Dispatcher.Address, handler)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Dispatcher listening",
		slog.String("address", cfg.Dispatcher.Address),
		slog.String("strategy", cfg.Dispatcher.Strategy))

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
			log.Error("Error starting dispatcher", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func createStrategy(logger *slog.Logger, strategyType string) strategy.Strategy {
	switch strategyType {
	case "round-robin":
		return strategy.NewRoundRobinStrategy()
	case "random":
		return strategy.NewRandomStrategy()
	default:
		logger.Warn("Unknown strategy, defaulting to random", slog.String("requested", strategyType))
		return strategy.NewRandomStrategy()
	}
}
