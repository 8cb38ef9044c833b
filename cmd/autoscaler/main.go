package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talal02/inference-autoscaler/config"
	"github.com/talal02/inference-autoscaler/internal/cluster"
	"github.com/talal02/inference-autoscaler/internal/monitor"
	"github.com/talal02/inference-autoscaler/internal/scaler"
	"github.com/talal02/inference-autoscaler/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment, "autoscaler")

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

	statsClient := monitor.NewClient(cfg.Monitor.BaseURL, cfg.Autoscaler.CallTimeoutDuration())

	policy := scaler.Policy{
		Ceiling:    cfg.Autoscaler.Ceiling(),
		UpFactor:   cfg.Autoscaler.ScaleUpFactor,
		DownStep:   int32(cfg.Autoscaler.ScaleDownStep),
		Min:        int32(cfg.Autoscaler.MinReplicas),
		Max:        int32(cfg.Autoscaler.MaxReplicas),
		MinSamples: cfg.Autoscaler.MinSamples,
	}

	autoscaler := scaler.New(
		log,
		statsClient,
		controller,
		policy,
		cfg.Autoscaler.PollEvery(),
		cfg.Autoscaler.CallTimeoutDuration(),
	)

	autoscaler.Run(ctx)
}
