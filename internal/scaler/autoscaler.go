package scaler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/talal02/inference-autoscaler/internal/cluster"
	"github.com/talal02/inference-autoscaler/internal/window"
)

// StatsSource serves window snapshots, satisfied by monitor.Client.
type StatsSource interface {
	Stats(ctx context.Context) (window.Stats, error)
}

// Autoscaler runs the fetch-decide-apply loop. Ticks are sequential and
// never overlap; every external call inside a tick is timeout-bounded; any
// per-tick error is logged and the tick abandoned, because the next tick
// re-derives its decision from freshly read state.
//
// Exactly one instance may run against a workload. Two concurrent
// autoscalers issue conflicting mutations; keeping it to one is a
// deployment guarantee, not enforced here.
type Autoscaler struct {
	logger     *slog.Logger
	stats      StatsSource
	controller cluster.Controller
	policy     Policy
	interval   time.Duration
	timeout    time.Duration
}

func New(
	logger *slog.Logger,
	stats StatsSource,
	controller cluster.Controller,
	policy Policy,
	interval time.Duration,
	timeout time.Duration,
) *Autoscaler {
	return &Autoscaler{
		logger:     logger,
		stats:      stats,
		controller: controller,
		policy:     policy,
		interval:   interval,
		timeout:    timeout,
	}
}

// Run executes one tick per interval until the context is cancelled. An
// in-flight tick is abandoned at shutdown without issuing a partial
// mutation.
func (a *Autoscaler) Run(ctx context.Context) {
	a.logger.Info("Autoscaler started",
		slog.Duration("interval", a.interval),
		slog.Duration("ceiling", a.policy.Ceiling))

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Autoscaler stopped")
			return

		case <-ticker.C:
			a.Tick(ctx)
		}
	}
}

// Tick performs one fetch-decide-apply cycle.
func (a *Autoscaler) Tick(ctx context.Context) {
	stats, err := a.fetchStats(ctx)
	if err != nil {
		a.logger.Warn("Skipping tick, could not fetch stats", slog.Any("err", err))
		return
	}

	current, err := a.fetchReplicas(ctx)
	if err != nil {
		a.logger.Warn("Skipping tick, could not read replica count", slog.Any("err", err))
		return
	}

	decision, err := a.policy.Decide(stats, current)
	if err != nil {
		if errors.Is(err, ErrInsufficientData) {
			a.logger.Debug("Skipping decision, insufficient signal",
				slog.Int("samples", stats.Count))
			return
		}
		a.logger.Warn("Skipping tick, decision failed", slog.Any("err", err))
		return
	}

	a.logger.Info("Tick evaluated",
		slog.Duration("p99", stats.P99),
		slog.Duration("ceiling", a.policy.Ceiling),
		slog.Int("current", int(decision.Current)),
		slog.Int("target", int(decision.Target)),
		slog.String("reason", decision.Reason))

	if decision.NoOp() {
		return
	}

	if err := a.apply(ctx, decision.Target); err != nil {
		// Non-fatal: the next tick re-reads true state and re-derives the
		// decision, so a failed mutation self-corrects.
		a.logger.Error("Replica mutation failed", slog.Any("err", err))
	}
}

func (a *Autoscaler) fetchStats(ctx context.Context) (window.Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	return a.stats.Stats(ctx)
}

func (a *Autoscaler) fetchReplicas(ctx context.Context) (int32, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	return a.controller.Replicas(ctx)
}

func (a *Autoscaler) apply(ctx context.Context, target int32) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	return a.controller.Scale(ctx, target)
}
