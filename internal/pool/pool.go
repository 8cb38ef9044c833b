package pool

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/talal02/inference-autoscaler/internal/backend"
	"github.com/talal02/inference-autoscaler/internal/cluster"
)

// Pool holds the dispatcher's view of the current backend set. The slice is
// replaced atomically on refresh and never mutated in place, so readers on
// the request path take no lock. Membership is stale by at most one refresh
// interval.
type Pool struct {
	logger  *slog.Logger
	source  cluster.Controller
	timeout time.Duration
	current atomic.Pointer[[]*backend.Backend]
}

func New(logger *slog.Logger, source cluster.Controller, timeout time.Duration) *Pool {
	p := &Pool{
		logger:  logger,
		source:  source,
		timeout: timeout,
	}

	empty := make([]*backend.Backend, 0)
	p.current.Store(&empty)

	return p
}

// Backends returns the current snapshot, ready or not.
func (p *Pool) Backends() []*backend.Backend {
	return *p.current.Load()
}

// Ready returns the routable subset of the current snapshot.
func (p *Pool) Ready() []*backend.Backend {
	backends := p.Backends()

	ready := make([]*backend.Backend, 0, len(backends))
	for _, b := range backends {
		if b.Ready() {
			ready = append(ready, b)
		}
	}

	return ready
}

// Refresh re-resolves membership from the cluster controller and replaces
// the snapshot. On discovery failure the previous snapshot stays in place.
func (p *Pool) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	endpoints, err := p.source.Endpoints(ctx)
	if err != nil {
		return fmt.Errorf("pool discovery failed: %w", err)
	}

	backends := make([]*backend.Backend, 0, len(endpoints))
	for _, ep := range endpoints {
		u, err := url.Parse("http://" + ep.Address)
		if err != nil {
			p.logger.Warn("Skipping endpoint with unparsable address",
				slog.String("address", ep.Address))
			continue
		}

		backends = append(backends, backend.New(u, ep.Ready))
	}

	p.current.Store(&backends)

	p.logger.Debug("Pool refreshed",
		slog.Int("total", len(backends)),
		slog.Int("ready", len(p.Ready())))

	return nil
}

// Run refreshes the pool on a fixed cadence until the context is cancelled.
// One refresh happens immediately so the dispatcher does not start with an
// empty pool.
func (p *Pool) Run(ctx context.Context, interval time.Duration) {
	if err := p.Refresh(ctx); err != nil {
		p.logger.Warn("Initial pool refresh failed", slog.Any("err", err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Pool refresher stopped")
			return

		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				p.logger.Warn("Pool refresh failed", slog.Any("err", err))
			}
		}
	}
}
