package dispatcher

import (
	"context"
	"log/slog"
	"time"
)

// Recorder accepts one latency sample per completed request attempt.
type Recorder interface {
	Record(d time.Duration)
}

// LatencyReporter is the monitor-facing side of the reporter, satisfied by
// monitor.Client.
type LatencyReporter interface {
	Report(ctx context.Context, d time.Duration) error
}

// Reporter forwards samples to the monitor off the request path. Record
// never blocks: when the buffer is full the sample is dropped, since a slow
// monitor must not slow routing.
type Reporter struct {
	sampleCh chan time.Duration
	client   LatencyReporter
	logger   *slog.Logger
}

func NewReporter(bufferSize int, client LatencyReporter, logger *slog.Logger) *Reporter {
	return &Reporter{
		sampleCh: make(chan time.Duration, bufferSize),
		client:   client,
		logger:   logger,
	}
}

// Record enqueues a sample for delivery. Fire-and-forget.
func (r *Reporter) Record(d time.Duration) {
	select {
	case r.sampleCh <- d:
	default:
		r.logger.Warn("Report buffer full, dropping latency sample")
	}
}

func (r *Reporter) Start(ctx context.Context) {
	go r.run(ctx)
}

func (r *Reporter) run(ctx context.Context) {
	r.logger.Info("Latency reporter started")
	defer r.logger.Info("Latency reporter stopped")

	for {
		select {
		case d := <-r.sampleCh:
			r.deliver(ctx, d)
		case <-ctx.Done():
			r.drain()
			return
		}
	}
}

func (r *Reporter) deliver(ctx context.Context, d time.Duration) {
	if err := r.client.Report(ctx, d); err != nil {
		r.logger.Warn("Could not report latency to monitor", slog.Any("err", err))
	}
}

// drain flushes whatever is still buffered at shutdown. The parent context
// is already cancelled, so delivery gets its own short-lived one.
func (r *Reporter) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for {
		select {
		case d := <-r.sampleCh:
			r.deliver(ctx, d)
		default:
			return
		}
	}
}
