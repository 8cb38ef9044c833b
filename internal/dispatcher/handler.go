package dispatcher

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/talal02/inference-autoscaler/internal/backend"
	"github.com/talal02/inference-autoscaler/internal/pool"
	"github.com/talal02/inference-autoscaler/internal/strategy"
)

// ErrNoBackends is returned when the pool has no ready endpoint to route to.
var ErrNoBackends = errors.New("no ready backends available")

// Handler routes each inbound classification request to one ready backend,
// timing every attempt from dispatch to completion and recording the
// duration whether the attempt succeeded or not. On a failed attempt it
// retries exactly once against a different ready endpoint before failing
// the client request.
type Handler struct {
	logger      *slog.Logger
	pool        *pool.Pool
	strategy    strategy.Strategy
	recorder    Recorder
	client      *http.Client
	backendPath string
}

func NewHandler(
	logger *slog.Logger,
	p *pool.Pool,
	strat strategy.Strategy,
	recorder Recorder,
	requestTimeout time.Duration,
	backendPath string,
) *Handler {
	return &Handler{
		logger:      logger,
		pool:        p,
		strategy:    strat,
		recorder:    recorder,
		client:      &http.Client{Timeout: requestTimeout},
		backendPath: backendPath,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}
	r.Body.Close()

	ready := h.pool.Ready()
	if len(ready) == 0 {
		h.logger.Warn("No ready backends available")
		http.Error(w, ErrNoBackends.Error(), http.StatusServiceUnavailable)
		return
	}

	first := h.strategy.SelectBackend(ready)
	if first == nil {
		http.Error(w, ErrNoBackends.Error(), http.StatusServiceUnavailable)
		return
	}

	res, err := h.forward(r, first, body)
	if err == nil {
		h.writeResponse(w, res, first)
		return
	}

	h.logger.Warn("Backend attempt failed, retrying once",
		slog.String("backend", first.URL().String()),
		slog.Any("err", err))

	// One bounded retry against a different ready endpoint. If the failed
	// backend was the only one, the request fails.
	alternates := excludeBackend(ready, first)
	if len(alternates) == 0 {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}

	second := h.strategy.SelectBackend(alternates)
	if second == nil {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}

	res, err = h.forward(r, second, body)
	if err != nil {
		h.logger.Error("Retry failed, surfacing error to client",
			slog.String("backend", second.URL().String()),
			slog.Any("err", err))
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}

	h.writeResponse(w, res, second)
}

// forward sends the request body to one backend and times the attempt.
// The duration is recorded for every outcome: hiding failed or timed-out
// attempts from the monitor would hide overload from the scaler.
func (h *Handler) forward(r *http.Request, b *backend.Backend, body []byte) (*http.Response, error) {
	target := b.URL().ResolveReference(&url.URL{Path: h.backendPath})

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}
	req.Header = r.Header.Clone()

	start := time.Now()
	res, err := h.client.Do(req)
	duration := time.Since(start)

	h.recorder.Record(duration)

	if err != nil {
		return nil, fmt.Errorf("dispatch to %s: %w", target.Host, err)
	}

	if res.StatusCode >= http.StatusInternalServerError {
		res.Body.Close()
		return nil, fmt.Errorf("backend %s returned status %d", target.Host, res.StatusCode)
	}

	return res, nil
}

func (h *Handler) writeResponse(w http.ResponseWriter, res *http.Response, b *backend.Backend) {
	defer res.Body.Close()

	for key, values := range res.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.Header().Set("X-Backend-Server", b.URL().String())
	w.WriteHeader(res.StatusCode)

	if _, err := io.Copy(w, res.Body); err != nil {
		h.logger.Warn("Failed to stream backend response", slog.Any("err", err))
	}
}

func excludeBackend(backends []*backend.Backend, skip *backend.Backend) []*backend.Backend {
	rest := make([]*backend.Backend, 0, len(backends))
	for _, b := range backends {
		if b != skip {
			rest = append(rest, b)
		}
	}

	return rest
}
