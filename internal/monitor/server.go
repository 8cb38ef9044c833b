package monitor

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talal02/inference-autoscaler/internal/window"
)

// Server exposes one shared rolling window over HTTP: dispatchers push
// samples to /record, the autoscaler polls /stats, and /metrics serves
// Prometheus exposition of the same signal.
type Server struct {
	logger   *slog.Logger
	window   *window.Window
	registry *prometheus.Registry
	latency  prometheus.Histogram
}

func NewServer(logger *slog.Logger, win *window.Window) *Server {
	registry := prometheus.NewRegistry()

	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "request_latency_seconds",
		Help:    "End-to-end request latency reported by dispatchers.",
		Buckets: prometheus.DefBuckets,
	})

	windowSize := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "latency_window_samples",
		Help: "Number of samples currently held in the rolling window.",
	}, func() float64 {
		return float64(win.Len())
	})

	registry.MustRegister(latency, windowSize)

	return &Server{
		logger:   logger,
		window:   win,
		registry: registry,
		latency:  latency,
	}
}

// Routes builds the monitor's HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /record", s.handleRecord)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return mux
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("rejected malformed record payload", slog.Any("err", err))
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.LatencySeconds == nil || *req.LatencySeconds < 0 {
		http.Error(w, "latency_seconds missing or negative", http.StatusBadRequest)
		return
	}

	d := time.Duration(*req.LatencySeconds * float64(time.Second))
	s.window.Record(d)
	s.latency.Observe(*req.LatencySeconds)

	s.logger.Debug("recorded latency sample", slog.Duration("latency", d))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.window.Snapshot()

	s.logger.Info("serving stats",
		slog.Duration("p99", stats.P99),
		slog.Int("count", stats.Count))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statsToWire(stats)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
