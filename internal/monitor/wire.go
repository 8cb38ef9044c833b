package monitor

import (
	"time"

	"github.com/talal02/inference-autoscaler/internal/window"
)

// recordRequest is the payload pushed by dispatchers for every completed
// request, successful or not.
type recordRequest struct {
	LatencySeconds *float64 `json:"latency_seconds"`
}

// statsResponse carries one window snapshot. Latencies travel as float
// seconds; MeasurementCount distinguishes "no data" from a real zero.
type statsResponse struct {
	MeasurementCount  int     `json:"measurement_count"`
	P50Latency        float64 `json:"p50_latency"`
	P95Latency        float64 `json:"p95_latency"`
	P99Latency        float64 `json:"p99_latency"`
	AverageLatency    float64 `json:"average_latency"`
	WindowSpanSeconds float64 `json:"window_span_seconds"`
}

func statsToWire(s window.Stats) statsResponse {
	return statsResponse{
		MeasurementCount:  s.Count,
		P50Latency:        s.P50.Seconds(),
		P95Latency:        s.P95.Seconds(),
		P99Latency:        s.P99.Seconds(),
		AverageLatency:    s.Mean.Seconds(),
		WindowSpanSeconds: s.Span.Seconds(),
	}
}

func statsFromWire(r statsResponse) window.Stats {
	return window.Stats{
		Count: r.MeasurementCount,
		P50:   secondsToDuration(r.P50Latency),
		P95:   secondsToDuration(r.P95Latency),
		P99:   secondsToDuration(r.P99Latency),
		Mean:  secondsToDuration(r.AverageLatency),
		Span:  secondsToDuration(r.WindowSpanSeconds),
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
