package scaler

import (
	"errors"
	"math"
	"time"

	"github.com/talal02/inference-autoscaler/internal/window"
)

// ErrInsufficientData marks a tick with too few samples to trust the
// percentile signal. Callers skip the decision; this is not a failure.
var ErrInsufficientData = errors.New("not enough samples to decide")

// Policy holds the hysteresis scaling rules: multiplicative fast scale-up
// when p99 breaches the ceiling, additive slow scale-down when it is back
// under. The asymmetry absorbs spikes without thrashing on bursty load.
type Policy struct {
	Ceiling    time.Duration
	UpFactor   float64
	DownStep   int32
	Min        int32
	Max        int32
	MinSamples int
}

// Decision is the outcome of one tick. Its only effect is a possible
// replica mutation; it is never persisted.
type Decision struct {
	Current int32
	Target  int32
	Reason  string
}

// NoOp reports whether the decision requires no controller call.
func (d Decision) NoOp() bool {
	return d.Target == d.Current
}

// Decide maps one stats snapshot and a freshly read replica count to a
// target. A p99 exactly at the ceiling counts as within bounds and never
// triggers scale-up.
func (p Policy) Decide(stats window.Stats, current int32) (Decision, error) {
	if stats.Empty() || stats.Count < p.MinSamples {
		return Decision{}, ErrInsufficientData
	}

	if stats.P99 > p.Ceiling {
		target := int32(math.Ceil(float64(current) * p.UpFactor))
		reason := "p99 above ceiling"
		if target > p.Max {
			target = p.Max
			reason = "p99 above ceiling, clamped to max"
		}
		if target < current {
			target = current
		}

		return Decision{Current: current, Target: target, Reason: reason}, nil
	}

	if current > p.Min {
		target := current - p.DownStep
		reason := "p99 within ceiling"
		if target < p.Min {
			target = p.Min
			reason = "p99 within ceiling, clamped to min"
		}

		return Decision{Current: current, Target: target, Reason: reason}, nil
	}

	return Decision{Current: current, Target: current, Reason: "p99 within ceiling, at minimum"}, nil
}
