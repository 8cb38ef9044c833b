package window

import (
	"math"
	"sort"
	"sync"
	"time"
)

// DefaultCapacity bounds the rolling window when no explicit capacity is
// configured.
const DefaultCapacity = 1000

// Sample is one observed request latency, immutable once recorded.
type Sample struct {
	At       time.Time
	Duration time.Duration
}

// Window is a bounded, arrival-ordered buffer of the most recent latency
// samples. The oldest sample is evicted once capacity is reached. All
// methods are safe for concurrent use.
type Window struct {
	mutex    sync.Mutex
	capacity int
	samples  []Sample
}

// Stats is a read-only view over the window contents at query time.
// A zero Count marks "no data"; the percentile fields are meaningless then
// and callers must check Empty before using them.
type Stats struct {
	Count int
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Mean  time.Duration
	Span  time.Duration
}

// Empty reports whether the stats were computed over zero samples.
func (s Stats) Empty() bool {
	return s.Count == 0
}

func New(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Window{
		capacity: capacity,
		samples:  make([]Sample, 0, capacity),
	}
}

// Record appends a timestamped sample, evicting the oldest entry when the
// window is full.
func (w *Window) Record(d time.Duration) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.samples = append(w.samples, Sample{At: time.Now(), Duration: d})
	if len(w.samples) > w.capacity {
		w.samples = w.samples[1:]
	}
}

// Len returns the current number of samples in the window.
func (w *Window) Len() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return len(w.samples)
}

// Capacity returns the fixed maximum window size.
func (w *Window) Capacity() int {
	return w.capacity
}

// Snapshot computes percentiles over one coherent copy of the window.
// The copy is taken under the lock and sorted afterwards, so concurrent
// Record calls never mutate a snapshot mid-read.
func (w *Window) Snapshot() Stats {
	w.mutex.Lock()
	samples := make([]Sample, len(w.samples))
	copy(samples, w.samples)
	w.mutex.Unlock()

	if len(samples) == 0 {
		return Stats{}
	}

	durations := make([]time.Duration, len(samples))
	for i, s := range samples {
		durations[i] = s.Duration
	}
	sort.Slice(durations, func(i, j int) bool {
		return durations[i] < durations[j]
	})

	return Stats{
		Count: len(durations),
		P50:   percentile(durations, 0.50),
		P95:   percentile(durations, 0.95),
		P99:   percentile(durations, 0.99),
		Mean:  average(durations),
		Span:  samples[len(samples)-1].At.Sub(samples[0].At),
	}
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

// percentile returns the nearest-rank percentile of a sorted slice:
// the value at index ceil(p*N)-1.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(math.Ceil(p*float64(len(sorted)))) - 1
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
