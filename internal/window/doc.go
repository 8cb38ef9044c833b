// Package window implements the bounded rolling window of latency samples
// at the heart of the monitor. It keeps the most recent N measurements with
// FIFO eviction and serves deterministic nearest-rank percentile snapshots
// under concurrent writers.
package window
