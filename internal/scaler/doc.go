// Package scaler implements the reactive scaling control loop: it polls
// the monitor for a p99 latency signal, applies a hysteresis policy, and
// mutates the workload's replica count through the cluster controller.
package scaler
