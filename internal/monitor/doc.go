// Package monitor exposes the shared latency window over HTTP. Dispatchers
// push samples with POST /record, the autoscaler polls GET /stats, and
// GET /metrics serves Prometheus exposition. The package also provides the
// client used by both sides.
package monitor
