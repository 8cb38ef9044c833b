// Package pool maintains the dispatcher's cached view of backend
// membership, refreshed from the cluster controller on a bounded cadence
// and replaced atomically so request-path reads never block.
package pool
