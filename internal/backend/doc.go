// Package backend defines a single worker replica endpoint and its
// readiness state as observed from the cluster controller.
package backend
