// Package cluster abstracts the external cluster controller that owns pool
// membership and the authoritative replica count. The Kubernetes
// implementation discovers endpoints from pods and scales the workload's
// deployment.
package cluster
