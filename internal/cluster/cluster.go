package cluster

import (
	"context"
)

// Endpoint is one discovered workload replica. Address is host:port.
// Only ready endpoints may be routed to.
type Endpoint struct {
	Address string
	Ready   bool
}

// Controller is the external system of record for the workload: it owns
// pool membership and the authoritative replica count. Replica reads are
// never cached by callers; scaling is applied asynchronously and the call
// returns on acknowledgment, not convergence.
type Controller interface {
	Endpoints(ctx context.Context) ([]Endpoint, error)
	Replicas(ctx context.Context) (int32, error)
	Scale(ctx context.Context, replicas int32) error
}
