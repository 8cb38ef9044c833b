package strategy

import (
	"github.com/talal02/inference-autoscaler/internal/backend"
)

// Strategy picks one backend out of the candidates for a single request.
// Implementations must tolerate an empty slice and return nil.
type Strategy interface {
	SelectBackend(backends []*backend.Backend) *backend.Backend
}
