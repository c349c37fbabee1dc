package server

import (
	"context"

	"github.com/vanshika/soltrace/internal/solana"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// RPCHealthService verifies Solana node reachability as part of health checks.
type RPCHealthService struct {
	Client solana.Client
}

// Probe implements the HealthService interface.
func (s RPCHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Health(ctx)
}
