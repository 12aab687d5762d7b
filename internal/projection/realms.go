package projection

import (
	"context"
	"sync"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

// RealmSummary is one row of the RealmsProjection (spec.md §9:
// "admin endpoints" lookups like listRealms must be served from
// projections, not log scans).
type RealmSummary struct {
	ContainerID id.ID
	Name        string
	OwnerID     *id.ID
	CreatedAt   int64
}

// RealmsProjection lists every Container with containerType "Realm".
type RealmsProjection struct {
	mu     sync.RWMutex
	realms map[id.ID]RealmSummary
}

// NewRealmsProjection returns an empty projection.
func NewRealmsProjection() *RealmsProjection {
	return &RealmsProjection{realms: make(map[id.ID]RealmSummary)}
}

// Name implements Projection.
func (p *RealmsProjection) Name() string { return "realms" }

// Apply implements Projection.
func (p *RealmsProjection) Apply(_ context.Context, e domain.Event) error {
	payload, ok := e.Payload.(domain.ContainerCreatedPayload)
	if !ok || payload.ContainerType != "Realm" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.realms[e.AggregateID] = RealmSummary{
		ContainerID: e.AggregateID,
		Name:        payload.Name,
		OwnerID:     payload.OwnerID,
		CreatedAt:   e.Timestamp,
	}

	return nil
}

// List returns every known realm. Idempotent re-application of the same
// ContainerCreated event overwrites the same map key with identical
// data, so at-least-once delivery never duplicates a row.
func (p *RealmsProjection) List() []RealmSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]RealmSummary, 0, len(p.realms))
	for _, r := range p.realms {
		out = append(out, r)
	}

	return out
}
