// Package eventstore defines the append-only log of spec.md §5.1: the
// single source of truth every aggregate is folded from.
package eventstore

import (
	"context"

	"github.com/lerianstudio/eventledger/internal/domain"
)

// Store is the append-only event log. Implementations must guarantee:
//   - AggregateVersion is assigned per (AggregateType, AggregateID) starting
//     at 1 and increasing by exactly 1 per successful append;
//   - Sequence is a single global, monotonically increasing counter shared
//     across all aggregates;
//   - Append is atomic and rejects a call whose expectedVersion does not
//     match the aggregate's current version (optimistic concurrency).
//
//go:generate mockgen --destination=../gen/mock/eventstore/eventstore_mock.go --package=mock . Store
type Store interface {
	// Append writes one event for the given aggregate, asserting that the
	// aggregate's current version equals expectedVersion (0 for a new
	// aggregate). Returns apperr.CodeConcurrencyConflict on mismatch.
	Append(ctx context.Context, candidate domain.Candidate, expectedVersion int) (domain.Event, error)

	// GetByAggregate returns every event recorded for an aggregate, in
	// AggregateVersion order.
	GetByAggregate(ctx context.Context, aggregateType domain.AggregateType, aggregateID string) ([]domain.Event, error)

	// GetByAggregateUntil is GetByAggregate bounded to events whose
	// Timestamp is <= asOf, for point-in-time reconstruction (spec.md §8
	// scenario 6).
	GetByAggregateUntil(ctx context.Context, aggregateType domain.AggregateType, aggregateID string, asOf int64) ([]domain.Event, error)

	// GetBySequence returns every event with Sequence > fromSequence, in
	// Sequence order, used by the Subscription Hub's replay phase and by
	// Projection Manager catch-up.
	GetBySequence(ctx context.Context, fromSequence int64, limit int) ([]domain.Event, error)

	// GetCurrentVersion returns the current AggregateVersion for an
	// aggregate (0 if it has no recorded events).
	GetCurrentVersion(ctx context.Context, aggregateType domain.AggregateType, aggregateID string) (int, error)

	// GetCurrentSequence returns the highest Sequence assigned so far (0 if
	// the store is empty).
	GetCurrentSequence(ctx context.Context) (int64, error)
}
