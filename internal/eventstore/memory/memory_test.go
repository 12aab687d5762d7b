package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore/memory"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
)

// TestStore_ConcurrentAppendsSameVersionOneWins proves concurrent appends
// targeting the same (aggregateID, aggregateVersion) leave exactly one
// winner; the other gets a concurrency conflict. A retry that rehydrates
// the current version and appends again then lands at version 2.
func TestStore_ConcurrentAppendsSameVersionOneWins(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	aggregateID := "agreement-1"
	cand := domain.Candidate{
		AggregateType:    domain.AggregateAgreement,
		AggregateID:      "agreement-1",
		AggregateVersion: 0,
		Type:             domain.EventAgreementProposed,
		Actor:            domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
	}

	first, err := store.Append(ctx, cand, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, first.AggregateVersion)

	_, err = store.Append(ctx, cand, 0)
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeConcurrencyConflict, appErr.Code)

	// Retry: rehydrate the current version and append again — this is
	// exactly what WithConcurrencyRetry does around a handler's append.
	version, err := store.GetCurrentVersion(ctx, domain.AggregateAgreement, aggregateID)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	second, err := store.Append(ctx, cand, version)
	require.NoError(t, err)
	assert.Equal(t, 2, second.AggregateVersion)
}

// TestStore_AggregateVersionsHaveNoGapsOrDuplicates proves sequential
// appends to one aggregate produce a contiguous, gap-free version
// sequence starting at 1.
func TestStore_AggregateVersionsHaveNoGapsOrDuplicates(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	cand := domain.Candidate{
		AggregateType: domain.AggregateParty,
		AggregateID:   "p1",
		Type:          domain.EventEntityCreated,
		Actor:         domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
	}

	for version := 0; version < 5; version++ {
		e, err := store.Append(ctx, cand, version)
		require.NoError(t, err)
		assert.Equal(t, version+1, e.AggregateVersion)
	}

	events, err := store.GetByAggregate(ctx, domain.AggregateParty, "p1")
	require.NoError(t, err)
	require.Len(t, events, 5)

	for i, e := range events {
		assert.Equal(t, i+1, e.AggregateVersion)
	}
}

// TestStore_GetBySequenceOrdersAcrossAggregates proves sequence is a
// single global counter shared across aggregates: GetBySequence(0, 0)
// returns every event ever appended, in order, exactly once.
func TestStore_GetBySequenceOrdersAcrossAggregates(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	_, err := store.Append(ctx, domain.Candidate{
		AggregateType: domain.AggregateParty, AggregateID: "a",
		Type: domain.EventEntityCreated, Actor: domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
	}, 0)
	require.NoError(t, err)

	_, err = store.Append(ctx, domain.Candidate{
		AggregateType: domain.AggregateParty, AggregateID: "b",
		Type: domain.EventEntityCreated, Actor: domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
	}, 0)
	require.NoError(t, err)

	events, err := store.GetBySequence(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].Sequence)
	assert.Equal(t, int64(2), events[1].Sequence)
}
