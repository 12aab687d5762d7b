package audit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerianstudio/eventledger/internal/audit"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore/memory"
)

// TestLogger_RecordDenialAppendsExactlyOneEvent proves a denied
// permission check leaves exactly one AuthorizationDenied event in the
// log, addressed to the actor's audit aggregate.
func TestLogger_RecordDenialAppendsExactlyOneEvent(t *testing.T) {
	store := memory.New()
	logger := audit.NewLogger(store)
	actor := domain.Actor{Type: domain.ActorEntity, EntityID: "alice"}

	e, err := logger.Record(context.Background(), actor, audit.DecisionPayload{
		Intent:     "agreement:propose",
		Permission: "agreement:propose",
		Decision:   "Denied",
		Reason:     "no active agreement grants agreement:propose",
	}, nil, 1000)
	require.NoError(t, err)
	assert.Equal(t, audit.EventAuthorizationDenied, e.Type)

	aggregateID := audit.AggregateIDFor(actor)

	events, err := store.GetByAggregate(context.Background(), domain.AggregateSystem, string(aggregateID))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventAuthorizationDenied, events[0].Type)
}

// TestLogger_RecordAccumulatesOnTheSameActorAggregate exercises the
// per-actor audit aggregate: repeated decisions for the same actor land
// on the same aggregate with a strictly increasing version, so the full
// history for one actor can be rehydrated as a single stream.
func TestLogger_RecordAccumulatesOnTheSameActorAggregate(t *testing.T) {
	store := memory.New()
	logger := audit.NewLogger(store)
	actor := domain.Actor{Type: domain.ActorEntity, EntityID: "alice"}

	for i := 0; i < 3; i++ {
		_, err := logger.Record(context.Background(), actor, audit.DecisionPayload{
			Intent:     "agreement:propose",
			Permission: "agreement:propose",
			Decision:   "Denied",
		}, nil, int64(1000+i))
		require.NoError(t, err)
	}

	events, err := store.GetByAggregate(context.Background(), domain.AggregateSystem, string(audit.AggregateIDFor(actor)))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{events[0].AggregateVersion, events[1].AggregateVersion, events[2].AggregateVersion})
}

// TestLogger_RecordKeepsDistinctActorsOnDistinctAggregates proves two
// different actors' decisions never collide onto the same aggregate.
func TestLogger_RecordKeepsDistinctActorsOnDistinctAggregates(t *testing.T) {
	store := memory.New()
	logger := audit.NewLogger(store)

	alice := domain.Actor{Type: domain.ActorEntity, EntityID: "alice"}
	bob := domain.Actor{Type: domain.ActorEntity, EntityID: "bob"}

	_, err := logger.Record(context.Background(), alice, audit.DecisionPayload{Decision: "Granted"}, nil, 1000)
	require.NoError(t, err)
	_, err = logger.Record(context.Background(), bob, audit.DecisionPayload{Decision: "Granted"}, nil, 1000)
	require.NoError(t, err)

	assert.NotEqual(t, audit.AggregateIDFor(alice), audit.AggregateIDFor(bob))
}
