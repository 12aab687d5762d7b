package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore/memory"
	"github.com/lerianstudio/eventledger/internal/platform/id"
	"github.com/lerianstudio/eventledger/internal/platform/log"
	"github.com/lerianstudio/eventledger/internal/subscription"
)

func appendEntity(t *testing.T, store *memory.Store, entityID string, version int) domain.Event {
	t.Helper()

	e, err := store.Append(context.Background(), domain.Candidate{
		AggregateType:    domain.AggregateParty,
		AggregateID:      id.ID(entityID),
		AggregateVersion: version,
		Type:             domain.EventEntityCreated,
		Actor:            domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
		Payload:          domain.EntityCreatedPayload{Kind: domain.PartyOrganization, Identity: domain.Identity{Name: entityID}},
	}, version)
	require.NoError(t, err)

	return e
}

func TestHub_ReplayThenLiveHasNoGapAndNoDuplicate(t *testing.T) {
	store := memory.New()
	appendEntity(t, store, "a", 0)
	appendEntity(t, store, "b", 0)

	hub := subscription.NewHub(store, &log.NoopLogger{})
	notifying := subscription.NewNotifyingStore(store, hub)

	sub, err := hub.Subscribe(context.Background(), 1)
	require.NoError(t, err)
	defer sub.Close()

	var got []int64
	got = append(got, (<-sub.Events).Sequence, (<-sub.Events).Sequence)

	// A third event appended after Subscribe returned must arrive live,
	// immediately following the replayed two with no gap or repeat.
	third, err := notifying.Append(context.Background(), domain.Candidate{
		AggregateType:    domain.AggregateParty,
		AggregateID:      id.ID("c"),
		AggregateVersion: 0,
		Type:             domain.EventEntityCreated,
		Actor:            domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
		Payload:          domain.EntityCreatedPayload{Kind: domain.PartyOrganization, Identity: domain.Identity{Name: "c"}},
	}, 0)
	require.NoError(t, err)

	select {
	case e := <-sub.Events:
		got = append(got, e.Sequence)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for live event")
	}

	assert.Equal(t, []int64{1, 2, third.Sequence}, got)
}

func TestHub_LaggedSubscriberIsDisconnectedNotBlocking(t *testing.T) {
	store := memory.New()
	hub := subscription.NewHub(store, &log.NoopLogger{})
	notifying := subscription.NewNotifyingStore(store, hub)

	sub, err := hub.Subscribe(context.Background(), 1)
	require.NoError(t, err)
	defer sub.Close()

	// Publish far more events than the subscriber's bounded buffer can
	// hold without it ever draining Events; the hub must disconnect this
	// subscriber via Lagged rather than block the publisher.
	const overflow = 1000

	for i := 0; i < overflow; i++ {
		_, err := notifying.Append(context.Background(), domain.Candidate{
			AggregateType:    domain.AggregateParty,
			AggregateID:      id.ID("flood"),
			AggregateVersion: i,
			Type:             domain.EventEntityCreated,
			Actor:            domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
			Payload:          domain.EntityCreatedPayload{Kind: domain.PartyOrganization, Identity: domain.Identity{Name: "flood"}},
		}, i)
		require.NoError(t, err)
	}

	select {
	case <-sub.Lagged:
	case <-time.After(time.Second):
		t.Fatal("expected subscriber to be disconnected as lagged")
	}

	_, open := <-sub.Events
	assert.False(t, open, "Events must be closed once a subscriber is dropped for lagging")
}
