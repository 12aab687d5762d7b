package intent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lerianstudio/eventledger/internal/agreement"
	"github.com/lerianstudio/eventledger/internal/audit"
	"github.com/lerianstudio/eventledger/internal/authz"
	"github.com/lerianstudio/eventledger/internal/container"
	"github.com/lerianstudio/eventledger/internal/domain"
	mock "github.com/lerianstudio/eventledger/internal/gen/mock/eventstore"
	"github.com/lerianstudio/eventledger/internal/intent"
	"github.com/lerianstudio/eventledger/internal/platform/clock"
	"github.com/lerianstudio/eventledger/internal/platform/log"
)

// newTestDispatcher wires a Dispatcher over a gomock Store so tests can
// assert the store is (or isn't) touched without standing up a real
// backend, mirroring how the teacher's command-layer tests stub the
// repository interface rather than hitting Postgres.
func newTestDispatcher(t *testing.T, store *mock.MockStore) *intent.Dispatcher {
	t.Helper()

	registry := intent.BuildRegistry()
	agreementRegistry := agreement.DefaultRegistry()
	agreements := agreement.NewLifecycle(store, agreementRegistry)
	containers := container.NewManager(store)
	authzEngine := authz.NewEngine(store, agreementRegistry)
	auditLogger := audit.NewLogger(store)

	return intent.NewDispatcher(
		registry, store, authzEngine, auditLogger, agreements, agreementRegistry, containers,
		clock.NewFixed(1000), &log.NoopLogger{},
	)
}

func TestDispatch_UnknownIntentNeverTouchesStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock.NewMockStore(ctrl)
	// No EXPECT() calls registered: any store access fails the test.

	d := newTestDispatcher(t, store)

	result, err := d.Dispatch(context.Background(), intent.Request{
		Intent: "does-not-exist",
		Actor:  domain.Actor{Type: domain.ActorSystem, SystemID: "bootstrap"},
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "INTENT_NOT_FOUND", result.Errors[0].Code)
}

func TestDispatch_AnonymousActorIsForbiddenNotUnauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock.NewMockStore(ctrl)
	// An anonymous actor's authorization check falls through to the
	// log-scan of active agreements (authz.Engine.activeAgreementsFor),
	// which always comes back empty here, so the request is denied; the
	// denial still appends one audit event (spec.md §4.5 "audit
	// emission"), so the store sees one GetCurrentVersion/Append pair.
	store.EXPECT().GetBySequence(gomock.Any(), int64(0), 0).Return(nil, nil).AnyTimes()
	store.EXPECT().GetCurrentVersion(gomock.Any(), domain.AggregateSystem, gomock.Any()).Return(0, nil).AnyTimes()
	store.EXPECT().Append(gomock.Any(), gomock.Any(), 0).Return(domain.Event{
		EventID:  "audit-1",
		Type:     "AuthorizationDenied",
		Sequence: 1,
	}, nil).AnyTimes()

	d := newTestDispatcher(t, store)

	result, err := d.Dispatch(context.Background(), intent.Request{
		Intent: "entity:create",
		Actor:  domain.Actor{Type: domain.ActorAnonymous},
		Payload: intent.CreateEntityPayload{
			Kind:     domain.PartyOrganization,
			Identity: domain.Identity{Name: "Acme Corp"},
		},
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "FORBIDDEN", result.Errors[0].Code)
}

func TestDispatch_IdempotentReplaySkipsSecondInvocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock.NewMockStore(ctrl)
	// The System actor bypasses authorization entirely, and entity:create
	// with a fresh aggregate id appends exactly once per logical call;
	// a second Dispatch with the same idempotency key must be served from
	// the cache, so Append is expected exactly once.
	store.EXPECT().GetCurrentVersion(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()
	store.EXPECT().Append(gomock.Any(), gomock.Any(), 0).Return(domain.Event{
		EventID:  "evt-1",
		Type:     "EntityCreated",
		Sequence: 1,
	}, nil).Times(1)

	d := newTestDispatcher(t, store)

	req := intent.Request{
		Intent:         "entity:create",
		Actor:          domain.Actor{Type: domain.ActorSystem, SystemID: "bootstrap"},
		IdempotencyKey: "fixed-key",
		Payload: intent.CreateEntityPayload{
			Kind:     domain.PartyOrganization,
			Identity: domain.Identity{Name: "Acme Corp"},
		},
	}

	first, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
