package authz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerianstudio/eventledger/internal/agreement"
	"github.com/lerianstudio/eventledger/internal/authz"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore/memory"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

func proposeAndActivate(t *testing.T, store *memory.Store, agreementType string, parties []domain.PartyRef) id.ID {
	t.Helper()

	agreementID := id.New()

	_, err := store.Append(context.Background(), domain.Candidate{
		AggregateType:    domain.AggregateAgreement,
		AggregateID:      agreementID,
		AggregateVersion: 0,
		Type:             domain.EventAgreementProposed,
		Actor:            domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
		Payload: domain.AgreementProposedPayload{
			AgreementType: agreementType,
			Parties:       parties,
			Validity:      domain.Validity{EffectiveFrom: 0},
		},
	}, 0)
	require.NoError(t, err)

	_, err = store.Append(context.Background(), domain.Candidate{
		AggregateType:    domain.AggregateAgreement,
		AggregateID:      agreementID,
		AggregateVersion: 1,
		Type:             domain.EventAgreementActivated,
		Actor:            domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
		Payload:          domain.AgreementActivatedPayload{},
	}, 1)
	require.NoError(t, err)

	return agreementID
}

// TestEngine_AuthorizeGrantsFromActiveAgreementPermission proves a party
// named on an Active agreement whose type grants the requested
// resource:action is authorized, and the decision records which
// agreement granted it.
func TestEngine_AuthorizeGrantsFromActiveAgreementPermission(t *testing.T) {
	store := memory.New()
	alice := id.New()

	agreementID := proposeAndActivate(t, store, "tenant-license", []domain.PartyRef{
		{EntityID: alice, Role: "licensee"},
	})

	engine := authz.NewEngine(store, agreement.DefaultRegistry())

	decision, err := engine.Authorize(context.Background(), authz.Request{
		Actor:     domain.EntityActor(alice),
		Action:    "propose",
		Resource:  "agreement",
		Timestamp: 1000,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	require.Contains(t, decision.GrantedBy, agreementID)
}

// TestEngine_AuthorizeDeniesWithoutMatchingAgreement proves an actor with
// no agreement that grants the requested permission is denied, with a
// reason recorded.
func TestEngine_AuthorizeDeniesWithoutMatchingAgreement(t *testing.T) {
	store := memory.New()
	alice := id.New()

	engine := authz.NewEngine(store, agreement.DefaultRegistry())

	decision, err := engine.Authorize(context.Background(), authz.Request{
		Actor:     domain.EntityActor(alice),
		Action:    "propose",
		Resource:  "agreement",
		Timestamp: 1000,
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.NotEmpty(t, decision.Reason)
	assert.Empty(t, decision.GrantedBy)
}

// TestEngine_AuthorizeIgnoresAgreementNotCoveringRole proves the grant is
// scoped to the actor's actual role on the agreement, not merely to
// being named as a party.
func TestEngine_AuthorizeIgnoresAgreementNotCoveringRole(t *testing.T) {
	store := memory.New()
	bob := id.New()

	// bob is the employer, not the employee, and "employer" is granted
	// nothing in the employment type definition.
	proposeAndActivate(t, store, "employment", []domain.PartyRef{
		{EntityID: bob, Role: "employer"},
	})

	engine := authz.NewEngine(store, agreement.DefaultRegistry())

	decision, err := engine.Authorize(context.Background(), authz.Request{
		Actor:     domain.EntityActor(bob),
		Action:    "withdraw",
		Resource:  "container",
		Timestamp: 1000,
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

// TestEngine_SystemActorBypassesAuthorization proves a System actor is
// always allowed, without consulting the event log at all.
func TestEngine_SystemActorBypassesAuthorization(t *testing.T) {
	store := memory.New()
	engine := authz.NewEngine(store, agreement.DefaultRegistry())

	decision, err := engine.Authorize(context.Background(), authz.Request{
		Actor:     domain.SystemActor("bootstrap"),
		Action:    "create",
		Resource:  "entity",
		Timestamp: 1000,
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}
