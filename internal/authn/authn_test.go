package authn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerianstudio/eventledger/internal/authn"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore/memory"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

func activeAgreement(t *testing.T, store *memory.Store, agreementType string, parties []domain.PartyRef) id.ID {
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

func createApiKey(t *testing.T, store *memory.Store, entityID, establishedBy id.ID, keyHash string) id.ID {
	t.Helper()

	apiKeyID := id.New()

	_, err := store.Append(context.Background(), domain.Candidate{
		AggregateType:    domain.AggregateApiKey,
		AggregateID:      apiKeyID,
		AggregateVersion: 0,
		Type:             domain.EventApiKeyCreated,
		Actor:            domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
		Payload: domain.ApiKeyCreatedPayload{
			KeyHash:       keyHash,
			EntityID:      entityID,
			EstablishedBy: establishedBy,
		},
	}, 0)
	require.NoError(t, err)

	return apiKeyID
}

// TestEngine_VerifyApiKeySucceedsWhileEstablishingAgreementIsActive proves
// the baseline: a key minted under an Active agreement verifies.
func TestEngine_VerifyApiKeySucceedsWhileEstablishingAgreementIsActive(t *testing.T) {
	store := memory.New()
	entityID := id.New()

	agreementID := activeAgreement(t, store, "tenant-license", []domain.PartyRef{
		{EntityID: entityID, Role: "licensee"},
	})

	createApiKey(t, store, entityID, agreementID, authn.HashKey("plaintext-key"))

	engine := authn.NewEngine(store, nil)

	claims, err := engine.VerifyApiKey(context.Background(), "plaintext-key", 1000)
	require.NoError(t, err)
	assert.Equal(t, entityID, claims.EntityID)
}

// TestEngine_VerifyApiKeyFailsAfterEstablishingAgreementTerminates proves
// cascade revocation: terminating the agreement that established a key
// invalidates it for authentication immediately, without any
// ApiKeyRevoked event ever having to be appended to the key's own
// aggregate.
func TestEngine_VerifyApiKeyFailsAfterEstablishingAgreementTerminates(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	entityID := id.New()

	agreementID := activeAgreement(t, store, "tenant-license", []domain.PartyRef{
		{EntityID: entityID, Role: "licensee"},
	})

	apiKeyID := createApiKey(t, store, entityID, agreementID, authn.HashKey("plaintext-key"))

	engine := authn.NewEngine(store, nil)

	_, err := engine.VerifyApiKey(ctx, "plaintext-key", 1000)
	require.NoError(t, err)

	_, err = store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateAgreement,
		AggregateID:      agreementID,
		AggregateVersion: 2,
		Type:             domain.EventAgreementTerminated,
		Actor:            domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
		Payload:          domain.AgreementTerminatedPayload{Reason: "tenancy ended"},
	}, 2)
	require.NoError(t, err)

	_, err = engine.VerifyApiKey(ctx, "plaintext-key", 2000)
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeUnauthenticated, appErr.Code)

	events, err := store.GetByAggregate(ctx, domain.AggregateApiKey, string(apiKeyID))
	require.NoError(t, err)
	require.Len(t, events, 1, "the key's own aggregate must not gain an ApiKeyRevoked event from the cascade")
	assert.Equal(t, domain.EventApiKeyCreated, events[0].Type)
}
