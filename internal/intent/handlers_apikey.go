package intent

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/id"
	"github.com/lerianstudio/eventledger/internal/rehydrate"
)

// CreateApiKeyPayload is the payload of the "apiKey:create" intent.
type CreateApiKeyPayload struct {
	EntityID      id.ID    `json:"entityId" validate:"required"`
	RealmID       *id.ID   `json:"realmId,omitempty"`
	Scopes        []string `json:"scopes,omitempty"`
	ExpiresAt     *int64   `json:"expiresAt,omitempty"`
	EstablishedBy id.ID    `json:"establishedBy" validate:"required"`
}

// RevokeApiKeyPayload is the payload of the "apiKey:revoke" intent.
type RevokeApiKeyPayload struct {
	ApiKeyID id.ID  `json:"apiKeyId" validate:"required"`
	Reason   string `json:"reason,omitempty"`
}

// plaintextKey holds the one-time plaintext, surfaced only in the
// Result.Data of the creating call and never persisted.
type plaintextKey struct {
	ApiKeyID id.ID  `json:"apiKeyId"`
	Key      string `json:"key"`
}

func handleCreateApiKey(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(CreateApiKeyPayload)

	apiKeyID := id.New()

	key, hash, err := generateKey()
	if err != nil {
		return OutcomeNothing, nil, err
	}

	e, err := hctx.Store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateApiKey,
		AggregateID:      apiKeyID,
		AggregateVersion: 0,
		Type:             domain.EventApiKeyCreated,
		Timestamp:        hctx.Now,
		Actor:            hctx.Actor,
		Causation:        hctx.Causation,
		Payload: domain.ApiKeyCreatedPayload{
			KeyHash:       hash,
			EntityID:      req.EntityID,
			RealmID:       req.RealmID,
			Scopes:        req.Scopes,
			ExpiresAt:     req.ExpiresAt,
			EstablishedBy: req.EstablishedBy,
		},
	}, 0)
	if err != nil {
		return OutcomeNothing, nil, err
	}

	hctx.lastEvents = []domain.Event{e}
	hctx.resultData = plaintextKey{ApiKeyID: apiKeyID, Key: key}

	return OutcomeCreated, nil, nil
}

func handleRevokeApiKey(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(RevokeApiKeyPayload)

	repo := rehydrate.NewRepository(hctx.Store, domain.AggregateApiKey, rehydrate.ApiKeyFolder)

	state, _, err := repo.Get(ctx, string(req.ApiKeyID))
	if err != nil {
		return OutcomeNothing, nil, err
	}

	// Revoked is terminal: revoking an already-revoked key is a no-op,
	// not a second ApiKeyRevoked event.
	if state.Revoked {
		return OutcomeNothing, nil, nil
	}

	e, err := hctx.Store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateApiKey,
		AggregateID:      req.ApiKeyID,
		AggregateVersion: state.Version,
		Type:             domain.EventApiKeyRevoked,
		Timestamp:        hctx.Now,
		Actor:            hctx.Actor,
		Causation:        hctx.Causation,
		Payload:          domain.ApiKeyRevokedPayload{Reason: req.Reason},
	}, state.Version)
	if err != nil {
		return OutcomeNothing, nil, err
	}

	hctx.lastEvents = []domain.Event{e}

	return OutcomeUpdated, nil, nil
}

func generateKey() (plaintext, hash string, err error) {
	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", "", err
	}

	plaintext = hex.EncodeToString(raw)
	sum := sha256.Sum256([]byte(plaintext))
	hash = hex.EncodeToString(sum[:])

	return plaintext, hash, nil
}
