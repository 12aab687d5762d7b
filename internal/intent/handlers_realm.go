package intent

import (
	"context"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

// CreateRealmPayload is the payload of the "realm:create" intent
// (spec.md §8 scenario 1). It is the one intent exercising the full
// "nested intents" mechanic of spec.md §4.6: its handler calls
// entity:create (twice: licensor, then licensee), agreement:propose,
// agreement:consent and apiKey:create through hctx.Dispatch rather than
// touching the store directly, so the resulting log is exactly what five
// independent calls would have produced, in the stated order.
type CreateRealmPayload struct {
	Name string `json:"name" validate:"required"`
}

// RealmResult is the payload surfaced through Result.Data.
type RealmResult struct {
	RealmID  id.ID  `json:"realmId"`
	EntityID id.ID  `json:"entityId"`
	ApiKey   string `json:"apiKey"`
}

func handleCreateRealm(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(CreateRealmPayload)

	licensor, err := hctx.Dispatch(ctx, Request{
		Intent:    "entity:create",
		Actor:     hctx.Actor,
		Timestamp: hctx.Now,
		Payload: CreateEntityPayload{
			Kind:     domain.PartySystem,
			Identity: domain.Identity{Name: "system"},
		},
	})
	if err != nil || !licensor.Success {
		return OutcomeNothing, nil, dispatchErr(licensor, err)
	}

	licensorID := licensor.Data.(CreatedEntity).EntityID

	licensee, err := hctx.Dispatch(ctx, Request{
		Intent:    "entity:create",
		Actor:     hctx.Actor,
		Timestamp: hctx.Now,
		Payload: CreateEntityPayload{
			Kind:     domain.PartyOrganization,
			Identity: domain.Identity{Name: req.Name},
		},
	})
	if err != nil || !licensee.Success {
		return OutcomeNothing, nil, dispatchErr(licensee, err)
	}

	licenseeID := licensee.Data.(CreatedEntity).EntityID

	proposed, err := hctx.Dispatch(ctx, Request{
		Intent:    "agreement:propose",
		Actor:     hctx.Actor,
		Timestamp: hctx.Now,
		Payload: ProposeAgreementPayload{
			AgreementType: "tenant-license",
			Parties: []domain.PartyRef{
				{EntityID: licensorID, Role: "licensor"},
				{EntityID: licenseeID, Role: "licensee"},
			},
			Terms:    map[string]any{"realmName": req.Name},
			Validity: domain.Validity{EffectiveFrom: hctx.Now},
		},
	})
	if err != nil || !proposed.Success {
		return OutcomeNothing, nil, dispatchErr(proposed, err)
	}

	agreementID := proposed.Data.(CreatedAgreement).AgreementID

	consented, err := hctx.Dispatch(ctx, Request{
		Intent:    "agreement:consent",
		Actor:     hctx.Actor,
		Timestamp: hctx.Now,
		Payload: ConsentAgreementPayload{
			AgreementID: agreementID,
			EntityID:    licenseeID,
			Method:      "system",
		},
	})
	if err != nil || !consented.Success {
		return OutcomeNothing, nil, dispatchErr(consented, err)
	}

	consentResult := consented.Data.(ConsentResult)
	if consentResult.CreatedContainerID == nil {
		return OutcomeNothing, nil, apperrMissingRealmContainer()
	}

	realmID := *consentResult.CreatedContainerID

	keyResult, err := hctx.Dispatch(ctx, Request{
		Intent:    "apiKey:create",
		Actor:     hctx.Actor,
		Timestamp: hctx.Now,
		Payload: CreateApiKeyPayload{
			EntityID:      licenseeID,
			RealmID:       &realmID,
			Scopes:        []string{"*"},
			EstablishedBy: agreementID,
		},
	})
	if err != nil || !keyResult.Success {
		return OutcomeNothing, nil, dispatchErr(keyResult, err)
	}

	key := keyResult.Data.(plaintextKey)

	hctx.resultData = RealmResult{RealmID: realmID, EntityID: licenseeID, ApiKey: key.Key}

	return OutcomeCreated, []Affordance{
		{Intent: "apiKey:revoke", Description: "revoke this realm's founding API key"},
	}, nil
}

// dispatchErr flattens a failed nested Result into the error a handler
// returns, so the outer dispatch's failure envelope carries the same
// code and message a direct call to the inner intent would have.
func dispatchErr(res Result, err error) error {
	if err != nil {
		return err
	}

	if len(res.Errors) == 0 {
		return apperr.New(apperr.CodeStorageError, "nested intent failed with no error detail")
	}

	detail := res.Errors[0]

	return apperr.Field(apperr.Code(detail.Code), detail.Message, detail.Field)
}

func apperrMissingRealmContainer() error {
	return apperr.New(apperr.CodeStorageError, "tenant-license activation did not produce a realm container")
}
