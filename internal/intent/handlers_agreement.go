package intent

import (
	"context"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

// ProposeAgreementPayload is the payload of the "agreement:propose" intent.
type ProposeAgreementPayload struct {
	AgreementType     string               `json:"agreementType" validate:"required"`
	Parties           []domain.PartyRef    `json:"parties" validate:"required,min=1"`
	Terms             map[string]any       `json:"terms,omitempty"`
	AssetID           *id.ID               `json:"assetId,omitempty"`
	Validity          domain.Validity      `json:"validity"`
	ParentAgreementID *id.ID               `json:"parentAgreementId,omitempty"`
	RealmID           *id.ID               `json:"realmId,omitempty"`
}

// ConsentAgreementPayload is the payload of the "agreement:consent" intent.
type ConsentAgreementPayload struct {
	AgreementID id.ID  `json:"agreementId" validate:"required"`
	EntityID    id.ID  `json:"entityId" validate:"required"`
	Method      string `json:"method" validate:"required"`
}

// TerminateAgreementPayload is the payload of the "agreement:terminate" intent.
type TerminateAgreementPayload struct {
	AgreementID id.ID  `json:"agreementId" validate:"required"`
	Reason      string `json:"reason,omitempty"`
}

// OpenDisputePayload is the payload of the "agreement:dispute:open" intent.
type OpenDisputePayload struct {
	AgreementID id.ID  `json:"agreementId" validate:"required"`
	Reason      string `json:"reason,omitempty"`
}

// ResolveDisputePayload is the payload of the "agreement:dispute:resolve" intent.
type ResolveDisputePayload struct {
	AgreementID id.ID                  `json:"agreementId" validate:"required"`
	Resolution  domain.AgreementStatus `json:"resolution" validate:"required"`
	Reason      string                 `json:"reason,omitempty"`
}

// CreatedAgreement surfaces the freshly minted agreement id through
// Result.Data, for the same reason CreatedEntity does.
type CreatedAgreement struct {
	AgreementID id.ID `json:"agreementId"`
}

func handleProposeAgreement(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(ProposeAgreementPayload)

	agreementID := id.New()

	var affordances []Affordance

	err := WithConcurrencyRetry(ctx, func(ctx context.Context) error {
		_, events, err := hctx.Agreements.Propose(ctx, hctx.Actor, string(agreementID), domain.AgreementProposedPayload{
			AgreementType:     req.AgreementType,
			Parties:           req.Parties,
			Terms:             req.Terms,
			AssetID:           req.AssetID,
			Validity:          req.Validity,
			ParentAgreementID: req.ParentAgreementID,
			RealmID:           req.RealmID,
		}, hctx.Causation, hctx.Now)

		if err == nil {
			affordances = []Affordance{
				{Intent: "agreement:consent", Description: "consent to this agreement", Required: []string{"agreementId", "entityId", "method"}},
			}

			hctx.lastEvents = events
			hctx.resultData = CreatedAgreement{AgreementID: agreementID}
		}

		return err
	})
	if err != nil {
		return OutcomeNothing, nil, err
	}

	return OutcomeCreated, affordances, nil
}

// ConsentResult surfaces any container an activation hook created as a
// side effect of this consent reaching quorum (spec.md §8 scenario 1:
// activating "tenant-license" creates the tenant's realm container).
type ConsentResult struct {
	CreatedContainerID *id.ID `json:"createdContainerId,omitempty"`
}

func handleConsentAgreement(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(ConsentAgreementPayload)

	err := WithConcurrencyRetry(ctx, func(ctx context.Context) error {
		_, events, err := hctx.Agreements.Consent(ctx, hctx.Actor, string(req.AgreementID), req.EntityID, req.Method, hctx.Causation, hctx.Now)
		hctx.lastEvents = events

		for _, e := range events {
			if e.AggregateType == domain.AggregateContainer && e.Type == domain.EventContainerCreated {
				containerID := e.AggregateID
				hctx.resultData = ConsentResult{CreatedContainerID: &containerID}
			}
		}

		return err
	})
	if err != nil {
		return OutcomeNothing, nil, err
	}

	return OutcomeConsented, nil, nil
}

func handleTerminateAgreement(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(TerminateAgreementPayload)

	err := WithConcurrencyRetry(ctx, func(ctx context.Context) error {
		_, events, err := hctx.Agreements.Terminate(ctx, hctx.Actor, string(req.AgreementID), req.Reason, hctx.Causation, hctx.Now)
		hctx.lastEvents = events

		return err
	})
	if err != nil {
		return OutcomeNothing, nil, err
	}

	return OutcomeTransitioned, nil, nil
}

func handleOpenDispute(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(OpenDisputePayload)

	err := WithConcurrencyRetry(ctx, func(ctx context.Context) error {
		_, e, err := hctx.Agreements.OpenDispute(ctx, hctx.Actor, string(req.AgreementID), req.Reason, hctx.Causation, hctx.Now)
		if err == nil {
			hctx.lastEvents = []domain.Event{e}
		}

		return err
	})
	if err != nil {
		return OutcomeNothing, nil, err
	}

	return OutcomeTransitioned, nil, nil
}

func handleResolveDispute(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(ResolveDisputePayload)

	err := WithConcurrencyRetry(ctx, func(ctx context.Context) error {
		_, e, err := hctx.Agreements.ResolveDispute(ctx, hctx.Actor, string(req.AgreementID), req.Resolution, req.Reason, hctx.Causation, hctx.Now)
		if err == nil {
			hctx.lastEvents = []domain.Event{e}
		}

		return err
	})
	if err != nil {
		return OutcomeNothing, nil, err
	}

	return OutcomeTransitioned, nil, nil
}
