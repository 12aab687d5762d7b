package intent

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/id"
	"github.com/lerianstudio/eventledger/internal/rehydrate"
)

// RegisterAssetPayload is the payload of the "asset:register" intent.
type RegisterAssetPayload struct {
	AssetType     string          `json:"assetType" validate:"required"`
	OwnerID       *id.ID          `json:"ownerId,omitempty"`
	Properties    map[string]any  `json:"properties,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	EstablishedBy id.ID           `json:"establishedBy" validate:"required"`
}

// ChangeAssetStatusPayload is the payload of the "asset:changeStatus" intent.
type ChangeAssetStatusPayload struct {
	AssetID id.ID              `json:"assetId" validate:"required"`
	Status  domain.AssetStatus `json:"status" validate:"required"`
}

func handleRegisterAsset(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(RegisterAssetPayload)

	assetID := id.New()

	e, err := hctx.Store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateAsset,
		AggregateID:      assetID,
		AggregateVersion: 0,
		Type:             domain.EventAssetRegistered,
		Timestamp:        hctx.Now,
		Actor:            hctx.Actor,
		Causation:        hctx.Causation,
		Payload: domain.AssetRegisteredPayload{
			AssetType:     req.AssetType,
			OwnerID:       req.OwnerID,
			Properties:    req.Properties,
			Quantity:      req.Quantity,
			EstablishedBy: req.EstablishedBy,
		},
	}, 0)
	if err != nil {
		return OutcomeNothing, nil, err
	}

	hctx.lastEvents = []domain.Event{e}

	return OutcomeCreated, nil, nil
}

func handleChangeAssetStatus(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(ChangeAssetStatusPayload)

	repo := rehydrate.NewRepository(hctx.Store, domain.AggregateAsset, rehydrate.AssetFolder)

	var noop bool

	err := WithConcurrencyRetry(ctx, func(ctx context.Context) error {
		noop = false

		state, _, err := repo.Get(ctx, string(req.AssetID))
		if err != nil {
			return err
		}

		if !domain.AssetCanTransition(state.Status, req.Status) {
			noop = true
			return nil
		}

		e, err := hctx.Store.Append(ctx, domain.Candidate{
			AggregateType:    domain.AggregateAsset,
			AggregateID:      req.AssetID,
			AggregateVersion: state.Version,
			Type:             domain.EventAssetStatusChanged,
			Timestamp:        hctx.Now,
			Actor:            hctx.Actor,
			Causation:        hctx.Causation,
			Payload:          domain.AssetStatusChangedPayload{Status: req.Status},
		}, state.Version)
		if err == nil {
			hctx.lastEvents = []domain.Event{e}
		}

		return err
	})
	if err != nil {
		return OutcomeNothing, nil, err
	}

	if noop {
		return OutcomeNothing, nil, nil
	}

	return OutcomeUpdated, nil, nil
}
