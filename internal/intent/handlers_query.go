package intent

import (
	"context"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/id"
	"github.com/lerianstudio/eventledger/internal/rehydrate"
)

// GetEntityPayload is the payload of the "entity:get" intent.
type GetEntityPayload struct {
	EntityID id.ID `json:"entityId" validate:"required"`
}

// GetAgreementPayload is the payload of the "agreement:get" intent.
type GetAgreementPayload struct {
	AgreementID id.ID `json:"agreementId" validate:"required"`
}

// GetAssetPayload is the payload of the "asset:get" intent.
type GetAssetPayload struct {
	AssetID id.ID `json:"assetId" validate:"required"`
}

// GetContainerPayload is the payload of the "container:get" intent.
type GetContainerPayload struct {
	ContainerID id.ID `json:"containerId" validate:"required"`
}

func handleGetEntity(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(GetEntityPayload)

	repo := rehydrate.NewRepository(hctx.Store, domain.AggregateParty, rehydrate.PartyFolder)

	party, _, err := repo.Get(ctx, string(req.EntityID))
	if err != nil {
		return OutcomeNothing, nil, err
	}

	hctx.resultData = party

	return OutcomeQueried, nil, nil
}

func handleGetAgreement(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(GetAgreementPayload)

	repo := rehydrate.NewRepository(hctx.Store, domain.AggregateAgreement, rehydrate.AgreementFolder)

	a, _, err := repo.Get(ctx, string(req.AgreementID))
	if err != nil {
		return OutcomeNothing, nil, err
	}

	hctx.resultData = a

	return OutcomeQueried, nil, nil
}

func handleGetAsset(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(GetAssetPayload)

	repo := rehydrate.NewRepository(hctx.Store, domain.AggregateAsset, rehydrate.AssetFolder)

	asset, _, err := repo.Get(ctx, string(req.AssetID))
	if err != nil {
		return OutcomeNothing, nil, err
	}

	hctx.resultData = asset

	return OutcomeQueried, nil, nil
}

func handleGetContainer(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(GetContainerPayload)

	repo := rehydrate.NewRepository(hctx.Store, domain.AggregateContainer, rehydrate.ContainerFolder)

	c, _, err := repo.Get(ctx, string(req.ContainerID))
	if err != nil {
		return OutcomeNothing, nil, err
	}

	hctx.resultData = c

	return OutcomeQueried, nil, nil
}

// handleListRealms serves "realm:list" from the RealmsProjection read
// model, never from a log scan (spec.md §9 "Everything via events").
func handleListRealms(_ context.Context, hctx *HandlerContext, _ any) (Outcome, []Affordance, error) {
	hctx.resultData = hctx.Realms.List()

	return OutcomeQueried, nil, nil
}
