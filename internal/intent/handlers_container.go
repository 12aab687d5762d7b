package intent

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lerianstudio/eventledger/internal/container"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

// CreateContainerPayload is the payload of the "container:create" intent.
type CreateContainerPayload struct {
	RealmID              id.ID           `json:"realmId" validate:"required"`
	Name                 string          `json:"name" validate:"required"`
	ContainerType        string          `json:"containerType" validate:"required"`
	Physics              domain.Physics  `json:"physics"`
	GoverningAgreementID *id.ID          `json:"governanceAgreementId,omitempty"`
	OwnerID              *id.ID          `json:"ownerId,omitempty"`
	ParentContainerID    *id.ID          `json:"parentContainerId,omitempty"`
}

// DepositPayload is the payload of the "container:deposit" intent.
type DepositPayload struct {
	ContainerID          id.ID           `json:"containerId" validate:"required"`
	ItemID               string          `json:"itemId" validate:"required"`
	ItemType             string          `json:"itemType" validate:"required"`
	Quantity             decimal.Decimal `json:"quantity"`
	Metadata             map[string]any  `json:"metadata,omitempty"`
	GoverningAgreementID *string         `json:"governanceAgreementId,omitempty"`
}

// WithdrawPayload is the payload of the "container:withdraw" intent.
type WithdrawPayload struct {
	ContainerID          id.ID           `json:"containerId" validate:"required"`
	ItemID               string          `json:"itemId" validate:"required"`
	Quantity             decimal.Decimal `json:"quantity"`
	GoverningAgreementID *string         `json:"governanceAgreementId,omitempty"`
}

// TransferPayload is the payload of the "container:transfer" intent.
type TransferPayload struct {
	SourceID             id.ID           `json:"sourceId" validate:"required"`
	DestID               id.ID           `json:"destId" validate:"required"`
	ItemID               string          `json:"itemId" validate:"required"`
	Quantity             decimal.Decimal `json:"quantity"`
	GoverningAgreementID *string         `json:"governanceAgreementId,omitempty"`
}

func handleCreateContainer(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(CreateContainerPayload)

	containerID := id.New()

	e, err := hctx.Store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateContainer,
		AggregateID:      containerID,
		AggregateVersion: 0,
		Type:             domain.EventContainerCreated,
		Timestamp:        hctx.Now,
		Actor:            hctx.Actor,
		Causation:        hctx.Causation,
		Payload: domain.ContainerCreatedPayload{
			RealmID:              req.RealmID,
			Name:                 req.Name,
			ContainerType:        req.ContainerType,
			Physics:              req.Physics,
			GoverningAgreementID: req.GoverningAgreementID,
			OwnerID:              req.OwnerID,
			ParentContainerID:    req.ParentContainerID,
		},
	}, 0)
	if err != nil {
		return OutcomeNothing, nil, err
	}

	hctx.lastEvents = []domain.Event{e}

	return OutcomeCreated, nil, nil
}

func handleDeposit(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(DepositPayload)

	_, events, err := hctx.Containers.Deposit(ctx, hctx.Actor, container.DepositRequest{
		ContainerID:          string(req.ContainerID),
		ItemID:               req.ItemID,
		ItemType:             req.ItemType,
		Quantity:             req.Quantity,
		Metadata:             req.Metadata,
		GoverningAgreementID: req.GoverningAgreementID,
	}, hctx.Causation, hctx.Now)
	hctx.lastEvents = events

	if err != nil {
		return OutcomeNothing, nil, err
	}

	return OutcomeUpdated, nil, nil
}

func handleWithdraw(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(WithdrawPayload)

	_, e, err := hctx.Containers.Withdraw(ctx, hctx.Actor, string(req.ContainerID), req.ItemID, req.Quantity, req.GoverningAgreementID, hctx.Causation, hctx.Now)
	if err != nil {
		return OutcomeNothing, nil, err
	}

	hctx.lastEvents = []domain.Event{e}

	return OutcomeUpdated, nil, nil
}

func handleTransfer(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(TransferPayload)

	_, _, events, err := hctx.Containers.Transfer(ctx, hctx.Actor, container.TransferRequest{
		SourceID:             string(req.SourceID),
		DestID:               string(req.DestID),
		ItemID:               req.ItemID,
		Quantity:             req.Quantity,
		GoverningAgreementID: req.GoverningAgreementID,
	}, hctx.Causation, hctx.Now)
	hctx.lastEvents = events

	if err != nil {
		return OutcomeNothing, nil, err
	}

	return OutcomeTransferred, nil, nil
}
