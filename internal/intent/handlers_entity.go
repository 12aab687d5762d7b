package intent

import (
	"context"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/id"
	"github.com/lerianstudio/eventledger/internal/rehydrate"
)

// CreateEntityPayload is the payload of the "entity:create" intent.
type CreateEntityPayload struct {
	Kind          domain.PartyKind `json:"type" validate:"required"`
	Identity      domain.Identity  `json:"identity" validate:"required"`
	RealmID       *id.ID           `json:"realmId,omitempty"`
	AutonomyLevel int              `json:"autonomyLevel,omitempty"`
	GuardianID    *id.ID           `json:"guardianId,omitempty"`
}

// RenameEntityPayload is the payload of the "entity:rename" intent.
type RenameEntityPayload struct {
	EntityID id.ID  `json:"entityId" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

// CreatedEntity surfaces the freshly minted entity id through
// Result.Data, so a caller (or a nested dispatch such as "realm:create")
// can reference it without re-deriving it out of band.
type CreatedEntity struct {
	EntityID id.ID `json:"entityId"`
}

func handleCreateEntity(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(CreateEntityPayload)

	entityID := id.New()

	e, err := hctx.Store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateParty,
		AggregateID:      entityID,
		AggregateVersion: 0,
		Type:             domain.EventEntityCreated,
		Timestamp:        hctx.Now,
		Actor:            hctx.Actor,
		Causation:        hctx.Causation,
		Payload: domain.EntityCreatedPayload{
			Kind:          req.Kind,
			Identity:      req.Identity,
			RealmID:       req.RealmID,
			AutonomyLevel: req.AutonomyLevel,
			GuardianID:    req.GuardianID,
		},
	}, 0)
	if err != nil {
		return OutcomeNothing, nil, err
	}

	hctx.lastEvents = []domain.Event{e}
	hctx.resultData = CreatedEntity{EntityID: entityID}

	return OutcomeCreated, []Affordance{
		{Intent: "agreement:propose", Description: "propose an agreement naming this entity"},
	}, nil
}

func handleRenameEntity(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error) {
	req := payload.(RenameEntityPayload)

	repo := rehydrate.NewRepository(hctx.Store, domain.AggregateParty, rehydrate.PartyFolder)

	var version int

	err := WithConcurrencyRetry(ctx, func(ctx context.Context) error {
		var err error

		version, err = repo.NextVersion(ctx, string(req.EntityID))
		if err != nil {
			return err
		}

		_, err = hctx.Store.Append(ctx, domain.Candidate{
			AggregateType:    domain.AggregateParty,
			AggregateID:      req.EntityID,
			AggregateVersion: version,
			Type:             domain.EventEntityRenamed,
			Timestamp:        hctx.Now,
			Actor:            hctx.Actor,
			Causation:        hctx.Causation,
			Payload:          domain.EntityRenamedPayload{Name: req.Name},
		}, version)

		return err
	})

	if err != nil {
		return OutcomeNothing, nil, err
	}

	return OutcomeUpdated, nil, nil
}
