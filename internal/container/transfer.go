package container

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

// TransferMode is derived from the source container's fungibility
// (spec.md §4.4 step 4).
type TransferMode string

const (
	ModeMove TransferMode = "Move"
	ModeCopy TransferMode = "Copy"
)

func modeFor(f domain.Fungibility) TransferMode {
	if f == domain.FungibilityVersioned {
		return ModeCopy
	}

	return ModeMove
}

// TransferRequest names the two sides of a transfer.
type TransferRequest struct {
	SourceID             string
	DestID               string
	ItemID               string
	Quantity             decimal.Decimal
	GoverningAgreementID *string
}

// Transfer implements spec.md §4.4's transfer protocol: withdraw from
// source, deposit to dest, both sharing causation. If the deposit fails
// after the withdrawal succeeded, a compensating TransferFailed event is
// appended to the source container recording the partial state — the
// withdrawal itself is never rolled back, because events are facts.
func (m *Manager) Transfer(ctx context.Context, actor domain.Actor, req TransferRequest, causation *domain.Causation, now int64) (source, dest domain.Container, events []domain.Event, err error) {
	source, _, err = m.containers.Get(ctx, req.SourceID)
	if err != nil {
		return
	}

	dest, _, err = m.containers.Get(ctx, req.DestID)
	if err != nil {
		return
	}

	if source.Physics.Fungibility != domain.FungibilityTransient && source.Balance(req.ItemID).LessThan(req.Quantity) {
		err = apperr.PhysicsViolation("INSUFFICIENT_BALANCE")
		return
	}

	if reason := checkTopology(dest, itemTypeOf(source, req.ItemID)); reason != "" {
		err = apperr.PhysicsViolation(reason)
		return
	}

	if reason, perr := checkPermeability(ctx, dest, req.GoverningAgreementID, m.agreements); perr != nil || reason != "" {
		if perr != nil {
			err = perr
			return
		}

		err = apperr.PhysicsViolation(reason)
		return
	}

	mode := modeFor(source.Physics.Fungibility)

	var withdrawEvent domain.Event

	if mode == ModeMove {
		source, withdrawEvent, err = m.Withdraw(ctx, actor, req.SourceID, req.ItemID, req.Quantity, req.GoverningAgreementID, causation, now)
		if err != nil {
			return
		}

		events = append(events, withdrawEvent)
	}

	dest, depositEvent, derr := m.deposit(ctx, actor, req, causation, now)
	if derr != nil {
		failEvent, ferr := m.recordTransferFailed(ctx, actor, req, "deposit", derr.Error(), causation, now)
		if ferr == nil {
			events = append(events, failEvent)
		}

		err = derr

		return
	}

	events = append(events, depositEvent)

	return
}

func itemTypeOf(c domain.Container, itemID string) string {
	return c.Items[itemID].ItemType
}

func (m *Manager) deposit(ctx context.Context, actor domain.Actor, req TransferRequest, causation *domain.Causation, now int64) (domain.Container, domain.Event, error) {
	version, err := m.containers.NextVersion(ctx, req.DestID)
	if err != nil {
		return domain.Container{}, domain.Event{}, err
	}

	var governing *id.ID
	if req.GoverningAgreementID != nil {
		g := id.ID(*req.GoverningAgreementID)
		governing = &g
	}

	source, _, err := m.containers.Get(ctx, req.SourceID)
	if err != nil {
		return domain.Container{}, domain.Event{}, err
	}

	e, err := m.store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateContainer,
		AggregateID:      id.ID(req.DestID),
		AggregateVersion: version,
		Type:             domain.EventContainerItemDeposited,
		Timestamp:        now,
		Actor:            actor,
		Causation:        causation,
		Payload: domain.ContainerItemDepositedPayload{
			ItemID:               req.ItemID,
			ItemType:             itemTypeOf(source, req.ItemID),
			Quantity:             req.Quantity,
			GoverningAgreementID: governing,
		},
	}, version)
	if err != nil {
		return domain.Container{}, domain.Event{}, err
	}

	dest, _, err := m.containers.Get(ctx, req.DestID)

	return dest, e, err
}

func (m *Manager) recordTransferFailed(ctx context.Context, actor domain.Actor, req TransferRequest, stage, reason string, causation *domain.Causation, now int64) (domain.Event, error) {
	version, err := m.containers.NextVersion(ctx, req.SourceID)
	if err != nil {
		return domain.Event{}, err
	}

	return m.store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateContainer,
		AggregateID:      id.ID(req.SourceID),
		AggregateVersion: version,
		Type:             domain.EventTransferFailed,
		Timestamp:        now,
		Actor:            actor,
		Causation:        causation,
		Payload: domain.TransferFailedPayload{
			SourceID: id.ID(req.SourceID),
			DestID:   id.ID(req.DestID),
			ItemID:   req.ItemID,
			Reason:   reason,
			Stage:    stage,
		},
	}, version)
}
