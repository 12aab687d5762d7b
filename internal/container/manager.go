// Package container implements the Container Manager of spec.md §4.4:
// physics enforcement on every deposit/withdrawal, and the paired
// transfer protocol between two containers.
package container

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lerianstudio/eventledger/internal/agreement"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/id"
	"github.com/lerianstudio/eventledger/internal/rehydrate"
)

// Repository rehydrates Container aggregates.
type Repository = rehydrate.Repository[domain.Container]

// NewRepository builds a Container repository over store.
func NewRepository(store eventstore.Store) *Repository {
	return rehydrate.NewRepository(store, domain.AggregateContainer, rehydrate.ContainerFolder)
}

// Manager enforces container physics on deposit/withdrawal and drives
// the two-container transfer protocol.
type Manager struct {
	store        eventstore.Store
	containers   *Repository
	agreements   *agreement.Repository
}

// NewManager builds a Manager over store.
func NewManager(store eventstore.Store) *Manager {
	return &Manager{
		store:      store,
		containers: NewRepository(store),
		agreements: agreement.NewRepository(store),
	}
}

// DepositRequest names everything a deposit attempt needs.
type DepositRequest struct {
	ContainerID          string
	ItemID               string
	ItemType             string
	Quantity             decimal.Decimal
	Metadata             map[string]any
	GoverningAgreementID *string
}

// checkPermeability validates the Permeability axis against the request,
// returning a rejection reason ("" if permitted).
func checkPermeability(ctx context.Context, c domain.Container, governingAgreementID *string, agreements *agreement.Repository) (string, error) {
	switch c.Physics.Permeability {
	case domain.PermeabilitySealed:
		if governingAgreementID == nil {
			return "PERMEABILITY_VIOLATION", nil
		}

		if c.GoverningAgreementID == nil || string(*c.GoverningAgreementID) != *governingAgreementID {
			return "PERMEABILITY_VIOLATION", nil
		}

		return "", nil
	case domain.PermeabilityGated:
		if governingAgreementID == nil {
			return "PERMEABILITY_VIOLATION", nil
		}

		gov, _, err := agreements.Get(ctx, *governingAgreementID)
		if err != nil {
			return "PERMEABILITY_VIOLATION", nil
		}

		if gov.Status != domain.AgreementActive {
			return "PERMEABILITY_VIOLATION", nil
		}

		return "", nil
	case domain.PermeabilityCollaborative, domain.PermeabilityOpen:
		return "", nil
	default:
		return "PERMEABILITY_VIOLATION", nil
	}
}

func checkTopology(c domain.Container, itemType string) string {
	want := map[domain.Topology]string{
		domain.TopologyValues:   "value",
		domain.TopologyObjects:  "object",
		domain.TopologySubjects: "subject",
		domain.TopologyLinks:    "link",
	}[c.Physics.Topology]

	if want != "" && itemType != want {
		return "TOPOLOGY_VIOLATION"
	}

	return ""
}

// Deposit validates physics, appends DepositAttempted recording the
// outcome, and on success appends ContainerItemDeposited (spec.md §4.4,
// §7, §8 scenario 5).
func (m *Manager) Deposit(ctx context.Context, actor domain.Actor, req DepositRequest, causation *domain.Causation, now int64) (domain.Container, []domain.Event, error) {
	state, _, err := m.containers.Get(ctx, req.ContainerID)
	if err != nil {
		return domain.Container{}, nil, err
	}

	var emitted []domain.Event

	if reason := checkTopology(state, req.ItemType); reason != "" {
		e, aerr := m.recordAttempt(ctx, actor, req, domain.AttemptRejected, reason, causation, now)
		if aerr != nil {
			return state, emitted, aerr
		}

		return state, append(emitted, e), apperr.PhysicsViolation(reason)
	}

	if reason, perr := checkPermeability(ctx, state, req.GoverningAgreementID, m.agreements); perr != nil || reason != "" {
		if perr != nil {
			return state, emitted, perr
		}

		e, aerr := m.recordAttempt(ctx, actor, req, domain.AttemptRejected, reason, causation, now)
		if aerr != nil {
			return state, emitted, aerr
		}

		return state, append(emitted, e), apperr.PhysicsViolation(reason)
	}

	acceptEvent, err := m.recordAttempt(ctx, actor, req, domain.AttemptAccepted, "", causation, now)
	if err != nil {
		return state, emitted, err
	}

	emitted = append(emitted, acceptEvent)

	var governing *id.ID
	if req.GoverningAgreementID != nil {
		g := id.ID(*req.GoverningAgreementID)
		governing = &g
	}

	version, err := m.containers.NextVersion(ctx, req.ContainerID)
	if err != nil {
		return state, emitted, err
	}

	e, err := m.store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateContainer,
		AggregateID:      id.ID(req.ContainerID),
		AggregateVersion: version,
		Type:             domain.EventContainerItemDeposited,
		Timestamp:        now,
		Actor:            actor,
		Causation:        causation,
		Payload: domain.ContainerItemDepositedPayload{
			ItemID:               req.ItemID,
			ItemType:             req.ItemType,
			Quantity:             req.Quantity,
			Metadata:             req.Metadata,
			GoverningAgreementID: governing,
		},
	}, version)
	if err != nil {
		return state, emitted, err
	}

	emitted = append(emitted, e)

	state, _, err = m.containers.Get(ctx, req.ContainerID)

	return state, emitted, err
}

func (m *Manager) recordAttempt(ctx context.Context, actor domain.Actor, req DepositRequest, result domain.DepositAttemptResult, reason string, causation *domain.Causation, now int64) (domain.Event, error) {
	version, err := m.containers.NextVersion(ctx, req.ContainerID)
	if err != nil {
		return domain.Event{}, err
	}

	return m.store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateContainer,
		AggregateID:      id.ID(req.ContainerID),
		AggregateVersion: version,
		Type:             domain.EventDepositAttempted,
		Timestamp:        now,
		Actor:            actor,
		Causation:        causation,
		Payload: domain.DepositAttemptedPayload{
			ItemID:   req.ItemID,
			Quantity: req.Quantity,
			Result:   result,
			Reason:   reason,
		},
	}, version)
}

// Withdraw asserts sufficient balance (for fungible containers) and
// appends ContainerItemWithdrawn.
func (m *Manager) Withdraw(ctx context.Context, actor domain.Actor, containerID, itemID string, qty decimal.Decimal, governingAgreementID *string, causation *domain.Causation, now int64) (domain.Container, domain.Event, error) {
	state, _, err := m.containers.Get(ctx, containerID)
	if err != nil {
		return domain.Container{}, domain.Event{}, err
	}

	if state.Physics.Fungibility != domain.FungibilityTransient && state.Balance(itemID).LessThan(qty) {
		return state, domain.Event{}, apperr.PhysicsViolation("INSUFFICIENT_BALANCE")
	}

	var governing *id.ID
	if governingAgreementID != nil {
		g := id.ID(*governingAgreementID)
		governing = &g
	}

	version, err := m.containers.NextVersion(ctx, containerID)
	if err != nil {
		return state, domain.Event{}, err
	}

	e, err := m.store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateContainer,
		AggregateID:      id.ID(containerID),
		AggregateVersion: version,
		Type:             domain.EventContainerItemWithdrawn,
		Timestamp:        now,
		Actor:            actor,
		Causation:        causation,
		Payload: domain.ContainerItemWithdrawnPayload{
			ItemID:               itemID,
			Quantity:             qty,
			GoverningAgreementID: governing,
		},
	}, version)
	if err != nil {
		return state, domain.Event{}, err
	}

	state, _, err = m.containers.Get(ctx, containerID)

	return state, e, err
}
