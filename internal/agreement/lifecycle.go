package agreement

import (
	"context"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/id"
	"github.com/lerianstudio/eventledger/internal/rehydrate"
)

// transitions encodes the state machine diagram of spec.md §4.3: for a
// given current status and transition event type, the resulting status.
// Not every (status, eventType) pair appears; anything absent is an
// illegal transition.
var transitions = map[domain.AgreementStatus]map[string]domain.AgreementStatus{
	domain.AgreementProposed: {
		domain.EventAgreementActivated: domain.AgreementActive,
		domain.EventPartyRejected:      domain.AgreementTerminated,
	},
	domain.AgreementActive: {
		domain.EventAgreementTerminated: domain.AgreementTerminated,
		domain.EventDisputeOpened:       domain.AgreementDisputed,
	},
	domain.AgreementDisputed: {
		domain.EventDisputeResolved: domain.AgreementActive, // actual target read from payload
	},
}

// CanTransition reports whether eventType is a legal transition out of
// from, per the diagram in spec.md §4.3.
func CanTransition(from domain.AgreementStatus, eventType string) bool {
	byEvent, ok := transitions[from]
	if !ok {
		return false
	}

	_, ok = byEvent[eventType]

	return ok
}

// Repository rehydrates Agreement aggregates.
type Repository = rehydrate.Repository[domain.Agreement]

// NewRepository builds an Agreement repository over store.
func NewRepository(store eventstore.Store) *Repository {
	return rehydrate.NewRepository(store, domain.AggregateAgreement, rehydrate.AgreementFolder)
}

// Lifecycle drives agreement transitions: it validates the current
// state permits the requested transition, appends the corresponding
// event, and runs the matching hook.
type Lifecycle struct {
	store    eventstore.Store
	repo     *Repository
	registry *Registry
}

// NewLifecycle builds a Lifecycle over store and registry.
func NewLifecycle(store eventstore.Store, registry *Registry) *Lifecycle {
	return &Lifecycle{store: store, repo: NewRepository(store), registry: registry}
}

type idAllocator struct{}

func (idAllocator) NewID() string { return string(id.New()) }

// Propose appends AgreementProposed and, when the type's quorum is
// QuorumAllImplicit, activates the agreement immediately. It appends no
// PartyConsented events.
func (l *Lifecycle) Propose(ctx context.Context, actor domain.Actor, agreementID string, payload domain.AgreementProposedPayload, causation *domain.Causation, now int64) (domain.Agreement, []domain.Event, error) {
	def, err := l.registry.Lookup(payload.AgreementType)
	if err != nil {
		return domain.Agreement{}, nil, err
	}

	for _, p := range payload.Parties {
		if !def.RoleAllowed(p.Role) {
			return domain.Agreement{}, nil, apperr.ValidationFailed("role " + p.Role + " not allowed for agreement type " + payload.AgreementType)
		}
	}

	version, err := l.repo.NextVersion(ctx, agreementID)
	if err != nil {
		return domain.Agreement{}, nil, err
	}

	var emitted []domain.Event

	e, err := l.store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateAgreement,
		AggregateID:      id.ID(agreementID),
		AggregateVersion: version,
		Type:             domain.EventAgreementProposed,
		Timestamp:        now,
		Actor:            actor,
		Payload:          payload,
		Causation:        causation,
	}, version)
	if err != nil {
		return domain.Agreement{}, nil, err
	}

	emitted = append(emitted, e)

	state, _, err := l.repo.Get(ctx, agreementID)
	if err != nil {
		return domain.Agreement{}, emitted, err
	}

	hookEvents, err := l.runHook(ctx, def.Hooks.OnProposed, state, actor, causation, now)
	if err != nil {
		return state, emitted, err
	}

	emitted = append(emitted, hookEvents...)

	if def.Quorum.Kind == QuorumAllImplicit {
		state, activateEvents, err := l.activateIfSatisfied(ctx, def, state, actor, causation, now)
		if err != nil {
			return state, emitted, err
		}

		emitted = append(emitted, activateEvents...)

		return state, emitted, nil
	}

	return state, emitted, nil
}

// Consent appends PartyConsented for entityID, then activates if quorum
// is now satisfied.
func (l *Lifecycle) Consent(ctx context.Context, actor domain.Actor, agreementID string, entityID id.ID, method string, causation *domain.Causation, now int64) (domain.Agreement, []domain.Event, error) {
	state, _, err := l.repo.Get(ctx, agreementID)
	if err != nil {
		return domain.Agreement{}, nil, err
	}

	if state.Status != domain.AgreementProposed {
		return state, nil, apperr.AgreementLifecycleInvalid(string(state.Status), domain.EventPartyConsented)
	}

	party, ok := state.PartyByID(entityID)
	if !ok {
		return state, nil, apperr.ValidationFailed("entity is not a party to this agreement")
	}

	def, err := l.registry.Lookup(state.AgreementType)
	if err != nil {
		return state, nil, err
	}

	if !def.ConsentMethodAllowed(party.Role, method) {
		return state, nil, apperr.ValidationFailed("consent method not allowed for role " + party.Role)
	}

	version, err := l.repo.NextVersion(ctx, agreementID)
	if err != nil {
		return state, nil, err
	}

	e, err := l.store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateAgreement,
		AggregateID:      id.ID(agreementID),
		AggregateVersion: version,
		Type:             domain.EventPartyConsented,
		Timestamp:        now,
		Actor:            actor,
		Payload:          domain.PartyConsentedPayload{EntityID: entityID, Method: method},
		Causation:        causation,
	}, version)
	if err != nil {
		return state, nil, err
	}

	emitted := []domain.Event{e}

	state, _, err = l.repo.Get(ctx, agreementID)
	if err != nil {
		return state, emitted, err
	}

	state, activateEvents, err := l.activateIfSatisfied(ctx, def, state, actor, causation, now)
	emitted = append(emitted, activateEvents...)

	return state, emitted, err
}

func (l *Lifecycle) activateIfSatisfied(ctx context.Context, def TypeDefinition, state domain.Agreement, actor domain.Actor, causation *domain.Causation, now int64) (domain.Agreement, []domain.Event, error) {
	if !def.Quorum.Satisfied(state) {
		return state, nil, nil
	}

	version, err := l.repo.NextVersion(ctx, string(state.ID))
	if err != nil {
		return state, nil, err
	}

	e, err := l.store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateAgreement,
		AggregateID:      state.ID,
		AggregateVersion: version,
		Type:             domain.EventAgreementActivated,
		Timestamp:        now,
		Actor:            actor,
		Payload:          domain.AgreementActivatedPayload{},
		Causation:        causation,
	}, version)
	if err != nil {
		return state, nil, err
	}

	emitted := []domain.Event{e}

	state, _, err = l.repo.Get(ctx, string(state.ID))
	if err != nil {
		return state, emitted, err
	}

	hookEvents, err := l.runHook(ctx, def.Hooks.OnActivated, state, actor, causation, now)
	emitted = append(emitted, hookEvents...)

	return state, emitted, err
}

// Terminate appends AgreementTerminated to an Active agreement. From any
// other status it returns AgreementLifecycleInvalid and appends nothing.
func (l *Lifecycle) Terminate(ctx context.Context, actor domain.Actor, agreementID, reason string, causation *domain.Causation, now int64) (domain.Agreement, []domain.Event, error) {
	state, _, err := l.repo.Get(ctx, agreementID)
	if err != nil {
		return domain.Agreement{}, nil, err
	}

	if state.Status != domain.AgreementActive {
		return state, nil, apperr.AgreementLifecycleInvalid(string(state.Status), domain.EventAgreementTerminated)
	}

	def, err := l.registry.Lookup(state.AgreementType)
	if err != nil {
		return state, nil, err
	}

	version, err := l.repo.NextVersion(ctx, agreementID)
	if err != nil {
		return state, nil, err
	}

	e, err := l.store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateAgreement,
		AggregateID:      id.ID(agreementID),
		AggregateVersion: version,
		Type:             domain.EventAgreementTerminated,
		Timestamp:        now,
		Actor:            actor,
		Payload:          domain.AgreementTerminatedPayload{Reason: reason},
		Causation:        causation,
	}, version)
	if err != nil {
		return state, nil, err
	}

	emitted := []domain.Event{e}

	state, _, err = l.repo.Get(ctx, agreementID)
	if err != nil {
		return state, emitted, err
	}

	hookEvents, err := l.runHook(ctx, def.Hooks.OnTerminated, state, actor, causation, now)
	emitted = append(emitted, hookEvents...)

	return state, emitted, err
}

// OpenDispute transitions an Active agreement to Disputed.
func (l *Lifecycle) OpenDispute(ctx context.Context, actor domain.Actor, agreementID, reason string, causation *domain.Causation, now int64) (domain.Agreement, domain.Event, error) {
	state, _, err := l.repo.Get(ctx, agreementID)
	if err != nil {
		return domain.Agreement{}, domain.Event{}, err
	}

	if state.Status != domain.AgreementActive {
		return state, domain.Event{}, apperr.AgreementLifecycleInvalid(string(state.Status), domain.EventDisputeOpened)
	}

	version, err := l.repo.NextVersion(ctx, agreementID)
	if err != nil {
		return state, domain.Event{}, err
	}

	e, err := l.store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateAgreement,
		AggregateID:      id.ID(agreementID),
		AggregateVersion: version,
		Type:             domain.EventDisputeOpened,
		Timestamp:        now,
		Actor:            actor,
		Payload:          domain.DisputeOpenedPayload{Reason: reason},
		Causation:        causation,
	}, version)
	if err != nil {
		return state, domain.Event{}, err
	}

	state, _, err = l.repo.Get(ctx, agreementID)

	return state, e, err
}

// ResolveDispute transitions a Disputed agreement back to Active or
// forward to Terminated, per the resolution named in payload.
func (l *Lifecycle) ResolveDispute(ctx context.Context, actor domain.Actor, agreementID string, resolution domain.AgreementStatus, reason string, causation *domain.Causation, now int64) (domain.Agreement, domain.Event, error) {
	state, _, err := l.repo.Get(ctx, agreementID)
	if err != nil {
		return domain.Agreement{}, domain.Event{}, err
	}

	if state.Status != domain.AgreementDisputed {
		return state, domain.Event{}, apperr.AgreementLifecycleInvalid(string(state.Status), domain.EventDisputeResolved)
	}

	if resolution != domain.AgreementActive && resolution != domain.AgreementTerminated {
		return state, domain.Event{}, apperr.ValidationFailed("resolution must be Active or Terminated")
	}

	version, err := l.repo.NextVersion(ctx, agreementID)
	if err != nil {
		return state, domain.Event{}, err
	}

	e, err := l.store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateAgreement,
		AggregateID:      id.ID(agreementID),
		AggregateVersion: version,
		Type:             domain.EventDisputeResolved,
		Timestamp:        now,
		Actor:            actor,
		Payload:          domain.DisputeResolvedPayload{Resolution: resolution, Reason: reason},
		Causation:        causation,
	}, version)
	if err != nil {
		return state, domain.Event{}, err
	}

	state, _, err = l.repo.Get(ctx, agreementID)

	return state, e, err
}

func (l *Lifecycle) runHook(ctx context.Context, hook func(context.Context, HookContext, domain.Agreement) ([]domain.Candidate, error), state domain.Agreement, actor domain.Actor, causation *domain.Causation, now int64) ([]domain.Event, error) {
	if hook == nil {
		return nil, nil
	}

	candidates, err := hook(ctx, idAllocator{}, state)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeAgreementLifecycle, "hook execution", err)
	}

	var emitted []domain.Event

	for _, c := range candidates {
		c.Actor = actor
		c.Timestamp = now

		if c.Causation == nil {
			c.Causation = causation
		}

		version, err := l.versionFor(ctx, c)
		if err != nil {
			return emitted, err
		}

		e, err := l.store.Append(ctx, c, version)
		if err != nil {
			return emitted, err
		}

		emitted = append(emitted, e)
	}

	return emitted, nil
}

func (l *Lifecycle) versionFor(ctx context.Context, c domain.Candidate) (int, error) {
	return l.store.GetCurrentVersion(ctx, c.AggregateType, string(c.AggregateID))
}
