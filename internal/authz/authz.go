// Package authz implements the Authorization Engine of spec.md §4.5: an
// ABAC check whose grants are derived entirely from folded Active
// agreements, not from a separate role/permission table.
package authz

import (
	"context"
	"strings"

	"github.com/lerianstudio/eventledger/internal/agreement"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore"
	"github.com/lerianstudio/eventledger/internal/platform/id"
	"github.com/lerianstudio/eventledger/internal/rehydrate"
)

// Request is the input to Authorize (spec.md §4.5 "authorize(...)").
type Request struct {
	Actor     domain.Actor
	Action    string
	Resource  string
	Realm     *id.ID
	Timestamp int64
}

// Decision is the output of Authorize.
type Decision struct {
	Allowed            bool
	Reason             string
	EvaluatedAgreements []id.ID
	GrantedBy          []id.ID
}

// Engine evaluates authorization requests by enumerating the requesting
// actor's Active agreements.
type Engine struct {
	store    eventstore.Store
	registry *agreement.Registry
}

// NewEngine builds an Engine over store and registry.
func NewEngine(store eventstore.Store, registry *agreement.Registry) *Engine {
	return &Engine{store: store, registry: registry}
}

// Authorize implements spec.md §4.5's algorithm.
func (e *Engine) Authorize(ctx context.Context, req Request) (Decision, error) {
	if req.Actor.IsSystem() {
		return Decision{Allowed: true, Reason: "system actor bypass"}, nil
	}

	agreements, err := e.activeAgreementsFor(ctx, req.Actor.EntityID, req.Timestamp, req.Realm)
	if err != nil {
		return Decision{}, err
	}

	decision := Decision{}

	for _, a := range agreements {
		decision.EvaluatedAgreements = append(decision.EvaluatedAgreements, a.ID)

		party, ok := a.PartyByID(req.Actor.EntityID)
		if !ok {
			continue
		}

		def, err := e.registry.Lookup(a.AgreementType)
		if err != nil {
			continue
		}

		if grants(def.PermissionsFor(party.Role), req.Resource, req.Action) {
			decision.Allowed = true
			decision.GrantedBy = append(decision.GrantedBy, a.ID)
		}
	}

	if !decision.Allowed {
		decision.Reason = "no active agreement grants " + req.Resource + ":" + req.Action
	}

	return decision, nil
}

// activeAgreementsFor scans every Agreement aggregate and folds it,
// keeping those that are Active, name entityID as a party, and whose
// validity window covers timestamp. This is the log-scan fallback
// spec.md §9 calls out; a production deployment should prefer a
// projection indexed by party, falling back to this only when the
// projection is unavailable.
func (e *Engine) activeAgreementsFor(ctx context.Context, entityID id.ID, timestamp int64, realm *id.ID) ([]domain.Agreement, error) {
	events, err := e.store.GetBySequence(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	byAggregate := map[id.ID][]domain.Event{}

	for _, ev := range events {
		if ev.AggregateType != domain.AggregateAgreement {
			continue
		}

		byAggregate[ev.AggregateID] = append(byAggregate[ev.AggregateID], ev)
	}

	var out []domain.Agreement

	for aggID, evs := range byAggregate {
		state := rehydrate.AgreementFolder.Fold(string(aggID), evs)

		if state.Status != domain.AgreementActive {
			continue
		}

		if !state.Validity.Covers(timestamp) {
			continue
		}

		if realm != nil && state.RealmID != nil && *state.RealmID != *realm {
			continue
		}

		if _, ok := state.PartyByID(entityID); !ok {
			continue
		}

		out = append(out, state)
	}

	return out, nil
}

// grants reports whether any permission string in granted matches
// resource:action, where '*' in either position of a granted string
// matches anything.
func grants(granted []string, resource, action string) bool {
	for _, perm := range granted {
		parts := strings.SplitN(perm, ":", 2)
		if len(parts) != 2 {
			continue
		}

		if (parts[0] == "*" || parts[0] == resource) && (parts[1] == "*" || parts[1] == action) {
			return true
		}
	}

	return false
}
