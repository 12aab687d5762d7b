// Package domain holds the entities of spec.md §3: the event envelope and
// the aggregates it folds into. Grounded on the teacher's common/mmodel
// package (plain structs with json tags, no persistence concerns baked
// in) but reshaped around the event-sourcing primitives this spec adds.
package domain

import "github.com/lerianstudio/eventledger/internal/platform/id"

// AggregateType enumerates the aggregate kinds named in spec.md §3.1.
type AggregateType string

const (
	AggregateParty     AggregateType = "Party"
	AggregateAgreement AggregateType = "Agreement"
	AggregateAsset     AggregateType = "Asset"
	AggregateContainer AggregateType = "Container"
	AggregateApiKey    AggregateType = "ApiKey"
	AggregateRole      AggregateType = "Role"
	AggregateWorkflow  AggregateType = "Workflow"
	AggregateSystem    AggregateType = "System"
)

// ActorType tags which of the three actor variants an Event carries.
type ActorType string

const (
	ActorEntity    ActorType = "Entity"
	ActorSystem    ActorType = "System"
	ActorAnonymous ActorType = "Anonymous"
)

// Actor is the tagged variant of spec.md §3.1. Exactly one of EntityID,
// SystemID, or Reason is meaningful, selected by Type.
type Actor struct {
	Type     ActorType `json:"type"`
	EntityID id.ID     `json:"entityId,omitempty"`
	SystemID string    `json:"systemId,omitempty"`
	Reason   string    `json:"reason,omitempty"`
}

// SystemActor builds the bypass actor used for bootstrap paths and
// hook-originated emissions (spec.md §4.5 "Special cases").
func SystemActor(systemID string) Actor {
	return Actor{Type: ActorSystem, SystemID: systemID}
}

// EntityActor builds an actor representing an authenticated party.
func EntityActor(entityID id.ID) Actor {
	return Actor{Type: ActorEntity, EntityID: entityID}
}

// IsSystem reports whether this actor bypasses authorization (spec.md §4.5).
func (a Actor) IsSystem() bool { return a.Type == ActorSystem }

// Causation links events emitted in service of one intent, per the
// "Causation commandId" glossary entry.
type Causation struct {
	CommandID string `json:"commandId,omitempty"`
}

// Event is the atomic, immutable record of spec.md §3.1. Sequence and
// AggregateVersion are assigned by the event store at append time;
// every other field is supplied by the caller.
type Event struct {
	EventID          id.ID         `json:"eventId"`
	Sequence         int64         `json:"sequence"`
	AggregateType    AggregateType `json:"aggregateType"`
	AggregateID      id.ID         `json:"aggregateId"`
	AggregateVersion int           `json:"aggregateVersion"`
	Type             string        `json:"type"`
	Timestamp        int64         `json:"timestamp"`
	Actor            Actor         `json:"actor"`
	Payload          any           `json:"payload"`
	Causation        *Causation    `json:"causation,omitempty"`
	HashChain        string        `json:"hashChain,omitempty"`
}

// Candidate is what a caller submits to Store.Append: everything about an
// Event except the fields the store itself assigns.
type Candidate struct {
	AggregateType    AggregateType
	AggregateID      id.ID
	AggregateVersion int
	Type             string
	Timestamp        int64
	Actor            Actor
	Payload          any
	Causation        *Causation
}
