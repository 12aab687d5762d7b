package domain

import "github.com/lerianstudio/eventledger/internal/platform/id"

// PartyKind distinguishes the four Party substrates of spec.md §3.1.
type PartyKind string

const (
	PartyPerson       PartyKind = "Person"
	PartyOrganization PartyKind = "Organization"
	PartyAgent        PartyKind = "Agent"
	PartySystem       PartyKind = "System"
)

// Identity carries the human-facing attributes of a Party.
type Identity struct {
	Name        string   `json:"name"`
	Identifiers []string `json:"identifiers,omitempty"`
	Contacts    []string `json:"contacts,omitempty"`
}

// Party is the folded state of an Entity aggregate (spec.md §3.1).
type Party struct {
	ID            id.ID     `json:"id"`
	Kind          PartyKind `json:"type"`
	Identity      Identity  `json:"identity"`
	RealmID       *id.ID    `json:"realmId,omitempty"`
	AutonomyLevel int       `json:"autonomyLevel,omitempty"`
	GuardianID    *id.ID    `json:"guardianId,omitempty"`
	CreatedAt     int64     `json:"createdAt"`
	Version       int       `json:"version"`
}

// EntityCreatedPayload is the payload of the version-1 event that
// instantiates a Party aggregate.
type EntityCreatedPayload struct {
	Kind          PartyKind `json:"type"`
	Identity      Identity  `json:"identity"`
	RealmID       *id.ID    `json:"realmId,omitempty"`
	AutonomyLevel int       `json:"autonomyLevel,omitempty"`
	GuardianID    *id.ID    `json:"guardianId,omitempty"`
}

// EntityRenamedPayload mutates Identity.Name on an existing Party. Used by
// the point-in-time rehydration scenario in spec.md §8.
type EntityRenamedPayload struct {
	Name string `json:"name"`
}

const (
	EventEntityCreated  = "EntityCreated"
	EventEntityRenamed  = "EntityRenamed"
	EventEntityLinked   = "EntityLinkedToRealm"
)
