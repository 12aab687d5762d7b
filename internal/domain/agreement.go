package domain

import "github.com/lerianstudio/eventledger/internal/platform/id"

// AgreementStatus is the lifecycle state of spec.md §4.3.
type AgreementStatus string

const (
	AgreementProposed   AgreementStatus = "Proposed"
	AgreementActive     AgreementStatus = "Active"
	AgreementTerminated AgreementStatus = "Terminated"
	AgreementDisputed   AgreementStatus = "Disputed"
	AgreementResolved   AgreementStatus = "Resolved"
)

// PartyRef is one party named in an Agreement, with the role it was
// proposed under and the consent methods it has exercised so far.
type PartyRef struct {
	EntityID id.ID    `json:"entityId"`
	Role     string   `json:"role"`
	Consents []string `json:"consents,omitempty"`
}

// HasConsented reports whether this party has recorded any consent.
func (p PartyRef) HasConsented() bool { return len(p.Consents) > 0 }

// Validity bounds an Agreement's effective window.
type Validity struct {
	EffectiveFrom  int64  `json:"effectiveFrom"`
	EffectiveUntil *int64 `json:"effectiveUntil,omitempty"`
}

// Covers reports whether timestamp t falls within the validity window.
func (v Validity) Covers(t int64) bool {
	if t < v.EffectiveFrom {
		return false
	}

	if v.EffectiveUntil != nil && t > *v.EffectiveUntil {
		return false
	}

	return true
}

// Agreement is the folded state of an Agreement aggregate (spec.md §3.1).
type Agreement struct {
	ID                id.ID           `json:"id"`
	AgreementType     string          `json:"agreementType"`
	Parties           []PartyRef      `json:"parties"`
	Terms             map[string]any  `json:"terms,omitempty"`
	AssetID           *id.ID          `json:"assetId,omitempty"`
	Validity          Validity        `json:"validity"`
	Status            AgreementStatus `json:"status"`
	ParentAgreementID *id.ID          `json:"parentAgreementId,omitempty"`
	RealmID           *id.ID          `json:"realmId,omitempty"`
	Version           int             `json:"version"`
}

// PartyByID returns the PartyRef for entityID, if named on this agreement.
func (a Agreement) PartyByID(entityID id.ID) (PartyRef, bool) {
	for _, p := range a.Parties {
		if p.EntityID == entityID {
			return p, true
		}
	}

	return PartyRef{}, false
}

// AgreementProposedPayload is the version-1 event payload.
type AgreementProposedPayload struct {
	AgreementType     string         `json:"agreementType"`
	Parties           []PartyRef     `json:"parties"`
	Terms             map[string]any `json:"terms,omitempty"`
	AssetID           *id.ID         `json:"assetId,omitempty"`
	Validity          Validity       `json:"validity"`
	ParentAgreementID *id.ID         `json:"parentAgreementId,omitempty"`
	RealmID           *id.ID         `json:"realmId,omitempty"`
}

// PartyConsentedPayload records one party's consent toward quorum.
type PartyConsentedPayload struct {
	EntityID id.ID  `json:"entityId"`
	Method   string `json:"method"`
}

// PartyRejectedPayload records a rejection, which terminates a Proposed
// agreement per the state machine in spec.md §4.3.
type PartyRejectedPayload struct {
	EntityID id.ID  `json:"entityId"`
	Reason   string `json:"reason,omitempty"`
}

// AgreementActivatedPayload carries no data beyond the transition itself;
// the hook processor reads the folded Agreement state to act on it.
type AgreementActivatedPayload struct{}

// AgreementTerminatedPayload records why an agreement was terminated.
type AgreementTerminatedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// DisputeOpenedPayload / DisputeResolvedPayload implement the
// Active<->Disputed transitions.
type DisputeOpenedPayload struct {
	Reason string `json:"reason,omitempty"`
}

type DisputeResolvedPayload struct {
	Resolution AgreementStatus `json:"resolution"` // Active or Terminated
	Reason     string          `json:"reason,omitempty"`
}

const (
	EventAgreementProposed   = "AgreementProposed"
	EventPartyConsented      = "PartyConsented"
	EventPartyRejected       = "PartyRejected"
	EventAgreementActivated  = "AgreementActivated"
	EventAgreementTerminated = "AgreementTerminated"
	EventDisputeOpened       = "DisputeOpened"
	EventDisputeResolved     = "DisputeResolved"
)
