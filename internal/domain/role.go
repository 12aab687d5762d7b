package domain

import "github.com/lerianstudio/eventledger/internal/platform/id"

// Role is not a distinct aggregate with its own event stream; it is a
// derived view of one party's standing under an Active agreement, kept
// here because the rehydrator and authorization engine both need to
// describe it as a value. It exists only while the backing agreement
// is Active (spec.md §3.1 "Role" entity).
type Role struct {
	EntityID      id.ID    `json:"entityId"`
	AgreementID   id.ID    `json:"agreementId"`
	RoleName      string   `json:"roleName"`
	Permissions   []string `json:"permissions,omitempty"`
	RealmID       *id.ID   `json:"realmId,omitempty"`
}
