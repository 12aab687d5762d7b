package domain

import "github.com/lerianstudio/eventledger/internal/platform/id"

// ApiKey is the folded state of an ApiKey aggregate (spec.md §3.1). Keys
// are identified to callers only by their hash; the plaintext is never
// stored.
type ApiKey struct {
	ID            id.ID    `json:"id"`
	KeyHash       string   `json:"keyHash"`
	EntityID      id.ID    `json:"entityId"`
	RealmID       *id.ID   `json:"realmId,omitempty"`
	Scopes        []string `json:"scopes,omitempty"`
	ExpiresAt     *int64   `json:"expiresAt,omitempty"`
	Revoked       bool     `json:"revoked"`
	RevokedReason string   `json:"revokedReason,omitempty"`
	EstablishedBy id.ID    `json:"establishedBy"`
	Version       int      `json:"version"`
}

// ApiKeyCreatedPayload is the version-1 event payload.
type ApiKeyCreatedPayload struct {
	KeyHash       string   `json:"keyHash"`
	EntityID      id.ID    `json:"entityId"`
	RealmID       *id.ID   `json:"realmId,omitempty"`
	Scopes        []string `json:"scopes,omitempty"`
	ExpiresAt     *int64   `json:"expiresAt,omitempty"`
	EstablishedBy id.ID    `json:"establishedBy"`
}

// ApiKeyRevokedPayload transitions Revoked to true. It is appended only by
// a direct revocation; a key whose establishing agreement has left Active
// is treated as revoked at verification time, with no ApiKeyRevoked event
// (spec.md §7 "cascade revocation").
type ApiKeyRevokedPayload struct {
	Reason string `json:"reason,omitempty"`
}

const (
	EventApiKeyCreated = "ApiKeyCreated"
	EventApiKeyRevoked = "ApiKeyRevoked"
)
