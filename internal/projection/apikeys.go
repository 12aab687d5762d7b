package projection

import (
	"context"
	"sync"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

// ApiKeyInfo is the "keyHash -> {apiKeyId, revoked, expiresAt,
// establishedBy}" row spec.md §4.9's performance note describes.
type ApiKeyInfo struct {
	ApiKeyID      id.ID
	EntityID      id.ID
	RealmID       *id.ID
	Scopes        []string
	Revoked       bool
	ExpiresAt     *int64
	EstablishedBy id.ID
}

// ApiKeysProjection indexes ApiKeyCreated/ApiKeyRevoked events by
// keyHash, so the Authentication Engine's fast path never has to scan
// the full log.
type ApiKeysProjection struct {
	mu      sync.RWMutex
	byHash  map[string]ApiKeyInfo
	idToHash map[id.ID]string
}

// NewApiKeysProjection returns an empty projection.
func NewApiKeysProjection() *ApiKeysProjection {
	return &ApiKeysProjection{byHash: make(map[string]ApiKeyInfo), idToHash: make(map[id.ID]string)}
}

// Name implements Projection.
func (p *ApiKeysProjection) Name() string { return "apiKeys" }

// Apply implements Projection.
func (p *ApiKeysProjection) Apply(_ context.Context, e domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch payload := e.Payload.(type) {
	case domain.ApiKeyCreatedPayload:
		info := ApiKeyInfo{
			ApiKeyID:      e.AggregateID,
			EntityID:      payload.EntityID,
			RealmID:       payload.RealmID,
			Scopes:        payload.Scopes,
			ExpiresAt:     payload.ExpiresAt,
			EstablishedBy: payload.EstablishedBy,
		}

		p.byHash[payload.KeyHash] = info
		p.idToHash[e.AggregateID] = payload.KeyHash
	case domain.ApiKeyRevokedPayload:
		hash, ok := p.idToHash[e.AggregateID]
		if !ok {
			return nil
		}

		info := p.byHash[hash]
		info.Revoked = true
		p.byHash[hash] = info
	}

	return nil
}

// Lookup returns the indexed info for keyHash, if present.
func (p *ApiKeysProjection) Lookup(keyHash string) (ApiKeyInfo, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	info, ok := p.byHash[keyHash]

	return info, ok
}
