// Package authn implements the Authentication Engine of spec.md §4.9:
// verifying API keys and bearer tokens against the event log rather
// than a separate credentials table. No in-memory key registry exists;
// correctness derives from ApiKeyCreated/ApiKeyRevoked events and the
// status of the agreement that established the key.
package authn

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/lerianstudio/eventledger/internal/agreement"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/id"
	"github.com/lerianstudio/eventledger/internal/projection"
	"github.com/lerianstudio/eventledger/internal/rehydrate"
)

// Claims is what a successful verification yields (spec.md §4.9:
// "{realmId, entityId, scopes}").
type Claims struct {
	EntityID id.ID
	RealmID  *id.ID
	Scopes   []string
}

// Engine verifies API keys. ApiKeys is the performance-note projection
// of spec.md §4.9; it may be nil, in which case every call falls back
// to the full log scan.
type Engine struct {
	store      eventstore.Store
	apiKeys    *projection.ApiKeysProjection
	mongoKeys  *MongoApiKeysProjection
	agreements *agreement.Repository
}

// NewEngine builds an Engine over its dependencies.
func NewEngine(store eventstore.Store, apiKeys *projection.ApiKeysProjection) *Engine {
	return &Engine{store: store, apiKeys: apiKeys, agreements: agreement.NewRepository(store)}
}

// WithMongoFallback adds the mongo-backed secondary index as a lookup
// step between the local projection and the full log scan, for
// deployments where this node did not replay the projection locally.
func (e *Engine) WithMongoFallback(mongoKeys *MongoApiKeysProjection) *Engine {
	e.mongoKeys = mongoKeys
	return e
}

// HashKey derives the keyHash an ApiKeyCreated event carries from a
// presented plaintext key. Kept in sync with intent.generateKey's
// hashing so a key minted through apiKey:create verifies here.
func HashKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// VerifyApiKey implements spec.md §4.9's contract. now is the caller's
// current time in epoch milliseconds, used for expiry and the
// agreement's validity window.
func (e *Engine) VerifyApiKey(ctx context.Context, plaintext string, now int64) (*Claims, error) {
	hash := HashKey(plaintext)

	info, ok := e.lookup(ctx, hash)
	if !ok {
		return nil, apperr.Unauthenticated("unknown api key")
	}

	if info.Revoked {
		return nil, apperr.Unauthenticated("api key revoked")
	}

	if info.ExpiresAt != nil && now > *info.ExpiresAt {
		return nil, apperr.Unauthenticated("api key expired")
	}

	est, _, err := e.agreements.Get(ctx, string(info.EstablishedBy))
	if err != nil {
		return nil, apperr.Unauthenticated("establishing agreement not found")
	}

	if est.Status != domain.AgreementActive || !est.Validity.Covers(now) {
		return nil, apperr.Unauthenticated("establishing agreement is not active")
	}

	return &Claims{EntityID: info.EntityID, RealmID: info.RealmID, Scopes: info.Scopes}, nil
}

func (e *Engine) lookup(ctx context.Context, hash string) (projection.ApiKeyInfo, bool) {
	if e.apiKeys != nil {
		if info, ok := e.apiKeys.Lookup(hash); ok {
			return info, true
		}
	}

	if e.mongoKeys != nil {
		if info, ok, err := e.mongoKeys.Lookup(ctx, hash); err == nil && ok {
			return info, true
		}
	}

	return e.lookupSlow(ctx, hash)
}

// lookupSlow is the log-scan fallback spec.md §9 requires be retained
// "as the source of truth for projection rebuild".
func (e *Engine) lookupSlow(ctx context.Context, hash string) (projection.ApiKeyInfo, bool) {
	events, err := e.store.GetBySequence(ctx, 0, 0)
	if err != nil {
		return projection.ApiKeyInfo{}, false
	}

	byAggregate := map[id.ID][]domain.Event{}

	for _, ev := range events {
		if ev.AggregateType != domain.AggregateApiKey {
			continue
		}

		byAggregate[ev.AggregateID] = append(byAggregate[ev.AggregateID], ev)
	}

	for aggID, evs := range byAggregate {
		key := rehydrate.ApiKeyFolder.Fold(string(aggID), evs)
		if key.KeyHash != hash {
			continue
		}

		return projection.ApiKeyInfo{
			ApiKeyID:      key.ID,
			EntityID:      key.EntityID,
			RealmID:       key.RealmID,
			Scopes:        key.Scopes,
			Revoked:       key.Revoked,
			ExpiresAt:     key.ExpiresAt,
			EstablishedBy: key.EstablishedBy,
		}, true
	}

	return projection.ApiKeyInfo{}, false
}
