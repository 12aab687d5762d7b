package authn

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lerianstudio/eventledger/internal/adapters/mongodb"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/id"
	"github.com/lerianstudio/eventledger/internal/projection"
)

const apiKeysCollection = "api_keys"

// apiKeyDocument is the mongo-stored shape of projection.ApiKeyInfo,
// keyed by keyHash so Lookup is a single point query.
type apiKeyDocument struct {
	KeyHash       string   `bson:"_id"`
	ApiKeyID      string   `bson:"apiKeyId"`
	EntityID      string   `bson:"entityId"`
	RealmID       *string  `bson:"realmId,omitempty"`
	Scopes        []string `bson:"scopes"`
	Revoked       bool     `bson:"revoked"`
	ExpiresAt     *int64   `bson:"expiresAt,omitempty"`
	EstablishedBy string   `bson:"establishedBy"`
}

func (d apiKeyDocument) toInfo() projection.ApiKeyInfo {
	info := projection.ApiKeyInfo{
		ApiKeyID:      id.ID(d.ApiKeyID),
		EntityID:      id.ID(d.EntityID),
		Scopes:        d.Scopes,
		Revoked:       d.Revoked,
		ExpiresAt:     d.ExpiresAt,
		EstablishedBy: id.ID(d.EstablishedBy),
	}

	if d.RealmID != nil {
		r := id.ID(*d.RealmID)
		info.RealmID = &r
	}

	return info
}

// MongoApiKeysProjection is the alternate/secondary sink for the
// keyHash -> ApiKey index spec.md §4.9's performance note describes,
// usable by authentication nodes that do not hold the in-memory
// ApiKeysProjection (e.g. a horizontally scaled API-key verification
// tier). It is grounded on the teacher's components/audit mongodb
// adapter, adapted from an append-only audit collection to an
// upsert-by-keyHash index.
type MongoApiKeysProjection struct {
	conn *mongodb.Connection
}

var _ projection.Projection = (*MongoApiKeysProjection)(nil)

// NewMongoApiKeysProjection builds a MongoApiKeysProjection over conn.
func NewMongoApiKeysProjection(conn *mongodb.Connection) *MongoApiKeysProjection {
	return &MongoApiKeysProjection{conn: conn}
}

// Name implements projection.Projection.
func (p *MongoApiKeysProjection) Name() string { return "apiKeys.mongo" }

// Apply implements projection.Projection, mirroring ApiKeyCreated and
// ApiKeyRevoked events into the mongo index.
func (p *MongoApiKeysProjection) Apply(ctx context.Context, e domain.Event) error {
	coll, err := p.conn.Collection(ctx, apiKeysCollection)
	if err != nil {
		return err
	}

	switch payload := e.Payload.(type) {
	case domain.ApiKeyCreatedPayload:
		doc := apiKeyDocument{
			KeyHash:       payload.KeyHash,
			ApiKeyID:      string(e.AggregateID),
			EntityID:      string(payload.EntityID),
			Scopes:        payload.Scopes,
			ExpiresAt:     payload.ExpiresAt,
			EstablishedBy: string(payload.EstablishedBy),
		}

		if payload.RealmID != nil {
			realm := string(*payload.RealmID)
			doc.RealmID = &realm
		}

		upsert := true
		_, err := coll.ReplaceOne(ctx, bson.M{"_id": doc.KeyHash}, doc, &options.ReplaceOptions{Upsert: &upsert})

		return err
	case domain.ApiKeyRevokedPayload:
		_, err := coll.UpdateOne(ctx,
			bson.M{"apiKeyId": string(e.AggregateID)},
			bson.M{"$set": bson.M{"revoked": true}},
		)
		if err == mongo.ErrNoDocuments {
			return nil
		}

		return err
	}

	return nil
}

// Lookup queries the mongo index directly, for callers that cannot rely
// on the in-memory ApiKeysProjection being warm locally.
func (p *MongoApiKeysProjection) Lookup(ctx context.Context, keyHash string) (projection.ApiKeyInfo, bool, error) {
	coll, err := p.conn.Collection(ctx, apiKeysCollection)
	if err != nil {
		return projection.ApiKeyInfo{}, false, err
	}

	var doc apiKeyDocument

	err = coll.FindOne(ctx, bson.M{"_id": keyHash}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return projection.ApiKeyInfo{}, false, nil
	}

	if err != nil {
		return projection.ApiKeyInfo{}, false, err
	}

	return doc.toInfo(), true, nil
}
