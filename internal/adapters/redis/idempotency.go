package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lerianstudio/eventledger/internal/intent"
)

const keyPrefix = "eventledger:idempotency:"

// IdempotencyStore is a redis-backed intent.IdempotencyStore, used when
// configuration selects a shared, multi-node rate-limit/idempotency
// backend (spec.md §6.5 "rateLimit.backend").
type IdempotencyStore struct {
	conn *Connection
}

var _ intent.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore builds a store over conn.
func NewIdempotencyStore(conn *Connection) *IdempotencyStore {
	return &IdempotencyStore{conn: conn}
}

func (s *IdempotencyStore) redisKey(actorKey, idempotencyKey string) string {
	return keyPrefix + actorKey + ":" + idempotencyKey
}

// Get implements intent.IdempotencyStore.
func (s *IdempotencyStore) Get(ctx context.Context, actorKey, idempotencyKey string) (intent.Result, bool, error) {
	client, err := s.conn.Client(ctx)
	if err != nil {
		return intent.Result{}, false, err
	}

	raw, err := client.Get(ctx, s.redisKey(actorKey, idempotencyKey)).Bytes()
	if err != nil {
		return intent.Result{}, false, nil //nolint:nilerr // cache miss is not an error condition
	}

	var result intent.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return intent.Result{}, false, err
	}

	return result, true, nil
}

// Put implements intent.IdempotencyStore.
func (s *IdempotencyStore) Put(ctx context.Context, actorKey, idempotencyKey string, result intent.Result, retention time.Duration) error {
	client, err := s.conn.Client(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return client.Set(ctx, s.redisKey(actorKey, idempotencyKey), raw, retention).Err()
}
