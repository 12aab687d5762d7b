// Package postgres is the pgx-backed implementation of eventstore.Store,
// grounded on the teacher's postgres adapters (asset.postgresql.go,
// account.postgresql.go): a *Model row type with ToEntity/FromEntity
// conversions, wrapped by a repository struct holding the connection.
//
// Concurrency control rides on a unique index on (aggregate_type,
// aggregate_id, aggregate_version): a conflicting Append hits a unique
// violation, which is mapped to apperr.CodeConcurrencyConflict rather
// than surfaced as a raw database error.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	dbconn "github.com/lerianstudio/eventledger/internal/adapters/postgres"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

const uniqueViolation = "23505"

// eventModel is the row shape of the events table.
type eventModel struct {
	EventID          string
	Sequence         int64
	AggregateType    string
	AggregateID      string
	AggregateVersion int
	Type             string
	Timestamp        int64
	ActorType        string
	ActorEntityID    string
	ActorSystemID    string
	ActorReason      string
	Payload          []byte
	CausationID      string
	HashChain        string
}

func (m eventModel) toEntity() (domain.Event, error) {
	payload, err := domain.DecodePayload(m.Type, m.Payload)
	if err != nil {
		return domain.Event{}, fmt.Errorf("eventstore/postgres: decode payload for %s: %w", m.Type, err)
	}

	e := domain.Event{
		EventID:          id.ID(m.EventID),
		Sequence:         m.Sequence,
		AggregateType:    domain.AggregateType(m.AggregateType),
		AggregateID:      id.ID(m.AggregateID),
		AggregateVersion: m.AggregateVersion,
		Type:             m.Type,
		Timestamp:        m.Timestamp,
		Actor: domain.Actor{
			Type:     domain.ActorType(m.ActorType),
			EntityID: id.ID(m.ActorEntityID),
			SystemID: m.ActorSystemID,
			Reason:   m.ActorReason,
		},
		Payload:   payload,
		HashChain: m.HashChain,
	}

	if m.CausationID != "" {
		e.Causation = &domain.Causation{CommandID: m.CausationID}
	}

	return e, nil
}

// Store is the Postgres-backed implementation of eventstore.Store.
type Store struct {
	conn *dbconn.Connection
}

var _ eventstore.Store = (*Store)(nil)

// New returns a Store backed by the given connection.
func New(conn *dbconn.Connection) *Store {
	return &Store{conn: conn}
}

// Append implements eventstore.Store.
func (s *Store) Append(ctx context.Context, candidate domain.Candidate, expectedVersion int) (domain.Event, error) {
	pool, err := s.conn.Pool(ctx)
	if err != nil {
		return domain.Event{}, apperr.StorageError(err)
	}

	payload, err := json.Marshal(candidate.Payload)
	if err != nil {
		return domain.Event{}, apperr.Wrap(apperr.CodeStorageError, "marshal payload", err)
	}

	var causationID string
	if candidate.Causation != nil {
		causationID = candidate.Causation.CommandID
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return domain.Event{}, apperr.StorageError(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var currentVersion int

	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(aggregate_version), 0) FROM events WHERE aggregate_type = $1 AND aggregate_id = $2 FOR UPDATE`,
		string(candidate.AggregateType), string(candidate.AggregateID),
	).Scan(&currentVersion)
	if err != nil {
		return domain.Event{}, apperr.StorageError(err)
	}

	if currentVersion != expectedVersion {
		return domain.Event{}, apperr.ConcurrencyConflict(string(candidate.AggregateID), expectedVersion, currentVersion)
	}

	var previousChain string

	err = tx.QueryRow(ctx, `SELECT hash_chain FROM events ORDER BY sequence DESC LIMIT 1`).Scan(&previousChain)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.Event{}, apperr.StorageError(err)
	}

	e := domain.Event{
		EventID:          id.New(),
		AggregateType:    candidate.AggregateType,
		AggregateID:      candidate.AggregateID,
		AggregateVersion: currentVersion + 1,
		Type:             candidate.Type,
		Timestamp:        candidate.Timestamp,
		Actor:            candidate.Actor,
		Payload:          candidate.Payload,
		Causation:        candidate.Causation,
	}

	chain, err := eventstore.ChainHash(previousChain, e)
	if err != nil {
		return domain.Event{}, apperr.Wrap(apperr.CodeStorageError, "compute hash chain", err)
	}

	e.HashChain = chain

	var sequence int64

	err = tx.QueryRow(ctx,
		`INSERT INTO events (event_id, aggregate_type, aggregate_id, aggregate_version, type, timestamp,
			actor_type, actor_entity_id, actor_system_id, actor_reason, payload, causation_id, hash_chain)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING sequence`,
		string(e.EventID), string(e.AggregateType), string(e.AggregateID), e.AggregateVersion, e.Type, e.Timestamp,
		string(e.Actor.Type), string(e.Actor.EntityID), e.Actor.SystemID, e.Actor.Reason, payload, causationID, e.HashChain,
	).Scan(&sequence)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Event{}, apperr.ConcurrencyConflict(string(candidate.AggregateID), expectedVersion, currentVersion)
		}

		return domain.Event{}, apperr.StorageError(err)
	}

	e.Sequence = sequence

	if err := tx.Commit(ctx); err != nil {
		return domain.Event{}, apperr.StorageError(err)
	}

	return e, nil
}

// GetByAggregate implements eventstore.Store.
func (s *Store) GetByAggregate(ctx context.Context, aggregateType domain.AggregateType, aggregateID string) ([]domain.Event, error) {
	pool, err := s.conn.Pool(ctx)
	if err != nil {
		return nil, apperr.StorageError(err)
	}

	rows, err := pool.Query(ctx,
		`SELECT event_id, sequence, aggregate_type, aggregate_id, aggregate_version, type, timestamp,
			actor_type, actor_entity_id, actor_system_id, actor_reason, payload, causation_id, hash_chain
		 FROM events WHERE aggregate_type = $1 AND aggregate_id = $2 ORDER BY aggregate_version ASC`,
		string(aggregateType), aggregateID,
	)
	if err != nil {
		return nil, apperr.StorageError(err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetByAggregateUntil implements eventstore.Store.
func (s *Store) GetByAggregateUntil(ctx context.Context, aggregateType domain.AggregateType, aggregateID string, asOf int64) ([]domain.Event, error) {
	pool, err := s.conn.Pool(ctx)
	if err != nil {
		return nil, apperr.StorageError(err)
	}

	rows, err := pool.Query(ctx,
		`SELECT event_id, sequence, aggregate_type, aggregate_id, aggregate_version, type, timestamp,
			actor_type, actor_entity_id, actor_system_id, actor_reason, payload, causation_id, hash_chain
		 FROM events WHERE aggregate_type = $1 AND aggregate_id = $2 AND timestamp <= $3 ORDER BY aggregate_version ASC`,
		string(aggregateType), aggregateID, asOf,
	)
	if err != nil {
		return nil, apperr.StorageError(err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetBySequence implements eventstore.Store.
func (s *Store) GetBySequence(ctx context.Context, fromSequence int64, limit int) ([]domain.Event, error) {
	pool, err := s.conn.Pool(ctx)
	if err != nil {
		return nil, apperr.StorageError(err)
	}

	query := `SELECT event_id, sequence, aggregate_type, aggregate_id, aggregate_version, type, timestamp,
			actor_type, actor_entity_id, actor_system_id, actor_reason, payload, causation_id, hash_chain
		 FROM events WHERE sequence > $1 ORDER BY sequence ASC`

	args := []any{fromSequence}

	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.StorageError(err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetCurrentVersion implements eventstore.Store.
func (s *Store) GetCurrentVersion(ctx context.Context, aggregateType domain.AggregateType, aggregateID string) (int, error) {
	pool, err := s.conn.Pool(ctx)
	if err != nil {
		return 0, apperr.StorageError(err)
	}

	var version int

	err = pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(aggregate_version), 0) FROM events WHERE aggregate_type = $1 AND aggregate_id = $2`,
		string(aggregateType), aggregateID,
	).Scan(&version)
	if err != nil {
		return 0, apperr.StorageError(err)
	}

	return version, nil
}

// GetCurrentSequence implements eventstore.Store.
func (s *Store) GetCurrentSequence(ctx context.Context) (int64, error) {
	pool, err := s.conn.Pool(ctx)
	if err != nil {
		return 0, apperr.StorageError(err)
	}

	var sequence int64

	err = pool.QueryRow(ctx, `SELECT COALESCE(MAX(sequence), 0) FROM events`).Scan(&sequence)
	if err != nil {
		return 0, apperr.StorageError(err)
	}

	return sequence, nil
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	var out []domain.Event

	for rows.Next() {
		var (
			m       eventModel
			payload []byte
		)

		if err := rows.Scan(
			&m.EventID, &m.Sequence, &m.AggregateType, &m.AggregateID, &m.AggregateVersion, &m.Type, &m.Timestamp,
			&m.ActorType, &m.ActorEntityID, &m.ActorSystemID, &m.ActorReason, &payload, &m.CausationID, &m.HashChain,
		); err != nil {
			return nil, apperr.StorageError(err)
		}

		m.Payload = payload

		e, err := m.toEntity()
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeStorageError, "decode event row", err)
		}

		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.StorageError(err)
	}

	return out, nil
}
