// Package memory is an in-process implementation of eventstore.Store,
// used by unit tests and by local/dev bootstrapping where a Postgres
// instance is not available.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

type aggregateKey struct {
	aggregateType domain.AggregateType
	aggregateID   string
}

// Store is a goroutine-safe, in-memory event log.
type Store struct {
	mu       sync.Mutex
	byKey    map[aggregateKey][]domain.Event
	bySeq    []domain.Event
	sequence int64
}

var _ eventstore.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		byKey: make(map[aggregateKey][]domain.Event),
	}
}

// Append implements eventstore.Store.
func (s *Store) Append(_ context.Context, candidate domain.Candidate, expectedVersion int) (domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := aggregateKey{aggregateType: candidate.AggregateType, aggregateID: string(candidate.AggregateID)}

	current := s.byKey[key]
	currentVersion := len(current)

	if currentVersion != expectedVersion {
		return domain.Event{}, apperr.ConcurrencyConflict(string(candidate.AggregateID), expectedVersion, currentVersion)
	}

	previousChain := ""
	if n := len(s.bySeq); n > 0 {
		previousChain = s.bySeq[n-1].HashChain
	}

	s.sequence++

	e := domain.Event{
		EventID:          id.New(),
		Sequence:         s.sequence,
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

	s.byKey[key] = append(current, e)
	s.bySeq = append(s.bySeq, e)

	return e, nil
}

// GetByAggregate implements eventstore.Store.
func (s *Store) GetByAggregate(_ context.Context, aggregateType domain.AggregateType, aggregateID string) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.byKey[aggregateKey{aggregateType: aggregateType, aggregateID: aggregateID}]

	return cloneEvents(events), nil
}

// GetByAggregateUntil implements eventstore.Store.
func (s *Store) GetByAggregateUntil(ctx context.Context, aggregateType domain.AggregateType, aggregateID string, asOf int64) ([]domain.Event, error) {
	events, err := s.GetByAggregate(ctx, aggregateType, aggregateID)
	if err != nil {
		return nil, err
	}

	out := events[:0:0]

	for _, e := range events {
		if e.Timestamp <= asOf {
			out = append(out, e)
		}
	}

	return out, nil
}

// GetBySequence implements eventstore.Store.
func (s *Store) GetBySequence(_ context.Context, fromSequence int64, limit int) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := sort.Search(len(s.bySeq), func(i int) bool {
		return s.bySeq[i].Sequence > fromSequence
	})

	end := len(s.bySeq)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return cloneEvents(s.bySeq[start:end]), nil
}

// GetCurrentVersion implements eventstore.Store.
func (s *Store) GetCurrentVersion(_ context.Context, aggregateType domain.AggregateType, aggregateID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.byKey[aggregateKey{aggregateType: aggregateType, aggregateID: aggregateID}]), nil
}

// GetCurrentSequence implements eventstore.Store.
func (s *Store) GetCurrentSequence(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sequence, nil
}

func cloneEvents(in []domain.Event) []domain.Event {
	out := make([]domain.Event, len(in))
	copy(out, in)

	return out
}
