// Package projection implements the Projection Manager of spec.md §4.8:
// eventually-consistent materialized views tailing the event log, each
// with its own durable watermark and idempotent apply.
package projection

import (
	"context"
	"sync"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore"
	"github.com/lerianstudio/eventledger/internal/platform/log"
)

// Projection is one materialized view (spec.md §4.8: "{name,
// replayFromSequence, apply(event, store)}"). Apply must be idempotent:
// the manager delivers at-least-once, so replaying the same event twice
// after a resume must not corrupt the view.
type Projection interface {
	Name() string
	Apply(ctx context.Context, e domain.Event) error
}

// WatermarkStore persists, per projection name, the highest sequence
// successfully applied.
type WatermarkStore interface {
	Get(ctx context.Context, projectionName string) (int64, error)
	Set(ctx context.Context, projectionName string, sequence int64) error
}

// MemoryWatermarkStore is an in-process WatermarkStore.
type MemoryWatermarkStore struct {
	mu         sync.Mutex
	watermarks map[string]int64
}

// NewMemoryWatermarkStore returns an empty store.
func NewMemoryWatermarkStore() *MemoryWatermarkStore {
	return &MemoryWatermarkStore{watermarks: make(map[string]int64)}
}

// Get implements WatermarkStore.
func (s *MemoryWatermarkStore) Get(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.watermarks[name], nil
}

// Set implements WatermarkStore.
func (s *MemoryWatermarkStore) Set(_ context.Context, name string, sequence int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.watermarks[name] = sequence

	return nil
}

// Manager tails the event store, applying each event in sequence order
// to every registered Projection, advancing its watermark as it goes.
// It does not depend on the Subscription Hub directly: both tail the
// same store, so a Manager can run standalone in a worker process.
type Manager struct {
	store       eventstore.Store
	watermarks  WatermarkStore
	logger      log.Logger
	projections []Projection
}

// NewManager builds a Manager over store and watermarks.
func NewManager(store eventstore.Store, watermarks WatermarkStore, logger log.Logger) *Manager {
	return &Manager{store: store, watermarks: watermarks, logger: logger}
}

// Register adds a projection. Safe to call before CatchUp or ApplyLive is
// first called.
func (m *Manager) Register(p Projection) {
	m.projections = append(m.projections, p)
}

// CatchUp applies every event since each projection's last watermark,
// once. Bootstrap calls it once at startup and then feeds each event
// from the Subscription Hub's live feed to ApplyLive.
func (m *Manager) CatchUp(ctx context.Context) error {
	for _, p := range m.projections {
		if err := m.catchUpOne(ctx, p); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) catchUpOne(ctx context.Context, p Projection) error {
	watermark, err := m.watermarks.Get(ctx, p.Name())
	if err != nil {
		return err
	}

	for {
		events, err := m.store.GetBySequence(ctx, watermark, 256)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		for _, e := range events {
			if err := p.Apply(ctx, e); err != nil {
				if m.logger != nil {
					m.logger.Errorf("projection %s failed to apply sequence %d: %v", p.Name(), e.Sequence, err)
				}

				return err
			}

			watermark = e.Sequence

			if err := m.watermarks.Set(ctx, p.Name(), watermark); err != nil {
				return err
			}
		}
	}
}

// ApplyLive feeds one freshly appended event to every projection,
// advancing watermarks as it goes. Used when the manager is wired
// directly to the Subscription Hub's live stream rather than polling.
func (m *Manager) ApplyLive(ctx context.Context, e domain.Event) {
	for _, p := range m.projections {
		if err := p.Apply(ctx, e); err != nil {
			if m.logger != nil {
				m.logger.Errorf("projection %s failed to apply live sequence %d: %v", p.Name(), e.Sequence, err)
			}

			continue
		}

		if err := m.watermarks.Set(ctx, p.Name(), e.Sequence); err != nil && m.logger != nil {
			m.logger.Errorf("projection %s failed to persist watermark: %v", p.Name(), err)
		}
	}
}
