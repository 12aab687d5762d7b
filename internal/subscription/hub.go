// Package subscription implements the Subscription Hub of spec.md §4.7:
// replay-then-live event fan-out with exactly-once delivery per
// subscriber and back-pressure via a bounded per-subscriber buffer.
package subscription

import (
	"context"
	"sync"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore"
	"github.com/lerianstudio/eventledger/internal/platform/log"
)

const defaultBufferSize = 256

// Subscription is one subscriber's view of the hub. Events delivers
// replayed-then-live events in strictly increasing sequence order.
// Lagged is closed if the hub drops this subscriber for falling behind
// (spec.md §4.7: "the hub closes the subscription with Lagged and the
// client must reconnect with its last-acknowledged sequence"); Events is
// closed at the same time, and events still buffered for it are
// discarded. Close unregisters the subscription.
type Subscription struct {
	Events <-chan domain.Event
	Lagged <-chan struct{}
	Close  func()
}

type subscriber struct {
	ch        chan domain.Event
	lagged    chan struct{}
	closeOnce sync.Once
}

func newSubscriber(bufferSize int) *subscriber {
	return &subscriber{ch: make(chan domain.Event, bufferSize), lagged: make(chan struct{})}
}

// deliver attempts a non-blocking send. A full buffer means this
// subscriber is lagging; it is torn down rather than made to block the
// publisher that every other subscriber shares.
func (s *subscriber) deliver(e domain.Event) bool {
	select {
	case s.ch <- e:
		return true
	default:
		s.drop()

		return false
	}
}

func (s *subscriber) drop() {
	s.closeOnce.Do(func() {
	drain:
		for {
			select {
			case <-s.ch:
			default:
				break drain
			}
		}

		close(s.ch)
		close(s.lagged)
	})
}

// Hub fans out appended events to live subscribers. It is driven by
// NotifyingStore, which calls Publish after every successful append.
type Hub struct {
	store      eventstore.Store
	logger     log.Logger
	bufferSize int

	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID uint64
}

// NewHub builds a Hub. store is used only to serve the replay portion of
// Subscribe; live events arrive exclusively through Publish.
func NewHub(store eventstore.Store, logger log.Logger) *Hub {
	return &Hub{store: store, logger: logger, bufferSize: defaultBufferSize, subs: make(map[uint64]*subscriber)}
}

// Subscribe implements spec.md §4.7's contract: replay every event with
// sequence >= fromSequence, then switch to live delivery with no gap and
// no duplicate. The final catch-up check and subscriber registration
// happen under the same lock Publish takes, so an event appended
// concurrently with registration is never missed: Publish blocks on that
// lock until registration completes, then delivers it live.
func (h *Hub) Subscribe(ctx context.Context, fromSequence int64) (*Subscription, error) {
	sub := newSubscriber(h.bufferSize)
	cursor := fromSequence - 1

	for {
		h.mu.Lock()

		events, err := h.store.GetBySequence(ctx, cursor, 0)
		if err != nil {
			h.mu.Unlock()

			return nil, err
		}

		if len(events) == 0 {
			id := h.nextID
			h.nextID++
			h.subs[id] = sub

			h.mu.Unlock()

			return &Subscription{Events: sub.ch, Lagged: sub.lagged, Close: func() { h.remove(id) }}, nil
		}

		h.mu.Unlock()

		for _, e := range events {
			if !sub.deliver(e) {
				return &Subscription{Events: sub.ch, Lagged: sub.lagged, Close: func() {}}, nil
			}

			cursor = e.Sequence
		}
	}
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs, id)
}

// Publish delivers e to every live subscriber, dropping (with Lagged)
// any whose buffer is full.
func (h *Hub) Publish(e domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		if !sub.deliver(e) {
			delete(h.subs, id)

			if h.logger != nil {
				h.logger.Errorf("subscriber lagged past buffer at sequence %d, disconnecting", e.Sequence)
			}
		}
	}
}

// NotifyingStore wraps an eventstore.Store, publishing every
// successfully appended event to a Hub. Bootstrap wires this in front of
// the real store so the Subscription Hub and the Projection Manager's
// live path see new events at the moment they commit.
type NotifyingStore struct {
	eventstore.Store
	hub *Hub
}

// NewNotifyingStore builds a NotifyingStore over inner.
func NewNotifyingStore(inner eventstore.Store, hub *Hub) *NotifyingStore {
	return &NotifyingStore{Store: inner, hub: hub}
}

// Append implements eventstore.Store, delegating to the wrapped store
// and publishing on success.
func (s *NotifyingStore) Append(ctx context.Context, candidate domain.Candidate, expectedVersion int) (domain.Event, error) {
	e, err := s.Store.Append(ctx, candidate, expectedVersion)
	if err != nil {
		return e, err
	}

	s.hub.Publish(e)

	return e, nil
}
