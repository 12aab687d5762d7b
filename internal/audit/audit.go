// Package audit appends the authorization decision trail of spec.md
// §4.5's "Audit emission": exactly one AuthorizationGranted or
// AuthorizationDenied event per permission check.
//
// spec.md §9's Open Question 1 notes the source writes one fresh
// aggregate per audit event (aggregateVersion always 1), which makes
// audits individually addressable but loses the ability to rehydrate
// "the series of denials for one actor" as a single stream. This
// implementation takes the documented alternative: one audit aggregate
// per actor, with a monotonically increasing version, addressed by a
// deterministic id derived from the actor so every decision for that
// actor lands on the same aggregate. Behavior remains equivalent for
// the invariants in spec.md §8.
package audit

import (
	"context"
	"crypto/sha1"
	"encoding/hex"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

const (
	EventAuthorizationGranted = "AuthorizationGranted"
	EventAuthorizationDenied  = "AuthorizationDenied"
)

func init() {
	domain.RegisterPayloadType(EventAuthorizationGranted, DecisionPayload{})
	domain.RegisterPayloadType(EventAuthorizationDenied, DecisionPayload{})
}

// DecisionPayload is the payload shared by both audit event types.
type DecisionPayload struct {
	Intent              string   `json:"intent"`
	Permission          string   `json:"permission"`
	Decision            string   `json:"decision"` // "Granted" | "Denied"
	Reason              string   `json:"reason,omitempty"`
	EvaluatedAgreements []string `json:"evaluatedAgreements,omitempty"`
	GrantedBy           []string `json:"grantedBy,omitempty"`
}

// AggregateIDFor derives the per-actor audit aggregate id. Two
// invocations for the same actor always yield the same id, so the
// store's version check correctly serializes and increments across
// repeated decisions for that actor.
func AggregateIDFor(actor domain.Actor) id.ID {
	var key string

	switch actor.Type {
	case domain.ActorEntity:
		key = "entity:" + string(actor.EntityID)
	case domain.ActorSystem:
		key = "system:" + actor.SystemID
	default:
		key = "anonymous"
	}

	sum := sha1.Sum([]byte(key))

	return id.ID("audit-" + hex.EncodeToString(sum[:]))
}

// Logger appends audit events. It is invoked by the intent dispatcher,
// not by the Authorization Engine itself (spec.md §4.5: "the dispatcher
// (not the engine) MUST append").
type Logger struct {
	store eventstore.Store
}

// NewLogger builds a Logger over store.
func NewLogger(store eventstore.Store) *Logger {
	return &Logger{store: store}
}

// Record appends exactly one audit event for a permission decision.
// Failure to append is itself surfaced to the caller, who per spec.md §7
// treats it as best-effort: the underlying action is never aborted
// solely because the audit append failed, but the error is still
// reported to a structured operational sink by the dispatcher.
func (l *Logger) Record(ctx context.Context, actor domain.Actor, payload DecisionPayload, causation *domain.Causation, now int64) (domain.Event, error) {
	aggregateID := AggregateIDFor(actor)

	version, err := l.store.GetCurrentVersion(ctx, domain.AggregateSystem, string(aggregateID))
	if err != nil {
		return domain.Event{}, err
	}

	eventType := EventAuthorizationDenied
	if payload.Decision == "Granted" {
		eventType = EventAuthorizationGranted
	}

	return l.store.Append(ctx, domain.Candidate{
		AggregateType:    domain.AggregateSystem,
		AggregateID:      aggregateID,
		AggregateVersion: version,
		Type:             eventType,
		Timestamp:        now,
		Actor:            actor,
		Payload:          payload,
		Causation:        causation,
	}, version)
}
