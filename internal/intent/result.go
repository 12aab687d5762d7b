package intent

import "github.com/lerianstudio/eventledger/internal/domain"

// Outcome is the tagged variant of spec.md §6.1's response shape.
type Outcome string

const (
	OutcomeCreated     Outcome = "Created"
	OutcomeUpdated     Outcome = "Updated"
	OutcomeTransitioned Outcome = "Transitioned"
	OutcomeTransferred Outcome = "Transferred"
	OutcomeConsented   Outcome = "Consented"
	OutcomeFulfilled   Outcome = "Fulfilled"
	OutcomeQueried     Outcome = "Queried"
	OutcomeNothing     Outcome = "Nothing"
)

// EventRef is the trimmed event shape returned in a Result (spec.md
// §6.1: "events: [ {id, type, sequence} ]").
type EventRef struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Sequence int64  `json:"sequence"`
}

// ErrorDetail is one entry of a Result's errors list.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Meta carries the processing metadata of spec.md §6.1.
type Meta struct {
	ProcessedAt     int64  `json:"processedAt"`
	ProcessingTimeMs int64 `json:"processingTime"`
	IdempotencyKey  string `json:"idempotencyKey,omitempty"`
}

// Result is the uniform response envelope of spec.md §6.1: success and
// rejection share this shape, distinguished only by Success.
type Result struct {
	Success     bool          `json:"success"`
	Outcome     Outcome       `json:"outcome"`
	Events      []EventRef    `json:"events"`
	Affordances []Affordance  `json:"affordances,omitempty"`
	Errors      []ErrorDetail `json:"errors,omitempty"`
	Meta        Meta          `json:"meta"`
	// Data carries handler-specific result payload (e.g. a newly created
	// entity's id), surfaced to the caller outside the uniform envelope
	// fields.
	Data any `json:"data,omitempty"`
}

func eventRefs(events []domain.Event) []EventRef {
	refs := make([]EventRef, len(events))

	for i, e := range events {
		refs[i] = EventRef{ID: string(e.EventID), Type: e.Type, Sequence: e.Sequence}
	}

	return refs
}
