// Package intent implements the Intent Registry & Dispatcher of spec.md
// §4.6: the sole write path, routing every client-expressed desire
// through resolve -> validate -> authorize -> invoke -> collect.
package intent

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/lerianstudio/eventledger/internal/agreement"
	"github.com/lerianstudio/eventledger/internal/authz"
	"github.com/lerianstudio/eventledger/internal/container"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore"
	"github.com/lerianstudio/eventledger/internal/platform/clock"
	"github.com/lerianstudio/eventledger/internal/platform/log"
	"github.com/lerianstudio/eventledger/internal/projection"
)

// Category is one of the six intent categories of spec.md §4.6.
type Category string

const (
	CategoryEntity    Category = "Entity"
	CategoryAgreement Category = "Agreement"
	CategoryAsset     Category = "Asset"
	CategoryWorkflow  Category = "Workflow"
	CategoryQuery     Category = "Query"
	CategoryMeta      Category = "Meta"
)

// Affordance is one entry of a successful result's HATEOAS-style hint
// list (spec.md §4.6 "Affordances"). Hints only: the server re-checks
// authorization on every call regardless of what it advertised here.
type Affordance struct {
	Intent      string   `json:"intent"`
	Description string   `json:"description"`
	Required    []string `json:"required,omitempty"`
}

// Example is a documented sample payload, surfaced to clients/tooling.
type Example struct {
	Description string `json:"description"`
	Payload     any    `json:"payload"`
}

// HandlerFunc executes one intent given its decoded, validated payload.
// It returns the business outcome and the affordances to surface for
// this specific result; the dispatcher assembles the rest of the
// envelope.
type HandlerFunc func(ctx context.Context, hctx *HandlerContext, payload any) (Outcome, []Affordance, error)

// Definition is one entry of the Intent Registry (spec.md §4.6 "Intent
// definition").
type Definition struct {
	Name                string
	Category            Category
	PayloadType         any // zero value of the concrete payload struct, used for schema validation
	RequiredPermissions []string
	// Resource is the ABAC resource name checked for each of
	// RequiredPermissions (e.g. "agreement" for agreement:propose).
	Resource string
	Handler  HandlerFunc
	Examples []Example
}

// Registry maps intent name to its Definition.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry builds a Registry from a set of definitions.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{defs: make(map[string]Definition, len(defs))}

	for _, d := range defs {
		r.defs[d.Name] = d
	}

	return r
}

// Register adds or replaces one definition, used by bootstrap wiring to
// compose handlers that need a fully-constructed dispatcher (self-
// reference) before they can be built.
func (r *Registry) Register(d Definition) { r.defs[d.Name] = d }

// Lookup returns the definition for name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// HandlerContext is the concrete replacement for the source's loosely-
// typed context bag (spec.md §9 "Dynamic, untyped handler context"):
// every dependency a handler may use, plus a self-reference for nested
// intent dispatch.
type HandlerContext struct {
	Store       eventstore.Store
	Agreements  *agreement.Lifecycle
	AgreementRegistry *agreement.Registry
	Containers  *container.Manager
	Authz       *authz.Engine
	Clock       clock.Clock
	Logger      log.Logger

	// Realms and ApiKeys back the Query-category intents; they are the
	// projections read models, never the log-scan fallback (spec.md §9:
	// "these MUST be served from projections").
	Realms  *projection.RealmsProjection
	ApiKeys *projection.ApiKeysProjection

	Actor        domain.Actor
	Causation    *domain.Causation
	Now          int64

	// Dispatch lets a handler invoke another intent recursively (spec.md
	// §4.6 "Nested intents"), carrying the outer actor or an explicit
	// System actor.
	Dispatch func(ctx context.Context, req Request) (Result, error)

	// lastEvents is how a handler reports the events it appended back to
	// the dispatcher, which folds them into the outer Result.events list
	// alongside the audit events the dispatcher itself appended.
	lastEvents []domain.Event

	// resultData lets a handler surface a value that does not belong in
	// the uniform envelope (e.g. a freshly minted API key's one-time
	// plaintext) through Result.Data.
	resultData any
}

// validate is the shared validator.v10 instance every Definition's
// PayloadType is checked against.
var validate = validator.New(validator.WithRequiredStructEnabled())
