// Package agreement implements the Agreement Type Registry and the
// lifecycle state machine of spec.md §4.3: the polymorphic relationship
// type that is the unit of authority for the Authorization Engine.
package agreement

import (
	"context"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
)

// QuorumKind distinguishes the consent-counting rules an agreement type
// may declare (spec.md §9 Open Question 3: "the spec requires the
// registry to carry an explicit quorum descriptor per type").
type QuorumKind string

const (
	// QuorumAllImplicit treats every named party as consented at
	// proposal time; no PartyConsented events are required.
	QuorumAllImplicit QuorumKind = "AllImplicit"
	// QuorumAllExplicit requires every named party to consent.
	QuorumAllExplicit QuorumKind = "AllExplicit"
	// QuorumSubset requires at least MinConsents distinct parties to
	// consent.
	QuorumSubset QuorumKind = "Subset"
)

// Quorum describes how many, and which, consents activate an agreement.
type Quorum struct {
	Kind        QuorumKind
	MinConsents int // only meaningful for QuorumSubset
}

// Satisfied reports whether the given agreement's recorded consents meet
// this quorum.
func (q Quorum) Satisfied(a domain.Agreement) bool {
	switch q.Kind {
	case QuorumAllImplicit:
		return true
	case QuorumAllExplicit:
		for _, p := range a.Parties {
			if !p.HasConsented() {
				return false
			}
		}

		return true
	case QuorumSubset:
		consented := 0

		for _, p := range a.Parties {
			if p.HasConsented() {
				consented++
			}
		}

		return consented >= q.MinConsents
	default:
		return false
	}
}

// RoleRequirement names an allowed party role and the consent methods it
// may use to satisfy quorum (e.g. "signature", "api-confirm").
type RoleRequirement struct {
	Role             string
	ConsentMethods   []string
}

// Hooks are pure functions of post-fold agreement state that may emit
// further Candidates, sharing the triggering command's causation id.
// They must not perform I/O beyond what HookContext exposes.
type Hooks struct {
	OnProposed  func(ctx context.Context, hctx HookContext, a domain.Agreement) ([]domain.Candidate, error)
	OnActivated func(ctx context.Context, hctx HookContext, a domain.Agreement) ([]domain.Candidate, error)
	OnTerminated func(ctx context.Context, hctx HookContext, a domain.Agreement) ([]domain.Candidate, error)
}

// HookContext is the narrow surface a hook may use to derive identifiers
// it did not already have (e.g. allocating the id of a ContainerCreated
// it wants to emit). It deliberately excludes direct event store access:
// hooks return Candidates, they do not append them.
type HookContext interface {
	NewID() string
}

// TypeDefinition is one entry of the registry (spec.md §4.3 "Registry").
type TypeDefinition struct {
	Name             string
	Roles            []RoleRequirement
	Quorum           Quorum
	Permissions      map[string][]string // role -> granted permission strings
	Hooks            Hooks
	ValidatePayload  func(payload domain.AgreementProposedPayload) error
}

// Registry maps agreementType name to its definition.
type Registry struct {
	defs map[string]TypeDefinition
}

// NewRegistry builds a Registry from a set of type definitions.
func NewRegistry(defs ...TypeDefinition) *Registry {
	r := &Registry{defs: make(map[string]TypeDefinition, len(defs))}

	for _, d := range defs {
		r.defs[d.Name] = d
	}

	return r
}

// Lookup returns the definition for agreementType.
func (r *Registry) Lookup(agreementType string) (TypeDefinition, error) {
	def, ok := r.defs[agreementType]
	if !ok {
		return TypeDefinition{}, apperr.NotFound("AgreementTypeDefinition", agreementType)
	}

	return def, nil
}

// PermissionsFor returns the permission strings the given role is
// granted under this type definition.
func (d TypeDefinition) PermissionsFor(role string) []string {
	return d.Permissions[role]
}

// RoleAllowed reports whether role is one of the type's allowed roles.
func (d TypeDefinition) RoleAllowed(role string) bool {
	for _, r := range d.Roles {
		if r.Role == role {
			return true
		}
	}

	return false
}

// ConsentMethodAllowed reports whether method is an accepted consent
// method for role under this type definition.
func (d TypeDefinition) ConsentMethodAllowed(role, method string) bool {
	for _, r := range d.Roles {
		if r.Role != role {
			continue
		}

		for _, m := range r.ConsentMethods {
			if m == method {
				return true
			}
		}
	}

	return false
}
