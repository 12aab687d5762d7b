package agreement

import (
	"context"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

// DefaultRegistry builds the registry of agreement types this ledger
// ships with. Bootstrap and the intent handlers both depend on the
// "tenant-license" type existing with these exact semantics (spec.md §8
// scenario 1: its activation hook is what produces the realm container).
func DefaultRegistry() *Registry {
	return NewRegistry(
		TypeDefinition{
			Name: "tenant-license",
			Roles: []RoleRequirement{
				{Role: "licensor", ConsentMethods: []string{"system"}},
				{Role: "licensee", ConsentMethods: []string{"system", "signature"}},
			},
			Quorum: Quorum{Kind: QuorumSubset, MinConsents: 1},
			Permissions: map[string][]string{
				"licensee": {
					"entity:*", "agreement:propose", "agreement:consent",
					"asset:*", "container:*", "apiKey:*", "realm:read",
				},
			},
			Hooks: Hooks{
				OnActivated: onTenantLicenseActivated,
			},
		},
		TypeDefinition{
			Name: "employment",
			Roles: []RoleRequirement{
				{Role: "employer", ConsentMethods: []string{"system", "signature"}},
				{Role: "employee", ConsentMethods: []string{"signature"}},
			},
			Quorum: Quorum{Kind: QuorumAllExplicit},
			Permissions: map[string][]string{
				"employee": {"asset:read", "container:deposit", "container:withdraw"},
			},
		},
		TypeDefinition{
			Name: "custody",
			Roles: []RoleRequirement{
				{Role: "custodian", ConsentMethods: []string{"system", "signature"}},
				{Role: "beneficiary", ConsentMethods: []string{"signature"}},
			},
			Quorum: Quorum{Kind: QuorumSubset, MinConsents: 1},
			Permissions: map[string][]string{
				"custodian":   {"container:*", "asset:*"},
				"beneficiary": {"container:withdraw", "asset:read"},
			},
		},
	)
}

// onTenantLicenseActivated implements spec.md §8 scenario 1's final
// step: activating a tenant-license agreement creates the tenant's
// realm container, gated by this same agreement.
func onTenantLicenseActivated(_ context.Context, hctx HookContext, a domain.Agreement) ([]domain.Candidate, error) {
	realmID := id.ID(hctx.NewID())

	var licensee id.ID

	for _, p := range a.Parties {
		if p.Role == "licensee" {
			licensee = p.EntityID
		}
	}

	return []domain.Candidate{
		{
			AggregateType: domain.AggregateContainer,
			AggregateID:   realmID,
			Type:          domain.EventContainerCreated,
			Payload: domain.ContainerCreatedPayload{
				RealmID:              realmID,
				Name:                 realmName(a),
				ContainerType:        "Realm",
				Physics: domain.Physics{
					Fungibility:  domain.FungibilityVersioned,
					Topology:     domain.TopologyObjects,
					Permeability: domain.PermeabilityGated,
					Execution:    domain.ExecutionSandboxed,
				},
				GoverningAgreementID: &a.ID,
				OwnerID:              &licensee,
			},
		},
	}, nil
}

func realmName(a domain.Agreement) string {
	if name, ok := a.Terms["realmName"].(string); ok && name != "" {
		return name
	}

	return "realm-" + string(a.ID)
}
