package agreement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerianstudio/eventledger/internal/agreement"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore/memory"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

// TestLifecycle_SubsetQuorumActivatesOnFirstConsent proves a
// Subset(MinConsents=1) agreement type stays Proposed until one consent
// lands, then activates and runs its OnActivated hook.
func TestLifecycle_SubsetQuorumActivatesOnFirstConsent(t *testing.T) {
	store := memory.New()
	lc := agreement.NewLifecycle(store, agreement.DefaultRegistry())
	ctx := context.Background()
	actor := domain.Actor{Type: domain.ActorSystem, SystemID: "test"}

	licensor := id.New()
	licensee := id.New()
	agreementID := id.New()

	state, _, err := lc.Propose(ctx, actor, string(agreementID), domain.AgreementProposedPayload{
		AgreementType: "tenant-license",
		Parties: []domain.PartyRef{
			{EntityID: licensor, Role: "licensor"},
			{EntityID: licensee, Role: "licensee"},
		},
		Validity: domain.Validity{EffectiveFrom: 0},
	}, nil, 1000)
	require.NoError(t, err)
	assert.Equal(t, domain.AgreementProposed, state.Status)

	state, emitted, err := lc.Consent(ctx, actor, string(agreementID), licensee, "system", nil, 1001)
	require.NoError(t, err)
	assert.Equal(t, domain.AgreementActive, state.Status)

	var sawContainerCreated bool

	for _, e := range emitted {
		if e.Type == domain.EventContainerCreated {
			sawContainerCreated = true
		}
	}

	assert.True(t, sawContainerCreated, "activating a tenant-license agreement should create its realm container")
}

// TestLifecycle_AllExplicitQuorumRequiresEveryParty proves an
// AllExplicit agreement type stays Proposed until every named party has
// consented, and activates only once the last one does.
func TestLifecycle_AllExplicitQuorumRequiresEveryParty(t *testing.T) {
	store := memory.New()
	lc := agreement.NewLifecycle(store, agreement.DefaultRegistry())
	ctx := context.Background()
	actor := domain.Actor{Type: domain.ActorSystem, SystemID: "test"}

	employer := id.New()
	employee := id.New()
	agreementID := id.New()

	_, _, err := lc.Propose(ctx, actor, string(agreementID), domain.AgreementProposedPayload{
		AgreementType: "employment",
		Parties: []domain.PartyRef{
			{EntityID: employer, Role: "employer"},
			{EntityID: employee, Role: "employee"},
		},
		Validity: domain.Validity{EffectiveFrom: 0},
	}, nil, 1000)
	require.NoError(t, err)

	state, _, err := lc.Consent(ctx, actor, string(agreementID), employer, "system", nil, 1001)
	require.NoError(t, err)
	assert.Equal(t, domain.AgreementProposed, state.Status, "one of two required consents must not activate")

	state, _, err = lc.Consent(ctx, actor, string(agreementID), employee, "signature", nil, 1002)
	require.NoError(t, err)
	assert.Equal(t, domain.AgreementActive, state.Status)
}

// TestLifecycle_TerminateRejectsNonActiveAgreement proves Terminate only
// applies to an Active agreement; attempting it from Proposed is an
// illegal transition rather than a silent no-op.
func TestLifecycle_TerminateRejectsNonActiveAgreement(t *testing.T) {
	store := memory.New()
	lc := agreement.NewLifecycle(store, agreement.DefaultRegistry())
	ctx := context.Background()
	actor := domain.Actor{Type: domain.ActorSystem, SystemID: "test"}

	agreementID := id.New()

	_, _, err := lc.Propose(ctx, actor, string(agreementID), domain.AgreementProposedPayload{
		AgreementType: "custody",
		Parties: []domain.PartyRef{
			{EntityID: id.New(), Role: "custodian"},
			{EntityID: id.New(), Role: "beneficiary"},
		},
		Validity: domain.Validity{EffectiveFrom: 0},
	}, nil, 1000)
	require.NoError(t, err)

	_, _, err = lc.Terminate(ctx, actor, string(agreementID), "changed my mind", nil, 1001)
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeAgreementLifecycle, appErr.Code)
}

// TestLifecycle_DisputeOpenThenResolveReturnsToActive proves the
// Active<->Disputed round trip: opening a dispute moves an Active
// agreement to Disputed, and resolving it back to Active restores the
// prior status.
func TestLifecycle_DisputeOpenThenResolveReturnsToActive(t *testing.T) {
	store := memory.New()
	lc := agreement.NewLifecycle(store, agreement.DefaultRegistry())
	ctx := context.Background()
	actor := domain.Actor{Type: domain.ActorSystem, SystemID: "test"}

	custodian := id.New()
	agreementID := id.New()

	_, _, err := lc.Propose(ctx, actor, string(agreementID), domain.AgreementProposedPayload{
		AgreementType: "custody",
		Parties: []domain.PartyRef{
			{EntityID: custodian, Role: "custodian"},
			{EntityID: id.New(), Role: "beneficiary"},
		},
		Validity: domain.Validity{EffectiveFrom: 0},
	}, nil, 1000)
	require.NoError(t, err)

	state, _, err := lc.Consent(ctx, actor, string(agreementID), custodian, "system", nil, 1001)
	require.NoError(t, err)
	require.Equal(t, domain.AgreementActive, state.Status)

	state, _, err = lc.OpenDispute(ctx, actor, string(agreementID), "withdrawal dispute", nil, 1002)
	require.NoError(t, err)
	assert.Equal(t, domain.AgreementDisputed, state.Status)

	state, _, err = lc.ResolveDispute(ctx, actor, string(agreementID), domain.AgreementActive, "resolved in favor of custodian", nil, 1003)
	require.NoError(t, err)
	assert.Equal(t, domain.AgreementActive, state.Status)
}

// TestLifecycle_DisputeCanResolveToTerminated proves a dispute's
// resolution can also end the agreement outright.
func TestLifecycle_DisputeCanResolveToTerminated(t *testing.T) {
	store := memory.New()
	lc := agreement.NewLifecycle(store, agreement.DefaultRegistry())
	ctx := context.Background()
	actor := domain.Actor{Type: domain.ActorSystem, SystemID: "test"}

	custodian := id.New()
	agreementID := id.New()

	_, _, err := lc.Propose(ctx, actor, string(agreementID), domain.AgreementProposedPayload{
		AgreementType: "custody",
		Parties: []domain.PartyRef{
			{EntityID: custodian, Role: "custodian"},
			{EntityID: id.New(), Role: "beneficiary"},
		},
		Validity: domain.Validity{EffectiveFrom: 0},
	}, nil, 1000)
	require.NoError(t, err)

	_, _, err = lc.Consent(ctx, actor, string(agreementID), custodian, "system", nil, 1001)
	require.NoError(t, err)

	_, _, err = lc.OpenDispute(ctx, actor, string(agreementID), "irreconcilable", nil, 1002)
	require.NoError(t, err)

	state, _, err := lc.ResolveDispute(ctx, actor, string(agreementID), domain.AgreementTerminated, "terminated by arbitration", nil, 1003)
	require.NoError(t, err)
	assert.Equal(t, domain.AgreementTerminated, state.Status)
}
