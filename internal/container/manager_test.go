package container_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerianstudio/eventledger/internal/container"
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/eventstore/memory"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

func createContainer(t *testing.T, store *memory.Store, physics domain.Physics, governing *id.ID) id.ID {
	t.Helper()

	containerID := id.New()

	_, err := store.Append(context.Background(), domain.Candidate{
		AggregateType:    domain.AggregateContainer,
		AggregateID:      containerID,
		AggregateVersion: 0,
		Type:             domain.EventContainerCreated,
		Actor:            domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
		Payload: domain.ContainerCreatedPayload{
			RealmID:              id.New(),
			Name:                 "c",
			ContainerType:        "Wallet",
			Physics:              physics,
			GoverningAgreementID: governing,
		},
	}, 0)
	require.NoError(t, err)

	return containerID
}

// TestManager_DepositThenWithdrawConserves proves that for a
// Strict-fungibility container, deposited minus withdrawn never goes
// negative, and the balance after paired deposit/withdraw equals the
// arithmetic difference exactly.
func TestManager_DepositThenWithdrawConserves(t *testing.T) {
	store := memory.New()
	m := container.NewManager(store)

	containerID := createContainer(t, store, domain.Physics{
		Fungibility:  domain.FungibilityStrict,
		Topology:     domain.TopologyValues,
		Permeability: domain.PermeabilityOpen,
		Execution:    domain.ExecutionDisabled,
	}, nil)

	ctx := context.Background()
	actor := domain.Actor{Type: domain.ActorSystem, SystemID: "test"}

	state, _, err := m.Deposit(ctx, actor, container.DepositRequest{
		ContainerID: string(containerID),
		ItemID:      "usd",
		ItemType:    "value",
		Quantity:    decimal.NewFromInt(100),
	}, nil, 1000)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(state.Balance("usd")))

	state, _, err = m.Withdraw(ctx, actor, string(containerID), "usd", decimal.NewFromInt(40), nil, nil, 1001)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(60).Equal(state.Balance("usd")))

	_, _, err = m.Withdraw(ctx, actor, string(containerID), "usd", decimal.NewFromInt(1000), nil, nil, 1002)
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodePhysicsViolation, appErr.Code)

	evs, err := store.GetByAggregate(ctx, domain.AggregateContainer, string(containerID))
	require.NoError(t, err)
	assert.Equal(t, 60, sumDeposited(evs)-sumWithdrawn(evs))
}

func sumDeposited(evs []domain.Event) int {
	total := 0
	for _, e := range evs {
		if p, ok := e.Payload.(domain.ContainerItemDepositedPayload); ok {
			total += int(p.Quantity.IntPart())
		}
	}
	return total
}

func sumWithdrawn(evs []domain.Event) int {
	total := 0
	for _, e := range evs {
		if p, ok := e.Payload.(domain.ContainerItemWithdrawnPayload); ok {
			total += int(p.Quantity.IntPart())
		}
	}
	return total
}

// TestManager_SealedContainerRejectsDepositWithoutGoverningAgreement
// proves a Sealed container rejects a deposit lacking a governing
// agreement, recording exactly one DepositAttempted{Rejected} event and
// leaving the item set unchanged.
func TestManager_SealedContainerRejectsDepositWithoutGoverningAgreement(t *testing.T) {
	store := memory.New()
	m := container.NewManager(store)

	containerID := createContainer(t, store, domain.Physics{
		Fungibility:  domain.FungibilityStrict,
		Topology:     domain.TopologyValues,
		Permeability: domain.PermeabilitySealed,
		Execution:    domain.ExecutionDisabled,
	}, nil)

	ctx := context.Background()
	actor := domain.Actor{Type: domain.ActorSystem, SystemID: "test"}

	state, events, err := m.Deposit(ctx, actor, container.DepositRequest{
		ContainerID: string(containerID),
		ItemID:      "usd",
		ItemType:    "value",
		Quantity:    decimal.NewFromInt(50),
	}, nil, 1000)

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodePhysicsViolation, appErr.Code)

	require.Len(t, events, 1)
	attempt, ok := events[0].Payload.(domain.DepositAttemptedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.AttemptRejected, attempt.Result)
	assert.Equal(t, "PERMEABILITY_VIOLATION", attempt.Reason)

	assert.True(t, state.Balance("usd").IsZero())

	evs, err := store.GetByAggregate(ctx, domain.AggregateContainer, string(containerID))
	require.NoError(t, err)
	require.Len(t, evs, 2) // ContainerCreated, DepositAttempted — no ContainerItemDeposited
	assert.Equal(t, domain.EventDepositAttempted, evs[1].Type)
}

// TestManager_SealedContainerAcceptsWithMatchingGoverningAgreement proves
// the Sealed rejection is specific to a missing/mismatched governing
// agreement, not a blanket denial.
func TestManager_SealedContainerAcceptsWithMatchingGoverningAgreement(t *testing.T) {
	store := memory.New()

	agreementID := id.New()
	_, err := store.Append(context.Background(), domain.Candidate{
		AggregateType:    domain.AggregateAgreement,
		AggregateID:      agreementID,
		AggregateVersion: 0,
		Type:             domain.EventAgreementProposed,
		Actor:            domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
		Payload: domain.AgreementProposedPayload{
			AgreementType: "custody",
			Parties:       []domain.PartyRef{{EntityID: id.New(), Role: "custodian"}},
		},
	}, 0)
	require.NoError(t, err)

	_, err = store.Append(context.Background(), domain.Candidate{
		AggregateType:    domain.AggregateAgreement,
		AggregateID:      agreementID,
		AggregateVersion: 1,
		Type:             domain.EventAgreementActivated,
		Actor:            domain.Actor{Type: domain.ActorSystem, SystemID: "test"},
		Payload:          domain.AgreementActivatedPayload{},
	}, 1)
	require.NoError(t, err)

	agreementIDStr := string(agreementID)
	containerID := createContainer(t, store, domain.Physics{
		Fungibility:  domain.FungibilityStrict,
		Topology:     domain.TopologyValues,
		Permeability: domain.PermeabilitySealed,
		Execution:    domain.ExecutionDisabled,
	}, &agreementID)

	m := container.NewManager(store)

	state, _, err := m.Deposit(context.Background(), domain.Actor{Type: domain.ActorSystem, SystemID: "test"}, container.DepositRequest{
		ContainerID:          string(containerID),
		ItemID:               "usd",
		ItemType:             "value",
		Quantity:             decimal.NewFromInt(10),
		GoverningAgreementID: &agreementIDStr,
	}, nil, 1000)

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(state.Balance("usd")))
}
