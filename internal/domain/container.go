package domain

import (
	"github.com/lerianstudio/eventledger/internal/platform/id"
	"github.com/shopspring/decimal"
)

// Fungibility is one axis of container physics (spec.md §4.4).
type Fungibility string

const (
	FungibilityStrict    Fungibility = "Strict"
	FungibilityVersioned Fungibility = "Versioned"
	FungibilityTransient Fungibility = "Transient"
)

// Topology constrains what may be deposited.
type Topology string

const (
	TopologyValues   Topology = "Values"
	TopologyObjects  Topology = "Objects"
	TopologySubjects Topology = "Subjects"
	TopologyLinks    Topology = "Links"
)

// Permeability gates entry/exit.
type Permeability string

const (
	PermeabilitySealed        Permeability = "Sealed"
	PermeabilityGated         Permeability = "Gated"
	PermeabilityCollaborative Permeability = "Collaborative"
	PermeabilityOpen          Permeability = "Open"
)

// Execution states whether code may run inside the container.
type Execution string

const (
	ExecutionDisabled  Execution = "Disabled"
	ExecutionSandboxed Execution = "Sandboxed"
	ExecutionFull      Execution = "Full"
)

// Physics bundles the four axes of spec.md §4.4's table.
type Physics struct {
	Fungibility  Fungibility  `json:"fungibility"`
	Topology     Topology     `json:"topology"`
	Permeability Permeability `json:"permeability"`
	Execution    Execution    `json:"execution"`
}

// Item is one line of a container's contents (a deposited asset unit).
type Item struct {
	ItemType string          `json:"itemType"`
	Quantity decimal.Decimal `json:"quantity"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

// Container is the folded state of a Container aggregate (spec.md §3.1).
type Container struct {
	ID                   id.ID           `json:"id"`
	RealmID              id.ID           `json:"realmId"`
	Name                 string          `json:"name"`
	ContainerType        string          `json:"containerType"`
	Physics              Physics         `json:"physics"`
	GoverningAgreementID *id.ID          `json:"governanceAgreementId,omitempty"`
	OwnerID              *id.ID          `json:"ownerId,omitempty"`
	Items                map[string]Item `json:"items"`
	ParentContainerID    *id.ID          `json:"parentContainerId,omitempty"`
	Version              int             `json:"version"`
}

// Balance returns the current quantity of itemID, zero if absent.
func (c Container) Balance(itemID string) decimal.Decimal {
	if it, ok := c.Items[itemID]; ok {
		return it.Quantity
	}

	return decimal.Zero
}

// ContainerCreatedPayload is the version-1 event payload.
type ContainerCreatedPayload struct {
	RealmID              id.ID   `json:"realmId"`
	Name                 string  `json:"name"`
	ContainerType        string  `json:"containerType"`
	Physics              Physics `json:"physics"`
	GoverningAgreementID *id.ID  `json:"governanceAgreementId,omitempty"`
	OwnerID              *id.ID  `json:"ownerId,omitempty"`
	ParentContainerID    *id.ID  `json:"parentContainerId,omitempty"`
}

// ContainerItemDepositedPayload / WithdrawnPayload mutate Items.
type ContainerItemDepositedPayload struct {
	ItemID               string          `json:"itemId"`
	ItemType             string          `json:"itemType"`
	Quantity             decimal.Decimal `json:"quantity"`
	Metadata             map[string]any  `json:"metadata,omitempty"`
	GoverningAgreementID *id.ID          `json:"governanceAgreementId,omitempty"`
}

type ContainerItemWithdrawnPayload struct {
	ItemID               string          `json:"itemId"`
	Quantity             decimal.Decimal `json:"quantity"`
	GoverningAgreementID *id.ID          `json:"governanceAgreementId,omitempty"`
}

// DepositAttemptResult / DepositAttemptedPayload implement the auditable
// rejection trail of spec.md §7 ("<Operation>Rejected" events).
type DepositAttemptResult string

const (
	AttemptAccepted DepositAttemptResult = "Accepted"
	AttemptRejected DepositAttemptResult = "Rejected"
)

type DepositAttemptedPayload struct {
	ItemID   string               `json:"itemId"`
	Quantity decimal.Decimal      `json:"quantity"`
	Result   DepositAttemptResult `json:"result"`
	Reason   string               `json:"reason,omitempty"`
}

// TransferFailedPayload is the compensating event of §4.4 step 6.
type TransferFailedPayload struct {
	SourceID id.ID  `json:"sourceId"`
	DestID   id.ID  `json:"destId"`
	ItemID   string `json:"itemId"`
	Reason   string `json:"reason"`
	Stage    string `json:"stage"`
}

const (
	EventContainerCreated        = "ContainerCreated"
	EventContainerItemDeposited  = "ContainerItemDeposited"
	EventContainerItemWithdrawn  = "ContainerItemWithdrawn"
	EventDepositAttempted        = "DepositAttempted"
	EventTransferFailed          = "TransferFailed"
)
