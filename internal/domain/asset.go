package domain

import (
	"github.com/lerianstudio/eventledger/internal/platform/id"
	"github.com/shopspring/decimal"
)

// AssetStatus mirrors the plain status strings the teacher uses on
// mmodel.Status (e.g. "ACTIVE"), kept as a typed string here.
type AssetStatus string

const (
	AssetStatusActive   AssetStatus = "ACTIVE"
	AssetStatusInactive AssetStatus = "INACTIVE"
)

// Asset is the folded state of an Asset aggregate (spec.md §3.1).
type Asset struct {
	ID             id.ID           `json:"id"`
	AssetType      string          `json:"assetType"`
	OwnerID        *id.ID          `json:"ownerId,omitempty"`
	Properties     map[string]any  `json:"properties,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	EstablishedBy  id.ID           `json:"establishedBy"`
	Status         AssetStatus     `json:"status"`
	Version        int             `json:"version"`
}

// AssetRegisteredPayload is the version-1 event payload.
type AssetRegisteredPayload struct {
	AssetType     string          `json:"assetType"`
	OwnerID       *id.ID          `json:"ownerId,omitempty"`
	Properties    map[string]any  `json:"properties,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	EstablishedBy id.ID           `json:"establishedBy"`
}

// AssetStatusChangedPayload transitions Status.
type AssetStatusChangedPayload struct {
	Status AssetStatus `json:"status"`
}

const (
	EventAssetRegistered     = "AssetRegistered"
	EventAssetStatusChanged  = "AssetStatusChanged"
)

// AssetCanTransition reports whether target is a legal status for an asset
// currently at from. The asset lifecycle has only two states, so the only
// illegal transition is a no-op request to the status the asset already
// holds.
func AssetCanTransition(from, target AssetStatus) bool {
	return from != target
}
