package rehydrate

import (
	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

// PartyFolder folds a Party's event stream.
var PartyFolder = NewFolder(
	func(aggregateID string) domain.Party {
		return domain.Party{ID: id.ID(aggregateID)}
	},
	func(state domain.Party, e domain.Event) domain.Party {
		switch p := e.Payload.(type) {
		case domain.EntityCreatedPayload:
			state.Kind = p.Kind
			state.Identity = p.Identity
			state.RealmID = p.RealmID
			state.AutonomyLevel = p.AutonomyLevel
			state.GuardianID = p.GuardianID
			state.CreatedAt = e.Timestamp
		case domain.EntityRenamedPayload:
			state.Identity.Name = p.Name
		}

		state.Version = e.AggregateVersion

		return state
	},
)

// AgreementFolder folds an Agreement's event stream.
var AgreementFolder = NewFolder(
	func(aggregateID string) domain.Agreement {
		return domain.Agreement{ID: id.ID(aggregateID)}
	},
	func(state domain.Agreement, e domain.Event) domain.Agreement {
		switch p := e.Payload.(type) {
		case domain.AgreementProposedPayload:
			state.AgreementType = p.AgreementType
			state.Parties = p.Parties
			state.Terms = p.Terms
			state.AssetID = p.AssetID
			state.Validity = p.Validity
			state.ParentAgreementID = p.ParentAgreementID
			state.RealmID = p.RealmID
			state.Status = domain.AgreementProposed
		case domain.PartyConsentedPayload:
			for i := range state.Parties {
				if state.Parties[i].EntityID == p.EntityID {
					state.Parties[i].Consents = append(state.Parties[i].Consents, p.Method)
				}
			}
		case domain.PartyRejectedPayload:
			state.Status = domain.AgreementTerminated
		case domain.AgreementActivatedPayload:
			state.Status = domain.AgreementActive
		case domain.AgreementTerminatedPayload:
			state.Status = domain.AgreementTerminated
		case domain.DisputeOpenedPayload:
			state.Status = domain.AgreementDisputed
		case domain.DisputeResolvedPayload:
			state.Status = p.Resolution
		}

		state.Version = e.AggregateVersion

		return state
	},
)

// AssetFolder folds an Asset's event stream.
var AssetFolder = NewFolder(
	func(aggregateID string) domain.Asset {
		return domain.Asset{ID: id.ID(aggregateID)}
	},
	func(state domain.Asset, e domain.Event) domain.Asset {
		switch p := e.Payload.(type) {
		case domain.AssetRegisteredPayload:
			state.AssetType = p.AssetType
			state.OwnerID = p.OwnerID
			state.Properties = p.Properties
			state.Quantity = p.Quantity
			state.EstablishedBy = p.EstablishedBy
			state.Status = domain.AssetStatusActive
		case domain.AssetStatusChangedPayload:
			state.Status = p.Status
		}

		state.Version = e.AggregateVersion

		return state
	},
)

// ContainerFolder folds a Container's event stream.
var ContainerFolder = NewFolder(
	func(aggregateID string) domain.Container {
		return domain.Container{ID: id.ID(aggregateID), Items: map[string]domain.Item{}}
	},
	func(state domain.Container, e domain.Event) domain.Container {
		switch p := e.Payload.(type) {
		case domain.ContainerCreatedPayload:
			state.RealmID = p.RealmID
			state.Name = p.Name
			state.ContainerType = p.ContainerType
			state.Physics = p.Physics
			state.GoverningAgreementID = p.GoverningAgreementID
			state.OwnerID = p.OwnerID
			state.ParentContainerID = p.ParentContainerID
		case domain.ContainerItemDepositedPayload:
			item := state.Items[p.ItemID]
			item.ItemType = p.ItemType
			item.Metadata = p.Metadata
			item.Quantity = item.Quantity.Add(p.Quantity)
			state.Items[p.ItemID] = item
		case domain.ContainerItemWithdrawnPayload:
			item := state.Items[p.ItemID]
			item.Quantity = item.Quantity.Sub(p.Quantity)
			state.Items[p.ItemID] = item
		}

		state.Version = e.AggregateVersion

		return state
	},
)

// RoleFromAgreement derives the Role one party holds under an agreement.
// Unlike the folders above it does not fold an aggregate's event stream;
// it maps an already folded Agreement and one of its parties to a Role.
func RoleFromAgreement(agreement domain.Agreement, party domain.PartyRef) domain.Role {
	return domain.Role{
		EntityID:    party.EntityID,
		AgreementID: agreement.ID,
		RoleName:    party.Role,
		RealmID:     agreement.RealmID,
	}
}

// ApiKeyFolder folds an ApiKey's event stream.
var ApiKeyFolder = NewFolder(
	func(aggregateID string) domain.ApiKey {
		return domain.ApiKey{ID: id.ID(aggregateID)}
	},
	func(state domain.ApiKey, e domain.Event) domain.ApiKey {
		switch p := e.Payload.(type) {
		case domain.ApiKeyCreatedPayload:
			state.KeyHash = p.KeyHash
			state.EntityID = p.EntityID
			state.RealmID = p.RealmID
			state.Scopes = p.Scopes
			state.ExpiresAt = p.ExpiresAt
			state.EstablishedBy = p.EstablishedBy
			state.Revoked = false
		case domain.ApiKeyRevokedPayload:
			state.Revoked = true
			state.RevokedReason = p.Reason
		}

		state.Version = e.AggregateVersion

		return state
	},
)
