package intent

import "github.com/lerianstudio/eventledger/internal/domain"

// BuildRegistry assembles the full Intent Registry of spec.md §4.6. It is
// free of any wiring dependency beyond the package's own handlers: every
// handler reaches its collaborators through HandlerContext, which the
// Dispatcher assembles per call.
func BuildRegistry() *Registry {
	return NewRegistry(
		Definition{
			Name:                "entity:create",
			Category:            CategoryEntity,
			PayloadType:         CreateEntityPayload{},
			RequiredPermissions: []string{"create"},
			Resource:            "entity",
			Handler:             handleCreateEntity,
			Examples: []Example{
				{Description: "register a new organization", Payload: CreateEntityPayload{
					Kind:     domain.PartyOrganization,
					Identity: domain.Identity{Name: "Acme Corp"},
				}},
			},
		},
		Definition{
			Name:                "entity:rename",
			Category:            CategoryEntity,
			PayloadType:         RenameEntityPayload{},
			RequiredPermissions: []string{"rename"},
			Resource:            "entity",
			Handler:             handleRenameEntity,
		},
		Definition{
			Name:        "entity:get",
			Category:    CategoryQuery,
			PayloadType: GetEntityPayload{},
			Resource:    "entity",
			Handler:     handleGetEntity,
		},
		Definition{
			Name:                "agreement:propose",
			Category:            CategoryAgreement,
			PayloadType:         ProposeAgreementPayload{},
			RequiredPermissions: []string{"propose"},
			Resource:            "agreement",
			Handler:             handleProposeAgreement,
		},
		Definition{
			Name:                "agreement:consent",
			Category:            CategoryAgreement,
			PayloadType:         ConsentAgreementPayload{},
			RequiredPermissions: []string{"consent"},
			Resource:            "agreement",
			Handler:             handleConsentAgreement,
		},
		Definition{
			Name:                "agreement:terminate",
			Category:            CategoryAgreement,
			PayloadType:         TerminateAgreementPayload{},
			RequiredPermissions: []string{"terminate"},
			Resource:            "agreement",
			Handler:             handleTerminateAgreement,
		},
		Definition{
			Name:                "agreement:dispute:open",
			Category:            CategoryAgreement,
			PayloadType:         OpenDisputePayload{},
			RequiredPermissions: []string{"dispute"},
			Resource:            "agreement",
			Handler:             handleOpenDispute,
		},
		Definition{
			Name:                "agreement:dispute:resolve",
			Category:            CategoryAgreement,
			PayloadType:         ResolveDisputePayload{},
			RequiredPermissions: []string{"dispute"},
			Resource:            "agreement",
			Handler:             handleResolveDispute,
		},
		Definition{
			Name:        "agreement:get",
			Category:    CategoryQuery,
			PayloadType: GetAgreementPayload{},
			Resource:    "agreement",
			Handler:     handleGetAgreement,
		},
		Definition{
			Name:                "asset:register",
			Category:            CategoryAsset,
			PayloadType:         RegisterAssetPayload{},
			RequiredPermissions: []string{"register"},
			Resource:            "asset",
			Handler:             handleRegisterAsset,
		},
		Definition{
			Name:                "asset:changeStatus",
			Category:            CategoryAsset,
			PayloadType:         ChangeAssetStatusPayload{},
			RequiredPermissions: []string{"changeStatus"},
			Resource:            "asset",
			Handler:             handleChangeAssetStatus,
		},
		Definition{
			Name:        "asset:get",
			Category:    CategoryQuery,
			PayloadType: GetAssetPayload{},
			Resource:    "asset",
			Handler:     handleGetAsset,
		},
		Definition{
			Name:                "container:create",
			Category:            CategoryAsset,
			PayloadType:         CreateContainerPayload{},
			RequiredPermissions: []string{"create"},
			Resource:            "container",
			Handler:             handleCreateContainer,
		},
		Definition{
			Name:                "container:deposit",
			Category:            CategoryAsset,
			PayloadType:         DepositPayload{},
			RequiredPermissions: []string{"deposit"},
			Resource:            "container",
			Handler:             handleDeposit,
		},
		Definition{
			Name:                "container:withdraw",
			Category:            CategoryAsset,
			PayloadType:         WithdrawPayload{},
			RequiredPermissions: []string{"withdraw"},
			Resource:            "container",
			Handler:             handleWithdraw,
		},
		Definition{
			Name:                "container:transfer",
			Category:            CategoryAsset,
			PayloadType:         TransferPayload{},
			RequiredPermissions: []string{"transfer"},
			Resource:            "container",
			Handler:             handleTransfer,
		},
		Definition{
			Name:        "container:get",
			Category:    CategoryQuery,
			PayloadType: GetContainerPayload{},
			Resource:    "container",
			Handler:     handleGetContainer,
		},
		Definition{
			Name:                "apiKey:create",
			Category:            CategoryEntity,
			PayloadType:         CreateApiKeyPayload{},
			RequiredPermissions: []string{"create"},
			Resource:            "apiKey",
			Handler:             handleCreateApiKey,
		},
		Definition{
			Name:                "apiKey:revoke",
			Category:            CategoryEntity,
			PayloadType:         RevokeApiKeyPayload{},
			RequiredPermissions: []string{"revoke"},
			Resource:            "apiKey",
			Handler:             handleRevokeApiKey,
		},
		Definition{
			Name:        "realm:list",
			Category:    CategoryQuery,
			Handler:     handleListRealms,
		},
		Definition{
			Name:                "realm:create",
			Category:            CategoryMeta,
			PayloadType:         CreateRealmPayload{},
			RequiredPermissions: []string{"create"},
			Resource:            "realm",
			Handler:             handleCreateRealm,
			Examples: []Example{
				{Description: "bootstrap a tenant realm", Payload: CreateRealmPayload{Name: "Acme"}},
			},
		},
	)
}
