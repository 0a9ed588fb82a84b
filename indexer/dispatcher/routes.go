package dispatcher

import (
	"context"
	"sort"

	"github.com/assetkit/assetindexer/indexer/handler"
	"github.com/assetkit/assetindexer/types"
)

// Route identifies a handler by the data source of the emitter and the event name.
type Route struct {
	Source string
	Name   string
}

func (r Route) String() string {
	return r.Source + "." + r.Name
}

type boundFunc func(ctx context.Context, hc *handler.Context) error

// bind decodes the event params into P before calling fn.
func bind[P any](fn func(context.Context, *handler.Context, P) error) boundFunc {
	return func(ctx context.Context, hc *handler.Context) error {
		var p P
		if err := hc.Event.DecodeParams(&p); err != nil {
			return err
		}
		return fn(ctx, hc, p)
	}
}

var routes = map[Route]boundFunc{
	{types.SourceAsset, "TransferCompleted"}:       bind(handler.TransferCompleted),
	{types.SourceAsset, "ForcedTransfer"}:          bind(handler.ForcedTransfer),
	{types.SourceAsset, "MintCompleted"}:           bind(handler.MintCompleted),
	{types.SourceAsset, "BurnCompleted"}:           bind(handler.BurnCompleted),
	{types.SourceAsset, "Approval"}:                bind(handler.Approval),
	{types.SourceAsset, "AddressFrozen"}:           bind(handler.AddressFrozen),
	{types.SourceAsset, "TokensFrozen"}:            bind(handler.TokensFrozen),
	{types.SourceAsset, "TokensUnfrozen"}:          bind(handler.TokensUnfrozen),
	{types.SourceAsset, "Paused"}:                  bind(handler.AssetPaused),
	{types.SourceAsset, "Unpaused"}:                bind(handler.AssetUnpaused),
	{types.SourceAsset, "UserBlocked"}:             bind(handler.UserBlocked),
	{types.SourceAsset, "UserUnblocked"}:           bind(handler.UserUnblocked),
	{types.SourceAsset, "ComplianceModuleAdded"}:   bind(handler.ComplianceModuleAdded),
	{types.SourceAsset, "ComplianceModuleRemoved"}: bind(handler.ComplianceModuleRemoved),

	{types.SourceIdentity, "KeyAdded"}:   bind(handler.KeyAdded),
	{types.SourceIdentity, "KeyRemoved"}: bind(handler.KeyRemoved),

	{types.SourceIdentityRegistry, "IdentityRegistered"}: bind(handler.IdentityRegistered),
	{types.SourceIdentityRegistry, "IdentityRemoved"}:    bind(handler.IdentityRemoved),
	{types.SourceIdentityRegistry, "CountryUpdated"}:     bind(handler.CountryUpdated),

	{types.SourceVaultFactory, "VaultCreated"}: bind(handler.VaultCreated),

	{types.SourceVault, "SubmitTransaction"}:  bind(handler.SubmitTransaction),
	{types.SourceVault, "ConfirmTransaction"}: bind(handler.ConfirmTransaction),
	{types.SourceVault, "RevokeConfirmation"}: bind(handler.RevokeConfirmation),
	{types.SourceVault, "ExecuteTransaction"}: bind(handler.ExecuteTransaction),
	{types.SourceVault, "RequirementChanged"}: bind(handler.RequirementChanged),
	{types.SourceVault, "Paused"}:             bind(handler.VaultPaused),
	{types.SourceVault, "Unpaused"}:           bind(handler.VaultUnpaused),

	{types.SourceSystemFactory, "SystemCreated"}:    bind(handler.SystemCreated),
	{types.SourceSystem, "TokenRegistryCreated"}:    bind(handler.TokenRegistryCreated),
	{types.SourceTokenFactory, "TokenAssetCreated"}: bind(handler.TokenAssetCreated),

	{types.SourceAccessControl, "RoleGranted"}: bind(handler.RoleGranted),
	{types.SourceAccessControl, "RoleRevoked"}: bind(handler.RoleRevoked),
	{types.SourceSystem, "RoleGranted"}:        bind(handler.RoleGranted),
	{types.SourceSystem, "RoleRevoked"}:        bind(handler.RoleRevoked),
}

// Routes lists every routed event, sorted.
func Routes() []Route {
	out := make([]Route, 0, len(routes))
	for r := range routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Handles reports whether events named name from source are routed.
func Handles(source, name string) bool {
	_, ok := routes[Route{Source: source, Name: name}]
	return ok
}
