package handler

import (
	"context"

	"github.com/assetkit/assetindexer/indexer/balance"
	"github.com/assetkit/assetindexer/indexer/repository"
	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

func SystemCreated(ctx context.Context, hc *Context, p SystemCreatedParams) error {
	sys, created, err := repository.FetchSystem(ctx, hc.Store, p.System)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}
	sys.Deployer = types.AddressID(p.Sender)
	sys.DeployedInTransaction = hc.TxHash()
	sys.CreatedAt = hc.Time()
	return hc.Store.Put(ctx, sys)
}

func TokenRegistryCreated(ctx context.Context, hc *Context, p TokenRegistryCreatedParams) error {
	sys, _, err := repository.FetchSystem(ctx, hc.Store, hc.Emitter())
	if err != nil {
		return err
	}
	reg, created, err := repository.FetchTokenRegistry(ctx, hc.Store, p.Registry)
	if err != nil {
		return err
	}
	reg.System = sys.ID
	reg.TypeName = p.TypeName
	if created {
		reg.DeployedInTransaction = hc.TxHash()
		reg.CreatedAt = hc.Time()
		sys.TokenRegistriesCount.Inc()
		if err := hc.Store.Put(ctx, sys); err != nil {
			return err
		}
	}
	return hc.Store.Put(ctx, reg)
}

// TokenAssetCreated registers the metadata of a newly deployed asset. Amounts
// already indexed under provisional decimals are rescaled to the registered ones.
func TokenAssetCreated(ctx context.Context, hc *Context, p TokenAssetCreatedParams) error {
	reg, _, err := repository.FetchTokenRegistry(ctx, hc.Store, hc.Emitter())
	if err != nil {
		return err
	}
	asset, err := repository.FetchAsset(ctx, hc.Store, p.Asset)
	if err != nil {
		return err
	}

	firstRegistration := !asset.Registered
	asset.Name = p.Name
	asset.Symbol = p.Symbol
	asset.Type = p.TypeName
	asset.Decimals = p.Decimals
	asset.Registered = true
	asset.Registry = reg.ID
	if asset.DeployedInTransaction == "" {
		asset.DeployedInTransaction = hc.TxHash()
	}
	asset.LastActivity = hc.Time()
	if err := hc.Store.Put(ctx, asset); err != nil {
		return err
	}

	// the registration may still roll back, so the cache refills on the next
	// event instead of from this transaction
	hc.Decimals.Forget(asset.ID)
	decimals := hc.Decimals.Of(asset)
	if err := balance.SetValueWithDecimals(&asset.TotalSupply, asset.TotalSupply.ExactInt(), decimals); err != nil {
		return err
	}
	if err := hc.Store.Put(ctx, asset); err != nil {
		return err
	}
	if err := rescaleBalances(ctx, hc, asset.ID, decimals); err != nil {
		return err
	}
	if err := rescaleActivity(ctx, hc, asset.ID, decimals); err != nil {
		return err
	}

	if firstRegistration {
		reg.AssetsCount.Inc()
	}
	return hc.Store.Put(ctx, reg)
}

func rescaleBalances(ctx context.Context, hc *Context, asset string, decimals uint8) error {
	balances, err := hc.Store.Balances(ctx, asset)
	if err != nil {
		return err
	}
	for i := range balances {
		if err := balance.Rescale(&balances[i], decimals); err != nil {
			return err
		}
	}
	return store.PutAll(ctx, hc.Store, balances)
}

func rescaleActivity(ctx context.Context, hc *Context, asset string, decimals uint8) error {
	events, err := hc.Store.ActivityEvents(ctx, asset)
	if err != nil {
		return err
	}
	for i := range events {
		amount := &events[i].Amount
		if err := balance.SetValueWithDecimals(amount, amount.ExactInt(), decimals); err != nil {
			return err
		}
	}
	return store.PutAll(ctx, hc.Store, events)
}
