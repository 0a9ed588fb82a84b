package handler

import (
	"context"

	"github.com/assetkit/assetindexer/indexer/identity"
)

func KeyAdded(ctx context.Context, hc *Context, p KeyParams) error {
	_, err := identity.AddKey(ctx, hc.Store, hc.Logger, hc.Emitter(), p.Key,
		uint64(p.Purpose), uint64(p.KeyType), hc.Event.TxHash, hc.Time())
	return err
}

func KeyRemoved(ctx context.Context, hc *Context, p KeyParams) error {
	return identity.RemoveKey(ctx, hc.Store, hc.Emitter(), p.Key, hc.Time())
}

func IdentityRegistered(ctx context.Context, hc *Context, p IdentityRegisteredParams) error {
	return identity.Register(ctx, hc.Store, hc.Emitter(), p.InvestorAddress, p.Identity, hc.Event.TxHash, hc.Time())
}

func IdentityRemoved(ctx context.Context, hc *Context, p IdentityRegisteredParams) error {
	return identity.Unregister(ctx, hc.Store, p.InvestorAddress, p.Identity, hc.Time())
}

func CountryUpdated(ctx context.Context, hc *Context, p CountryUpdatedParams) error {
	return identity.UpdateCountry(ctx, hc.Store, p.InvestorAddress, p.Country, hc.Time())
}
