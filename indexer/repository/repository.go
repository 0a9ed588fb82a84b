// Package repository loads and lazily creates the deterministically keyed
// entities of the derived store.
package repository

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

// EntityPtr constrains PT to a pointer to T that is a store entity.
type EntityPtr[T any] interface {
	*T
	store.Entity
}

// Load returns the entity keyed by id or store.ErrNotFound.
func Load[T any, PT EntityPtr[T]](ctx context.Context, s store.Store, id string) (PT, error) {
	var e T
	if err := s.Get(ctx, PT(&e), id); err != nil {
		return nil, err
	}
	return &e, nil
}

// Exists reports whether an entity of dst's table is stored under id.
func Exists(ctx context.Context, s store.Store, dst store.Entity, id string) (bool, error) {
	err := s.Get(ctx, dst, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// FetchOrCreate returns the entity keyed by id. When it does not exist yet it is
// built by init from a zero value and persisted before being returned. init must
// set the id and must only depend on its arguments, so that two calls for the same
// id always produce identical records.
func FetchOrCreate[T any, PT EntityPtr[T]](ctx context.Context, s store.Store, id string, init func(PT)) (PT, bool, error) {
	existing, err := Load[T, PT](ctx, s, id)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	var e T
	created := PT(&e)
	init(created)
	if created.EntityID() != id {
		return nil, false, types.NewInternalError("initializer of "+created.TableName()+" set id "+created.EntityID()+", want "+id, nil)
	}
	if err := s.Put(ctx, created); err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func FetchAccount(ctx context.Context, s store.Store, addr common.Address) (*types.Account, error) {
	acc, _, err := FetchOrCreate(ctx, s, types.AddressID(addr), func(a *types.Account) {
		a.ID = types.AddressID(addr)
	})
	return acc, err
}

func FetchAsset(ctx context.Context, s store.Store, addr common.Address) (*types.Asset, error) {
	asset, _, err := FetchOrCreate(ctx, s, types.AddressID(addr), func(a *types.Asset) {
		a.ID = types.AddressID(addr)
	})
	return asset, err
}

// FetchBalance returns the balance of account on asset. A new balance counts
// towards the balancesCount of both the account and the asset. The account is
// persisted here; asset is only mutated and must be persisted by the caller.
func FetchBalance(ctx context.Context, s store.Store, asset *types.Asset, account common.Address) (*types.AssetBalance, error) {
	assetAddr := common.HexToAddress(asset.ID)
	id := types.BalanceID(assetAddr, account)

	blocked, err := Exists(ctx, s, &types.BlockedUser{}, types.BlockedUserID(assetAddr, account))
	if err != nil {
		return nil, err
	}

	balance, created, err := FetchOrCreate(ctx, s, id, func(b *types.AssetBalance) {
		b.ID = id
		b.Asset = asset.ID
		b.Account = types.AddressID(account)
		b.Blocked = blocked
	})
	if err != nil || !created {
		return balance, err
	}

	acc, err := FetchAccount(ctx, s, account)
	if err != nil {
		return nil, err
	}
	acc.BalancesCount.Inc()
	if err := s.Put(ctx, acc); err != nil {
		return nil, err
	}
	asset.BalancesCount.Inc()

	return balance, nil
}

func FetchIdentity(ctx context.Context, s store.Store, addr common.Address) (*types.Identity, error) {
	identity, _, err := FetchOrCreate(ctx, s, types.AddressID(addr), func(i *types.Identity) {
		i.ID = types.AddressID(addr)
	})
	return identity, err
}

// FetchVault returns the vault at addr together with its account shadow.
func FetchVault(ctx context.Context, s store.Store, addr common.Address) (*types.Vault, error) {
	if _, err := FetchAccount(ctx, s, addr); err != nil {
		return nil, err
	}
	vault, _, err := FetchOrCreate(ctx, s, types.AddressID(addr), func(v *types.Vault) {
		v.ID = types.AddressID(addr)
		v.Account = types.AddressID(addr)
		v.Signers = types.AddressList{}
		v.Admins = types.AddressList{}
	})
	return vault, err
}

func FetchSystem(ctx context.Context, s store.Store, addr common.Address) (*types.System, bool, error) {
	return FetchOrCreate(ctx, s, types.AddressID(addr), func(sys *types.System) {
		sys.ID = types.AddressID(addr)
	})
}

func FetchTokenRegistry(ctx context.Context, s store.Store, addr common.Address) (*types.TokenRegistry, bool, error) {
	return FetchOrCreate(ctx, s, types.AddressID(addr), func(r *types.TokenRegistry) {
		r.ID = types.AddressID(addr)
	})
}
