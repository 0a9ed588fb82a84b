package handler

import (
	"context"
	"maps"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/assetkit/assetindexer/indexer/activity"
	"github.com/assetkit/assetindexer/indexer/balance"
	"github.com/assetkit/assetindexer/indexer/holders"
	"github.com/assetkit/assetindexer/indexer/repository"
	"github.com/assetkit/assetindexer/types"
)

// assetUnit collects the asset and balances touched by one event so that each
// entity is loaded once and persisted once.
type assetUnit struct {
	hc       *Context
	asset    *types.Asset
	decimals uint8
	balances map[string]*types.AssetBalance
}

func loadAsset(ctx context.Context, hc *Context) (*assetUnit, error) {
	decimals, err := hc.Decimals.Resolve(ctx, hc.Store, hc.EmitterID())
	if err != nil {
		return nil, err
	}
	asset, err := repository.FetchAsset(ctx, hc.Store, hc.Emitter())
	if err != nil {
		return nil, err
	}
	return &assetUnit{
		hc:       hc,
		asset:    asset,
		decimals: decimals,
		balances: make(map[string]*types.AssetBalance),
	}, nil
}

func (u *assetUnit) balance(ctx context.Context, account common.Address) (*types.AssetBalance, error) {
	id := types.AddressID(account)
	if b, ok := u.balances[id]; ok {
		return b, nil
	}
	b, err := repository.FetchBalance(ctx, u.hc.Store, u.asset, account)
	if err != nil {
		return nil, err
	}
	b.LastActivity = u.hc.Time()
	u.balances[id] = b
	return b, nil
}

func (u *assetUnit) credit(ctx context.Context, account common.Address, amount *big.Int) error {
	b, err := u.balance(ctx, account)
	if err != nil {
		return err
	}
	was := holders.IsHolder(b)
	if err := balance.Credit(b, amount, u.decimals); err != nil {
		return err
	}
	holders.Track(u.asset, was, b)
	return nil
}

func (u *assetUnit) debit(ctx context.Context, account common.Address, amount *big.Int) error {
	b, err := u.balance(ctx, account)
	if err != nil {
		return err
	}
	was := holders.IsHolder(b)
	if err := balance.Debit(b, amount, u.decimals); err != nil {
		return err
	}
	holders.Track(u.asset, was, b)
	return nil
}

func (u *assetUnit) amount(raw *big.Int) (types.Amount, error) {
	var a types.Amount
	err := balance.SetValueWithDecimals(&a, raw, u.decimals)
	return a, err
}

func (u *assetUnit) recordActivity(ctx context.Context, from, to common.Address, raw *big.Int) error {
	amount, err := u.amount(raw)
	if err != nil {
		return err
	}
	_, err = activity.AssetActivityEvent(ctx, u.hc.Store, u.hc.Event, u.hc.Emitter(), from, to, amount)
	return err
}

func (u *assetUnit) save(ctx context.Context) error {
	for _, id := range slices.Sorted(maps.Keys(u.balances)) {
		if err := u.hc.Store.Put(ctx, u.balances[id]); err != nil {
			return err
		}
	}
	u.asset.LastActivity = u.hc.Time()
	return u.hc.Store.Put(ctx, u.asset)
}

func transfer(ctx context.Context, hc *Context, p TransferParams) error {
	u, err := loadAsset(ctx, hc)
	if err != nil {
		return err
	}
	value := bigOf(p.Value)
	if err := u.debit(ctx, p.From, value); err != nil {
		return err
	}
	if err := u.credit(ctx, p.To, value); err != nil {
		return err
	}
	if err := u.recordActivity(ctx, p.From, p.To, value); err != nil {
		return err
	}
	return u.save(ctx)
}

// TransferCompleted moves value between two holders.
func TransferCompleted(ctx context.Context, hc *Context, p TransferParams) error {
	return transfer(ctx, hc, p)
}

// ForcedTransfer is a transfer executed by an agent of the asset.
func ForcedTransfer(ctx context.Context, hc *Context, p TransferParams) error {
	return transfer(ctx, hc, p)
}

func MintCompleted(ctx context.Context, hc *Context, p MintParams) error {
	u, err := loadAsset(ctx, hc)
	if err != nil {
		return err
	}
	amount := bigOf(p.Amount)
	if err := u.credit(ctx, p.To, amount); err != nil {
		return err
	}
	if err := balance.Add(&u.asset.TotalSupply, amount, u.decimals); err != nil {
		return err
	}
	if err := u.recordActivity(ctx, common.Address{}, p.To, amount); err != nil {
		return err
	}
	return u.save(ctx)
}

func BurnCompleted(ctx context.Context, hc *Context, p BurnParams) error {
	u, err := loadAsset(ctx, hc)
	if err != nil {
		return err
	}
	amount := bigOf(p.Amount)
	if err := u.debit(ctx, p.From, amount); err != nil {
		return err
	}
	if err := balance.Sub(&u.asset.TotalSupply, amount, u.decimals, u.asset.TableName(), u.asset.ID); err != nil {
		return err
	}
	if err := u.recordActivity(ctx, p.From, common.Address{}, amount); err != nil {
		return err
	}
	return u.save(ctx)
}

// Approval overwrites the approved amount of the owner's balance.
func Approval(ctx context.Context, hc *Context, p ApprovalParams) error {
	u, err := loadAsset(ctx, hc)
	if err != nil {
		return err
	}
	b, err := u.balance(ctx, p.Owner)
	if err != nil {
		return err
	}
	if err := balance.SetValueWithDecimals(&b.Approved, bigOf(p.Value), u.decimals); err != nil {
		return err
	}
	return u.save(ctx)
}

func AddressFrozen(ctx context.Context, hc *Context, p AddressFrozenParams) error {
	u, err := loadAsset(ctx, hc)
	if err != nil {
		return err
	}
	b, err := u.balance(ctx, p.User)
	if err != nil {
		return err
	}
	b.IsFrozen = p.IsFrozen
	return u.save(ctx)
}

func TokensFrozen(ctx context.Context, hc *Context, p TokensFrozenParams) error {
	u, err := loadAsset(ctx, hc)
	if err != nil {
		return err
	}
	b, err := u.balance(ctx, p.User)
	if err != nil {
		return err
	}
	if err := balance.Add(&b.Frozen, bigOf(p.Amount), u.decimals); err != nil {
		return err
	}
	return u.save(ctx)
}

func TokensUnfrozen(ctx context.Context, hc *Context, p TokensFrozenParams) error {
	u, err := loadAsset(ctx, hc)
	if err != nil {
		return err
	}
	b, err := u.balance(ctx, p.User)
	if err != nil {
		return err
	}
	if err := balance.Sub(&b.Frozen, bigOf(p.Amount), u.decimals, b.TableName(), b.ID); err != nil {
		return err
	}
	return u.save(ctx)
}

func AssetPaused(ctx context.Context, hc *Context, _ PausedParams) error {
	return setAssetPaused(ctx, hc, true)
}

func AssetUnpaused(ctx context.Context, hc *Context, _ PausedParams) error {
	return setAssetPaused(ctx, hc, false)
}

func setAssetPaused(ctx context.Context, hc *Context, paused bool) error {
	u, err := loadAsset(ctx, hc)
	if err != nil {
		return err
	}
	u.asset.Paused = paused
	return u.save(ctx)
}

func UserBlocked(ctx context.Context, hc *Context, p UserBlockedParams) error {
	u, err := loadAsset(ctx, hc)
	if err != nil {
		return err
	}
	if _, err := holders.BlockUser(ctx, hc.Store, hc.Emitter(), p.User, hc.Time()); err != nil {
		return err
	}
	return u.save(ctx)
}

func UserUnblocked(ctx context.Context, hc *Context, p UserBlockedParams) error {
	u, err := loadAsset(ctx, hc)
	if err != nil {
		return err
	}
	if err := holders.UnblockUser(ctx, hc.Store, hc.Emitter(), p.User); err != nil {
		return err
	}
	return u.save(ctx)
}

func ComplianceModuleAdded(ctx context.Context, hc *Context, p ComplianceModuleParams) error {
	u, err := loadAsset(ctx, hc)
	if err != nil {
		return err
	}
	id := types.ComplianceModuleID(hc.Emitter(), p.Module)
	_, created, err := repository.FetchOrCreate(ctx, hc.Store, id, func(m *types.AssetComplianceModule) {
		m.ID = id
		m.Asset = hc.EmitterID()
		m.Module = types.AddressID(p.Module)
		m.AddedAt = hc.Time()
	})
	if err != nil {
		return err
	}
	if created {
		u.asset.ComplianceModulesCount.Inc()
	}
	return u.save(ctx)
}

func ComplianceModuleRemoved(ctx context.Context, hc *Context, p ComplianceModuleParams) error {
	u, err := loadAsset(ctx, hc)
	if err != nil {
		return err
	}
	id := types.ComplianceModuleID(hc.Emitter(), p.Module)
	found, err := repository.Exists(ctx, hc.Store, &types.AssetComplianceModule{}, id)
	if err != nil {
		return err
	}
	if found {
		if err := hc.Store.Delete(ctx, &types.AssetComplianceModule{ID: id}); err != nil {
			return err
		}
		u.asset.ComplianceModulesCount.Dec()
	}
	return u.save(ctx)
}
