// Package holders tracks which accounts hold an asset and which are blocked
// from it. Both memberships are defined by stored records: a nonzero balance
// makes a holder and an existing BlockedUser row makes a blocked account.
package holders

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/assetkit/assetindexer/counter"
	"github.com/assetkit/assetindexer/indexer/repository"
	"github.com/assetkit/assetindexer/metrics"
	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

func IsHolder(b *types.AssetBalance) bool {
	return !b.Balance.IsZero()
}

// Track adjusts the incremental holder count of asset after b changed.
// wasHolder is IsHolder(b) observed before the change.
func Track(asset *types.Asset, wasHolder bool, b *types.AssetBalance) {
	switch isHolder := IsHolder(b); {
	case !wasHolder && isHolder:
		asset.HoldersCount.Inc()
	case wasHolder && !isHolder:
		asset.HoldersCount.Dec()
	}
}

// Count recomputes the number of holders of asset from its balances.
func Count(ctx context.Context, s store.Store, asset string) (int64, error) {
	balances, err := s.Balances(ctx, asset)
	if err != nil {
		return 0, err
	}
	var n int64
	for i := range balances {
		if IsHolder(&balances[i]) {
			n++
		}
	}
	return n, nil
}

type Reconciliation struct {
	Asset    string `json:"asset"`
	Stored   int64  `json:"stored"`
	Actual   int64  `json:"actual"`
	Adjusted bool   `json:"adjusted"`
}

// Reconcile overwrites the stored holder count of asset with the recomputed one
// when the two disagree. The recomputed count is authoritative.
func Reconcile(ctx context.Context, s store.Store, logger *slog.Logger, asset string) (Reconciliation, error) {
	a, err := repository.Load[types.Asset](ctx, s, asset)
	if err != nil {
		return Reconciliation{}, err
	}

	actual, err := Count(ctx, s, asset)
	if err != nil {
		return Reconciliation{}, err
	}

	res := Reconciliation{Asset: asset, Stored: a.HoldersCount.Int64(), Actual: actual}
	metrics.Indexer().ReconciliationsTotal.Inc()
	if res.Stored == res.Actual {
		return res, nil
	}

	logger.Warn("holder count drifted, resetting to recomputed value",
		slog.String("asset", asset),
		slog.Int64("stored", res.Stored),
		slog.Int64("actual", res.Actual))
	metrics.Indexer().HolderDriftTotal.Inc()

	a.HoldersCount = counter.Counter(actual)
	if err := s.Put(ctx, a); err != nil {
		return res, err
	}
	res.Adjusted = true
	return res, nil
}

// BlockUser records user as blocked from asset, stamping blockedAt on first block.
func BlockUser(ctx context.Context, s store.Store, asset, user common.Address, at time.Time) (*types.BlockedUser, error) {
	id := types.BlockedUserID(asset, user)
	blocked, _, err := repository.FetchOrCreate(ctx, s, id, func(b *types.BlockedUser) {
		b.ID = id
		b.Asset = types.AddressID(asset)
		b.User = types.AddressID(user)
		b.BlockedAt = at
	})
	if err != nil {
		return nil, err
	}
	return blocked, setBlockedFlag(ctx, s, asset, user, true)
}

// UnblockUser deletes the block record. Unblocking an account that is not
// blocked is a no-op.
func UnblockUser(ctx context.Context, s store.Store, asset, user common.Address) error {
	if err := s.Delete(ctx, &types.BlockedUser{ID: types.BlockedUserID(asset, user)}); err != nil {
		return err
	}
	return setBlockedFlag(ctx, s, asset, user, false)
}

func IsBlocked(ctx context.Context, s store.Store, asset, user common.Address) (bool, error) {
	return repository.Exists(ctx, s, &types.BlockedUser{}, types.BlockedUserID(asset, user))
}

// setBlockedFlag mirrors the block record onto an existing balance; balances
// are never created by blocking.
func setBlockedFlag(ctx context.Context, s store.Store, asset, user common.Address, blocked bool) error {
	b, err := repository.Load[types.AssetBalance](ctx, s, types.BalanceID(asset, user))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if b.Blocked == blocked {
		return nil
	}
	b.Blocked = blocked
	return s.Put(ctx, b)
}
