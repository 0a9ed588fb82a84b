package handler

import (
	"context"
	"errors"

	"github.com/assetkit/assetindexer/cache"
	"github.com/assetkit/assetindexer/indexer/repository"
	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

// DecimalsResolver picks the decimals used to scale amounts of an asset:
// configured override, then the decimals the asset registered on chain, then
// the configured default. Only registered decimals are cached.
type DecimalsResolver struct {
	defaultDecimals uint8
	overrides       map[string]uint8
	cache           *cache.Cache[string, uint8]
}

func NewDecimalsResolver(defaultDecimals uint8, overrides map[string]uint8, cacheSize int) *DecimalsResolver {
	if cacheSize < 1 {
		cacheSize = 1
	}
	return &DecimalsResolver{
		defaultDecimals: defaultDecimals,
		overrides:       overrides,
		cache:           cache.New[string, uint8](cacheSize),
	}
}

func (r *DecimalsResolver) Resolve(ctx context.Context, s store.Store, asset string) (uint8, error) {
	if d, ok := r.overrides[asset]; ok {
		return d, nil
	}
	if d, ok := r.cache.Get(asset); ok {
		return d, nil
	}

	a, err := repository.Load[types.Asset](ctx, s, asset)
	if errors.Is(err, store.ErrNotFound) {
		return r.defaultDecimals, nil
	}
	if err != nil {
		return 0, err
	}
	if a.Registered {
		r.cache.Set(asset, a.Decimals)
	}
	return r.Of(a), nil
}

// Of picks the decimals of a without touching the cache, for assets whose
// registration is not committed yet.
func (r *DecimalsResolver) Of(a *types.Asset) uint8 {
	if d, ok := r.overrides[a.ID]; ok {
		return d
	}
	if !a.Registered {
		return r.defaultDecimals
	}
	return a.Decimals
}

// Forget drops the cached decimals of asset.
func (r *DecimalsResolver) Forget(asset string) {
	r.cache.Remove(asset)
}
