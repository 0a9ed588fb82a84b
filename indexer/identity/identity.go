// Package identity tracks identity contracts, their registration against
// investor accounts and their ERC-734 keys.
package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/assetkit/assetindexer/indexer/repository"
	"github.com/assetkit/assetindexer/metrics"
	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

// DecodePurpose maps an on-chain purpose code. Unknown codes are not an error:
// they decode to KeyPurposeUnknown and are reported as a warning.
func DecodePurpose(logger *slog.Logger, code uint64, keyID string) types.KeyPurpose {
	purpose, ok := types.KeyPurposeFromCode(code)
	if !ok {
		warnUnknown(logger, "key_purpose", code, keyID)
	}
	return purpose
}

// DecodeKeyType maps an on-chain key type code, see DecodePurpose.
func DecodeKeyType(logger *slog.Logger, code uint64, keyID string) types.KeyType {
	keyType, ok := types.KeyTypeFromCode(code)
	if !ok {
		warnUnknown(logger, "key_type", code, keyID)
	}
	return keyType
}

func warnUnknown(logger *slog.Logger, enum string, code uint64, keyID string) {
	logger.Warn("unknown identity key code, using unknown",
		slog.String("enum", enum),
		slog.Uint64("code", code),
		slog.String("key", keyID))
	metrics.Indexer().UnknownEnumCodes.WithLabelValues(enum).Inc()
}

// FetchIdentityKey returns the key of identity, creating it with unknown purpose
// and type. created reports whether it was created by this call.
func FetchIdentityKey(ctx context.Context, s store.Store, identity common.Address, key common.Hash, txHash common.Hash) (*types.IdentityKey, bool, error) {
	id := types.IdentityKeyID(identity, key)
	return repository.FetchOrCreate(ctx, s, id, func(k *types.IdentityKey) {
		k.ID = id
		k.Identity = types.AddressID(identity)
		k.Key = key.Hex()
		k.Purpose = types.KeyPurposeUnknown
		k.Type = types.KeyTypeUnknown
		k.DeployedInTransaction = txHash.Hex()
	})
}

// AddKey records a key and decodes its purpose and type codes.
func AddKey(ctx context.Context, s store.Store, logger *slog.Logger, identity common.Address, key common.Hash, purpose, keyType uint64, txHash common.Hash, at time.Time) (*types.IdentityKey, error) {
	ident, err := repository.FetchIdentity(ctx, s, identity)
	if err != nil {
		return nil, err
	}

	k, created, err := FetchIdentityKey(ctx, s, identity, key, txHash)
	if err != nil {
		return nil, err
	}
	k.Purpose = DecodePurpose(logger, purpose, k.ID)
	k.Type = DecodeKeyType(logger, keyType, k.ID)
	if err := s.Put(ctx, k); err != nil {
		return nil, err
	}

	if created {
		ident.KeysCount.Inc()
	}
	ident.LastActivity = at
	return k, s.Put(ctx, ident)
}

// RemoveKey deletes a key. Removing a key that was never added only touches the
// identity's lastActivity.
func RemoveKey(ctx context.Context, s store.Store, identity common.Address, key common.Hash, at time.Time) error {
	ident, err := repository.FetchIdentity(ctx, s, identity)
	if err != nil {
		return err
	}

	id := types.IdentityKeyID(identity, key)
	found, err := repository.Exists(ctx, s, &types.IdentityKey{}, id)
	if err != nil {
		return err
	}
	if found {
		if err := s.Delete(ctx, &types.IdentityKey{ID: id}); err != nil {
			return err
		}
		ident.KeysCount.Dec()
	}
	ident.LastActivity = at
	return s.Put(ctx, ident)
}

// Register links investor to identity in registry.
func Register(ctx context.Context, s store.Store, registry, investor, identity common.Address, txHash common.Hash, at time.Time) error {
	ident, err := repository.FetchIdentity(ctx, s, identity)
	if err != nil {
		return err
	}
	if ident.DeployedInTransaction == "" {
		ident.DeployedInTransaction = txHash.Hex()
	}
	ident.Account = types.AddressID(investor)
	ident.Registry = types.AddressID(registry)
	ident.LastActivity = at
	if err := s.Put(ctx, ident); err != nil {
		return err
	}

	acc, err := repository.FetchAccount(ctx, s, investor)
	if err != nil {
		return err
	}
	acc.Identity = ident.ID
	acc.Country = ident.Country
	acc.LastActivity = at
	return s.Put(ctx, acc)
}

// Unregister removes the link between investor and identity.
func Unregister(ctx context.Context, s store.Store, investor, identity common.Address, at time.Time) error {
	ident, err := repository.FetchIdentity(ctx, s, identity)
	if err != nil {
		return err
	}
	if ident.Account == types.AddressID(investor) {
		ident.Account = ""
	}
	ident.LastActivity = at
	if err := s.Put(ctx, ident); err != nil {
		return err
	}

	acc, err := repository.FetchAccount(ctx, s, investor)
	if err != nil {
		return err
	}
	if acc.Identity == ident.ID {
		acc.Identity = ""
	}
	acc.LastActivity = at
	return s.Put(ctx, acc)
}

// UpdateCountry stores the ISO 3166-1 numeric country of investor.
func UpdateCountry(ctx context.Context, s store.Store, investor common.Address, country uint16, at time.Time) error {
	acc, err := repository.FetchAccount(ctx, s, investor)
	if err != nil {
		return err
	}
	acc.Country = country
	acc.LastActivity = at
	if err := s.Put(ctx, acc); err != nil {
		return err
	}

	if acc.Identity == "" {
		return nil
	}
	ident, err := repository.FetchIdentity(ctx, s, common.HexToAddress(acc.Identity))
	if err != nil {
		return err
	}
	ident.Country = country
	return s.Put(ctx, ident)
}
