package handler

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/assetkit/assetindexer/indexer/balance"
	"github.com/assetkit/assetindexer/indexer/repository"
	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

// Vault values are native coin amounts and always scale with 18 decimals.
const nativeDecimals = 18

func addressList(addrs []common.Address) types.AddressList {
	out := make(types.AddressList, 0, len(addrs))
	for _, a := range addrs {
		id := types.AddressID(a)
		if !out.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

func VaultCreated(ctx context.Context, hc *Context, p VaultCreatedParams) error {
	v, err := repository.FetchVault(ctx, hc.Store, p.Vault)
	if err != nil {
		return err
	}
	if v.DeployedInTransaction == "" {
		v.DeployedInTransaction = hc.TxHash()
		v.DeployedOn = hc.Time()
	}
	v.Creator = types.AddressID(p.Creator)
	v.Signers = addressList(p.Signers)
	v.Admins = addressList(p.Admins)
	v.TotalSigners = int64(len(v.Signers))
	v.RequiredSigners = int64(p.Required)
	v.LastActivity = hc.Time()
	return hc.Store.Put(ctx, v)
}

// loadVault returns the vault that emitted the event.
func loadVault(ctx context.Context, hc *Context) (*types.Vault, error) {
	v, err := repository.FetchVault(ctx, hc.Store, hc.Emitter())
	if err != nil {
		return nil, err
	}
	v.LastActivity = hc.Time()
	return v, nil
}

// loadVaultTransaction returns a transaction submitted earlier. Referencing an
// unknown transaction means an earlier event was never applied.
func loadVaultTransaction(ctx context.Context, hc *Context, index *Uint256) (*types.VaultTransaction, error) {
	id := types.VaultTransactionID(hc.Emitter(), bigOf(index))
	tx, err := repository.Load[types.VaultTransaction](ctx, hc.Store, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, types.NewInvariantError(types.VaultTransaction{}.TableName(), id,
			"transaction "+bigOf(index).String()+" was never submitted")
	}
	return tx, err
}

func SubmitTransaction(ctx context.Context, hc *Context, p SubmitTransactionParams) error {
	v, err := loadVault(ctx, hc)
	if err != nil {
		return err
	}

	index := bigOf(p.TxIndex)
	id := types.VaultTransactionID(hc.Emitter(), index)
	tx, created, err := repository.FetchOrCreate(ctx, hc.Store, id, func(t *types.VaultTransaction) {
		t.ID = id
		t.Vault = v.ID
		t.TxIndex = index.String()
	})
	if err != nil {
		return err
	}
	tx.To = types.AddressID(p.To)
	tx.Data = hexutil.Encode(p.Data)
	tx.Submitter = types.AddressID(p.Signer)
	tx.SubmittedAt = hc.Time()
	if err := balance.SetValueWithDecimals(&tx.Value, bigOf(p.Value), nativeDecimals); err != nil {
		return err
	}
	if err := hc.Store.Put(ctx, tx); err != nil {
		return err
	}

	if created {
		v.PendingTransactionsCount.Inc()
	}
	return hc.Store.Put(ctx, v)
}

func ConfirmTransaction(ctx context.Context, hc *Context, p VaultTransactionParams) error {
	v, err := loadVault(ctx, hc)
	if err != nil {
		return err
	}
	tx, err := loadVaultTransaction(ctx, hc, p.TxIndex)
	if err != nil {
		return err
	}
	tx.ConfirmationsCount.Inc()
	if err := hc.Store.Put(ctx, tx); err != nil {
		return err
	}
	return hc.Store.Put(ctx, v)
}

func RevokeConfirmation(ctx context.Context, hc *Context, p VaultTransactionParams) error {
	v, err := loadVault(ctx, hc)
	if err != nil {
		return err
	}
	tx, err := loadVaultTransaction(ctx, hc, p.TxIndex)
	if err != nil {
		return err
	}
	if tx.ConfirmationsCount == 0 {
		return types.NewInvariantError(tx.TableName(), tx.ID, "revoking a confirmation that was never given")
	}
	tx.ConfirmationsCount.Dec()
	if err := hc.Store.Put(ctx, tx); err != nil {
		return err
	}
	return hc.Store.Put(ctx, v)
}

// ExecuteTransaction moves a pending transaction to executed.
func ExecuteTransaction(ctx context.Context, hc *Context, p VaultTransactionParams) error {
	v, err := loadVault(ctx, hc)
	if err != nil {
		return err
	}
	tx, err := loadVaultTransaction(ctx, hc, p.TxIndex)
	if err != nil {
		return err
	}
	if tx.Executed {
		return hc.Store.Put(ctx, v)
	}
	if v.PendingTransactionsCount == 0 {
		return types.NewInvariantError(v.TableName(), v.ID, "executing "+tx.TxIndex+" without pending transactions")
	}
	tx.Executed = true
	tx.ExecutedAt = hc.Time()
	if err := hc.Store.Put(ctx, tx); err != nil {
		return err
	}
	v.PendingTransactionsCount.Dec()
	v.ExecutedTransactionsCount.Inc()
	return hc.Store.Put(ctx, v)
}

func RequirementChanged(ctx context.Context, hc *Context, p RequirementChangedParams) error {
	v, err := loadVault(ctx, hc)
	if err != nil {
		return err
	}
	v.RequiredSigners = int64(p.Required)
	return hc.Store.Put(ctx, v)
}

func VaultPaused(ctx context.Context, hc *Context, _ PausedParams) error {
	return setVaultPaused(ctx, hc, true)
}

func VaultUnpaused(ctx context.Context, hc *Context, _ PausedParams) error {
	return setVaultPaused(ctx, hc, false)
}

func setVaultPaused(ctx context.Context, hc *Context, paused bool) error {
	v, err := loadVault(ctx, hc)
	if err != nil {
		return err
	}
	v.Paused = paused
	return hc.Store.Put(ctx, v)
}
