package handler

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetkit/assetindexer/types"
)

func mint(f *fixture, to common.Address, amount string) error {
	return call(f, MintCompleted, types.SourceAsset, "MintCompleted", assetAddr, map[string]any{
		"to":     to,
		"amount": amount,
	})
}

func transferValue(f *fixture, from, to common.Address, value string) error {
	return call(f, TransferCompleted, types.SourceAsset, "TransferCompleted", assetAddr, map[string]any{
		"from":  from,
		"to":    to,
		"value": value,
	})
}

func TestMintCreatesScaledBalance(t *testing.T) {
	f := newFixture(t)
	f.must(mint(f, alice, "1000000"))

	b := load[types.AssetBalance](f, types.BalanceID(assetAddr, alice))
	assert.Equal(t, "1000000", b.Balance.Exact.String())
	assert.Equal(t, "1", b.Balance.Value.String())
	assert.Equal(t, types.AddressID(assetAddr), b.Asset)

	acc := load[types.Account](f, types.AddressID(alice))
	assert.Equal(t, int64(1), acc.BalancesCount.Int64())

	asset := load[types.Asset](f, types.AddressID(assetAddr))
	assert.Equal(t, "1000000", asset.TotalSupply.Exact.String())
	assert.Equal(t, int64(1), asset.HoldersCount.Int64())
	assert.Equal(t, int64(1), asset.BalancesCount.Int64())

	assert.Equal(t, 1, f.store.Len(types.AssetActivityEvent{}.TableName()))
}

func TestMintAcceptsHexAmounts(t *testing.T) {
	f := newFixture(t)
	f.must(mint(f, alice, "0xf4240"))

	b := load[types.AssetBalance](f, types.BalanceID(assetAddr, alice))
	assert.Equal(t, "1000000", b.Balance.Exact.String())
}

func TestTransferMovesBalanceAndHolders(t *testing.T) {
	f := newFixture(t)
	f.must(mint(f, alice, "3000000"))
	f.must(transferValue(f, alice, bob, "1000000"))

	a := load[types.AssetBalance](f, types.BalanceID(assetAddr, alice))
	b := load[types.AssetBalance](f, types.BalanceID(assetAddr, bob))
	assert.Equal(t, "2", a.Balance.Value.String())
	assert.Equal(t, "1", b.Balance.Value.String())

	asset := load[types.Asset](f, types.AddressID(assetAddr))
	assert.Equal(t, int64(2), asset.HoldersCount.Int64())
	assert.Equal(t, int64(2), asset.BalancesCount.Int64())

	f.must(transferValue(f, alice, bob, "2000000"))
	asset = load[types.Asset](f, types.AddressID(assetAddr))
	assert.Equal(t, int64(1), asset.HoldersCount.Int64())
	assert.Equal(t, int64(2), asset.BalancesCount.Int64())
	// supply is untouched by transfers
	assert.Equal(t, "3000000", asset.TotalSupply.Exact.String())
}

func TestTransferToSelfKeepsBalance(t *testing.T) {
	f := newFixture(t)
	f.must(mint(f, alice, "500"))
	f.must(transferValue(f, alice, alice, "200"))

	a := load[types.AssetBalance](f, types.BalanceID(assetAddr, alice))
	assert.Equal(t, "500", a.Balance.Exact.String())
	asset := load[types.Asset](f, types.AddressID(assetAddr))
	assert.Equal(t, int64(1), asset.HoldersCount.Int64())
}

func TestTransferBeyondBalanceIsInvariantError(t *testing.T) {
	f := newFixture(t)
	f.must(mint(f, alice, "10"))

	err := transferValue(f, alice, bob, "11")
	require.Error(t, err)
	assert.True(t, types.IsErrorType(err, types.ErrTypeInvariant))
}

func TestBurnReducesSupply(t *testing.T) {
	f := newFixture(t)
	f.must(mint(f, alice, "1000"))
	f.must(call(f, BurnCompleted, types.SourceAsset, "BurnCompleted", assetAddr, map[string]any{
		"from":   alice,
		"amount": "1000",
	}))

	asset := load[types.Asset](f, types.AddressID(assetAddr))
	assert.True(t, asset.TotalSupply.IsZero())
	assert.Equal(t, int64(0), asset.HoldersCount.Int64())

	err := call(f, BurnCompleted, types.SourceAsset, "BurnCompleted", assetAddr, map[string]any{
		"from":   alice,
		"amount": "1",
	})
	assert.True(t, types.IsErrorType(err, types.ErrTypeInvariant))
}

func TestApprovalAndFreezeAmounts(t *testing.T) {
	f := newFixture(t)
	f.must(call(f, Approval, types.SourceAsset, "Approval", assetAddr, map[string]any{
		"owner":   alice,
		"spender": bob,
		"value":   "2500000",
	}))
	f.must(call(f, TokensFrozen, types.SourceAsset, "TokensFrozen", assetAddr, map[string]any{
		"userAddress": alice,
		"amount":      "700000",
	}))
	f.must(call(f, TokensUnfrozen, types.SourceAsset, "TokensUnfrozen", assetAddr, map[string]any{
		"userAddress": alice,
		"amount":      "200000",
	}))
	f.must(call(f, AddressFrozen, types.SourceAsset, "AddressFrozen", assetAddr, map[string]any{
		"userAddress": alice,
		"isFrozen":    true,
	}))

	b := load[types.AssetBalance](f, types.BalanceID(assetAddr, alice))
	assert.Equal(t, "2.5", b.Approved.Value.String())
	assert.Equal(t, "0.5", b.Frozen.Value.String())
	assert.True(t, b.IsFrozen)
	// approvals do not make a holder
	asset := load[types.Asset](f, types.AddressID(assetAddr))
	assert.Equal(t, int64(0), asset.HoldersCount.Int64())
	assert.Equal(t, int64(1), asset.BalancesCount.Int64())

	err := call(f, TokensUnfrozen, types.SourceAsset, "TokensUnfrozen", assetAddr, map[string]any{
		"userAddress": alice,
		"amount":      "600000",
	})
	assert.True(t, types.IsErrorType(err, types.ErrTypeInvariant))
}

func TestPauseFlag(t *testing.T) {
	f := newFixture(t)
	f.must(call(f, AssetPaused, types.SourceAsset, "Paused", assetAddr, map[string]any{"account": alice}))
	assert.True(t, load[types.Asset](f, types.AddressID(assetAddr)).Paused)

	f.must(call(f, AssetUnpaused, types.SourceAsset, "Unpaused", assetAddr, map[string]any{"account": alice}))
	assert.False(t, load[types.Asset](f, types.AddressID(assetAddr)).Paused)
}

func TestUserBlockedPresence(t *testing.T) {
	f := newFixture(t)
	f.must(mint(f, bob, "1"))
	f.must(call(f, UserBlocked, types.SourceAsset, "UserBlocked", assetAddr, map[string]any{"user": bob}))

	id := types.BlockedUserID(assetAddr, bob)
	blocked := load[types.BlockedUser](f, id)
	assert.Equal(t, types.AddressID(bob), blocked.User)
	assert.True(t, load[types.AssetBalance](f, types.BalanceID(assetAddr, bob)).Blocked)

	f.must(call(f, UserUnblocked, types.SourceAsset, "UserUnblocked", assetAddr, map[string]any{"user": bob}))
	assert.Equal(t, 0, f.store.Len(types.BlockedUser{}.TableName()))
	assert.False(t, load[types.AssetBalance](f, types.BalanceID(assetAddr, bob)).Blocked)
}

func TestComplianceModulesCount(t *testing.T) {
	f := newFixture(t)
	module := common.HexToAddress("0x00000000000000000000000000000000000000d0")
	add := func() {
		f.must(call(f, ComplianceModuleAdded, types.SourceAsset, "ComplianceModuleAdded", assetAddr, map[string]any{"module": module}))
	}
	remove := func() {
		f.must(call(f, ComplianceModuleRemoved, types.SourceAsset, "ComplianceModuleRemoved", assetAddr, map[string]any{"module": module}))
	}

	add()
	add()
	assert.Equal(t, int64(1), load[types.Asset](f, types.AddressID(assetAddr)).ComplianceModulesCount.Int64())

	remove()
	remove()
	assert.Equal(t, int64(0), load[types.Asset](f, types.AddressID(assetAddr)).ComplianceModulesCount.Int64())
	assert.Equal(t, 0, f.store.Len(types.AssetComplianceModule{}.TableName()))
}
