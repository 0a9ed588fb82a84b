package handler

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

var (
	systemFactoryAddr = common.HexToAddress("0x0000000000000000000000000000000000000100")
	systemAddr        = common.HexToAddress("0x0000000000000000000000000000000000000101")
	tokenRegistryAddr = common.HexToAddress("0x0000000000000000000000000000000000000102")
	role              = common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222")
)

func TestSystemAndRegistryCreation(t *testing.T) {
	f := newFixture(t)
	for range 2 {
		f.must(call(f, SystemCreated, types.SourceSystemFactory, "SystemCreated", systemFactoryAddr, map[string]any{
			"system": systemAddr,
			"sender": alice,
		}))
		f.must(call(f, TokenRegistryCreated, types.SourceSystem, "TokenRegistryCreated", systemAddr, map[string]any{
			"registry": tokenRegistryAddr,
			"typeName": "bond",
		}))
	}

	sys := load[types.System](f, types.AddressID(systemAddr))
	assert.Equal(t, types.AddressID(alice), sys.Deployer)
	assert.Equal(t, int64(1), sys.TokenRegistriesCount.Int64())

	reg := load[types.TokenRegistry](f, types.AddressID(tokenRegistryAddr))
	assert.Equal(t, sys.ID, reg.System)
	assert.Equal(t, "bond", reg.TypeName)
}

func TestTokenAssetCreatedRescalesBalances(t *testing.T) {
	f := newFixture(t)
	// indexed before registration under the default of 6 decimals
	f.must(mint(f, alice, "1000000"))

	register := func() {
		f.must(call(f, TokenAssetCreated, types.SourceTokenFactory, "TokenAssetCreated", tokenRegistryAddr, map[string]any{
			"asset":    assetAddr,
			"name":     "Bond A",
			"symbol":   "BNDA",
			"decimals": 2,
			"typeName": "bond",
		}))
	}
	register()
	register()

	asset := load[types.Asset](f, types.AddressID(assetAddr))
	assert.True(t, asset.Registered)
	assert.Equal(t, uint8(2), asset.Decimals)
	assert.Equal(t, "BNDA", asset.Symbol)
	assert.Equal(t, types.AddressID(tokenRegistryAddr), asset.Registry)
	assert.Equal(t, "10000", asset.TotalSupply.Value.String())

	b := load[types.AssetBalance](f, types.BalanceID(assetAddr, alice))
	assert.Equal(t, "1000000", b.Balance.Exact.String())
	assert.Equal(t, "10000", b.Balance.Value.String())

	assert.Equal(t, int64(1), load[types.TokenRegistry](f, types.AddressID(tokenRegistryAddr)).AssetsCount.Int64())

	events, err := f.store.ActivityEvents(f.ctx, types.AddressID(assetAddr))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "1000000", events[0].Amount.Exact.String())
	assert.Equal(t, "10000", events[0].Amount.Value.String())

	// later amounts use the registered decimals
	f.must(mint(f, alice, "50"))
	b = load[types.AssetBalance](f, types.BalanceID(assetAddr, alice))
	assert.Equal(t, "10000.5", b.Balance.Value.String())
}

func TestRolledBackRegistrationKeepsProvisionalDecimals(t *testing.T) {
	f := newFixture(t)
	f.must(mint(f, alice, "1000000"))

	errAbort := errors.New("abort")
	err := f.store.Transaction(f.ctx, func(tx store.Store) error {
		hc := f.context(types.SourceTokenFactory, "TokenAssetCreated", tokenRegistryAddr, map[string]any{
			"asset":    assetAddr,
			"name":     "Bond A",
			"symbol":   "BNDA",
			"decimals": 2,
			"typeName": "bond",
		})
		hc.Store = tx
		var p TokenAssetCreatedParams
		require.NoError(t, hc.Event.DecodeParams(&p))
		require.NoError(t, TokenAssetCreated(f.ctx, hc, p))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	decimals, err := f.decimals.Resolve(f.ctx, f.store, types.AddressID(assetAddr))
	require.NoError(t, err)
	assert.Equal(t, uint8(6), decimals)

	f.must(mint(f, alice, "500000"))
	b := load[types.AssetBalance](f, types.BalanceID(assetAddr, alice))
	assert.Equal(t, "1.5", b.Balance.Value.String())
}

func TestRoleMembership(t *testing.T) {
	f := newFixture(t)
	params := map[string]any{"role": role, "account": bob, "sender": alice}
	id := types.AccessRoleMemberID(systemAddr, role, bob)

	f.must(call(f, RoleGranted, types.SourceAccessControl, "RoleGranted", systemAddr, params))
	m := load[types.AccessRoleMember](f, id)
	assert.Equal(t, role.Hex(), m.Role)

	f.must(call(f, RoleRevoked, types.SourceAccessControl, "RoleRevoked", systemAddr, params))
	assert.Equal(t, 0, f.store.Len(types.AccessRoleMember{}.TableName()))
}
