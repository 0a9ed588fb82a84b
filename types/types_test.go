package types

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	assetAddr   = common.HexToAddress("0x00000000000000000000000000000000000000AA")
	accountAddr = common.HexToAddress("0x00000000000000000000000000000000000000BB")
)

func TestCompositeIDs(t *testing.T) {
	id := BlockedUserID(assetAddr, accountAddr)
	assert.Equal(t, id, BlockedUserID(assetAddr, accountAddr))
	assert.Equal(t, "0x00000000000000000000000000000000000000aa00000000000000000000000000000000000000bb", id)
	assert.NotEqual(t, id, BlockedUserID(accountAddr, assetAddr))

	assert.Equal(t, "0x00000000000000000000000000000000000000aa", AddressID(assetAddr))

	tx := VaultTransactionID(assetAddr, big.NewInt(1))
	assert.Len(t, tx, 2+2*(20+32))
	assert.NotEqual(t, tx, VaultTransactionID(assetAddr, big.NewInt(2)))
}

func TestEventIDIsDerivedFromTxAndLogIndex(t *testing.T) {
	hash := common.HexToHash("0x01")
	a := Event{TxHash: hash, LogIndex: 1}
	b := Event{TxHash: hash, LogIndex: 1, BlockNumber: 99}
	c := Event{TxHash: hash, LogIndex: 2}

	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
	assert.Len(t, a.ID(), 2+2*(32+4))
}

func TestPositionCompare(t *testing.T) {
	p := Position{BlockNumber: 10, LogIndex: 5}
	assert.Equal(t, 0, p.Compare(p))
	assert.Equal(t, -1, p.Compare(Position{BlockNumber: 10, LogIndex: 6}))
	assert.Equal(t, 1, p.Compare(Position{BlockNumber: 9, LogIndex: 100}))
	assert.Equal(t, "10:5", p.String())
}

func TestEventValidateAndDecode(t *testing.T) {
	ev := Event{Source: SourceAsset, Name: "MintCompleted", TxHash: common.HexToHash("0x01")}
	require.NoError(t, ev.Validate())

	missing := ev
	missing.Name = ""
	assert.True(t, IsErrorType(missing.Validate(), ErrTypeValidation))

	var dst struct {
		Amount string `json:"amount"`
	}
	require.NoError(t, ev.DecodeParams(&dst))

	ev.Params = json.RawMessage(`{"amount": "5"}`)
	require.NoError(t, ev.DecodeParams(&dst))
	assert.Equal(t, "5", dst.Amount)

	ev.Params = json.RawMessage(`[1, 2]`)
	assert.True(t, IsErrorType(ev.DecodeParams(&dst), ErrTypeDecode))
}

func TestKeyCodes(t *testing.T) {
	purpose, ok := KeyPurposeFromCode(3)
	assert.True(t, ok)
	assert.Equal(t, KeyPurposeClaimSigner, purpose)

	purpose, ok = KeyPurposeFromCode(99)
	assert.False(t, ok)
	assert.Equal(t, KeyPurposeUnknown, purpose)

	keyType, ok := KeyTypeFromCode(0)
	assert.False(t, ok)
	assert.Equal(t, KeyTypeUnknown, keyType)
}

func TestIsErrorTypeFollowsCauses(t *testing.T) {
	inner := NewInvariantError("asset_balance", "0x01", "underflow")
	outer := NewInternalError("apply", inner)

	assert.True(t, IsErrorType(outer, ErrTypeInternal))
	assert.True(t, IsErrorType(outer, ErrTypeInvariant))
	assert.False(t, IsErrorType(outer, ErrTypeReorg))
	assert.False(t, IsErrorType(errors.New("plain"), ErrTypeInternal))
}

func TestAddressList(t *testing.T) {
	l := AddressList{"0xa", "0xb"}
	assert.True(t, l.Contains("0xb"))
	assert.Equal(t, AddressList{"0xa"}, l.Without("0xb"))
	assert.Len(t, l, 2)

	v, err := l.Value()
	require.NoError(t, err)

	var scanned AddressList
	require.NoError(t, scanned.Scan([]byte(v.(string))))
	assert.Equal(t, l, scanned)
}

func TestEveryTableIsAnEntity(t *testing.T) {
	for _, table := range AllTables() {
		named, ok := table.(interface{ TableName() string })
		require.True(t, ok)
		assert.NotEmpty(t, named.TableName())
	}
}
