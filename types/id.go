package types

import (
	"encoding/binary"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressID is the entity id of anything keyed by a contract or wallet address.
func AddressID(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// CompositeID concatenates the byte form of its parts and hex encodes the result.
func CompositeID(parts ...[]byte) string {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	buf := make([]byte, 0, size)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return hexutil.Encode(buf)
}

// BlockedUserID keys the block-list membership of account on asset.
func BlockedUserID(asset, account common.Address) string {
	return CompositeID(asset.Bytes(), account.Bytes())
}

// BalanceID keys the balance of account on asset.
func BalanceID(asset, account common.Address) string {
	return CompositeID(asset.Bytes(), account.Bytes())
}

func IdentityKeyID(identity common.Address, key common.Hash) string {
	return CompositeID(identity.Bytes(), key.Bytes())
}

func ComplianceModuleID(asset, module common.Address) string {
	return CompositeID(asset.Bytes(), module.Bytes())
}

func AccessRoleMemberID(contract common.Address, role common.Hash, account common.Address) string {
	return CompositeID(contract.Bytes(), role.Bytes(), account.Bytes())
}

// VaultTransactionID keys a vault transaction by vault and its uint256 index.
func VaultTransactionID(vault common.Address, index *big.Int) string {
	return CompositeID(vault.Bytes(), common.BigToHash(index).Bytes())
}

// EventID derives a globally unique id from the transaction hash and the log index.
func EventID(txHash common.Hash, logIndex uint32) string {
	return CompositeID(txHash.Bytes(), binary.BigEndian.AppendUint32(nil, logIndex))
}
