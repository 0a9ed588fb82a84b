package handler

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

// Uint256 amounts and indexes accept decimal or 0x-prefixed hex strings.
type Uint256 = math.HexOrDecimal256

func bigOf(v *Uint256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return (*big.Int)(v)
}

type TransferParams struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value *Uint256       `json:"value"`
}

type MintParams struct {
	To     common.Address `json:"to"`
	Amount *Uint256       `json:"amount"`
}

type BurnParams struct {
	From   common.Address `json:"from"`
	Amount *Uint256       `json:"amount"`
}

type ApprovalParams struct {
	Owner   common.Address `json:"owner"`
	Spender common.Address `json:"spender"`
	Value   *Uint256       `json:"value"`
}

type AddressFrozenParams struct {
	User     common.Address `json:"userAddress"`
	IsFrozen bool           `json:"isFrozen"`
	Owner    common.Address `json:"owner"`
}

type TokensFrozenParams struct {
	User   common.Address `json:"userAddress"`
	Amount *Uint256       `json:"amount"`
}

type PausedParams struct {
	Account common.Address `json:"account"`
}

type UserBlockedParams struct {
	User common.Address `json:"user"`
}

type ComplianceModuleParams struct {
	Module common.Address `json:"module"`
}

type KeyParams struct {
	Key     common.Hash         `json:"key"`
	Purpose math.HexOrDecimal64 `json:"purpose"`
	KeyType math.HexOrDecimal64 `json:"keyType"`
}

type IdentityRegisteredParams struct {
	InvestorAddress common.Address `json:"investorAddress"`
	Identity        common.Address `json:"identity"`
}

type CountryUpdatedParams struct {
	InvestorAddress common.Address `json:"investorAddress"`
	Country         uint16         `json:"country"`
}

type VaultCreatedParams struct {
	Vault    common.Address      `json:"vault"`
	Creator  common.Address      `json:"creator"`
	Signers  []common.Address    `json:"signers"`
	Admins   []common.Address    `json:"admins"`
	Required math.HexOrDecimal64 `json:"required"`
}

type SubmitTransactionParams struct {
	Signer  common.Address `json:"signer"`
	TxIndex *Uint256       `json:"txIndex"`
	To      common.Address `json:"to"`
	Value   *Uint256       `json:"value"`
	Data    hexutil.Bytes  `json:"data"`
}

type VaultTransactionParams struct {
	Signer  common.Address `json:"signer"`
	TxIndex *Uint256       `json:"txIndex"`
}

type RequirementChangedParams struct {
	Required math.HexOrDecimal64 `json:"required"`
}

type SystemCreatedParams struct {
	System common.Address `json:"system"`
	Sender common.Address `json:"sender"`
}

type TokenRegistryCreatedParams struct {
	Registry common.Address `json:"registry"`
	TypeName string         `json:"typeName"`
}

type TokenAssetCreatedParams struct {
	Asset    common.Address `json:"asset"`
	Name     string         `json:"name"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
	TypeName string         `json:"typeName"`
}

type RoleParams struct {
	Role    common.Hash    `json:"role"`
	Account common.Address `json:"account"`
	Sender  common.Address `json:"sender"`
}
