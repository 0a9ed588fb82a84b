package types

// KeyPurpose is the ERC-734 purpose of an identity key.
type KeyPurpose string

const (
	KeyPurposeManagement  KeyPurpose = "management"
	KeyPurposeDeposit     KeyPurpose = "deposit"
	KeyPurposeClaimSigner KeyPurpose = "claimSigner"
	KeyPurposeEncryption  KeyPurpose = "encryption"
	KeyPurposeUnknown     KeyPurpose = "unknown"
)

// KeyType is the ERC-734 key type of an identity key.
type KeyType string

const (
	KeyTypeECDSA   KeyType = "ecdsa"
	KeyTypeRSA     KeyType = "rsa"
	KeyTypeUnknown KeyType = "unknown"
)

var keyPurposeCodes = map[uint64]KeyPurpose{
	1: KeyPurposeManagement,
	2: KeyPurposeDeposit,
	3: KeyPurposeClaimSigner,
	4: KeyPurposeEncryption,
}

var keyTypeCodes = map[uint64]KeyType{
	1: KeyTypeECDSA,
	2: KeyTypeRSA,
}

// KeyPurposeFromCode maps an on-chain purpose code. ok is false for codes outside
// the known table, in which case KeyPurposeUnknown is returned.
func KeyPurposeFromCode(code uint64) (purpose KeyPurpose, ok bool) {
	if p, found := keyPurposeCodes[code]; found {
		return p, true
	}
	return KeyPurposeUnknown, false
}

// KeyTypeFromCode maps an on-chain key type code. ok is false for codes outside
// the known table, in which case KeyTypeUnknown is returned.
func KeyTypeFromCode(code uint64) (keyType KeyType, ok bool) {
	if t, found := keyTypeCodes[code]; found {
		return t, true
	}
	return KeyTypeUnknown, false
}
