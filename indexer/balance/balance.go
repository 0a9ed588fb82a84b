// Package balance keeps the exact and the decimal-scaled representation of
// every asset amount in step.
package balance

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/assetkit/assetindexer/types"
)

// SetValueWithDecimals writes raw into amount.Exact and raw / 10^decimals into
// amount.Value. A nil raw is zero.
func SetValueWithDecimals(amount *types.Amount, raw *big.Int, decimals uint8) error {
	if raw == nil {
		raw = new(big.Int)
	}
	if raw.Sign() < 0 {
		return types.NewInvalidValueError("amount", raw.String(), "must not be negative")
	}
	amount.Exact = types.NewNumeric(decimal.NewFromBigInt(raw, 0))
	amount.Value = types.NewNumeric(decimal.NewFromBigInt(raw, -int32(decimals)))
	return nil
}

// Add increases amount by delta.
func Add(amount *types.Amount, delta *big.Int, decimals uint8) error {
	return SetValueWithDecimals(amount, new(big.Int).Add(amount.ExactInt(), orZero(delta)), decimals)
}

// Sub decreases amount by delta. Going below zero means the derived state no
// longer matches the chain and is reported as an invariant error naming entity.
func Sub(amount *types.Amount, delta *big.Int, decimals uint8, entity, id string) error {
	next := new(big.Int).Sub(amount.ExactInt(), orZero(delta))
	if next.Sign() < 0 {
		return types.NewInvariantError(entity, id, "amount "+amount.Exact.String()+" cannot cover "+orZero(delta).String())
	}
	return SetValueWithDecimals(amount, next, decimals)
}

// Credit adds delta to the held balance.
func Credit(b *types.AssetBalance, delta *big.Int, decimals uint8) error {
	return Add(&b.Balance, delta, decimals)
}

// Debit removes delta from the held balance.
func Debit(b *types.AssetBalance, delta *big.Int, decimals uint8) error {
	return Sub(&b.Balance, delta, decimals, b.TableName(), b.ID)
}

// Rescale recomputes every scaled value of b for new decimals, e.g. after the
// asset registered its metadata.
func Rescale(b *types.AssetBalance, decimals uint8) error {
	for _, amount := range []*types.Amount{&b.Balance, &b.Approved, &b.Frozen} {
		if err := SetValueWithDecimals(amount, amount.ExactInt(), decimals); err != nil {
			return err
		}
	}
	return nil
}

// Consistent reports whether the scaled value of amount is derived from its
// exact value with decimals.
func Consistent(amount types.Amount, decimals uint8) bool {
	if amount.Exact.IsNegative() {
		return false
	}
	return amount.Value.Equal(amount.Exact.Shift(-int32(decimals)))
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
