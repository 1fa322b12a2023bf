package giftprogram

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

// ToBaseUnits - Convert a human amount string ("1.5") to integer base units
// for a mint with the given decimals. Precision beyond the mint's decimals is
// truncated, so a value converted back with FromBaseUnits matches the input
// to within 10^-decimals.
func ToBaseUnits(amount string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("amount must be a positive number")
	}

	base := d.Shift(int32(decimals)).Truncate(0)
	if base.IsZero() {
		return 0, fmt.Errorf("amount %s is below the smallest unit for %d decimals", amount, decimals)
	}

	bi := base.BigInt()
	if bi.Cmp(maxUint64) > 0 {
		return 0, fmt.Errorf("amount %s overflows the token's base units", amount)
	}
	return bi.Uint64(), nil
}

// FromBaseUnits - Convert integer base units back to a human amount string
func FromBaseUnits(base uint64, decimals uint8) string {
	return decimal.NewFromUint64(base).Shift(-int32(decimals)).String()
}
