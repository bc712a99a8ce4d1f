package structures

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	ErrAssetMismatch  = errors.New("amounts of different assets")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrTooManyDecimal = errors.New("amount exceeds asset precision")
)

// AssetAmount is a raw amount in the asset's smallest unit.
type AssetAmount struct {
	Asset Asset
	Raw   *big.Int
}

func NewAmount(asset Asset, raw *big.Int) AssetAmount {
	if raw == nil {
		raw = new(big.Int)
	}
	return AssetAmount{Asset: asset, Raw: new(big.Int).Set(raw)}
}

// ParseAmount converts a human readable value ("0.0001") into raw units.
func ParseAmount(asset Asset, value string) (AssetAmount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return AssetAmount{}, fmt.Errorf("%w: %q: %s", ErrInvalidAmount, value, err)
	}
	if d.IsNegative() {
		return AssetAmount{}, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, value)
	}

	shifted := d.Shift(int32(asset.Decimals()))
	if !shifted.Equal(shifted.Truncate(0)) {
		return AssetAmount{}, fmt.Errorf("%w: %q has more than %d decimals", ErrTooManyDecimal, value, asset.Decimals())
	}

	return AssetAmount{Asset: asset, Raw: shifted.BigInt()}, nil
}

func (a AssetAmount) IsZero() bool {
	return a.Raw == nil || a.Raw.Sign() == 0
}

// Exact returns the amount scaled by the asset precision.
func (a AssetAmount) Exact() decimal.Decimal {
	return decimal.NewFromBigInt(a.Raw, -int32(a.Asset.Decimals()))
}

func (a AssetAmount) String() string {
	return a.Exact().String() + " " + a.Asset.Symbol()
}

func (a AssetAmount) Add(b AssetAmount) (AssetAmount, error) {
	if !a.Asset.Equal(b.Asset) {
		return AssetAmount{}, ErrAssetMismatch
	}
	return AssetAmount{Asset: a.Asset, Raw: new(big.Int).Add(a.Raw, b.Raw)}, nil
}

func (a AssetAmount) Sub(b AssetAmount) (AssetAmount, error) {
	if !a.Asset.Equal(b.Asset) {
		return AssetAmount{}, ErrAssetMismatch
	}
	return AssetAmount{Asset: a.Asset, Raw: new(big.Int).Sub(a.Raw, b.Raw)}, nil
}

func (a AssetAmount) Cmp(b AssetAmount) (int, error) {
	if !a.Asset.Equal(b.Asset) {
		return 0, ErrAssetMismatch
	}
	return a.Raw.Cmp(b.Raw), nil
}

// Div returns a / b as a decimal value, each side scaled by its own precision.
func (a AssetAmount) Div(b AssetAmount) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: division by zero amount", ErrInvalidAmount)
	}
	return a.Exact().DivRound(b.Exact(), priceScale), nil
}
