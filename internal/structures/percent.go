package structures

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const basisPointsDenominator = 10_000

// Percent is an exact fraction Num/Den (0.5% == 5/1000).
type Percent struct {
	Num *big.Int
	Den *big.Int
}

var ZeroPercent = NewPercent(0, 1)

func NewPercent(num, den int64) Percent {
	if den == 0 {
		panic("percent with zero denominator")
	}
	return Percent{Num: big.NewInt(num), Den: big.NewInt(den)}
}

func FromBasisPoints(bps int64) Percent {
	return NewPercent(bps, basisPointsDenominator)
}

func (p Percent) IsZero() bool {
	return p.Num == nil || p.Num.Sign() == 0
}

// Decimal returns the fraction as a ratio (0.005 for 0.5%).
func (p Percent) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(p.Num, 0).DivRound(decimal.NewFromBigInt(p.Den, 0), priceScale)
}

func (p Percent) String() string {
	return fmt.Sprintf("%s%%", p.Decimal().Shift(2).StringFixed(2))
}
