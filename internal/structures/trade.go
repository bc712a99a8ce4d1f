package structures

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// priceScale is the number of fractional digits kept for derived prices.
const priceScale = 18

type TradeType int

const (
	ExactInput TradeType = iota
	ExactOutput
)

func (t TradeType) String() string {
	switch t {
	case ExactInput:
		return "exact_input"
	case ExactOutput:
		return "exact_output"
	default:
		return "unknown"
	}
}

var ErrTradeInput = errors.New("trade input does not match route")

// Trade is a quoted execution of Input through Route.
type Trade struct {
	Type   TradeType
	Route  Route
	Input  AssetAmount
	Output AssetAmount
	// route state after the swap, used for the next mid price
	next Route
}

func NewExactInTrade(route Route, amountIn AssetAmount) (*Trade, error) {
	if !amountIn.Asset.Equal(route.Input) {
		return nil, fmt.Errorf("%w: %s vs %s", ErrTradeInput, amountIn.Asset.Symbol(), route.Input.Symbol())
	}

	amount := new(big.Int).Set(amountIn.Raw)
	nextPairs := make([]Pair, len(route.Pairs))
	for i, p := range route.Pairs {
		out, next, err := p.OutputAmount(route.Path[i], amount)
		if err != nil {
			return nil, err
		}
		amount = out
		nextPairs[i] = next
	}

	next := route
	next.Pairs = nextPairs

	return &Trade{
		Type:   ExactInput,
		Route:  route,
		Input:  NewAmount(amountIn.Asset, amountIn.Raw),
		Output: NewAmount(route.Output, amount),
		next:   next,
	}, nil
}

// ExecutionPrice is output per unit of input.
func (t *Trade) ExecutionPrice() decimal.Decimal {
	price, err := t.Output.Div(t.Input)
	if err != nil {
		return decimal.Zero
	}
	return price
}

// InvertedPrice is input per unit of output.
func (t *Trade) InvertedPrice() decimal.Decimal {
	price, err := t.Input.Div(t.Output)
	if err != nil {
		return decimal.Zero
	}
	return price
}

func (t *Trade) NextMidPrice() decimal.Decimal {
	return t.next.MidPrice()
}

func (t *Trade) priceImpactRaw() *big.Rat {
	quoted := new(big.Rat).Mul(t.Route.midPriceRaw(), new(big.Rat).SetInt(t.Input.Raw))
	if quoted.Sign() == 0 {
		return new(big.Rat)
	}
	diff := new(big.Rat).Sub(quoted, new(big.Rat).SetInt(t.Output.Raw))
	return diff.Quo(diff, quoted)
}

// PriceImpact is the fractional difference between the mid price quote and
// the actual output, LP fees included.
func (t *Trade) PriceImpact() decimal.Decimal {
	return ratToDecimal(t.priceImpactRaw())
}

// RealizedLPFee is the fraction of the input paid to liquidity providers
// across all hops: 1 - 0.997^hops.
func (t *Trade) RealizedLPFee() decimal.Decimal {
	kept := big.NewRat(1, 1)
	for range t.Route.Pairs {
		kept.Mul(kept, new(big.Rat).SetFrac(feeNumerator, feeDenominator))
	}
	return ratToDecimal(new(big.Rat).Sub(big.NewRat(1, 1), kept))
}

func (t *Trade) PriceImpactWithoutFee() decimal.Decimal {
	return t.PriceImpact().Sub(t.RealizedLPFee())
}

// MinimumAmountOut is the output adjusted down by the slippage tolerance:
// floor(out / (1 + slippage)).
func (t *Trade) MinimumAmountOut(slippage Percent) AssetAmount {
	num := new(big.Int).Mul(t.Output.Raw, slippage.Den)
	den := new(big.Int).Add(slippage.Den, slippage.Num)
	return NewAmount(t.Output.Asset, num.Quo(num, den))
}

// CompareTrades orders trades best first: larger output, then smaller
// input, then lower price impact, then fewer hops. It returns a negative
// number when a is better than b.
func CompareTrades(a, b *Trade) int {
	if c := b.Output.Raw.Cmp(a.Output.Raw); c != 0 {
		return c
	}
	if c := a.Input.Raw.Cmp(b.Input.Raw); c != 0 {
		return c
	}
	if c := a.priceImpactRaw().Cmp(b.priceImpactRaw()); c != 0 {
		return c
	}
	return a.Route.Hops() - b.Route.Hops()
}
