package structures

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxHops is the maximum number of pools a route may traverse.
const MaxHops = 3

var ErrInvalidRoute = errors.New("invalid route")

// Route is a chain of pairs leading from Input to Output. Path holds the
// wrapped tokens visited, len(Path) == len(Pairs)+1.
type Route struct {
	Pairs  []Pair
	Path   []Token
	Input  Asset
	Output Asset
}

func NewRoute(pairs []Pair, input, output Asset, weth Token) (Route, error) {
	if len(pairs) == 0 || len(pairs) > MaxHops {
		return Route{}, fmt.Errorf("%w: %d hops", ErrInvalidRoute, len(pairs))
	}

	path := make([]Token, 0, len(pairs)+1)
	path = append(path, Wrap(input, weth))

	for i, p := range pairs {
		if p.Token0.Equal(p.Token1) {
			return Route{}, fmt.Errorf("%w: pair %s has identical tokens", ErrInvalidRoute, p.Address)
		}
		if i > 0 && p.Involves(pairs[i-1].Token0) && p.Involves(pairs[i-1].Token1) {
			return Route{}, fmt.Errorf("%w: pairs %d and %d share both tokens", ErrInvalidRoute, i-1, i)
		}

		next, err := p.Other(path[i])
		if err != nil {
			return Route{}, fmt.Errorf("%w: hop %d: %s", ErrInvalidRoute, i, err)
		}
		path = append(path, next)
	}

	if !path[len(path)-1].Equal(Wrap(output, weth)) {
		return Route{}, fmt.Errorf("%w: path ends in %s, not %s", ErrInvalidRoute, path[len(path)-1].Sym, output.Symbol())
	}

	return Route{
		Pairs:  pairs,
		Path:   path,
		Input:  input,
		Output: output,
	}, nil
}

func (r Route) Hops() int {
	return len(r.Pairs)
}

// midPriceRaw is the product of reserve ratios along the route, in raw
// units of output per raw unit of input.
func (r Route) midPriceRaw() *big.Rat {
	price := big.NewRat(1, 1)
	for i, p := range r.Pairs {
		reserveIn, _ := p.ReserveOf(r.Path[i])
		reserveOut, _ := p.ReserveOf(r.Path[i+1])
		if reserveIn.Sign() == 0 {
			return new(big.Rat)
		}
		price.Mul(price, new(big.Rat).SetFrac(reserveOut, reserveIn))
	}
	return price
}

// MidPrice is the marginal price of the output in terms of the input,
// adjusted for decimals.
func (r Route) MidPrice() decimal.Decimal {
	return ratToDecimal(r.midPriceRaw()).Shift(int32(r.Input.Decimals()) - int32(r.Output.Decimals()))
}

func (r Route) String() string {
	symbols := make([]string, 0, len(r.Path))
	for i, t := range r.Path {
		switch {
		case i == 0:
			symbols = append(symbols, r.Input.Symbol())
		case i == len(r.Path)-1:
			symbols = append(symbols, r.Output.Symbol())
		default:
			symbols = append(symbols, t.Sym)
		}
	}
	return strings.Join(symbols, " > ")
}

func ratToDecimal(r *big.Rat) decimal.Decimal {
	if r.Sign() == 0 {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(r.Num(), 0).DivRound(decimal.NewFromBigInt(r.Denom(), 0), priceScale)
}
