package router

import (
	"math/big"

	"github.com/qynonyq/autoswap/internal/structures"
)

type search struct {
	input    structures.AssetAmount
	output   structures.Asset
	tokenOut structures.Token
	weth     structures.Token
	best     *structures.Trade
}

// bestTradeExactIn walks every path of at most maxHops pairs from the
// input token to the output token and keeps the best resulting trade.
// Returns nil when no path exists.
func bestTradeExactIn(
	pairs []structures.Pair,
	amountIn structures.AssetAmount,
	output structures.Asset,
	weth structures.Token,
	maxHops int,
) *structures.Trade {
	if maxHops <= 0 || len(pairs) == 0 || amountIn.IsZero() {
		return nil
	}

	s := &search{
		input:    amountIn,
		output:   output,
		tokenOut: structures.Wrap(output, weth),
		weth:     weth,
	}
	s.walk(pairs, structures.Wrap(amountIn.Asset, weth), amountIn.Raw, maxHops, nil)

	return s.best
}

func (s *search) walk(pairs []structures.Pair, tokenIn structures.Token, amountIn *big.Int, hopsLeft int, path []structures.Pair) {
	for i, p := range pairs {
		if !p.Involves(tokenIn) || !p.HasLiquidity() {
			continue
		}

		out, _, err := p.OutputAmount(tokenIn, amountIn)
		if err != nil {
			// input too small to move this pool
			continue
		}
		tokenOut, _ := p.Other(tokenIn)

		// full slice expression so sibling branches never share a backing array
		current := append(path[:len(path):len(path)], p)

		if tokenOut.Equal(s.tokenOut) {
			s.consider(current)
			continue
		}

		if hopsLeft > 1 && len(pairs) > 1 {
			rest := make([]structures.Pair, 0, len(pairs)-1)
			rest = append(rest, pairs[:i]...)
			rest = append(rest, pairs[i+1:]...)
			s.walk(rest, tokenOut, out, hopsLeft-1, current)
		}
	}
}

func (s *search) consider(pairs []structures.Pair) {
	route, err := structures.NewRoute(pairs, s.input.Asset, s.output, s.weth)
	if err != nil {
		return
	}
	trade, err := structures.NewExactInTrade(route, s.input)
	if err != nil {
		return
	}

	if s.best == nil || structures.CompareTrades(trade, s.best) < 0 {
		s.best = trade
	}
}
