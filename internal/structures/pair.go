package structures

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrIdenticalTokens         = errors.New("pair of identical tokens")
	ErrTokenNotInPair          = errors.New("token is not in pair")
	ErrInsufficientReserves    = errors.New("insufficient reserves")
	ErrInsufficientInputAmount = errors.New("insufficient input amount")
)

var (
	feeNumerator   = big.NewInt(997)
	feeDenominator = big.NewInt(1000)
)

// Pair is a reserves snapshot of a constant product pool. Token0 always
// sorts before Token1.
type Pair struct {
	Address  common.Address
	Token0   Token
	Token1   Token
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// NewPair orders tokenA and tokenB; reserve0 and reserve1 are taken in the
// pool's own (sorted) order, as returned by getReserves.
func NewPair(address common.Address, tokenA, tokenB Token, reserve0, reserve1 *big.Int) (Pair, error) {
	if tokenA.Equal(tokenB) {
		return Pair{}, fmt.Errorf("%w: %s", ErrIdenticalTokens, tokenA.Address)
	}

	token0, token1 := tokenA, tokenB
	if !tokenA.SortsBefore(tokenB) {
		token0, token1 = tokenB, tokenA
	}

	return Pair{
		Address:  address,
		Token0:   token0,
		Token1:   token1,
		Reserve0: nonNil(reserve0),
		Reserve1: nonNil(reserve1),
	}, nil
}

func (p Pair) Involves(t Token) bool {
	return p.Token0.Equal(t) || p.Token1.Equal(t)
}

// Other returns the counterpart of t in the pair.
func (p Pair) Other(t Token) (Token, error) {
	switch {
	case p.Token0.Equal(t):
		return p.Token1, nil
	case p.Token1.Equal(t):
		return p.Token0, nil
	default:
		return Token{}, fmt.Errorf("%w: %s", ErrTokenNotInPair, t.Address)
	}
}

func (p Pair) ReserveOf(t Token) (*big.Int, error) {
	switch {
	case p.Token0.Equal(t):
		return p.Reserve0, nil
	case p.Token1.Equal(t):
		return p.Reserve1, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrTokenNotInPair, t.Address)
	}
}

func (p Pair) HasLiquidity() bool {
	return p.Reserve0.Sign() > 0 && p.Reserve1.Sign() > 0
}

// OutputAmount returns the amount received for amountIn of tokenIn and the
// pair state after the swap. A 0.3% LP fee is charged on the input.
func (p Pair) OutputAmount(tokenIn Token, amountIn *big.Int) (*big.Int, Pair, error) {
	tokenOut, err := p.Other(tokenIn)
	if err != nil {
		return nil, Pair{}, err
	}
	if !p.HasLiquidity() {
		return nil, Pair{}, ErrInsufficientReserves
	}

	reserveIn, _ := p.ReserveOf(tokenIn)
	reserveOut, _ := p.ReserveOf(tokenOut)

	inWithFee := new(big.Int).Mul(amountIn, feeNumerator)
	numerator := new(big.Int).Mul(inWithFee, reserveOut)
	denominator := new(big.Int).Mul(reserveIn, feeDenominator)
	denominator.Add(denominator, inWithFee)

	out := numerator.Quo(numerator, denominator)
	if out.Sign() == 0 {
		return nil, Pair{}, ErrInsufficientInputAmount
	}

	next := p
	newIn := new(big.Int).Add(reserveIn, amountIn)
	newOut := new(big.Int).Sub(reserveOut, out)
	if p.Token0.Equal(tokenIn) {
		next.Reserve0, next.Reserve1 = newIn, newOut
	} else {
		next.Reserve0, next.Reserve1 = newOut, newIn
	}

	return out, next, nil
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
